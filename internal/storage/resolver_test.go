package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// captureLog redirects the global logger into a buffer for one test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })
	return &buf
}

// stubBackend wraps a Local and lets a test inject failures on the
// course read/write paths.
type stubBackend struct {
	Backend
	name  string
	err   error
	block bool
	calls int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.Backend.GetCourse(ctx, id)
}

func (s *stubBackend) CreateCourse(ctx context.Context, f model.CourseFields) (*model.Course, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.Backend.CreateCourse(ctx, f)
}

func newStub(name string) *stubBackend {
	return &stubBackend{Backend: NewLocal(testDataset()), name: name}
}

func getCourse(id int64) func(context.Context, Backend) (*model.Course, error) {
	return func(ctx context.Context, b Backend) (*model.Course, error) {
		return b.GetCourse(ctx, id)
	}
}

func TestReadUsesFirstHealthyBackend(t *testing.T) {
	primary := newStub("primary")
	secondary := newStub("secondary")
	r := NewResolver([]Backend{primary, secondary}, NewLocal(testDataset()), time.Second)

	course, err := Read(context.Background(), r, "courses.get", getCourse(1))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if course.ID != 1 {
		t.Errorf("course id = %d, want 1", course.ID)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary consulted despite healthy primary (%d calls)", secondary.calls)
	}
}

func TestReadFallsThroughUnavailableBackend(t *testing.T) {
	logs := captureLog(t)
	primary := newStub("primary")
	primary.err = common.Errorf("connection refused: %w", common.ErrBackendUnavailable)
	secondary := newStub("secondary")
	r := NewResolver([]Backend{primary, secondary}, NewLocal(testDataset()), time.Second)

	course, err := Read(context.Background(), r, "courses.get", getCourse(1))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if course == nil || secondary.calls != 1 {
		t.Errorf("fallback not used: course=%v secondary calls=%d", course, secondary.calls)
	}

	// Exactly one failure event for the one backend that failed.
	if n := strings.Count(logs.String(), "backend failed, falling through"); n != 1 {
		t.Errorf("logged %d fallback events, want 1: %s", n, logs.String())
	}
	if !strings.Contains(logs.String(), `"backend":"primary"`) {
		t.Errorf("fallback event does not name the failed backend: %s", logs.String())
	}

	status := r.Status()
	if len(status) != 2 {
		t.Fatalf("status entries = %d, want 2", len(status))
	}
	if status[0].Available || status[0].LastError == "" {
		t.Errorf("primary should be marked down: %+v", status[0])
	}
	if !status[1].Available {
		t.Errorf("secondary should be marked up: %+v", status[1])
	}
}

func TestReadTerminalErrorDoesNotFallThrough(t *testing.T) {
	primary := newStub("primary")
	secondary := newStub("secondary")
	r := NewResolver([]Backend{primary, secondary}, NewLocal(testDataset()), time.Second)

	_, err := Read(context.Background(), r, "courses.get", getCourse(999))
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if secondary.calls != 0 {
		t.Errorf("not-found must not trigger fallback, secondary calls = %d", secondary.calls)
	}

	if status := r.Status(); !status[0].Available {
		t.Errorf("a terminal answer still means the backend is up: %+v", status[0])
	}
}

func TestReadServesStaticWhenAllBackendsDown(t *testing.T) {
	primary := newStub("primary")
	primary.err = common.Errorf("down: %w", common.ErrBackendUnavailable)
	secondary := newStub("secondary")
	secondary.err = common.Errorf("down: %w", common.ErrBackendUnavailable)
	static := NewLocal(testDataset())
	r := NewResolver([]Backend{primary, secondary}, static, time.Second)

	course, err := Read(context.Background(), r, "courses.get", getCourse(1))
	if err != nil {
		t.Fatalf("static fallback failed: %v", err)
	}
	if course.ID != 1 {
		t.Errorf("course id = %d, want 1", course.ID)
	}
}

func TestWriteFailsWhenAllBackendsDown(t *testing.T) {
	primary := newStub("primary")
	primary.err = common.Errorf("down: %w", common.ErrBackendUnavailable)
	r := NewResolver([]Backend{primary}, NewLocal(testDataset()), time.Second)

	_, err := Write(context.Background(), r, "courses.create",
		func(ctx context.Context, b Backend) (*model.Course, error) {
			return b.CreateCourse(ctx, model.CourseFields{Title: "x"})
		})
	if !errors.Is(err, common.ErrAllBackendsUnavailable) {
		t.Errorf("err = %v, want ErrAllBackendsUnavailable", err)
	}
}

func TestWriteTerminalErrorPropagates(t *testing.T) {
	primary := newStub("primary")
	primary.err = common.Errorf("duplicate: %w", common.ErrConflict)
	secondary := newStub("secondary")
	r := NewResolver([]Backend{primary, secondary}, NewLocal(testDataset()), time.Second)

	_, err := Write(context.Background(), r, "courses.create",
		func(ctx context.Context, b Backend) (*model.Course, error) {
			return b.CreateCourse(ctx, model.CourseFields{Title: "x"})
		})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if secondary.calls != 0 {
		t.Errorf("conflict must not trigger fallback, secondary calls = %d", secondary.calls)
	}
}

func TestReadTimesOutSlowBackendAndFallsThrough(t *testing.T) {
	slow := newStub("slow")
	slow.block = true
	fast := newStub("fast")
	r := NewResolver([]Backend{slow, fast}, NewLocal(testDataset()), 20*time.Millisecond)

	start := time.Now()
	course, err := Read(context.Background(), r, "courses.get", getCourse(1))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if course.ID != 1 {
		t.Errorf("course id = %d, want 1", course.ID)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("slow backend was not cut off by the attempt budget (%s)", elapsed)
	}
	if status := r.Status(); status[0].Available {
		t.Errorf("slow backend should be marked down: %+v", status[0])
	}
}
