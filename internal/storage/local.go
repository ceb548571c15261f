package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

// Local is the in-process backend: non-persistent, seeded at
// construction, last resort before static data. It is also used (as a
// separate instance) for the static read-only fallback dataset.
type Local struct {
	mu   sync.RWMutex
	data *Dataset
}

func NewLocal(seed *Dataset) *Local {
	return &Local{data: seed.Clone()}
}

func (l *Local) Name() string { return "local" }

func (l *Local) Ping(ctx context.Context) error { return nil }

func (l *Local) Seed(ctx context.Context, ds *Dataset) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = ds.Clone()
	return nil
}

// --- users ---

func (l *Local) ListUsers(ctx context.Context) ([]model.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.User(nil), l.data.Users...), nil
}

func (l *Local) GetUser(ctx context.Context, id int64) (*model.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, u := range l.data.Users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, u := range l.data.Users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) CreateUser(ctx context.Context, nu model.NewUser) (*model.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range l.data.Users {
		if u.Email == nu.Email {
			return nil, fmt.Errorf("user with this email already exists: %w", common.ErrConflict)
		}
	}
	l.data.LastIDs.Users++
	user := model.User{
		ID:           l.data.LastIDs.Users,
		Email:        nu.Email,
		Name:         nu.Name,
		PasswordHash: nu.PasswordHash,
		IsAdmin:      nu.IsAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	l.data.Users = append(l.data.Users, user)
	return &user, nil
}

// --- courses ---

func (l *Local) ListCourses(ctx context.Context) ([]model.Course, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := append([]model.Course(nil), l.data.Courses...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (l *Local) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.data.Courses {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) CreateCourse(ctx context.Context, f model.CourseFields) (*model.Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data.LastIDs.Courses++
	course := model.Course{
		ID:          l.data.LastIDs.Courses,
		Title:       f.Title,
		Description: f.Description,
		OrderIndex:  f.OrderIndex,
		CreatedAt:   time.Now().UTC(),
	}
	l.data.Courses = append(l.data.Courses, course)
	return &course, nil
}

func (l *Local) UpdateCourse(ctx context.Context, id int64, p model.CoursePatch) (*model.Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.data.Courses {
		if l.data.Courses[i].ID == id {
			p.Apply(&l.data.Courses[i])
			c := l.data.Courses[i]
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) DeleteCourse(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := -1
	for i, c := range l.data.Courses {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}
	l.data.Courses = append(l.data.Courses[:idx], l.data.Courses[idx+1:]...)

	kept := l.data.Lessons[:0]
	for _, lesson := range l.data.Lessons {
		if lesson.CourseID != id {
			kept = append(kept, lesson)
		}
	}
	l.data.Lessons = kept

	for _, t := range append([]model.Test(nil), l.data.Tests...) {
		if t.CourseID == id {
			l.deleteTestLocked(t.ID)
		}
	}
	return true, nil
}

// --- lessons ---

func (l *Local) ListLessons(ctx context.Context, f LessonFilter) ([]model.Lesson, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []model.Lesson
	for _, lesson := range l.data.Lessons {
		if f.CourseID != nil && lesson.CourseID != *f.CourseID {
			continue
		}
		out = append(out, lesson)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (l *Local) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, lesson := range l.data.Lessons {
		if lesson.ID == id {
			return &lesson, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) CreateLesson(ctx context.Context, f model.LessonFields) (*model.Lesson, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data.LastIDs.Lessons++
	lesson := model.Lesson{
		ID:         l.data.LastIDs.Lessons,
		CourseID:   f.CourseID,
		Title:      f.Title,
		Content:    f.Content,
		OrderIndex: f.OrderIndex,
		CreatedAt:  time.Now().UTC(),
	}
	l.data.Lessons = append(l.data.Lessons, lesson)
	return &lesson, nil
}

func (l *Local) UpdateLesson(ctx context.Context, id int64, p model.LessonPatch) (*model.Lesson, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.data.Lessons {
		if l.data.Lessons[i].ID == id {
			p.Apply(&l.data.Lessons[i])
			lesson := l.data.Lessons[i]
			return &lesson, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) DeleteLesson(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, lesson := range l.data.Lessons {
		if lesson.ID == id {
			l.data.Lessons = append(l.data.Lessons[:i], l.data.Lessons[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// --- tests ---

func (l *Local) ListTests(ctx context.Context, f TestFilter) ([]model.Test, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []model.Test
	for _, t := range l.data.Tests {
		if f.CourseID != nil && t.CourseID != *f.CourseID {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (l *Local) GetTest(ctx context.Context, id int64) (*model.Test, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, t := range l.data.Tests {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) CreateTest(ctx context.Context, f model.TestFields) (*model.Test, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data.LastIDs.Tests++
	t := model.Test{
		ID:          l.data.LastIDs.Tests,
		CourseID:    f.CourseID,
		LessonID:    f.LessonID,
		Title:       f.Title,
		Description: f.Description,
		CreatedAt:   time.Now().UTC(),
	}
	l.data.Tests = append(l.data.Tests, t)
	return &t, nil
}

func (l *Local) UpdateTest(ctx context.Context, id int64, p model.TestPatch) (*model.Test, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.data.Tests {
		if l.data.Tests[i].ID == id {
			p.Apply(&l.data.Tests[i])
			t := l.data.Tests[i]
			return &t, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) DeleteTest(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deleteTestLocked(id), nil
}

// deleteTestLocked removes a test and cascades to its questions and
// results. Caller must hold the write lock.
func (l *Local) deleteTestLocked(id int64) bool {
	idx := -1
	for i, t := range l.data.Tests {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	l.data.Tests = append(l.data.Tests[:idx], l.data.Tests[idx+1:]...)

	keptQ := l.data.TestQuestions[:0]
	for _, q := range l.data.TestQuestions {
		if q.TestID != id {
			keptQ = append(keptQ, q)
		}
	}
	l.data.TestQuestions = keptQ

	keptR := l.data.TestResults[:0]
	for _, r := range l.data.TestResults {
		if r.TestID != id {
			keptR = append(keptR, r)
		}
	}
	l.data.TestResults = keptR
	return true
}

// --- questions ---

func (l *Local) ListQuestions(ctx context.Context, testID int64) ([]model.TestQuestion, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []model.TestQuestion
	for _, q := range l.data.TestQuestions {
		if q.TestID == testID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (l *Local) GetQuestion(ctx context.Context, id int64) (*model.TestQuestion, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, q := range l.data.TestQuestions {
		if q.ID == id {
			return &q, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) CreateQuestion(ctx context.Context, f model.QuestionFields) (*model.TestQuestion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data.LastIDs.TestQuestions++
	q := model.TestQuestion{
		ID:            l.data.LastIDs.TestQuestions,
		TestID:        f.TestID,
		Question:      f.Question,
		Options:       append([]string(nil), f.Options...),
		CorrectAnswer: f.CorrectAnswer,
		OrderIndex:    f.OrderIndex,
	}
	l.data.TestQuestions = append(l.data.TestQuestions, q)
	return &q, nil
}

func (l *Local) UpdateQuestion(ctx context.Context, id int64, p model.QuestionPatch) (*model.TestQuestion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.data.TestQuestions {
		if l.data.TestQuestions[i].ID == id {
			p.Apply(&l.data.TestQuestions[i])
			q := l.data.TestQuestions[i]
			return &q, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) DeleteQuestion(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, q := range l.data.TestQuestions {
		if q.ID == id {
			l.data.TestQuestions = append(l.data.TestQuestions[:i], l.data.TestQuestions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// --- results ---

func (l *Local) ListResults(ctx context.Context, f ResultFilter) ([]model.TestResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []model.TestResult
	for _, r := range l.data.TestResults {
		if f.TestID != nil && r.TestID != *f.TestID {
			continue
		}
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (l *Local) GetResult(ctx context.Context, id int64) (*model.TestResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.data.TestResults {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, common.ErrNotFound
}

func (l *Local) CreateResult(ctx context.Context, f model.ResultFields) (*model.TestResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data.LastIDs.TestResults++
	r := model.TestResult{
		ID:             l.data.LastIDs.TestResults,
		UserID:         f.UserID,
		TestID:         f.TestID,
		Score:          f.Score,
		TotalQuestions: f.TotalQuestions,
		Answers:        append([]int(nil), f.Answers...),
		CreatedAt:      time.Now().UTC(),
	}
	l.data.TestResults = append(l.data.TestResults, r)
	return &r, nil
}
