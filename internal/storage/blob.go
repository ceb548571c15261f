package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/platform/locks"
	"coursehub/internal/platform/objectstore"

	"github.com/rs/zerolog/log"
)

// blobUser is the persisted form of a user. model.User never serializes
// its password hash, but the document must carry it.
type blobUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"password"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// blobDocument is the entire dataset as stored in the object store.
type blobDocument struct {
	Users         []blobUser           `json:"users"`
	Courses       []model.Course       `json:"courses"`
	Lessons       []model.Lesson       `json:"lessons"`
	Tests         []model.Test         `json:"tests"`
	TestQuestions []model.TestQuestion `json:"test_questions"`
	TestResults   []model.TestResult   `json:"test_results"`
	LastIDs       LastIDs              `json:"last_ids"`
}

// Blob stores the whole dataset as a single JSON document that is
// fetched and rewritten on every mutating call. Writes acquire a
// distributed lock to serialize the read-modify-write cycle; without
// Redis the lock degrades to in-process scope and cross-instance
// writers can still race (last writer wins).
type Blob struct {
	store  *objectstore.Client
	object string
	lock   *locks.WriteLock
	seed   *Dataset // initial document when none exists yet
}

func NewBlob(store *objectstore.Client, object string, lock *locks.WriteLock, seed *Dataset) *Blob {
	return &Blob{store: store, object: object, lock: lock, seed: seed}
}

func (b *Blob) Name() string { return "blob" }

func (b *Blob) Ping(ctx context.Context) error {
	if _, err := b.load(ctx); err != nil {
		return err
	}
	return nil
}

func (b *Blob) load(ctx context.Context) (*blobDocument, error) {
	data, err := b.store.Get(ctx, b.object)
	if err != nil {
		if objectstore.IsNotExist(err) {
			log.Info().Str("object", b.object).Msg("blob document not found, starting from seed data")
			return documentFromDataset(b.seed), nil
		}
		return nil, fmt.Errorf("blob.load: %v: %w", err, common.ErrBackendUnavailable)
	}
	doc := &blobDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("blob.load: corrupt document: %v: %w", err, common.ErrBackendUnavailable)
	}
	return doc, nil
}

func (b *Blob) save(ctx context.Context, doc *blobDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("blob.save: %w", err)
	}
	if err := b.store.Put(ctx, b.object, data, "application/json"); err != nil {
		return fmt.Errorf("blob.save: %v: %w", err, common.ErrBackendUnavailable)
	}
	return nil
}

// mutate runs fn inside a locked load-modify-save cycle.
func (b *Blob) mutate(ctx context.Context, fn func(doc *blobDocument) error) error {
	release, err := b.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("blob.mutate: lock: %v: %w", err, common.ErrBackendUnavailable)
	}
	defer release()

	doc, err := b.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return b.save(ctx, doc)
}

func documentFromDataset(ds *Dataset) *blobDocument {
	doc := &blobDocument{
		Courses:       append([]model.Course(nil), ds.Courses...),
		Lessons:       append([]model.Lesson(nil), ds.Lessons...),
		Tests:         append([]model.Test(nil), ds.Tests...),
		TestQuestions: append([]model.TestQuestion(nil), ds.TestQuestions...),
		TestResults:   append([]model.TestResult(nil), ds.TestResults...),
		LastIDs:       ds.LastIDs,
	}
	for _, u := range ds.Users {
		doc.Users = append(doc.Users, blobUser{
			ID: u.ID, Email: u.Email, Name: u.Name,
			Password: u.PasswordHash, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt,
		})
	}
	return doc
}

func (u blobUser) toModel() *model.User {
	return &model.User{
		ID: u.ID, Email: u.Email, Name: u.Name,
		PasswordHash: u.Password, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt,
	}
}

func (b *Blob) Seed(ctx context.Context, ds *Dataset) error {
	release, err := b.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("blob.Seed: lock: %v: %w", err, common.ErrBackendUnavailable)
	}
	defer release()
	return b.save(ctx, documentFromDataset(ds))
}

// --- users ---

func (b *Blob) ListUsers(ctx context.Context) ([]model.User, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(doc.Users))
	for _, u := range doc.Users {
		users = append(users, *u.toModel())
	}
	return users, nil
}

func (b *Blob) GetUser(ctx context.Context, id int64) (*model.User, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.ID == id {
			return u.toModel(), nil
		}
	}
	return nil, common.ErrNotFound
}

func (b *Blob) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.Email == email {
			return u.toModel(), nil
		}
	}
	return nil, common.ErrNotFound
}

func (b *Blob) CreateUser(ctx context.Context, nu model.NewUser) (*model.User, error) {
	var created *model.User
	err := b.mutate(ctx, func(doc *blobDocument) error {
		for _, u := range doc.Users {
			if u.Email == nu.Email {
				return fmt.Errorf("user with this email already exists: %w", common.ErrConflict)
			}
		}
		doc.LastIDs.Users++
		u := blobUser{
			ID:        doc.LastIDs.Users,
			Email:     nu.Email,
			Name:      nu.Name,
			Password:  nu.PasswordHash,
			IsAdmin:   nu.IsAdmin,
			CreatedAt: time.Now().UTC(),
		}
		doc.Users = append(doc.Users, u)
		created = u.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// --- courses ---

func (b *Blob) ListCourses(ctx context.Context) ([]model.Course, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]model.Course(nil), doc.Courses...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (b *Blob) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range doc.Courses {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (b *Blob) CreateCourse(ctx context.Context, f model.CourseFields) (*model.Course, error) {
	var created *model.Course
	err := b.mutate(ctx, func(doc *blobDocument) error {
		doc.LastIDs.Courses++
		c := model.Course{
			ID:          doc.LastIDs.Courses,
			Title:       f.Title,
			Description: f.Description,
			OrderIndex:  f.OrderIndex,
			CreatedAt:   time.Now().UTC(),
		}
		doc.Courses = append(doc.Courses, c)
		created = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (b *Blob) UpdateCourse(ctx context.Context, id int64, p model.CoursePatch) (*model.Course, error) {
	var updated *model.Course
	err := b.mutate(ctx, func(doc *blobDocument) error {
		for i := range doc.Courses {
			if doc.Courses[i].ID == id {
				p.Apply(&doc.Courses[i])
				c := doc.Courses[i]
				updated = &c
				return nil
			}
		}
		return common.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (b *Blob) DeleteCourse(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := b.mutate(ctx, func(doc *blobDocument) error {
		idx := -1
		for i, c := range doc.Courses {
			if c.ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil
		}
		deleted = true
		doc.Courses = append(doc.Courses[:idx], doc.Courses[idx+1:]...)

		kept := doc.Lessons[:0]
		for _, l := range doc.Lessons {
			if l.CourseID != id {
				kept = append(kept, l)
			}
		}
		doc.Lessons = kept

		for _, t := range append([]model.Test(nil), doc.Tests...) {
			if t.CourseID == id {
				deleteTestFromDocument(doc, t.ID)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// --- lessons ---

func (b *Blob) ListLessons(ctx context.Context, f LessonFilter) ([]model.Lesson, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Lesson
	for _, l := range doc.Lessons {
		if f.CourseID != nil && l.CourseID != *f.CourseID {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (b *Blob) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range doc.Lessons {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, common.ErrNotFound
}

func (b *Blob) CreateLesson(ctx context.Context, f model.LessonFields) (*model.Lesson, error) {
	var created *model.Lesson
	err := b.mutate(ctx, func(doc *blobDocument) error {
		doc.LastIDs.Lessons++
		l := model.Lesson{
			ID:         doc.LastIDs.Lessons,
			CourseID:   f.CourseID,
			Title:      f.Title,
			Content:    f.Content,
			OrderIndex: f.OrderIndex,
			CreatedAt:  time.Now().UTC(),
		}
		doc.Lessons = append(doc.Lessons, l)
		created = &l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (b *Blob) UpdateLesson(ctx context.Context, id int64, p model.LessonPatch) (*model.Lesson, error) {
	var updated *model.Lesson
	err := b.mutate(ctx, func(doc *blobDocument) error {
		for i := range doc.Lessons {
			if doc.Lessons[i].ID == id {
				p.Apply(&doc.Lessons[i])
				l := doc.Lessons[i]
				updated = &l
				return nil
			}
		}
		return common.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (b *Blob) DeleteLesson(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := b.mutate(ctx, func(doc *blobDocument) error {
		for i, l := range doc.Lessons {
			if l.ID == id {
				doc.Lessons = append(doc.Lessons[:i], doc.Lessons[i+1:]...)
				deleted = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// --- tests ---

func deleteTestFromDocument(doc *blobDocument, id int64) bool {
	idx := -1
	for i, t := range doc.Tests {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	doc.Tests = append(doc.Tests[:idx], doc.Tests[idx+1:]...)

	keptQ := doc.TestQuestions[:0]
	for _, q := range doc.TestQuestions {
		if q.TestID != id {
			keptQ = append(keptQ, q)
		}
	}
	doc.TestQuestions = keptQ

	keptR := doc.TestResults[:0]
	for _, r := range doc.TestResults {
		if r.TestID != id {
			keptR = append(keptR, r)
		}
	}
	doc.TestResults = keptR
	return true
}

func (b *Blob) ListTests(ctx context.Context, f TestFilter) ([]model.Test, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Test
	for _, t := range doc.Tests {
		if f.CourseID != nil && t.CourseID != *f.CourseID {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (b *Blob) GetTest(ctx context.Context, id int64) (*model.Test, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range doc.Tests {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, common.ErrNotFound
}

func (b *Blob) CreateTest(ctx context.Context, f model.TestFields) (*model.Test, error) {
	var created *model.Test
	err := b.mutate(ctx, func(doc *blobDocument) error {
		doc.LastIDs.Tests++
		t := model.Test{
			ID:          doc.LastIDs.Tests,
			CourseID:    f.CourseID,
			LessonID:    f.LessonID,
			Title:       f.Title,
			Description: f.Description,
			CreatedAt:   time.Now().UTC(),
		}
		doc.Tests = append(doc.Tests, t)
		created = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (b *Blob) UpdateTest(ctx context.Context, id int64, p model.TestPatch) (*model.Test, error) {
	var updated *model.Test
	err := b.mutate(ctx, func(doc *blobDocument) error {
		for i := range doc.Tests {
			if doc.Tests[i].ID == id {
				p.Apply(&doc.Tests[i])
				t := doc.Tests[i]
				updated = &t
				return nil
			}
		}
		return common.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (b *Blob) DeleteTest(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := b.mutate(ctx, func(doc *blobDocument) error {
		deleted = deleteTestFromDocument(doc, id)
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// --- questions ---

func (b *Blob) ListQuestions(ctx context.Context, testID int64) ([]model.TestQuestion, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.TestQuestion
	for _, q := range doc.TestQuestions {
		if q.TestID == testID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (b *Blob) GetQuestion(ctx context.Context, id int64) (*model.TestQuestion, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range doc.TestQuestions {
		if q.ID == id {
			return &q, nil
		}
	}
	return nil, common.ErrNotFound
}

func (b *Blob) CreateQuestion(ctx context.Context, f model.QuestionFields) (*model.TestQuestion, error) {
	var created *model.TestQuestion
	err := b.mutate(ctx, func(doc *blobDocument) error {
		doc.LastIDs.TestQuestions++
		q := model.TestQuestion{
			ID:            doc.LastIDs.TestQuestions,
			TestID:        f.TestID,
			Question:      f.Question,
			Options:       append([]string(nil), f.Options...),
			CorrectAnswer: f.CorrectAnswer,
			OrderIndex:    f.OrderIndex,
		}
		doc.TestQuestions = append(doc.TestQuestions, q)
		created = &q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (b *Blob) UpdateQuestion(ctx context.Context, id int64, p model.QuestionPatch) (*model.TestQuestion, error) {
	var updated *model.TestQuestion
	err := b.mutate(ctx, func(doc *blobDocument) error {
		for i := range doc.TestQuestions {
			if doc.TestQuestions[i].ID == id {
				p.Apply(&doc.TestQuestions[i])
				q := doc.TestQuestions[i]
				updated = &q
				return nil
			}
		}
		return common.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (b *Blob) DeleteQuestion(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := b.mutate(ctx, func(doc *blobDocument) error {
		for i, q := range doc.TestQuestions {
			if q.ID == id {
				doc.TestQuestions = append(doc.TestQuestions[:i], doc.TestQuestions[i+1:]...)
				deleted = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// --- results ---

func (b *Blob) ListResults(ctx context.Context, f ResultFilter) ([]model.TestResult, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.TestResult
	for _, r := range doc.TestResults {
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

func (b *Blob) GetResult(ctx context.Context, id int64) (*model.TestResult, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range doc.TestResults {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, common.ErrNotFound
}

func (b *Blob) CreateResult(ctx context.Context, f model.ResultFields) (*model.TestResult, error) {
	var created *model.TestResult
	err := b.mutate(ctx, func(doc *blobDocument) error {
		doc.LastIDs.TestResults++
		r := model.TestResult{
			ID:             doc.LastIDs.TestResults,
			UserID:         f.UserID,
			TestID:         f.TestID,
			Score:          f.Score,
			TotalQuestions: f.TotalQuestions,
			Answers:        append([]int(nil), f.Answers...),
			CreatedAt:      time.Now().UTC(),
		}
		doc.TestResults = append(doc.TestResults, r)
		created = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
