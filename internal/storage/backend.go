package storage

import (
	"context"

	"coursehub/internal/domain/model"
)

// Backend is the polymorphic storage contract. Every method may involve
// network or disk I/O and must classify failures: common.ErrNotFound for
// absent records, common.ErrConflict for unique-field collisions, and
// common.ErrBackendUnavailable for connectivity problems (which the
// fallback resolver treats as a signal to try the next backend).
type Backend interface {
	Name() string
	Ping(ctx context.Context) error
	// Seed replaces the backend's contents with the given dataset.
	// Used by the migrate-data operational endpoint.
	Seed(ctx context.Context, ds *Dataset) error

	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, nu model.NewUser) (*model.User, error)

	ListCourses(ctx context.Context) ([]model.Course, error)
	GetCourse(ctx context.Context, id int64) (*model.Course, error)
	CreateCourse(ctx context.Context, f model.CourseFields) (*model.Course, error)
	UpdateCourse(ctx context.Context, id int64, p model.CoursePatch) (*model.Course, error)
	DeleteCourse(ctx context.Context, id int64) (bool, error)

	ListLessons(ctx context.Context, f LessonFilter) ([]model.Lesson, error)
	GetLesson(ctx context.Context, id int64) (*model.Lesson, error)
	CreateLesson(ctx context.Context, f model.LessonFields) (*model.Lesson, error)
	UpdateLesson(ctx context.Context, id int64, p model.LessonPatch) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, id int64) (bool, error)

	ListTests(ctx context.Context, f TestFilter) ([]model.Test, error)
	GetTest(ctx context.Context, id int64) (*model.Test, error)
	CreateTest(ctx context.Context, f model.TestFields) (*model.Test, error)
	UpdateTest(ctx context.Context, id int64, p model.TestPatch) (*model.Test, error)
	DeleteTest(ctx context.Context, id int64) (bool, error)

	ListQuestions(ctx context.Context, testID int64) ([]model.TestQuestion, error)
	GetQuestion(ctx context.Context, id int64) (*model.TestQuestion, error)
	CreateQuestion(ctx context.Context, f model.QuestionFields) (*model.TestQuestion, error)
	UpdateQuestion(ctx context.Context, id int64, p model.QuestionPatch) (*model.TestQuestion, error)
	DeleteQuestion(ctx context.Context, id int64) (bool, error)

	ListResults(ctx context.Context, f ResultFilter) ([]model.TestResult, error)
	GetResult(ctx context.Context, id int64) (*model.TestResult, error)
	CreateResult(ctx context.Context, f model.ResultFields) (*model.TestResult, error)
}

type LessonFilter struct {
	CourseID *int64
}

type TestFilter struct {
	CourseID *int64
}

type ResultFilter struct {
	TestID *int64
	UserID *int64
}

// Dataset is the whole-database snapshot moved between backends by
// seeding/migration, and the in-memory representation of the local store.
type Dataset struct {
	Users         []model.User
	Courses       []model.Course
	Lessons       []model.Lesson
	Tests         []model.Test
	TestQuestions []model.TestQuestion
	TestResults   []model.TestResult
	LastIDs       LastIDs
}

// LastIDs tracks the highest id handed out per entity family, so
// document-style backends never reuse ids after deletes.
type LastIDs struct {
	Users         int64 `json:"users"`
	Courses       int64 `json:"courses"`
	Lessons       int64 `json:"lessons"`
	Tests         int64 `json:"tests"`
	TestQuestions int64 `json:"test_questions"`
	TestResults   int64 `json:"test_results"`
}

// Clone deep-copies the dataset so backends never alias fixture slices.
func (ds *Dataset) Clone() *Dataset {
	out := &Dataset{
		Users:         append([]model.User(nil), ds.Users...),
		Courses:       append([]model.Course(nil), ds.Courses...),
		Lessons:       append([]model.Lesson(nil), ds.Lessons...),
		Tests:         append([]model.Test(nil), ds.Tests...),
		TestQuestions: make([]model.TestQuestion, len(ds.TestQuestions)),
		TestResults:   make([]model.TestResult, len(ds.TestResults)),
		LastIDs:       ds.LastIDs,
	}
	for i, q := range ds.TestQuestions {
		q.Options = append([]string(nil), q.Options...)
		out.TestQuestions[i] = q
	}
	for i, r := range ds.TestResults {
		r.Answers = append([]int(nil), r.Answers...)
		out.TestResults[i] = r
	}
	return out
}
