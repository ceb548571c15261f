package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

func testDataset() *Dataset {
	now := time.Now().UTC()
	return &Dataset{
		Users: []model.User{
			{ID: 1, Email: "admin@example.com", Name: "Admin", PasswordHash: "x", IsAdmin: true, CreatedAt: now},
		},
		Courses: []model.Course{
			{ID: 1, Title: "Course B", OrderIndex: 2, CreatedAt: now},
			{ID: 2, Title: "Course A", OrderIndex: 1, CreatedAt: now},
		},
		Lessons: []model.Lesson{
			{ID: 1, CourseID: 1, Title: "Second", Content: "b", OrderIndex: 2, CreatedAt: now},
			{ID: 2, CourseID: 1, Title: "First", Content: "a", OrderIndex: 1, CreatedAt: now},
			{ID: 3, CourseID: 2, Title: "Other", Content: "c", OrderIndex: 1, CreatedAt: now},
		},
		Tests: []model.Test{
			{ID: 1, CourseID: 1, Title: "Quiz", CreatedAt: now},
		},
		TestQuestions: []model.TestQuestion{
			{ID: 1, TestID: 1, Question: "Q1", Options: []string{"a", "b"}, CorrectAnswer: 1, OrderIndex: 1},
			{ID: 2, TestID: 1, Question: "Q2", Options: []string{"a", "b", "c"}, CorrectAnswer: 0, OrderIndex: 2},
		},
		TestResults: []model.TestResult{
			{ID: 1, UserID: 1, TestID: 1, Score: 50, TotalQuestions: 2, Answers: []int{1, 1}, CreatedAt: now},
		},
		LastIDs: LastIDs{Users: 1, Courses: 2, Lessons: 3, Tests: 1, TestQuestions: 2, TestResults: 1},
	}
}

func TestLocalSeedIsIsolated(t *testing.T) {
	seed := testDataset()
	l := NewLocal(seed)

	if _, err := l.CreateCourse(context.Background(), model.CourseFields{Title: "New"}); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if len(seed.Courses) != 2 {
		t.Errorf("seed dataset mutated: %d courses", len(seed.Courses))
	}
}

func TestLocalCourseRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(testDataset())

	created, err := l.CreateCourse(ctx, model.CourseFields{Title: "Go Basics", Description: "desc", OrderIndex: 3})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if created.ID != 3 {
		t.Errorf("new course id = %d, want 3", created.ID)
	}

	got, err := l.GetCourse(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	if got.Title != "Go Basics" || got.Description != "desc" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := l.GetCourse(ctx, 999); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing course: err = %v, want ErrNotFound", err)
	}
}

func TestLocalCourseOrdering(t *testing.T) {
	l := NewLocal(testDataset())
	courses, err := l.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(courses) != 2 || courses[0].Title != "Course A" || courses[1].Title != "Course B" {
		t.Errorf("courses not sorted by order_index: %+v", courses)
	}
}

func TestLocalLessonFilterAndOrdering(t *testing.T) {
	l := NewLocal(testDataset())
	courseID := int64(1)
	lessons, err := l.ListLessons(context.Background(), LessonFilter{CourseID: &courseID})
	if err != nil {
		t.Fatalf("ListLessons: %v", err)
	}
	if len(lessons) != 2 {
		t.Fatalf("got %d lessons, want 2", len(lessons))
	}
	if lessons[0].Title != "First" || lessons[1].Title != "Second" {
		t.Errorf("lessons not sorted by order_index: %+v", lessons)
	}
}

func TestLocalUpdateMergesPartialPatch(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(testDataset())

	newTitle := "Renamed"
	updated, err := l.UpdateCourse(ctx, 1, model.CoursePatch{Title: &newTitle})
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", updated.Title)
	}
	if updated.OrderIndex != 2 {
		t.Errorf("order_index changed by unrelated patch: %d", updated.OrderIndex)
	}

	if _, err := l.UpdateCourse(ctx, 999, model.CoursePatch{Title: &newTitle}); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("update of missing course: err = %v, want ErrNotFound", err)
	}
}

func TestLocalDeleteCourseCascades(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(testDataset())

	deleted, err := l.DeleteCourse(ctx, 1)
	if err != nil || !deleted {
		t.Fatalf("DeleteCourse = %v, %v", deleted, err)
	}

	courseID := int64(1)
	lessons, _ := l.ListLessons(ctx, LessonFilter{CourseID: &courseID})
	if len(lessons) != 0 {
		t.Errorf("lessons survived course delete: %+v", lessons)
	}
	if _, err := l.GetTest(ctx, 1); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("test survived course delete: err = %v", err)
	}
	questions, _ := l.ListQuestions(ctx, 1)
	if len(questions) != 0 {
		t.Errorf("questions survived course delete: %+v", questions)
	}
	results, _ := l.ListResults(ctx, ResultFilter{})
	if len(results) != 0 {
		t.Errorf("results survived course delete: %+v", results)
	}

	// The sibling course is untouched.
	if _, err := l.GetCourse(ctx, 2); err != nil {
		t.Errorf("unrelated course affected by delete: %v", err)
	}
}

func TestLocalDeleteTestCascades(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(testDataset())

	deleted, err := l.DeleteTest(ctx, 1)
	if err != nil || !deleted {
		t.Fatalf("DeleteTest = %v, %v", deleted, err)
	}
	questions, _ := l.ListQuestions(ctx, 1)
	if len(questions) != 0 {
		t.Errorf("questions survived test delete: %+v", questions)
	}
	results, _ := l.ListResults(ctx, ResultFilter{})
	if len(results) != 0 {
		t.Errorf("results survived test delete: %+v", results)
	}

	deleted, err = l.DeleteTest(ctx, 1)
	if err != nil || deleted {
		t.Errorf("second delete should report not found: %v, %v", deleted, err)
	}
}

func TestLocalEmailConflict(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(testDataset())

	_, err := l.CreateUser(ctx, model.NewUser{Email: "admin@example.com", Name: "Dup", PasswordHash: "y"})
	if !errors.Is(err, common.ErrConflict) {
		t.Errorf("duplicate email: err = %v, want ErrConflict", err)
	}

	u, err := l.CreateUser(ctx, model.NewUser{Email: "new@example.com", Name: "New", PasswordHash: "y"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID != 2 {
		t.Errorf("new user id = %d, want 2", u.ID)
	}
}

func TestLocalIDsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(testDataset())

	if _, err := l.DeleteCourse(ctx, 2); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	created, err := l.CreateCourse(ctx, model.CourseFields{Title: "After delete"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if created.ID != 3 {
		t.Errorf("id = %d, want 3 (ids must not be reused)", created.ID)
	}
}

func TestLocalResultFilters(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(testDataset())

	if _, err := l.CreateResult(ctx, model.ResultFields{UserID: 2, TestID: 1, Score: 100, TotalQuestions: 2, Answers: []int{1, 0}}); err != nil {
		t.Fatalf("CreateResult: %v", err)
	}

	userID := int64(2)
	results, err := l.ListResults(ctx, ResultFilter{UserID: &userID})
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(results) != 1 || results[0].UserID != 2 {
		t.Errorf("user filter failed: %+v", results)
	}

	testID := int64(1)
	results, err = l.ListResults(ctx, ResultFilter{TestID: &testID})
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("test filter: got %d results, want 2", len(results))
	}
}
