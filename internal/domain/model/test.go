package model

import "time"

// Test belongs to a course and optionally references a lesson.
// A course may own any number of tests.
type Test struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"course_id"`
	LessonID    *int64    `json:"lesson_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type TestFields struct {
	CourseID    int64  `json:"course_id"`
	LessonID    *int64 `json:"lesson_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type TestPatch struct {
	CourseID    *int64  `json:"course_id"`
	LessonID    *int64  `json:"lesson_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (p TestPatch) Apply(t *Test) {
	if p.CourseID != nil {
		t.CourseID = *p.CourseID
	}
	if p.LessonID != nil {
		t.LessonID = p.LessonID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
}
