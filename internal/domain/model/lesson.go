package model

import "time"

type Lesson struct {
	ID         int64     `json:"id"`
	CourseID   int64     `json:"course_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"` // markdown
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

type LessonFields struct {
	CourseID   int64  `json:"course_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	OrderIndex int    `json:"order_index"`
}

type LessonPatch struct {
	CourseID   *int64  `json:"course_id"`
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	OrderIndex *int    `json:"order_index"`
}

func (p LessonPatch) Apply(l *Lesson) {
	if p.CourseID != nil {
		l.CourseID = *p.CourseID
	}
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Content != nil {
		l.Content = *p.Content
	}
	if p.OrderIndex != nil {
		l.OrderIndex = *p.OrderIndex
	}
}
