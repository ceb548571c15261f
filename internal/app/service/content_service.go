package service

import (
	"context"
	"errors"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/storage"
)

// ContentService owns course and lesson CRUD. Referential checks are
// done here because not every backend enforces foreign keys.
type ContentService struct {
	resolver *storage.Resolver
}

func NewContentService(resolver *storage.Resolver) *ContentService {
	return &ContentService{resolver: resolver}
}

func (s *ContentService) courseExists(ctx context.Context, id int64) error {
	_, err := storage.Read(ctx, s.resolver, "courses.get",
		func(ctx context.Context, b storage.Backend) (*model.Course, error) {
			return b.GetCourse(ctx, id)
		})
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("course %d does not exist: %w", id, common.ErrValidation)
	}
	return err
}

// --- courses ---

func (s *ContentService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return storage.Read(ctx, s.resolver, "courses.list",
		func(ctx context.Context, b storage.Backend) ([]model.Course, error) {
			return b.ListCourses(ctx)
		})
}

func (s *ContentService) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	return storage.Read(ctx, s.resolver, "courses.get",
		func(ctx context.Context, b storage.Backend) (*model.Course, error) {
			return b.GetCourse(ctx, id)
		})
}

func (s *ContentService) CreateCourse(ctx context.Context, f model.CourseFields) (*model.Course, error) {
	if f.Title == "" {
		return nil, fmt.Errorf("title is required: %w", common.ErrValidation)
	}
	return storage.Write(ctx, s.resolver, "courses.create",
		func(ctx context.Context, b storage.Backend) (*model.Course, error) {
			return b.CreateCourse(ctx, f)
		})
}

func (s *ContentService) UpdateCourse(ctx context.Context, id int64, p model.CoursePatch) (*model.Course, error) {
	if p.Title != nil && *p.Title == "" {
		return nil, fmt.Errorf("title cannot be empty: %w", common.ErrValidation)
	}
	return storage.Write(ctx, s.resolver, "courses.update",
		func(ctx context.Context, b storage.Backend) (*model.Course, error) {
			return b.UpdateCourse(ctx, id, p)
		})
}

func (s *ContentService) DeleteCourse(ctx context.Context, id int64) error {
	deleted, err := storage.Write(ctx, s.resolver, "courses.delete",
		func(ctx context.Context, b storage.Backend) (bool, error) {
			return b.DeleteCourse(ctx, id)
		})
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrNotFound
	}
	return nil
}

// --- lessons ---

func (s *ContentService) ListLessons(ctx context.Context, f storage.LessonFilter) ([]model.Lesson, error) {
	return storage.Read(ctx, s.resolver, "lessons.list",
		func(ctx context.Context, b storage.Backend) ([]model.Lesson, error) {
			return b.ListLessons(ctx, f)
		})
}

func (s *ContentService) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	return storage.Read(ctx, s.resolver, "lessons.get",
		func(ctx context.Context, b storage.Backend) (*model.Lesson, error) {
			return b.GetLesson(ctx, id)
		})
}

func (s *ContentService) CreateLesson(ctx context.Context, f model.LessonFields) (*model.Lesson, error) {
	if f.Title == "" || f.Content == "" {
		return nil, fmt.Errorf("title and content are required: %w", common.ErrValidation)
	}
	if f.CourseID == 0 {
		return nil, fmt.Errorf("course_id is required: %w", common.ErrValidation)
	}
	if err := s.courseExists(ctx, f.CourseID); err != nil {
		return nil, err
	}
	return storage.Write(ctx, s.resolver, "lessons.create",
		func(ctx context.Context, b storage.Backend) (*model.Lesson, error) {
			return b.CreateLesson(ctx, f)
		})
}

func (s *ContentService) UpdateLesson(ctx context.Context, id int64, p model.LessonPatch) (*model.Lesson, error) {
	if p.Title != nil && *p.Title == "" {
		return nil, fmt.Errorf("title cannot be empty: %w", common.ErrValidation)
	}
	if p.CourseID != nil {
		if err := s.courseExists(ctx, *p.CourseID); err != nil {
			return nil, err
		}
	}
	return storage.Write(ctx, s.resolver, "lessons.update",
		func(ctx context.Context, b storage.Backend) (*model.Lesson, error) {
			return b.UpdateLesson(ctx, id, p)
		})
}

func (s *ContentService) DeleteLesson(ctx context.Context, id int64) error {
	deleted, err := storage.Write(ctx, s.resolver, "lessons.delete",
		func(ctx context.Context, b storage.Backend) (bool, error) {
			return b.DeleteLesson(ctx, id)
		})
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrNotFound
	}
	return nil
}
