package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/storage"
)

// TestService owns test and question CRUD plus result submission.
type TestService struct {
	resolver *storage.Resolver
}

func NewTestService(resolver *storage.Resolver) *TestService {
	return &TestService{resolver: resolver}
}

func validateQuestionShape(options []string, correctAnswer int) error {
	if len(options) < model.MinQuestionOptions || len(options) > model.MaxQuestionOptions {
		return fmt.Errorf("a question needs between %d and %d options: %w",
			model.MinQuestionOptions, model.MaxQuestionOptions, common.ErrValidation)
	}
	if correctAnswer < 0 || correctAnswer >= len(options) {
		return fmt.Errorf("correct_answer must index into options: %w", common.ErrValidation)
	}
	return nil
}

func (s *TestService) testExists(ctx context.Context, id int64) error {
	_, err := storage.Read(ctx, s.resolver, "tests.get",
		func(ctx context.Context, b storage.Backend) (*model.Test, error) {
			return b.GetTest(ctx, id)
		})
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("test %d does not exist: %w", id, common.ErrValidation)
	}
	return err
}

// --- tests ---

func (s *TestService) ListTests(ctx context.Context, f storage.TestFilter) ([]model.Test, error) {
	return storage.Read(ctx, s.resolver, "tests.list",
		func(ctx context.Context, b storage.Backend) ([]model.Test, error) {
			return b.ListTests(ctx, f)
		})
}

func (s *TestService) GetTest(ctx context.Context, id int64) (*model.Test, error) {
	return storage.Read(ctx, s.resolver, "tests.get",
		func(ctx context.Context, b storage.Backend) (*model.Test, error) {
			return b.GetTest(ctx, id)
		})
}

func (s *TestService) CreateTest(ctx context.Context, f model.TestFields) (*model.Test, error) {
	if f.Title == "" {
		return nil, fmt.Errorf("title is required: %w", common.ErrValidation)
	}
	if f.CourseID == 0 {
		return nil, fmt.Errorf("course_id is required: %w", common.ErrValidation)
	}
	if _, err := storage.Read(ctx, s.resolver, "courses.get",
		func(ctx context.Context, b storage.Backend) (*model.Course, error) {
			return b.GetCourse(ctx, f.CourseID)
		}); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("course %d does not exist: %w", f.CourseID, common.ErrValidation)
		}
		return nil, err
	}
	return storage.Write(ctx, s.resolver, "tests.create",
		func(ctx context.Context, b storage.Backend) (*model.Test, error) {
			return b.CreateTest(ctx, f)
		})
}

func (s *TestService) UpdateTest(ctx context.Context, id int64, p model.TestPatch) (*model.Test, error) {
	if p.Title != nil && *p.Title == "" {
		return nil, fmt.Errorf("title cannot be empty: %w", common.ErrValidation)
	}
	return storage.Write(ctx, s.resolver, "tests.update",
		func(ctx context.Context, b storage.Backend) (*model.Test, error) {
			return b.UpdateTest(ctx, id, p)
		})
}

func (s *TestService) DeleteTest(ctx context.Context, id int64) error {
	deleted, err := storage.Write(ctx, s.resolver, "tests.delete",
		func(ctx context.Context, b storage.Backend) (bool, error) {
			return b.DeleteTest(ctx, id)
		})
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrNotFound
	}
	return nil
}

// --- questions ---

func (s *TestService) ListQuestions(ctx context.Context, testID int64) ([]model.TestQuestion, error) {
	return storage.Read(ctx, s.resolver, "questions.list",
		func(ctx context.Context, b storage.Backend) ([]model.TestQuestion, error) {
			return b.ListQuestions(ctx, testID)
		})
}

func (s *TestService) GetQuestion(ctx context.Context, id int64) (*model.TestQuestion, error) {
	return storage.Read(ctx, s.resolver, "questions.get",
		func(ctx context.Context, b storage.Backend) (*model.TestQuestion, error) {
			return b.GetQuestion(ctx, id)
		})
}

func (s *TestService) CreateQuestion(ctx context.Context, f model.QuestionFields) (*model.TestQuestion, error) {
	if f.Question == "" {
		return nil, fmt.Errorf("question text is required: %w", common.ErrValidation)
	}
	if err := validateQuestionShape(f.Options, f.CorrectAnswer); err != nil {
		return nil, err
	}
	if err := s.testExists(ctx, f.TestID); err != nil {
		return nil, err
	}
	return storage.Write(ctx, s.resolver, "questions.create",
		func(ctx context.Context, b storage.Backend) (*model.TestQuestion, error) {
			return b.CreateQuestion(ctx, f)
		})
}

func (s *TestService) UpdateQuestion(ctx context.Context, id int64, p model.QuestionPatch) (*model.TestQuestion, error) {
	// The merged question must still be well-formed, so validate the
	// result of the patch, not its parts.
	current, err := s.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := *current
	p.Apply(&merged)
	if merged.Question == "" {
		return nil, fmt.Errorf("question text cannot be empty: %w", common.ErrValidation)
	}
	if err := validateQuestionShape(merged.Options, merged.CorrectAnswer); err != nil {
		return nil, err
	}
	return storage.Write(ctx, s.resolver, "questions.update",
		func(ctx context.Context, b storage.Backend) (*model.TestQuestion, error) {
			return b.UpdateQuestion(ctx, id, p)
		})
}

func (s *TestService) DeleteQuestion(ctx context.Context, id int64) error {
	deleted, err := storage.Write(ctx, s.resolver, "questions.delete",
		func(ctx context.Context, b storage.Backend) (bool, error) {
			return b.DeleteQuestion(ctx, id)
		})
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrNotFound
	}
	return nil
}

// --- results ---

type SubmitResultRequest struct {
	TestID  int64 `json:"test_id"`
	Answers []int `json:"answers"`
}

// SubmitResult grades the submission against the stored correct answers
// and persists the outcome. The score is a percentage computed
// server-side; clients never get to claim their own score.
func (s *TestService) SubmitResult(ctx context.Context, userID int64, req SubmitResultRequest) (*model.TestResult, error) {
	if req.TestID == 0 {
		return nil, fmt.Errorf("test_id is required: %w", common.ErrValidation)
	}
	questions, err := s.ListQuestions(ctx, req.TestID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("test %d has no questions: %w", req.TestID, common.ErrValidation)
	}
	if len(req.Answers) != len(questions) {
		return nil, fmt.Errorf("expected %d answers, got %d: %w", len(questions), len(req.Answers), common.ErrValidation)
	}

	correct := 0
	for i, q := range questions {
		if req.Answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	score := int(math.Round(float64(correct) / float64(len(questions)) * 100))

	return storage.Write(ctx, s.resolver, "results.create",
		func(ctx context.Context, b storage.Backend) (*model.TestResult, error) {
			return b.CreateResult(ctx, model.ResultFields{
				UserID:         userID,
				TestID:         req.TestID,
				Score:          score,
				TotalQuestions: len(questions),
				Answers:        req.Answers,
			})
		})
}

func (s *TestService) ListResults(ctx context.Context, f storage.ResultFilter) ([]model.TestResult, error) {
	return storage.Read(ctx, s.resolver, "results.list",
		func(ctx context.Context, b storage.Backend) ([]model.TestResult, error) {
			return b.ListResults(ctx, f)
		})
}

func (s *TestService) GetResult(ctx context.Context, id int64) (*model.TestResult, error) {
	return storage.Read(ctx, s.resolver, "results.get",
		func(ctx context.Context, b storage.Backend) (*model.TestResult, error) {
			return b.GetResult(ctx, id)
		})
}
