package storage

import (
	"time"

	"coursehub/internal/common/security"
	"coursehub/internal/domain/model"
	"coursehub/internal/platform/config"
)

// Fixtures builds the seed dataset: the bootstrap admin account plus a
// small demo course set. It backs the local backend, the static
// read-only fallback at the end of the resolver chain, and the
// migrate-data endpoint.
func Fixtures() *Dataset {
	now := time.Now().UTC()
	adminHash, _ := security.HashPassword(config.AppConfig.SeedAdminPassword)
	demoHash, _ := security.HashPassword("student1")
	lessonTwoID := int64(2)

	return &Dataset{
		Users: []model.User{
			{
				ID:           1,
				Email:        config.AppConfig.SeedAdminEmail,
				Name:         "Administrator",
				PasswordHash: adminHash,
				IsAdmin:      true,
				CreatedAt:    now,
			},
			{
				ID:           2,
				Email:        "student@coursehub.local",
				Name:         "Demo Student",
				PasswordHash: demoHash,
				IsAdmin:      false,
				CreatedAt:    now,
			},
		},
		Courses: []model.Course{
			{
				ID:          1,
				Title:       "Platform Basics",
				Description: "Find your way around: navigation, courses, lessons and tests.",
				OrderIndex:  1,
				CreatedAt:   now,
			},
			{
				ID:          2,
				Title:       "Working with Tasks and Projects",
				Description: "Create tasks, delegate work and keep projects on track.",
				OrderIndex:  2,
				CreatedAt:   now,
			},
		},
		Lessons: []model.Lesson{
			{
				ID:         1,
				CourseID:   1,
				Title:      "Getting Started",
				Content:    "# Getting Started\n\nWelcome to the platform. This lesson walks through registration, your profile and the course catalog.",
				OrderIndex: 1,
				CreatedAt:  now,
			},
			{
				ID:         2,
				CourseID:   1,
				Title:      "Taking Tests",
				Content:    "# Taking Tests\n\nEach course can end with a test. Pick one answer per question; your score is saved to your history.",
				OrderIndex: 2,
				CreatedAt:  now,
			},
			{
				ID:         3,
				CourseID:   2,
				Title:      "Creating Your First Task",
				Content:    "# Creating Your First Task\n\nTasks have a title, a responsible person and a deadline. Projects group related tasks.",
				OrderIndex: 1,
				CreatedAt:  now,
			},
		},
		Tests: []model.Test{
			{
				ID:          1,
				CourseID:    1,
				LessonID:    &lessonTwoID,
				Title:       "Platform Basics Quiz",
				Description: "Check what you learned in the introductory course.",
				CreatedAt:   now,
			},
		},
		TestQuestions: []model.TestQuestion{
			{
				ID:            1,
				TestID:        1,
				Question:      "Where do you find the list of available courses?",
				Options:       []string{"In your profile settings", "On the course catalog page", "In the admin panel"},
				CorrectAnswer: 1,
				OrderIndex:    1,
			},
			{
				ID:            2,
				TestID:        1,
				Question:      "What happens after you submit a test?",
				Options:       []string{"Your score is saved to your history", "The course is deleted"},
				CorrectAnswer: 0,
				OrderIndex:    2,
			},
		},
		TestResults: []model.TestResult{},
		LastIDs: LastIDs{
			Users:         2,
			Courses:       2,
			Lessons:       3,
			Tests:         1,
			TestQuestions: 2,
			TestResults:   0,
		},
	}
}
