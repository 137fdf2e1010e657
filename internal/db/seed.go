package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/balkashynov/taskpilot/internal/models"
	"github.com/balkashynov/taskpilot/internal/parser"
)

// Seed inserts tasks verbatim, keeping their IDs and timestamps
func (s *TaskStore) Seed(ctx context.Context, tasks []models.Task) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, task := range tasks {
			if !task.Valid() || task.ID == "" {
				return fmt.Errorf("%w: seed task %q", ErrInvalidTask, task.Title)
			}
			if _, err := findTask(tx, task.ID); err == nil {
				return fmt.Errorf("%w: %s", ErrDuplicateID, task.ID)
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed tasks: %w", err)
	}

	for range tasks {
		s.recorder.ObserveMutation(OpSeed)
	}
	s.log.Info().Int("count", len(tasks)).Msg("seeded tasks")
	return nil
}

// SampleTasks returns the demo data set with dates relative to now
func SampleTasks(now time.Time) []models.Task {
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }
	due := func(offset int) *time.Time {
		d := day(offset)
		return &d
	}

	return []models.Task{
		{ID: "1", Title: "Complete Project Proposal", Description: "Draft and finalize the project proposal for the new client including timeline and budget estimates.", Status: models.StatusInProgress, Priority: models.PriorityHigh, CreatedAt: day(-2), UpdatedAt: day(-1), DueDate: due(5)},
		{ID: "2", Title: "Weekly Team Meeting", Description: "Prepare agenda and host weekly team sync to discuss project progress and blockers.", Status: models.StatusPending, Priority: models.PriorityMedium, CreatedAt: day(-1), UpdatedAt: day(-1), DueDate: due(1)},
		{ID: "3", Title: "Code Review", Description: "Review pull requests for the authentication feature branch.", Status: models.StatusCompleted, Priority: models.PriorityHigh, CreatedAt: day(-3), UpdatedAt: day(0), DueDate: due(0)},
		{ID: "4", Title: "Update Documentation", Description: "Update API documentation with new endpoints and response formats.", Status: models.StatusArchived, Priority: models.PriorityLow, CreatedAt: day(-5), UpdatedAt: day(-2), DueDate: due(-1)},
		{ID: "5", Title: "Client Presentation", Description: "Prepare and deliver project progress presentation to the client.", Status: models.StatusPending, Priority: models.PriorityHigh, CreatedAt: day(-1), UpdatedAt: day(-1), DueDate: due(3)},
		{ID: "6", Title: "Bug Fix: Login Flow", Description: "Investigate and fix reported issues with the user login authentication process.", Status: models.StatusInProgress, Priority: models.PriorityHigh, CreatedAt: day(-1), UpdatedAt: day(0), DueDate: due(2)},
		{ID: "7", Title: "Performance Optimization", Description: "Analyze and optimize database queries for better application performance.", Status: models.StatusPending, Priority: models.PriorityMedium, CreatedAt: day(-2), UpdatedAt: day(-1), DueDate: due(4)},
		{ID: "8", Title: "User Testing Session", Description: "Conduct user testing session for the new feature release and gather feedback.", Status: models.StatusCompleted, Priority: models.PriorityMedium, CreatedAt: day(-4), UpdatedAt: day(-1), DueDate: due(-1)},
		{ID: "9", Title: "Security Audit", Description: "Perform security audit of the application and document potential vulnerabilities.", Status: models.StatusInProgress, Priority: models.PriorityHigh, CreatedAt: day(-3), UpdatedAt: day(0), DueDate: due(7)},
		{ID: "10", Title: "Email Template Design", Description: "Design and implement new responsive email templates for user notifications.", Status: models.StatusArchived, Priority: models.PriorityLow, CreatedAt: day(-7), UpdatedAt: day(-3), DueDate: due(-2)},
	}
}

// seedFile is the YAML layout of a seed file:
//
//	tasks:
//	  - id: "42"
//	    title: Write release notes
//	    status: in progress
//	    priority: high
//	    due: 3 days
type seedFile struct {
	Tasks []seedTask `yaml:"tasks"`
}

type seedTask struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Priority    string `yaml:"priority"`
	Due         string `yaml:"due"`
}

// LoadSeedFile reads tasks from a YAML seed file. Missing IDs are numbered
// by position, missing status/priority default to Pending/Medium and due
// dates use the chat due-date grammar.
func LoadSeedFile(path string, now time.Time) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	tasks := make([]models.Task, 0, len(file.Tasks))
	for i, entry := range file.Tasks {
		draft := models.Draft{Title: entry.Title, Description: entry.Description}
		if entry.Status != "" {
			status, ok := models.ParseStatus(entry.Status)
			if !ok {
				return nil, fmt.Errorf("seed task %d: invalid status %q", i+1, entry.Status)
			}
			draft.Status = status
		}
		if entry.Priority != "" {
			priority, ok := models.ParsePriority(entry.Priority)
			if !ok {
				return nil, fmt.Errorf("seed task %d: invalid priority %q", i+1, entry.Priority)
			}
			draft.Priority = priority
		}
		dueDate, err := parser.ParseDueDate(entry.Due)
		if err != nil {
			return nil, fmt.Errorf("seed task %d: %w", i+1, err)
		}
		draft.DueDate = dueDate
		draft = draft.WithDefaults()

		id := entry.ID
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		tasks = append(tasks, models.Task{
			ID:          id,
			Title:       draft.Title,
			Description: draft.Description,
			Status:      draft.Status,
			Priority:    draft.Priority,
			CreatedAt:   now,
			UpdatedAt:   now,
			DueDate:     draft.DueDate,
		})
	}
	return tasks, nil
}
