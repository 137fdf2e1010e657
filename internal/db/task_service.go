package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/balkashynov/taskpilot/internal/models"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrInvalidTask = errors.New("invalid task")
	ErrDuplicateID = errors.New("task id already exists")
)

// Mutation operations reported to the Recorder
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpRestore = "restore"
	OpSeed    = "seed"
)

// Recorder observes successful mutations
type Recorder interface {
	ObserveMutation(op string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveMutation(string) {}

// TaskStore owns the task collection. Tasks are changed only through
// its methods; callers receive copies.
type TaskStore struct {
	db       *gorm.DB
	now      func() time.Time
	log      zerolog.Logger
	recorder Recorder
}

type Option func(*TaskStore)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) { s.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *TaskStore) { s.log = log.With().Str("component", "task_store").Logger() }
}

func WithRecorder(r Recorder) Option {
	return func(s *TaskStore) { s.recorder = r }
}

func NewTaskStore(db *gorm.DB, opts ...Option) *TaskStore {
	s := &TaskStore{
		db:       db,
		now:      time.Now,
		log:      zerolog.Nop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TaskQueryOptions filters and sorts List results; zero values mean "any"
type TaskQueryOptions struct {
	Status   models.Status
	Priority models.Priority
	Search   string
	SortBy   string // "created" (default) or "due"
}

const (
	SortCreated = "created"
	SortDue     = "due"
)

// Create stores a new task built from draft. Status and priority must
// already be set; use Draft.WithDefaults for chat-created drafts.
func (s *TaskStore) Create(ctx context.Context, draft models.Draft) (models.Task, error) {
	task, err := s.newTask(draft)
	if err != nil {
		return models.Task{}, err
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.recorder.ObserveMutation(OpCreate)
	s.log.Debug().Str("task_id", task.ID).Str("title", task.Title).Msg("created task")
	return task, nil
}

// CreateMany stores one task per draft in a single transaction. If any
// draft is invalid or fails to insert, no task is stored.
func (s *TaskStore) CreateMany(ctx context.Context, drafts []models.Draft) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(drafts))
	for i, draft := range drafts {
		task, err := s.newTask(draft)
		if err != nil {
			return nil, fmt.Errorf("draft %d: %w", i+1, err)
		}
		tasks = append(tasks, task)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range tasks {
			if err := tx.Create(&tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks: %w", err)
	}

	for _, task := range tasks {
		s.recorder.ObserveMutation(OpCreate)
		s.log.Debug().Str("task_id", task.ID).Str("title", task.Title).Msg("created task")
	}
	return tasks, nil
}

func (s *TaskStore) newTask(draft models.Draft) (models.Task, error) {
	now := s.now()
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     draft.DueDate,
	}
	if !task.Valid() {
		return models.Task{}, fmt.Errorf("%w: title, status and priority are required", ErrInvalidTask)
	}
	return task, nil
}

// Update merges fields into the task with id and refreshes UpdatedAt.
// A missing id is a no-op reported as ErrNotFound.
func (s *TaskStore) Update(ctx context.Context, id string, fields models.TaskFields) (models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = findTask(tx, id)
		if err != nil {
			return err
		}

		fields.Apply(&task)
		task.Title = strings.TrimSpace(task.Title)
		if !task.Valid() {
			return fmt.Errorf("%w: update would leave task %s without a title, status or priority", ErrInvalidTask, id)
		}
		task.UpdatedAt = s.advance(task.UpdatedAt)

		return tx.Save(&task).Error
	})
	if err != nil {
		return models.Task{}, wrapErr("update", id, err)
	}

	s.recorder.ObserveMutation(OpUpdate)
	s.log.Debug().Str("task_id", id).Strs("changes", fields.Changes()).Msg("updated task")
	return task, nil
}

// Delete removes the task with id and returns its last state so the
// caller can restore it
func (s *TaskStore) Delete(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = findTask(tx, id)
		if err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Task{}).Error
	})
	if err != nil {
		return models.Task{}, wrapErr("delete", id, err)
	}

	s.recorder.ObserveMutation(OpDelete)
	s.log.Debug().Str("task_id", id).Msg("deleted task")
	return task, nil
}

// Restore reinserts a deleted task under its original ID and CreatedAt
func (s *TaskStore) Restore(ctx context.Context, snapshot models.Task) (models.Task, error) {
	if !snapshot.Valid() || snapshot.ID == "" {
		return models.Task{}, fmt.Errorf("%w: snapshot is incomplete", ErrInvalidTask)
	}

	task := snapshot
	task.UpdatedAt = s.advance(snapshot.UpdatedAt)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findTask(tx, task.ID); err == nil {
			return ErrDuplicateID
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		return models.Task{}, wrapErr("restore", task.ID, err)
	}

	s.recorder.ObserveMutation(OpRestore)
	s.log.Debug().Str("task_id", task.ID).Msg("restored task")
	return task, nil
}

// Find returns the task with id or ErrNotFound
func (s *TaskStore) Find(ctx context.Context, id string) (models.Task, error) {
	task, err := findTask(s.db.WithContext(ctx), id)
	if err != nil {
		return models.Task{}, wrapErr("find", id, err)
	}
	return task, nil
}

// List returns every task in insertion order
func (s *TaskStore) List(ctx context.Context) ([]models.Task, error) {
	return s.Query(ctx, TaskQueryOptions{})
}

// Query returns the tasks matching opts
func (s *TaskStore) Query(ctx context.Context, opts TaskQueryOptions) ([]models.Task, error) {
	query := s.db.WithContext(ctx).Model(&models.Task{})

	if opts.Status != models.StatusUnset {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.Priority != models.PriorityUnset {
		query = query.Where("priority = ?", opts.Priority)
	}
	if search := strings.ToLower(strings.TrimSpace(opts.Search)); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	switch opts.SortBy {
	case "", SortCreated:
		query = query.Order("rowid")
	case SortDue:
		// Newest due date first, undated tasks last
		query = query.Order("due_date IS NULL").Order("due_date DESC").Order("rowid")
	default:
		return nil, fmt.Errorf("unknown sort %q", opts.SortBy)
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// advance returns the current time, moved past prev if the clock has not
// advanced since, so UpdatedAt strictly increases on every mutation
func (s *TaskStore) advance(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func findTask(tx *gorm.DB, id string) (models.Task, error) {
	var task models.Task
	err := tx.Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func wrapErr(op, id string, err error) error {
	return fmt.Errorf("failed to %s task %s: %w", op, id, err)
}
