package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/balkashynov/taskpilot/internal/db"
	"github.com/balkashynov/taskpilot/internal/models"
)

var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrBusy          = errors.New("a message is already being processed")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Transcript replies
const (
	replyUpdateNotFound  = "I couldn't find a matching task to update."
	replyEmptyExtraction = "No valid updates found in your message."
	replyDeleteNotFound  = "No matching task found to delete."
	replyFailure         = "Sorry, something went wrong while processing your request. Please try again."
)

// State of a chat session. Completed and Failed are passed through on the
// way back to Idle; Result reports which one a submission ended in.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Kind says what a submission did
type Kind string

const (
	KindUpdated          Kind = "updated"
	KindDeleted          Kind = "deleted"
	KindCreated          Kind = "created"
	KindNotFound         Kind = "not_found"
	KindEmptyExtraction  Kind = "empty_extraction"
	KindClarification    Kind = "clarification"
	KindTransportFailure Kind = "transport_failure"
	KindStoreFailure     Kind = "store_failure"
)

// Result describes one finished submission
type Result struct {
	Intent  Intent             `json:"intent"`
	Outcome Outcome            `json:"outcome"`
	Kind    Kind               `json:"kind"`
	Reply   models.ChatMessage `json:"reply"`
	Tasks   []models.Task      `json:"tasks"`
}

// TaskStore is the part of the task store a session mutates
type TaskStore interface {
	CreateMany(ctx context.Context, drafts []models.Draft) ([]models.Task, error)
	Update(ctx context.Context, id string, fields models.TaskFields) (models.Task, error)
	Delete(ctx context.Context, id string) (models.Task, error)
	Restore(ctx context.Context, snapshot models.Task) (models.Task, error)
	List(ctx context.Context) ([]models.Task, error)
}

// Recorder observes finished submissions
type Recorder interface {
	ObserveSubmission(intent, outcome, kind string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSubmission(string, string, string, time.Duration) {}

// Session is one chat conversation. At most one submission is processed
// at a time; the lock is not held while the model or the store is working,
// so readers can observe the loading state.
type Session struct {
	id         string
	store      TaskStore
	classifier Classifier
	extractor  Extractor
	updater    Updater
	log        zerolog.Logger
	recorder   Recorder
	now        func() time.Time

	mu          sync.Mutex
	state       State
	messages    []models.ChatMessage
	input       string
	lastDeleted *models.Task
}

type Option func(*Session)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithUpdater replaces the keyword updater
func WithUpdater(u Updater) Option {
	return func(s *Session) { s.updater = u }
}

func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func NewSession(id string, store TaskStore, classifier Classifier, extractor Extractor, opts ...Option) *Session {
	s := &Session{
		id:         id,
		store:      store,
		classifier: classifier,
		extractor:  extractor,
		updater:    KeywordUpdater{},
		log:        zerolog.Nop(),
		recorder:   nopRecorder{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session_id", id).Logger()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Messages returns a copy of the transcript
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateSubmitting
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SetInput(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = value
}

func (s *Session) InputValue() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// CanUndo reports whether a chat deletion can be reverted
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDeleted != nil
}

// SubmitInput submits the current input value
func (s *Session) SubmitInput(ctx context.Context) (Result, error) {
	return s.Submit(ctx, s.InputValue())
}

// turn is the outcome of processing one message
type turn struct {
	kind    Kind
	failed  bool
	text    string
	tasks   []models.Task
	deleted *models.Task
}

// Submit processes one chat message. Blank input returns ErrEmptyMessage
// and a submission while another is in flight returns ErrBusy, both
// without touching the session. Every other failure is reported through
// the Result and the transcript, never as an error.
func (s *Session) Submit(ctx context.Context, message string) (Result, error) {
	message = strings.TrimSpace(message)

	s.mu.Lock()
	if message == "" {
		s.mu.Unlock()
		return Result{}, ErrEmptyMessage
	}
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return Result{}, ErrBusy
	}
	s.state = StateSubmitting
	s.appendLocked(models.RoleUser, message, nil)
	s.mu.Unlock()

	start := s.now()
	intent := s.classifier.Classify(ctx, message)
	t := s.process(ctx, intent, message)

	s.mu.Lock()
	reply := s.appendLocked(models.RoleAssistant, t.text, replyTasks(t))
	if t.deleted != nil {
		s.lastDeleted = t.deleted
	}
	outcome := OutcomeCompleted
	s.state = StateCompleted
	if t.failed {
		outcome = OutcomeFailed
		s.state = StateFailed
	}
	s.input = ""
	s.state = StateIdle
	s.mu.Unlock()

	s.recorder.ObserveSubmission(intent.String(), string(outcome), string(t.kind), s.now().Sub(start))
	s.log.Info().
		Str("intent", intent.String()).
		Str("outcome", string(outcome)).
		Str("kind", string(t.kind)).
		Int("tasks", len(t.tasks)).
		Msg("processed chat message")

	return Result{
		Intent:  intent,
		Outcome: outcome,
		Kind:    t.kind,
		Reply:   reply,
		Tasks:   t.tasks,
	}, nil
}

// Undo restores the task removed by the last chat deletion. It can be
// used once per deletion.
func (s *Session) Undo(ctx context.Context) (models.Task, error) {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return models.Task{}, ErrBusy
	}
	if s.lastDeleted == nil {
		s.mu.Unlock()
		return models.Task{}, ErrNothingToUndo
	}
	snapshot := *s.lastDeleted
	s.lastDeleted = nil
	s.state = StateSubmitting
	s.mu.Unlock()

	restored, err := s.store.Restore(ctx, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	if err != nil {
		// A task with the same ID is back already; there is nothing left to restore
		if !errors.Is(err, db.ErrDuplicateID) {
			s.lastDeleted = &snapshot
		}
		s.log.Error().Err(err).Str("task_id", snapshot.ID).Msg("failed to restore task")
		return models.Task{}, fmt.Errorf("failed to undo deletion: %w", err)
	}

	s.appendLocked(models.RoleAssistant, fmt.Sprintf("Restored task %q.", restored.Title), nil)
	s.log.Info().Str("task_id", restored.ID).Msg("restored deleted task")
	return restored, nil
}

func (s *Session) process(ctx context.Context, intent Intent, message string) turn {
	switch intent {
	case IntentUpdate:
		return s.update(ctx, message)
	case IntentDelete:
		return s.delete(ctx, message)
	case IntentNone, IntentCreate:
		return s.create(ctx, message)
	default:
		s.log.Error().Str("intent", intent.String()).Msg("unhandled intent")
		return turn{kind: KindTransportFailure, failed: true, text: replyFailure}
	}
}

func (s *Session) update(ctx context.Context, message string) turn {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return s.storeFailure(err)
	}

	target, fields, ok := s.updater.ResolveUpdate(ctx, message, tasks)
	if !ok {
		return turn{kind: KindNotFound, text: replyUpdateNotFound}
	}
	if fields.IsEmpty() {
		return turn{kind: KindEmptyExtraction, text: replyEmptyExtraction}
	}

	updated, err := s.store.Update(ctx, target.ID, fields)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return turn{kind: KindNotFound, text: replyUpdateNotFound}
	case errors.Is(err, db.ErrInvalidTask):
		return turn{kind: KindEmptyExtraction, text: replyEmptyExtraction}
	case err != nil:
		return s.storeFailure(err)
	}

	return turn{
		kind:  KindUpdated,
		text:  fmt.Sprintf("Updated task %q: %s", updated.Title, strings.Join(fields.Changes(), ", ")),
		tasks: []models.Task{updated},
	}
}

func (s *Session) delete(ctx context.Context, message string) turn {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return s.storeFailure(err)
	}

	target, ok := Resolve(message, tasks)
	if !ok {
		return turn{kind: KindNotFound, text: replyDeleteNotFound}
	}

	snapshot, err := s.store.Delete(ctx, target.ID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return turn{kind: KindNotFound, text: replyDeleteNotFound}
	case err != nil:
		return s.storeFailure(err)
	}

	return turn{
		kind:    KindDeleted,
		text:    fmt.Sprintf("Deleted task %q. You can undo this once.", snapshot.Title),
		tasks:   []models.Task{snapshot},
		deleted: &snapshot,
	}
}

func (s *Session) create(ctx context.Context, message string) turn {
	extraction, err := s.extractor.Extract(ctx, message)
	if err != nil {
		s.log.Error().Err(err).Msg("task extraction failed")
		return turn{kind: KindTransportFailure, failed: true, text: replyFailure}
	}

	if len(extraction.Drafts) == 0 {
		return turn{kind: KindClarification, text: extraction.Text}
	}

	drafts := make([]models.Draft, 0, len(extraction.Drafts))
	for _, draft := range extraction.Drafts {
		drafts = append(drafts, draft.WithDefaults())
	}
	// All drafts are stored or none are
	created, err := s.store.CreateMany(ctx, drafts)
	if err != nil {
		return s.storeFailure(err)
	}

	text := extraction.Text
	if text == "" {
		text = fmt.Sprintf("Created %d task(s).", len(created))
	}
	return turn{kind: KindCreated, text: text, tasks: created}
}

func (s *Session) storeFailure(err error) turn {
	s.log.Error().Err(err).Msg("task store failure")
	return turn{kind: KindStoreFailure, failed: true, text: replyFailure}
}

// replyTasks returns the tasks rendered inline with the reply; only
// creation results carry them
func replyTasks(t turn) []models.Task {
	if len(t.tasks) == 0 || t.kind != KindCreated {
		return nil
	}
	return t.tasks
}

func (s *Session) appendLocked(role models.Role, content string, tasks []models.Task) models.ChatMessage {
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
		Tasks:     tasks,
	}
	s.messages = append(s.messages, msg)
	return msg
}
