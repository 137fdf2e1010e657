package models

import (
	"strings"
	"time"
)

// Status is the workflow state of a task
type Status string

const (
	StatusUnset      Status = "" // only valid on drafts
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusArchived   Status = "ARCHIVED"
)

// Statuses returns every persisted status in board column order
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted, StatusArchived}
}

// Valid reports whether s is a non-sentinel status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	default:
		return false
	}
}

// Label returns the display label used by the board and the chat transcript
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusArchived:
		return "Archived"
	default:
		return ""
	}
}

// ParseStatus accepts the key ("IN_PROGRESS"), the label ("In Progress") or
// any spacing/casing of the label ("in-progress", "inprogress")
func ParseStatus(input string) (Status, bool) {
	switch normalizeEnum(input) {
	case "PENDING", "TODO":
		return StatusPending, true
	case "IN_PROGRESS", "INPROGRESS":
		return StatusInProgress, true
	case "COMPLETED", "DONE":
		return StatusCompleted, true
	case "ARCHIVED":
		return StatusArchived, true
	default:
		return StatusUnset, false
	}
}

// Priority is the urgency of a task
type Priority string

const (
	PriorityUnset  Priority = "" // only valid on drafts
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Priorities returns every persisted priority from lowest to highest
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether p is a non-sentinel priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Label returns the display label ("Low", "Medium", "High")
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return ""
	}
}

// ParsePriority accepts keys, labels and the numeric 1/2/3 shorthand
func ParsePriority(input string) (Priority, bool) {
	switch normalizeEnum(input) {
	case "LOW", "1":
		return PriorityLow, true
	case "MEDIUM", "MED", "2":
		return PriorityMedium, true
	case "HIGH", "3":
		return PriorityHigh, true
	default:
		return PriorityUnset, false
	}
}

// normalizeEnum upper-cases and turns spaces/hyphens into underscores
func normalizeEnum(input string) string {
	input = strings.ToUpper(strings.TrimSpace(input))
	input = strings.Join(strings.Fields(input), "_")
	return strings.ReplaceAll(input, "-", "_")
}

// Task represents a tracked unit of work
type Task struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Status      Status     `gorm:"not null;index" json:"status"`
	Priority    Priority   `gorm:"not null" json:"priority"`
	CreatedAt   time.Time  `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime:false" json:"updatedAt"`
	DueDate     *time.Time `json:"dueDate"`
}

// Valid reports whether the task may be stored or shown in a list
func (t Task) Valid() bool {
	return strings.TrimSpace(t.Title) != "" && t.Status.Valid() && t.Priority.Valid()
}

// Draft holds the fields of a task that has not been created yet
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// WithDefaults fills unset status and priority with Pending/Medium
func (d Draft) WithDefaults() Draft {
	d.Title = strings.TrimSpace(d.Title)
	if d.Status == StatusUnset {
		d.Status = StatusPending
	}
	if d.Priority == PriorityUnset {
		d.Priority = PriorityMedium
	}
	return d
}

// DraftOf returns the draft that recreates t (used for undo by reinsertion)
func DraftOf(t Task) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
}
