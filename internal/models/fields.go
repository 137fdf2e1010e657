package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TaskFields is a partial set of task changes; nil fields are left
// untouched. ClearDueDate removes the due date and wins over DueDate.
type TaskFields struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Status       *Status    `json:"status,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
}

// IsEmpty reports whether no field is set
func (f TaskFields) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.Status == nil && f.Priority == nil && f.DueDate == nil && !f.ClearDueDate
}

// Apply merges the set fields into t
func (f TaskFields) Apply(t *Task) {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Status != nil {
		t.Status = *f.Status
	}
	if f.Priority != nil {
		t.Priority = *f.Priority
	}
	switch {
	case f.ClearDueDate:
		t.DueDate = nil
	case f.DueDate != nil:
		due := *f.DueDate
		t.DueDate = &due
	}
}

// Changes describes the set fields in a fixed order, e.g. `priority → High`
func (f TaskFields) Changes() []string {
	var changes []string
	if f.Title != nil {
		changes = append(changes, fmt.Sprintf("title → %q", *f.Title))
	}
	if f.Description != nil {
		changes = append(changes, fmt.Sprintf("description → %q", *f.Description))
	}
	if f.Status != nil {
		changes = append(changes, "status → "+f.Status.Label())
	}
	if f.Priority != nil {
		changes = append(changes, "priority → "+f.Priority.Label())
	}
	switch {
	case f.ClearDueDate:
		changes = append(changes, "due date → none")
	case f.DueDate != nil:
		changes = append(changes, "due date → "+f.DueDate.Format("02/01/2006"))
	}
	return changes
}

// UnmarshalJSON accepts keys and labels; "" decodes to the unset sentinel
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*s = StatusUnset
		return nil
	}
	parsed, ok := ParseStatus(raw)
	if !ok {
		return fmt.Errorf("invalid status %q", raw)
	}
	*s = parsed
	return nil
}

// UnmarshalJSON accepts keys, labels and 1/2/3; "" decodes to the unset sentinel
func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*p = PriorityUnset
		return nil
	}
	parsed, ok := ParsePriority(raw)
	if !ok {
		return fmt.Errorf("invalid priority %q", raw)
	}
	*p = parsed
	return nil
}
