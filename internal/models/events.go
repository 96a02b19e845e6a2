package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind classifies change notifications emitted by the background
// worker and consumed by the UI.
type EventKind string

const (
	EventTasksOverdue EventKind = "tasks_overdue"
	EventReminderDue  EventKind = "reminder_due"
)

// Event is a change notification. TaskID and Title are set for
// per-task events; Count for bulk ones.
type Event struct {
	ID     string
	Kind   EventKind
	TaskID int64
	Title  string
	Count  int
	At     time.Time
}

// NewEvent stamps a fresh event with an identifier and the current time.
func NewEvent(kind EventKind) Event {
	return Event{
		ID:   uuid.NewString(),
		Kind: kind,
		At:   time.Now(),
	}
}
