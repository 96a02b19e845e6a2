package models

import "time"

// Priority orders tasks from most to least pressing. Lower values sort first.
type Priority int

const (
	PriorityUrgent Priority = iota
	PriorityImportant
	PriorityNormal
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityImportant:
		return "important"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool {
	return p >= PriorityUrgent && p <= PriorityLow
}

// Status is the task lifecycle state. Overdue is system-driven: the
// reminder worker moves tasks there when their deadline passes.
type Status int

const (
	StatusTodo Status = iota
	StatusInProgress
	StatusDone
	StatusOverdue
)

func (s Status) String() string {
	switch s {
	case StatusTodo:
		return "todo"
	case StatusInProgress:
		return "in progress"
	case StatusDone:
		return "done"
	case StatusOverdue:
		return "overdue"
	}
	return "unknown"
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s >= StatusTodo && s <= StatusOverdue
}

// Category groups tasks. Non-custom categories are seeded at first run.
type Category struct {
	ID        int64
	Name      string
	Color     string
	IsCustom  bool
	CreatedAt time.Time
}

// DefaultCategoryID is the seeded "Uncategorized" category that tasks
// without a category (or with a dangling reference) resolve to.
const DefaultCategoryID int64 = 1

// Tag is a named label applied to tasks via a many-to-many relation.
type Tag struct {
	ID        int64
	Name      string
	Color     string
	CreatedAt time.Time
}

// Task is a single unit of work.
type Task struct {
	ID          int64
	Title       string
	Description string
	CategoryID  int64 // 0 means unset; reads resolve it to DefaultCategoryID
	Priority    Priority
	Status      Status
	StartTime   *time.Time
	Deadline    *time.Time
	RemindAt    *time.Time
	IsReminded  bool
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time // set exactly while Status == StatusDone
	Tags        []Tag      // populated when loading tasks
}

// Inspiration is a free-form note. Tags is a comma-joined free-text list,
// deliberately not normalized into the tag table.
type Inspiration struct {
	ID        int64
	Content   string
	Tags      string
	CreatedAt time.Time
	UpdatedAt time.Time
	IsDeleted bool
}

// CategoryCount is one row of a per-category aggregation.
type CategoryCount struct {
	CategoryID int64
	Name       string
	Count      int
}

// PriorityCount is one row of a per-priority aggregation.
type PriorityCount struct {
	Priority Priority
	Count    int
}

// StatusCount is one row of a per-status aggregation.
type StatusCount struct {
	Status Status
	Count  int
}

// TrendPoint is one bucket of a completion trend vector.
type TrendPoint struct {
	Start time.Time
	Count int
}

// Overview is the headline statistics block.
type Overview struct {
	Total              int
	Completed          int
	Overdue            int
	CompletionRate     float64 // completed/total*100, 0 when total is 0
	AvgCompletionHours float64
	InspirationCount   int
}
