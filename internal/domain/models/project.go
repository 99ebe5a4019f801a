package models

import (
	"time"
)

// ProjectStatus is the lifecycle state of a construction project.
// The canonical enumeration is English snake_case; older data sets used
// localized labels and must be migrated before import.
type ProjectStatus string

const (
	StatusActive     ProjectStatus = "active"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
)

// Valid reports whether s is one of the enumerated statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Project struct {
	ID          string        `json:"id" db:"id"`
	UserID      string        `json:"user_id" db:"user_id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Address     string        `json:"address" db:"address"`
	Status      ProjectStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// ProjectStats holds per-user aggregate status counts, recomputed on
// every call from the flat status list.
type ProjectStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
}
