package models

import (
	"database/sql"
	"time"
)

// BugStatus is the workflow state of a bug.
type BugStatus string

const (
	BugStatusOpen       BugStatus = "open"
	BugStatusInProgress BugStatus = "in_progress"
	BugStatusResolved   BugStatus = "resolved"
	BugStatusClosed     BugStatus = "closed"
)

// Valid reports whether s is one of the workflow states.
func (s BugStatus) Valid() bool {
	switch s {
	case BugStatusOpen, BugStatusInProgress, BugStatusResolved, BugStatusClosed:
		return true
	}
	return false
}

// Bug is a tracked defect within a project.
// ReportedBy and AssignedTo reference users.id; AssignedTo is nullable.
type Bug struct {
	ID          int64     `db:"id" json:"BugID"`
	ProjectID   int64     `db:"project_id" json:"ProjectID"`
	Title       string    `db:"title" json:"Title"`
	Description *string   `db:"description" json:"Description"`
	Status      BugStatus `db:"status" json:"Status"`
	ReportedBy  int64     `db:"reported_by" json:"ReportedBy"`
	AssignedTo  *int64    `db:"assigned_to" json:"AssignedTo"`
	CreatedAt   time.Time `db:"created_at" json:"CreatedAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"UpdatedAt"`
}

// CreateBug holds the validated fields for a new bug.
type CreateBug struct {
	ProjectID   int64
	Title       string
	Description *string
	Status      BugStatus
	ReportedBy  int64
	AssignedTo  *int64
}

// UpdateBug is a partial update. AssignedTo with Valid=false unassigns the bug.
type UpdateBug struct {
	Title       *string
	Description *sql.NullString
	Status      *BugStatus
	AssignedTo  *sql.NullInt64
}
