package models

import (
	"database/sql"
	"time"
)

// Project groups bugs. CreatedBy references users.id.
type Project struct {
	ID          int64     `db:"id" json:"ProjectID"`
	ProjectName string    `db:"project_name" json:"ProjectName"`
	Description *string   `db:"description" json:"Description"`
	CreatedBy   int64     `db:"created_by" json:"CreatedBy"`
	CreatedAt   time.Time `db:"created_at" json:"CreatedAt"`
}

// CreateProject holds the validated fields for a new project.
type CreateProject struct {
	ProjectName string
	Description *string
	CreatedBy   int64
}

// UpdateProject is a partial update. A nil Description leaves the column alone;
// a non-nil invalid NullString clears it.
type UpdateProject struct {
	ProjectName *string
	Description *sql.NullString
}
