package models

import "time"

// Comment is a note left by a user on a bug. CreatedAt is assigned by the store.
type Comment struct {
	ID          int64     `db:"id" json:"CommentID"`
	BugID       int64     `db:"bug_id" json:"BugID"`
	UserID      int64     `db:"user_id" json:"UserID"`
	CommentText string    `db:"comment_text" json:"CommentText"`
	CreatedAt   time.Time `db:"created_at" json:"CreatedAt"`
}

// CreateComment holds the validated fields for a new comment.
type CreateComment struct {
	BugID       int64
	UserID      int64
	CommentText string
}

// UpdateComment is a partial update; a nil CommentText leaves the text unchanged.
type UpdateComment struct {
	CommentText *string
}
