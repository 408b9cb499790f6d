package repository

import (
	"context"
	"fmt"
	"time"

	"bugTracker/internal/store"
	"bugTracker/models"
)

const commentColumns = `id, bug_id, user_id, comment_text, created_at`

// CommentRepository maps comment operations onto single parameterized statements.
type CommentRepository struct {
	gw store.Gateway
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(gw store.Gateway) *CommentRepository {
	return &CommentRepository{gw: gw}
}

// List returns every comment, newest first.
func (r *CommentRepository) List(ctx context.Context) ([]models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out := []models.Comment{}
	err := r.gw.Select(ctx, &out, `SELECT `+commentColumns+` FROM comments ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns the comment with the given id, or nil if there is none.
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var c models.Comment
	found, err := r.gw.Get(ctx, &c, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// ListByBug returns the comments on a bug in conversation order (oldest first).
func (r *CommentRepository) ListByBug(ctx context.Context, bugID int64) ([]models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out := []models.Comment{}
	err := r.gw.Select(ctx, &out, `SELECT `+commentColumns+` FROM comments WHERE bug_id = ? ORDER BY created_at ASC, id ASC`, bugID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns the comments written by a user, newest first.
func (r *CommentRepository) ListByUser(ctx context.Context, userID int64) ([]models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out := []models.Comment{}
	err := r.gw.Select(ctx, &out, `SELECT `+commentColumns+` FROM comments WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a comment and returns the stored row, including the
// server-assigned id and created_at.
func (r *CommentRepository) Create(ctx context.Context, c models.CreateComment) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out *models.Comment
	err := r.gw.InTx(ctx, func(ctx context.Context) error {
		id, err := r.gw.InsertID(ctx, `INSERT INTO comments (bug_id, user_id, comment_text) VALUES (?, ?, ?) RETURNING id`,
			c.BugID, c.UserID, c.CommentText)
		if err != nil {
			return err
		}
		out, err = r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if out == nil {
			return fmt.Errorf("created comment not found: id=%d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the fields present in u and returns the updated row,
// or nil if no comment has that id.
func (r *CommentRepository) Update(ctx context.Context, id int64, u models.UpdateComment) (*models.Comment, error) {
	var b setBuilder
	if u.CommentText != nil {
		b.set("comment_text", *u.CommentText)
	}
	query, args, err := b.build("comments", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var out *models.Comment
	err = r.gw.InTx(ctx, func(ctx context.Context) error {
		n, err := r.gw.Exec(ctx, query, args...)
		if err != nil || n == 0 {
			return err
		}
		out, err = r.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a comment by id and reports whether a row was removed.
func (r *CommentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	n, err := r.gw.Exec(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByBug removes every comment on a bug and returns how many were removed.
func (r *CommentRepository) DeleteByBug(ctx context.Context, bugID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.gw.Exec(ctx, `DELETE FROM comments WHERE bug_id = ?`, bugID)
}
