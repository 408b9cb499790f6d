package repository

import (
	"context"
	"fmt"
	"time"

	"bugTracker/internal/store"
	"bugTracker/models"
)

const bugColumns = `id, project_id, title, description, status, reported_by, assigned_to, created_at, updated_at`

type BugRepository struct {
	gw store.Gateway
}

func NewBugRepository(gw store.Gateway) *BugRepository {
	return &BugRepository{gw: gw}
}

func (r *BugRepository) List(ctx context.Context) ([]models.Bug, error) {
	return r.listWhere(ctx, "", nil)
}

func (r *BugRepository) GetByID(ctx context.Context, id int64) (*models.Bug, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var b models.Bug
	found, err := r.gw.Get(ctx, &b, `SELECT `+bugColumns+` FROM bugs WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &b, nil
}

func (r *BugRepository) ListByProject(ctx context.Context, projectID int64) ([]models.Bug, error) {
	return r.listWhere(ctx, "project_id = ?", projectID)
}

func (r *BugRepository) ListByAssignee(ctx context.Context, userID int64) ([]models.Bug, error) {
	return r.listWhere(ctx, "assigned_to = ?", userID)
}

func (r *BugRepository) ListByReporter(ctx context.Context, userID int64) ([]models.Bug, error) {
	return r.listWhere(ctx, "reported_by = ?", userID)
}

// listWhere returns bugs matching cond (empty for all), newest first.
func (r *BugRepository) listWhere(ctx context.Context, cond string, arg any) ([]models.Bug, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + bugColumns + ` FROM bugs`
	var args []any
	if cond != "" {
		query += " WHERE " + cond
		args = append(args, arg)
	}
	query += " ORDER BY created_at DESC, id DESC"

	out := []models.Bug{}
	if err := r.gw.Select(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a bug. An empty Status falls back to the column default.
func (r *BugRepository) Create(ctx context.Context, b models.CreateBug) (*models.Bug, error) {
	status := b.Status
	if status == "" {
		status = models.BugStatusOpen
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var out *models.Bug
	err := r.gw.InTx(ctx, func(ctx context.Context) error {
		id, err := r.gw.InsertID(ctx, `INSERT INTO bugs (project_id, title, description, status, reported_by, assigned_to) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
			b.ProjectID, b.Title, b.Description, string(status), b.ReportedBy, b.AssignedTo)
		if err != nil {
			return err
		}
		out, err = r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if out == nil {
			return fmt.Errorf("created bug not found: id=%d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update sets the fields present in u and refreshes updated_at.
// Returns nil if the bug does not exist.
func (r *BugRepository) Update(ctx context.Context, id int64, u models.UpdateBug) (*models.Bug, error) {
	var sb setBuilder
	if u.Title != nil {
		sb.set("title", *u.Title)
	}
	if u.Description != nil {
		sb.set("description", *u.Description)
	}
	if u.Status != nil {
		sb.set("status", string(*u.Status))
	}
	if u.AssignedTo != nil {
		sb.set("assigned_to", *u.AssignedTo)
	}
	if !sb.empty() {
		sb.setRaw("updated_at", "CURRENT_TIMESTAMP")
	}
	query, args, err := sb.build("bugs", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var out *models.Bug
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

func (r *BugRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	n, err := r.gw.Exec(ctx, `DELETE FROM bugs WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
