package repository

import (
	"context"
	"fmt"
	"time"

	"bugTracker/internal/store"
	"bugTracker/models"
)

const projectColumns = `id, project_name, description, created_by, created_at`

type ProjectRepository struct {
	gw store.Gateway
}

func NewProjectRepository(gw store.Gateway) *ProjectRepository {
	return &ProjectRepository{gw: gw}
}

func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out := []models.Project{}
	if err := r.gw.Select(ctx, &out, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var p models.Project
	found, err := r.gw.Get(ctx, &p, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// ListByCreator returns the projects created by a user, newest first.
func (r *ProjectRepository) ListByCreator(ctx context.Context, userID int64) ([]models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out := []models.Project{}
	err := r.gw.Select(ctx, &out, `SELECT `+projectColumns+` FROM projects WHERE created_by = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a project and reads it back so created_at is populated.
func (r *ProjectRepository) Create(ctx context.Context, p models.CreateProject) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out *models.Project
	err := r.gw.InTx(ctx, func(ctx context.Context) error {
		id, err := r.gw.InsertID(ctx, `INSERT INTO projects (project_name, description, created_by) VALUES (?, ?, ?) RETURNING id`,
			p.ProjectName, p.Description, p.CreatedBy)
		if err != nil {
			return err
		}
		out, err = r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if out == nil {
			return fmt.Errorf("created project not found: id=%d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update sets only the fields present in u. Returns nil if the project does not exist.
func (r *ProjectRepository) Update(ctx context.Context, id int64, u models.UpdateProject) (*models.Project, error) {
	var b setBuilder
	if u.ProjectName != nil {
		b.set("project_name", *u.ProjectName)
	}
	if u.Description != nil {
		b.set("description", *u.Description)
	}
	query, args, err := b.build("projects", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var out *models.Project
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

func (r *ProjectRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	n, err := r.gw.Exec(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
