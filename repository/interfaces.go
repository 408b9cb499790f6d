package repository

import (
	"context"

	"bugTracker/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u models.CreateUser) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id int64, u models.UpdateUser) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// ProjectRepositoryI defines operations on Project entities.
type ProjectRepositoryI interface {
	List(ctx context.Context) ([]models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	ListByCreator(ctx context.Context, userID int64) ([]models.Project, error)
	Create(ctx context.Context, p models.CreateProject) (*models.Project, error)
	Update(ctx context.Context, id int64, u models.UpdateProject) (*models.Project, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// BugRepositoryI defines operations on Bug entities.
type BugRepositoryI interface {
	List(ctx context.Context) ([]models.Bug, error)
	GetByID(ctx context.Context, id int64) (*models.Bug, error)
	ListByProject(ctx context.Context, projectID int64) ([]models.Bug, error)
	ListByAssignee(ctx context.Context, userID int64) ([]models.Bug, error)
	ListByReporter(ctx context.Context, userID int64) ([]models.Bug, error)
	Create(ctx context.Context, b models.CreateBug) (*models.Bug, error)
	Update(ctx context.Context, id int64, u models.UpdateBug) (*models.Bug, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// CommentRepositoryI defines operations on Comment entities.
type CommentRepositoryI interface {
	List(ctx context.Context) ([]models.Comment, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByBug(ctx context.Context, bugID int64) ([]models.Comment, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Comment, error)
	Create(ctx context.Context, c models.CreateComment) (*models.Comment, error)
	Update(ctx context.Context, id int64, u models.UpdateComment) (*models.Comment, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteByBug(ctx context.Context, bugID int64) (int64, error)
}

var (
	_ UserRepositoryI    = (*UserRepository)(nil)
	_ ProjectRepositoryI = (*ProjectRepository)(nil)
	_ BugRepositoryI     = (*BugRepository)(nil)
	_ CommentRepositoryI = (*CommentRepository)(nil)
)
