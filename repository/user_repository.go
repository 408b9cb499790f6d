package repository

import (
	"context"
	"fmt"
	"time"

	"bugTracker/internal/store"
	"bugTracker/models"
)

const userColumns = `id, username, email, password_hash, role, created_at`

type UserRepository struct {
	gw store.Gateway
}

func NewUserRepository(gw store.Gateway) *UserRepository {
	return &UserRepository{gw: gw}
}

// Create inserts a new user. Role defaults to developer.
// Returns the created User with its generated ID.
func (r *UserRepository) Create(ctx context.Context, u models.CreateUser) (*models.User, error) {
	role := u.Role
	if role == "" {
		role = models.UserRoleDeveloper
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var out *models.User
	err := r.gw.InTx(ctx, func(ctx context.Context) error {
		id, err := r.gw.InsertID(ctx, `INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?) RETURNING id`,
			u.Username, u.Email, u.PasswordHash, string(role))
		if err != nil {
			return err
		}
		out, err = r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if out == nil {
			return fmt.Errorf("created user not found: id=%d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *UserRepository) getOne(ctx context.Context, cond string, arg any) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	found, err := r.gw.Get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE `+cond, arg)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

// List returns every user, newest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := []models.User{}
	err := r.gw.Select(ctx, &out, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the profile fields present in u. Returns nil if the user does not exist.
func (r *UserRepository) Update(ctx context.Context, id int64, u models.UpdateUser) (*models.User, error) {
	var b setBuilder
	if u.Username != nil {
		b.set("username", *u.Username)
	}
	if u.Email != nil {
		b.set("email", *u.Email)
	}
	query, args, err := b.build("users", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var out *models.User
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

// UpdatePassword replaces the stored hash and reports whether the user exists.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	n, err := r.gw.Exec(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a user by id. Projects, bugs or comments that still reference
// the user make the store refuse it.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	n, err := r.gw.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
