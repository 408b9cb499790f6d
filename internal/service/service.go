// Package service holds the validation and referential-integrity rules of the
// tracker. Every write is validated into a typed command, its references are
// checked, and only then is it handed to a repository.
package service

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"bugTracker/models"
)

// Transactor runs fn inside a single store transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type userLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type projectLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Project, error)
}

type bugLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Bug, error)
}

func requireUser(ctx context.Context, users userLookup, id int64) error {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return refErr("user", id)
	}
	return nil
}

func requireProject(ctx context.Context, projects projectLookup, id int64) error {
	p, err := projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return refErr("project", id)
	}
	return nil
}

func requireBug(ctx context.Context, bugs bugLookup, id int64) error {
	b, err := bugs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return refErr("bug", id)
	}
	return nil
}

func componentLogger(log logrus.FieldLogger, name string) logrus.FieldLogger {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return log.WithField("component", name)
}

// rejected logs a caller error at Info; anything else was already logged by the store.
func rejected(log logrus.FieldLogger, op string, err error) {
	if IsCallerError(err) {
		log.WithError(err).WithField("op", op).Info("request rejected")
	}
}
