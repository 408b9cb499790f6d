package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"bugTracker/models"
	"bugTracker/repository"
)

func ValidateCreateProject(raw Raw) (models.CreateProject, error) {
	if raw == nil {
		return models.CreateProject{}, invalid("missing request body")
	}
	if missing(raw, "ProjectName", "CreatedBy") {
		return models.CreateProject{}, invalid("missing fields")
	}
	name, ok1 := asString(raw["ProjectName"])
	createdBy, ok2 := asID(raw["CreatedBy"])
	desc, ok3 := nullableText(raw, "Description")
	if !ok1 || !ok2 || !ok3 {
		return models.CreateProject{}, invalid("invalid types")
	}
	name, ok := requiredText(name)
	if !ok {
		return models.CreateProject{}, invalid("empty project name")
	}
	p := models.CreateProject{ProjectName: name, CreatedBy: createdBy}
	if desc != nil && desc.Valid {
		p.Description = &desc.String
	}
	return p, nil
}

func ValidateUpdateProject(raw Raw) (models.UpdateProject, error) {
	if len(raw) == 0 {
		return models.UpdateProject{}, invalid("no update data")
	}
	var u models.UpdateProject
	if v, present := raw["ProjectName"]; present {
		name, ok := requiredText(v)
		if !ok {
			return models.UpdateProject{}, invalid("invalid project name")
		}
		u.ProjectName = &name
	}
	desc, ok := nullableText(raw, "Description")
	if !ok {
		return models.UpdateProject{}, invalid("invalid description")
	}
	u.Description = desc
	return u, nil
}

// ProjectService validates project writes and checks that the creator exists.
type ProjectService struct {
	tx       Transactor
	projects repository.ProjectRepositoryI
	users    userLookup
	log      logrus.FieldLogger
}

func NewProjectService(tx Transactor, projects repository.ProjectRepositoryI, users repository.UserRepositoryI, log logrus.FieldLogger) *ProjectService {
	return &ProjectService{tx: tx, projects: projects, users: users, log: componentLogger(log, "projects")}
}

func (s *ProjectService) Create(ctx context.Context, raw Raw) (*models.Project, error) {
	in, err := ValidateCreateProject(raw)
	if err != nil {
		rejected(s.log, "create", err)
		return nil, err
	}
	var out *models.Project
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := requireUser(ctx, s.users, in.CreatedBy); err != nil {
			return err
		}
		out, err = s.projects.Create(ctx, in)
		return err
	})
	if err != nil {
		rejected(s.log, "create", err)
		return nil, err
	}
	s.log.WithField("project_id", out.ID).Debug("project created")
	return out, nil
}

// Update applies a partial update. A nil result means no project has that id.
func (s *ProjectService) Update(ctx context.Context, id int64, raw Raw) (*models.Project, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	u, err := ValidateUpdateProject(raw)
	if err != nil {
		rejected(s.log, "update", err)
		return nil, err
	}
	out, err := s.projects.Update(ctx, id, u)
	if err != nil {
		err = noFields(err)
		rejected(s.log, "update", err)
		return nil, err
	}
	return out, nil
}

// Delete removes a project. Projects that still own bugs are refused by the
// store's foreign keys and surface as a store failure.
func (s *ProjectService) Delete(ctx context.Context, id int64) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	return s.projects.Delete(ctx, id)
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.projects.GetByID(ctx, id)
}

func (s *ProjectService) ListByCreator(ctx context.Context, userID int64) ([]models.Project, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	return s.projects.ListByCreator(ctx, userID)
}

func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	return s.projects.List(ctx)
}
