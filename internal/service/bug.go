package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"bugTracker/models"
	"bugTracker/repository"
)

func ValidateCreateBug(raw Raw) (models.CreateBug, error) {
	if raw == nil {
		return models.CreateBug{}, invalid("missing request body")
	}
	if missing(raw, "ProjectID", "Title", "ReportedBy") {
		return models.CreateBug{}, invalid("missing fields")
	}
	projectID, ok1 := asID(raw["ProjectID"])
	title, ok2 := asString(raw["Title"])
	reportedBy, ok3 := asID(raw["ReportedBy"])
	desc, ok4 := nullableText(raw, "Description")
	assignee, ok5 := nullableID(raw, "AssignedTo")
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return models.CreateBug{}, invalid("invalid types")
	}
	title, ok := requiredText(title)
	if !ok {
		return models.CreateBug{}, invalid("empty title")
	}
	b := models.CreateBug{ProjectID: projectID, Title: title, ReportedBy: reportedBy, Status: models.BugStatusOpen}
	if v, present := raw["Status"]; present && v != nil {
		st, ok := asString(v)
		if !ok || !models.BugStatus(st).Valid() {
			return models.CreateBug{}, invalid("invalid status")
		}
		b.Status = models.BugStatus(st)
	}
	if desc != nil && desc.Valid {
		b.Description = &desc.String
	}
	if assignee != nil && assignee.Valid {
		b.AssignedTo = &assignee.Int64
	}
	return b, nil
}

func ValidateUpdateBug(raw Raw) (models.UpdateBug, error) {
	if len(raw) == 0 {
		return models.UpdateBug{}, invalid("no update data")
	}
	var u models.UpdateBug
	if v, present := raw["Title"]; present {
		title, ok := requiredText(v)
		if !ok {
			return models.UpdateBug{}, invalid("invalid title")
		}
		u.Title = &title
	}
	desc, ok := nullableText(raw, "Description")
	if !ok {
		return models.UpdateBug{}, invalid("invalid description")
	}
	u.Description = desc
	if v, present := raw["Status"]; present {
		st, ok := asString(v)
		if !ok || !models.BugStatus(st).Valid() {
			return models.UpdateBug{}, invalid("invalid status")
		}
		status := models.BugStatus(st)
		u.Status = &status
	}
	assignee, ok := nullableID(raw, "AssignedTo")
	if !ok {
		return models.UpdateBug{}, invalid("invalid assignee")
	}
	u.AssignedTo = assignee
	return u, nil
}

// BugService validates bug writes and checks the project, reporter and assignee.
type BugService struct {
	tx       Transactor
	bugs     repository.BugRepositoryI
	comments repository.CommentRepositoryI
	projects projectLookup
	users    userLookup
	log      logrus.FieldLogger
}

func NewBugService(tx Transactor, bugs repository.BugRepositoryI, comments repository.CommentRepositoryI, projects repository.ProjectRepositoryI, users repository.UserRepositoryI, log logrus.FieldLogger) *BugService {
	return &BugService{tx: tx, bugs: bugs, comments: comments, projects: projects, users: users, log: componentLogger(log, "bugs")}
}

func (s *BugService) Create(ctx context.Context, raw Raw) (*models.Bug, error) {
	in, err := ValidateCreateBug(raw)
	if err != nil {
		rejected(s.log, "create", err)
		return nil, err
	}
	var out *models.Bug
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := requireProject(ctx, s.projects, in.ProjectID); err != nil {
			return err
		}
		if err := requireUser(ctx, s.users, in.ReportedBy); err != nil {
			return err
		}
		if in.AssignedTo != nil {
			if err := requireUser(ctx, s.users, *in.AssignedTo); err != nil {
				return err
			}
		}
		out, err = s.bugs.Create(ctx, in)
		return err
	})
	if err != nil {
		rejected(s.log, "create", err)
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"bug_id": out.ID, "project_id": out.ProjectID}).Debug("bug created")
	return out, nil
}

// Update applies a partial update and refreshes UpdatedAt. A nil result means
// no bug has that id.
func (s *BugService) Update(ctx context.Context, id int64, raw Raw) (*models.Bug, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	u, err := ValidateUpdateBug(raw)
	if err != nil {
		rejected(s.log, "update", err)
		return nil, err
	}
	var out *models.Bug
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if u.AssignedTo != nil && u.AssignedTo.Valid {
			if err := requireUser(ctx, s.users, u.AssignedTo.Int64); err != nil {
				return err
			}
		}
		out, err = s.bugs.Update(ctx, id, u)
		return err
	})
	if err != nil {
		err = noFields(err)
		rejected(s.log, "update", err)
		return nil, err
	}
	return out, nil
}

// Delete removes a bug together with its comments.
func (s *BugService) Delete(ctx context.Context, id int64) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	var deleted bool
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := s.comments.DeleteByBug(ctx, id)
		if err != nil {
			return err
		}
		deleted, err = s.bugs.Delete(ctx, id)
		if err == nil && deleted {
			s.log.WithFields(logrus.Fields{"bug_id": id, "comments": n}).Debug("bug deleted")
		}
		return err
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *BugService) Get(ctx context.Context, id int64) (*models.Bug, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.bugs.GetByID(ctx, id)
}

func (s *BugService) List(ctx context.Context) ([]models.Bug, error) {
	return s.bugs.List(ctx)
}

func (s *BugService) ListByProject(ctx context.Context, projectID int64) ([]models.Bug, error) {
	if err := checkID(projectID); err != nil {
		return nil, err
	}
	return s.bugs.ListByProject(ctx, projectID)
}

func (s *BugService) ListByAssignee(ctx context.Context, userID int64) ([]models.Bug, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	return s.bugs.ListByAssignee(ctx, userID)
}

func (s *BugService) ListByReporter(ctx context.Context, userID int64) ([]models.Bug, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	return s.bugs.ListByReporter(ctx, userID)
}
