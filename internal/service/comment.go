package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"bugTracker/models"
	"bugTracker/repository"
)

// ValidateCreateComment turns a raw body into a CreateComment or a ValidationError.
func ValidateCreateComment(raw Raw) (models.CreateComment, error) {
	if raw == nil {
		return models.CreateComment{}, invalid("missing request body")
	}
	if missing(raw, "BugID", "UserID", "CommentText") {
		return models.CreateComment{}, invalid("missing fields")
	}
	bugID, ok1 := asID(raw["BugID"])
	userID, ok2 := asID(raw["UserID"])
	text, ok3 := asString(raw["CommentText"])
	if !ok1 || !ok2 || !ok3 {
		return models.CreateComment{}, invalid("invalid types")
	}
	text, ok := requiredText(text)
	if !ok {
		return models.CreateComment{}, invalid("empty text")
	}
	return models.CreateComment{BugID: bugID, UserID: userID, CommentText: text}, nil
}

// ValidateUpdateComment turns a raw partial body into an UpdateComment.
func ValidateUpdateComment(raw Raw) (models.UpdateComment, error) {
	if len(raw) == 0 {
		return models.UpdateComment{}, invalid("no update data")
	}
	var u models.UpdateComment
	if v, present := raw["CommentText"]; present {
		text, ok := requiredText(v)
		if !ok {
			return models.UpdateComment{}, invalid("invalid text")
		}
		u.CommentText = &text
	}
	return u, nil
}

// CommentService validates comment writes and checks that the bug and author exist.
type CommentService struct {
	tx       Transactor
	comments repository.CommentRepositoryI
	bugs     bugLookup
	users    userLookup
	log      logrus.FieldLogger
}

func NewCommentService(tx Transactor, comments repository.CommentRepositoryI, bugs repository.BugRepositoryI, users repository.UserRepositoryI, log logrus.FieldLogger) *CommentService {
	return &CommentService{tx: tx, comments: comments, bugs: bugs, users: users, log: componentLogger(log, "comments")}
}

// Create validates raw, checks the referenced bug and user, and inserts the
// comment. The checks and the insert share one transaction.
func (s *CommentService) Create(ctx context.Context, raw Raw) (*models.Comment, error) {
	in, err := ValidateCreateComment(raw)
	if err != nil {
		rejected(s.log, "create", err)
		return nil, err
	}
	var out *models.Comment
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := requireBug(ctx, s.bugs, in.BugID); err != nil {
			return err
		}
		if err := requireUser(ctx, s.users, in.UserID); err != nil {
			return err
		}
		out, err = s.comments.Create(ctx, in)
		return err
	})
	if err != nil {
		rejected(s.log, "create", err)
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"comment_id": out.ID, "bug_id": out.BugID}).Debug("comment created")
	return out, nil
}

// Update changes the text of a comment. A nil result means no comment has that id.
func (s *CommentService) Update(ctx context.Context, id int64, raw Raw) (*models.Comment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	u, err := ValidateUpdateComment(raw)
	if err != nil {
		rejected(s.log, "update", err)
		return nil, err
	}
	out, err := s.comments.Update(ctx, id, u)
	if err != nil {
		err = noFields(err)
		rejected(s.log, "update", err)
		return nil, err
	}
	return out, nil
}

func (s *CommentService) Delete(ctx context.Context, id int64) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	return s.comments.Delete(ctx, id)
}

func (s *CommentService) Get(ctx context.Context, id int64) (*models.Comment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, id)
}

// ListByBug returns a bug's comments oldest first. An unknown bug yields an empty list.
func (s *CommentService) ListByBug(ctx context.Context, bugID int64) ([]models.Comment, error) {
	if err := checkID(bugID); err != nil {
		return nil, err
	}
	return s.comments.ListByBug(ctx, bugID)
}

func (s *CommentService) ListByUser(ctx context.Context, userID int64) ([]models.Comment, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	return s.comments.ListByUser(ctx, userID)
}

func (s *CommentService) List(ctx context.Context) ([]models.Comment, error) {
	return s.comments.List(ctx)
}

// DeleteByBug removes every comment on a bug and returns the count.
func (s *CommentService) DeleteByBug(ctx context.Context, bugID int64) (int64, error) {
	if err := checkID(bugID); err != nil {
		return 0, err
	}
	n, err := s.comments.DeleteByBug(ctx, bugID)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"bug_id": bugID, "deleted": n}).Debug("comments deleted by bug")
	return n, nil
}
