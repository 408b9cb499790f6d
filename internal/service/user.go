package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"

	"bugTracker/models"
	"bugTracker/repository"
)

// MinPasswordLength is the shortest password accepted at registration or change.
const MinPasswordLength = 8

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// TokenIssuer signs a login token for a user.
type TokenIssuer interface {
	Issue(userID int64, username string, role models.UserRole) (string, error)
}

// Registration is a validated register request; Password is still plain text.
type Registration struct {
	Username string
	Email    string
	Password string
	Role     models.UserRole
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  *models.User `json:"User"`
	Token string       `json:"Token"`
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

func ValidateRegistration(raw Raw) (Registration, error) {
	if raw == nil {
		return Registration{}, invalid("missing request body")
	}
	if missing(raw, "Username", "Email", "Password") {
		return Registration{}, invalid("missing fields")
	}
	username, ok1 := asString(raw["Username"])
	email, ok2 := asString(raw["Email"])
	password, ok3 := asString(raw["Password"])
	if !ok1 || !ok2 || !ok3 {
		return Registration{}, invalid("invalid types")
	}
	r := Registration{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
		Role:     models.UserRoleDeveloper,
	}
	if r.Username == "" {
		return Registration{}, invalid("invalid username")
	}
	if !validEmail(r.Email) {
		return Registration{}, invalid("invalid email")
	}
	if len(r.Password) < MinPasswordLength {
		return Registration{}, invalid("password too short")
	}
	if v, present := raw["Role"]; present && v != nil {
		role, ok := asString(v)
		if !ok || !models.UserRole(role).Valid() {
			return Registration{}, invalid("invalid role")
		}
		r.Role = models.UserRole(role)
	}
	return r, nil
}

func ValidateUpdateUser(raw Raw) (models.UpdateUser, error) {
	if len(raw) == 0 {
		return models.UpdateUser{}, invalid("no update data")
	}
	var u models.UpdateUser
	if v, present := raw["Username"]; present {
		name, ok := requiredText(v)
		if !ok {
			return models.UpdateUser{}, invalid("invalid username")
		}
		u.Username = &name
	}
	if v, present := raw["Email"]; present {
		email, ok := requiredText(v)
		email = strings.ToLower(email)
		if !ok || !validEmail(email) {
			return models.UpdateUser{}, invalid("invalid email")
		}
		u.Email = &email
	}
	return u, nil
}

// UserService owns registration, login and profile maintenance.
type UserService struct {
	tx     Transactor
	users  repository.UserRepositoryI
	hasher Hasher
	tokens TokenIssuer
	log    logrus.FieldLogger
}

func NewUserService(tx Transactor, users repository.UserRepositoryI, hasher Hasher, tokens TokenIssuer, log logrus.FieldLogger) *UserService {
	return &UserService{tx: tx, users: users, hasher: hasher, tokens: tokens, log: componentLogger(log, "users")}
}

// Register creates a user after checking that the username and email are free.
func (s *UserService) Register(ctx context.Context, raw Raw) (*models.User, error) {
	in, err := ValidateRegistration(raw)
	if err != nil {
		rejected(s.log, "register", err)
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	var out *models.User
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.checkUnique(ctx, 0, &in.Username, &in.Email); err != nil {
			return err
		}
		out, err = s.users.Create(ctx, models.CreateUser{Username: in.Username, Email: in.Email, PasswordHash: hash, Role: in.Role})
		return err
	})
	if err != nil {
		rejected(s.log, "register", err)
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": out.ID, "username": out.Username}).Info("user registered")
	return out, nil
}

// checkUnique fails when username or email already belong to a user other than self.
func (s *UserService) checkUnique(ctx context.Context, self int64, username, email *string) error {
	if username != nil {
		u, err := s.users.GetByUsername(ctx, *username)
		if err != nil {
			return err
		}
		if u != nil && u.ID != self {
			return invalid("username already taken")
		}
	}
	if email != nil {
		u, err := s.users.GetByEmail(ctx, *email)
		if err != nil {
			return err
		}
		if u != nil && u.ID != self {
			return invalid("email already registered")
		}
	}
	return nil
}

// Login verifies credentials and returns the user with a signed token.
func (s *UserService) Login(ctx context.Context, raw Raw) (*LoginResult, error) {
	if raw == nil || missing(raw, "Username", "Password") {
		err := invalid("missing fields")
		rejected(s.log, "login", err)
		return nil, err
	}
	username, ok1 := asString(raw["Username"])
	password, ok2 := asString(raw["Password"])
	if !ok1 || !ok2 {
		return nil, invalid("invalid types")
	}
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.log.WithField("username", username).Info("login failed: unknown user")
		return nil, &AuthError{Reason: "invalid credentials"}
	}
	ok, err := s.hasher.Verify(u.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.WithField("user_id", u.ID).Info("login failed: bad password")
		return nil, &AuthError{Reason: "invalid credentials"}
	}
	token, err := s.tokens.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Token: token}, nil
}

// Get returns the user with the given id, or nil.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// Delete removes the account and reports whether it existed. The store refuses
// it while projects, bugs or comments still reference the user.
func (s *UserService) Delete(ctx context.Context, id int64) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	return s.users.Delete(ctx, id)
}

// UpdateProfile changes username and/or email, keeping both unique.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, raw Raw) (*models.User, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	u, err := ValidateUpdateUser(raw)
	if err != nil {
		rejected(s.log, "update_profile", err)
		return nil, err
	}
	var out *models.User
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.checkUnique(ctx, userID, u.Username, u.Email); err != nil {
			return err
		}
		out, err = s.users.Update(ctx, userID, u)
		return err
	})
	if err != nil {
		err = noFields(err)
		rejected(s.log, "update_profile", err)
		return nil, err
	}
	return out, nil
}

// ChangePassword replaces the password after verifying the current one.
// It reports false when the user does not exist.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, raw Raw) (bool, error) {
	if err := checkID(userID); err != nil {
		return false, err
	}
	if raw == nil || missing(raw, "CurrentPassword", "NewPassword") {
		return false, invalid("missing fields")
	}
	current, ok1 := asString(raw["CurrentPassword"])
	next, ok2 := asString(raw["NewPassword"])
	if !ok1 || !ok2 {
		return false, invalid("invalid types")
	}
	if len(next) < MinPasswordLength {
		return false, invalid("password too short")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return false, err
	}
	ok, err := s.hasher.Verify(u.PasswordHash, current)
	if err != nil {
		return false, err
	}
	if !ok {
		s.log.WithField("user_id", userID).Info("password change refused")
		return false, &AuthError{Reason: "current password is incorrect"}
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return false, err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}
