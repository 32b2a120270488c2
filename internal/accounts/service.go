package accounts

import (
	"context"
	"errors"
	"fmt"

	"notepad/internal/auth"
	"notepad/internal/models"
	"notepad/internal/notes"
	"notepad/internal/session"
	"notepad/internal/store"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already exists")
	// ErrAlreadyAuthenticated means a signed-in user tried to become a
	// different account without logging out first.
	ErrAlreadyAuthenticated = errors.New("already signed in as another account")
)

// ValidationError wraps request validation failures.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// AuthResult is what a successful login or registration hands back.
type AuthResult struct {
	User      models.Identity       `json:"user"`
	Token     string                `json:"token"`
	Migration notes.MigrationResult `json:"-"`
}

type Service struct {
	store    store.Store
	verifier *auth.Verifier
	migrator *notes.Migrator
	validate *validator.Validate
}

func NewService(s store.Store, verifier *auth.Verifier, migrator *notes.Migrator) *Service {
	return &Service{
		store:    s,
		verifier: verifier,
		migrator: migrator,
		validate: validator.New(),
	}
}

func (s *Service) Register(ctx context.Context, req CredentialsRequest, sess *session.Session) (*AuthResult, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Err: err}
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, req.Email, hashed)
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.complete(ctx, user, sess)
}

func (s *Service) Login(ctx context.Context, req CredentialsRequest, sess *session.Session) (*AuthResult, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, &ValidationError{Err: errors.New("email and password required")}
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.complete(ctx, user, sess)
}

// complete migrates guest notes before the credential is issued. Migration
// problems are reported in the result and never fail the flow.
func (s *Service) complete(ctx context.Context, user *models.User, sess *session.Session) (*AuthResult, error) {
	id := models.Identity{ID: user.ID, Email: user.Email}

	migration := s.migrator.Migrate(ctx, sess, user.ID)

	token, err := s.verifier.Issue(id)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: id, Token: token, Migration: migration}, nil
}

// CheckSwitch allows re-authenticating as the current account but refuses to
// change owner mid-session.
func CheckSwitch(current *models.Identity, email string, registering bool) error {
	if current == nil {
		return nil
	}
	if registering || current.Email != models.NormalizeEmail(email) {
		return ErrAlreadyAuthenticated
	}
	return nil
}
