// Package notes routes note CRUD to the guest session or the durable store
// depending on who is asking, and migrates guest notes into an account.
package notes

import (
	"context"
	"errors"

	"notepad/internal/models"
	"notepad/internal/session"
	"notepad/internal/store"
)

// ErrNotFound is returned when the target note does not exist or belongs to
// someone else.
var ErrNotFound = store.ErrNotFound

// Backend is the storage-agnostic note contract used by the HTTP layer.
type Backend interface {
	List(ctx context.Context) ([]models.Entry, error)
	Create(ctx context.Context, title, content string) (models.Entry, error)
	Update(ctx context.Context, id, title, content string) (models.Entry, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// For picks the backend for a request. A nil identity means guest; the
// session is only consulted in that case.
func (s *Service) For(id *models.Identity, sess *session.Session) (Backend, error) {
	if id != nil {
		return &durableBackend{store: s.store, ownerID: id.ID}, nil
	}
	if sess == nil {
		return nil, errors.New("guest request without session")
	}
	return &guestBackend{sess: sess}, nil
}

// Status reports the auth state and how many guest notes the session holds.
func (s *Service) Status(id *models.Identity, sess *session.Session) models.UserStatus {
	if id != nil {
		return models.UserStatus{Authenticated: true, User: id}
	}
	count := 0
	if sess != nil {
		count = len(sess.Notes)
	}
	return models.UserStatus{GuestNotes: count}
}
