package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notepad/internal/models"
)

const initialCounter = 1

var ErrNotFound = errors.New("session not found")

// Session is the per-browser guest state. Handlers mutate it in place and the
// middleware saves it after the request; concurrent tabs race last-write-wins.
type Session struct {
	ID            string             `json:"id"`
	Notes         []models.GuestNote `json:"notes"`
	NoteIDCounter int                `json:"note_id_counter"`
	ExpiresAt     time.Time          `json:"expires_at"`
}

func New(id string, ttl time.Duration) *Session {
	s := &Session{ID: id, ExpiresAt: time.Now().Add(ttl)}
	s.Reset()
	return s
}

// NextNoteID allocates the next session-local note id.
func (s *Session) NextNoteID() string {
	if s.NoteIDCounter < initialCounter {
		s.NoteIDCounter = initialCounter
	}
	id := s.NoteIDCounter
	s.NoteIDCounter = id + 1
	return fmt.Sprintf("guest_%d", id)
}

// Reset empties the note list and restarts the id counter.
func (s *Session) Reset() {
	s.Notes = []models.GuestNote{}
	s.NoteIDCounter = initialCounter
}

// Clone returns a deep copy so a stored session is not mutated through a
// request's handle.
func (s *Session) Clone() *Session {
	c := *s
	c.Notes = make([]models.GuestNote, len(s.Notes))
	copy(c.Notes, s.Notes)
	return &c
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store persists guest sessions between requests.
type Store interface {
	// Get returns ErrNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*Session, error)
	// Create allocates a fresh session with a new random id.
	Create(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type contextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session, or nil when none was attached.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
