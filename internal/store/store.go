package store

import (
	"context"
	"errors"
	"time"

	"notepad/internal/models"
)

var (
	// ErrNotFound is returned when a row is absent or owned by another account.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique column already holds the value.
	ErrConflict = errors.New("conflict")
)

// Store defines the interface for all database operations
type Store interface {
	// Users
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Notes. Every call is scoped by the owning user.
	CreateNote(ctx context.Context, userID int64, title, content string) (*models.Note, error)
	GetNotes(ctx context.Context, userID int64) ([]models.Note, error)
	SearchNotes(ctx context.Context, userID int64, query string) ([]models.Note, error)
	UpdateNote(ctx context.Context, noteID, userID int64, title, content string) (*models.Note, error)
	DeleteNote(ctx context.Context, noteID, userID int64) error

	// ImportNote inserts a note with the given timestamps unless the owner
	// already has a note with the same title and content. It reports whether
	// a row was inserted.
	ImportNote(ctx context.Context, userID int64, title, content string, createdAt, updatedAt time.Time) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}
