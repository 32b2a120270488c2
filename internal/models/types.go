package models

import (
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTitle   = "Untitled"
	DefaultContent = ""
)

// Entry is implemented by both note representations so list and mutation
// results can be returned from either backend.
type Entry interface {
	// Key is the note id in string form, as it appears in URLs and logs.
	Key() string
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity is the authenticated principal carried by a credential.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Note is a durable note owned by one account.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n Note) Key() string { return strconv.FormatInt(n.ID, 10) }

// GuestNote lives only in a browser session. Timestamps are ISO-8601 strings.
type GuestNote struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (n GuestNote) Key() string { return n.ID }

type UserStatus struct {
	Authenticated bool      `json:"authenticated"`
	User          *Identity `json:"user"`
	GuestNotes    int       `json:"guestNotes"`
}

// ApplyDefaults fills blank fields the way every create/update does.
func ApplyDefaults(title, content string) (string, string) {
	if title == "" {
		title = DefaultTitle
	}
	if content == "" {
		content = DefaultContent
	}
	return title, content
}
