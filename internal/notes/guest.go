package notes

import (
	"context"
	"time"

	"notepad/internal/models"
	"notepad/internal/session"
)

type guestBackend struct {
	sess *session.Session
	now  func() time.Time
}

func (b *guestBackend) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

func (b *guestBackend) List(ctx context.Context) ([]models.Entry, error) {
	entries := make([]models.Entry, 0, len(b.sess.Notes))
	for _, n := range b.sess.Notes {
		entries = append(entries, n)
	}
	return entries, nil
}

func (b *guestBackend) Create(ctx context.Context, title, content string) (models.Entry, error) {
	title, content = models.ApplyDefaults(title, content)
	ts := models.FormatISO(b.clock())
	note := models.GuestNote{
		ID:        b.sess.NextNoteID(),
		Title:     title,
		Content:   content,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	// newest first
	b.sess.Notes = append([]models.GuestNote{note}, b.sess.Notes...)
	return note, nil
}

func (b *guestBackend) Update(ctx context.Context, id, title, content string) (models.Entry, error) {
	i := b.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	title, content = models.ApplyDefaults(title, content)

	note := b.sess.Notes[i]
	note.Title = title
	note.Content = content
	note.UpdatedAt = b.nextUpdatedAt(note.UpdatedAt)
	b.sess.Notes[i] = note
	return note, nil
}

func (b *guestBackend) Delete(ctx context.Context, id string) error {
	i := b.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	b.sess.Notes = append(b.sess.Notes[:i], b.sess.Notes[i+1:]...)
	return nil
}

func (b *guestBackend) indexOf(id string) int {
	for i, n := range b.sess.Notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// nextUpdatedAt returns the current time, advanced past prev when the clock
// has not moved at millisecond resolution.
func (b *guestBackend) nextUpdatedAt(prev string) string {
	now := b.clock().UTC().Truncate(time.Millisecond)
	if last, err := models.ParseISO(prev); err == nil && !now.After(last) {
		now = last.Add(time.Millisecond)
	}
	return models.FormatISO(now)
}
