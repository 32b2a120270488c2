package notes

import (
	"context"
	"strconv"

	"notepad/internal/models"
	"notepad/internal/store"
)

type durableBackend struct {
	store   store.Store
	ownerID int64
}

func (b *durableBackend) List(ctx context.Context) ([]models.Entry, error) {
	notes, err := b.store.GetNotes(ctx, b.ownerID)
	if err != nil {
		return nil, err
	}
	entries := make([]models.Entry, 0, len(notes))
	for _, n := range notes {
		entries = append(entries, n)
	}
	return entries, nil
}

func (b *durableBackend) Create(ctx context.Context, title, content string) (models.Entry, error) {
	title, content = models.ApplyDefaults(title, content)
	note, err := b.store.CreateNote(ctx, b.ownerID, title, content)
	if err != nil {
		return nil, err
	}
	return *note, nil
}

func (b *durableBackend) Update(ctx context.Context, id, title, content string) (models.Entry, error) {
	noteID, ok := parseID(id)
	if !ok {
		return nil, ErrNotFound
	}
	title, content = models.ApplyDefaults(title, content)
	note, err := b.store.UpdateNote(ctx, noteID, b.ownerID, title, content)
	if err != nil {
		return nil, err
	}
	return *note, nil
}

func (b *durableBackend) Delete(ctx context.Context, id string) error {
	noteID, ok := parseID(id)
	if !ok {
		return ErrNotFound
	}
	return b.store.DeleteNote(ctx, noteID, b.ownerID)
}

// parseID rejects ids that cannot name a durable row, such as guest ids.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
