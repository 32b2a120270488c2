package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"notepad/internal/models"
	"notepad/internal/session"
	"notepad/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	migrated, skipped, failed int
}

func (r *recorder) ObserveMigration(migrated, skipped, failed int) {
	r.migrated += migrated
	r.skipped += skipped
	r.failed += failed
}

// failingStore rejects imports whose title matches failTitle.
type failingStore struct {
	store.Store
	failTitle string
}

func (f *failingStore) ImportNote(ctx context.Context, userID int64, title, content string, createdAt, updatedAt time.Time) (bool, error) {
	if title == f.failTitle {
		return false, errors.New("disk full")
	}
	return f.Store.ImportNote(ctx, userID, title, content, createdAt, updatedAt)
}

func guestSession(t *testing.T, notes ...[2]string) *session.Session {
	t.Helper()
	sess := session.New("guest", time.Hour)
	b, err := NewService(nil).For(nil, sess)
	require.NoError(t, err)
	for _, n := range notes {
		_, err := b.Create(context.Background(), n[0], n[1])
		require.NoError(t, err)
	}
	return sess
}

func TestMigrateEmptySession(t *testing.T) {
	m := NewMigrator(newStore(t), nil, nil)
	res := m.Migrate(context.Background(), session.New("s", time.Hour), 1)
	assert.Zero(t, res.Migrated)
	assert.Empty(t, res.Errors)
}

func TestMigrateCopiesNotesAndClearsSession(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	alice, err := st.CreateUser(ctx, "alice@example.com", "h")
	require.NoError(t, err)

	sess := guestSession(t, [2]string{"Shopping", "milk,eggs"}, [2]string{"Todo", "call bank"})
	guestTimes := map[string]string{}
	for _, n := range sess.Notes {
		guestTimes[n.Title] = n.CreatedAt
	}

	rec := &recorder{}
	logger, hook := test.NewNullLogger()
	res := NewMigrator(st, logger, rec).Migrate(ctx, sess, alice.ID)

	assert.Equal(t, 2, res.Migrated)
	assert.Empty(t, res.Errors)
	assert.Empty(t, sess.Notes)
	assert.Equal(t, "guest_1", sess.NextNoteID(), "counter resets")
	assert.Equal(t, 2, rec.migrated)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)

	notes, err := st.GetNotes(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, alice.ID, n.UserID)
		want, err := models.ParseISO(guestTimes[n.Title])
		require.NoError(t, err)
		assert.True(t, n.CreatedAt.Equal(want), "created_at carried over for %s", n.Title)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	u, err := st.CreateUser(ctx, "bob@example.com", "h")
	require.NoError(t, err)
	m := NewMigrator(st, nil, nil)

	notes := [][2]string{{"Shopping", "milk,eggs"}, {"Todo", "call bank"}}

	first := m.Migrate(ctx, guestSession(t, notes...), u.ID)
	second := m.Migrate(ctx, guestSession(t, notes...), u.ID)

	assert.Equal(t, 2, first.Migrated)
	assert.Equal(t, 0, second.Migrated)
	assert.Equal(t, 2, second.Skipped)

	stored, err := st.GetNotes(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestMigrateIsOwnerIsolated(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	alice, err := st.CreateUser(ctx, "alice@example.com", "h")
	require.NoError(t, err)
	bob, err := st.CreateUser(ctx, "bob@example.com", "h")
	require.NoError(t, err)

	_, err = st.CreateNote(ctx, alice.ID, "Shopping", "milk,eggs")
	require.NoError(t, err)

	res := NewMigrator(st, nil, nil).Migrate(ctx, guestSession(t, [2]string{"Shopping", "milk,eggs"}), bob.ID)
	assert.Equal(t, 1, res.Migrated, "another owner's identical note is not a duplicate")

	bobNotes, err := st.GetNotes(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobNotes, 1)
	assert.Equal(t, bob.ID, bobNotes[0].UserID)

	aliceNotes, err := st.GetNotes(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceNotes, 1)
}

func TestMigratePartialFailure(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	u, err := st.CreateUser(ctx, "carol@example.com", "h")
	require.NoError(t, err)

	sess := guestSession(t, [2]string{"ok-1", ""}, [2]string{"broken", ""}, [2]string{"ok-2", ""})
	rec := &recorder{}
	logger, hook := test.NewNullLogger()

	res := NewMigrator(&failingStore{Store: st, failTitle: "broken"}, logger, rec).Migrate(ctx, sess, u.ID)

	assert.Equal(t, 2, res.Migrated)
	require.Len(t, res.Errors, 1)
	assert.True(t, res.Failed())
	assert.Equal(t, "guest_2", res.Errors[0].NoteID)
	assert.Empty(t, sess.Notes, "session is cleared even when a note failed")
	assert.Equal(t, 1, rec.failed)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestMigrateFallsBackOnBadTimestamps(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	u, err := st.CreateUser(ctx, "dan@example.com", "h")
	require.NoError(t, err)

	sess := session.New("s", time.Hour)
	sess.Notes = []models.GuestNote{{ID: "guest_1", Title: "t", Content: "c", CreatedAt: "yesterday", UpdatedAt: ""}}

	before := time.Now().UTC().Add(-time.Second)
	res := NewMigrator(st, nil, nil).Migrate(ctx, sess, u.ID)
	require.Equal(t, 1, res.Migrated)

	notes, err := st.GetNotes(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, notes[0].CreatedAt.After(before))
	assert.False(t, notes[0].UpdatedAt.Before(notes[0].CreatedAt))
}
