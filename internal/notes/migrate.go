package notes

import (
	"context"
	"fmt"
	"time"

	"notepad/internal/models"
	"notepad/internal/session"
	"notepad/internal/store"

	"github.com/sirupsen/logrus"
)

// NoteError records why one guest note could not be copied.
type NoteError struct {
	NoteID string
	Err    error
}

func (e NoteError) Error() string {
	return fmt.Sprintf("note %s: %v", e.NoteID, e.Err)
}

func (e NoteError) Unwrap() error { return e.Err }

// MigrationResult is returned for logging; it never fails a login.
type MigrationResult struct {
	Migrated int         `json:"migrated"`
	Skipped  int         `json:"skipped"`
	Errors   []NoteError `json:"-"`
}

// Failed reports whether at least one note could not be copied.
func (r MigrationResult) Failed() bool { return len(r.Errors) > 0 }

// Recorder receives migration outcomes, typically metrics.
type Recorder interface {
	ObserveMigration(migrated, skipped, failed int)
}

type Migrator struct {
	store    store.Store
	log      logrus.FieldLogger
	recorder Recorder
}

func NewMigrator(s store.Store, log logrus.FieldLogger, recorder Recorder) *Migrator {
	return &Migrator{store: s, log: log, recorder: recorder}
}

// Migrate copies the session's guest notes into ownerID's durable notes.
// Notes whose title and content already exist for the owner are skipped, so
// running it twice inserts each note at most once. The session is cleared
// afterwards even if some notes failed; those notes are lost.
func (m *Migrator) Migrate(ctx context.Context, sess *session.Session, ownerID int64) MigrationResult {
	result := MigrationResult{Errors: []NoteError{}}
	if sess == nil || len(sess.Notes) == 0 {
		return result
	}

	for _, note := range sess.Notes {
		createdAt := parseOrNow(note.CreatedAt)
		updatedAt := parseOrNow(note.UpdatedAt)
		if updatedAt.Before(createdAt) {
			updatedAt = createdAt
		}

		inserted, err := m.store.ImportNote(ctx, ownerID, note.Title, note.Content, createdAt, updatedAt)
		if err != nil {
			result.Errors = append(result.Errors, NoteError{NoteID: note.ID, Err: err})
			continue
		}
		if inserted {
			result.Migrated++
		} else {
			result.Skipped++
		}
	}

	sess.Reset()

	m.report(ownerID, result)
	return result
}

func (m *Migrator) report(ownerID int64, result MigrationResult) {
	if m.recorder != nil {
		m.recorder.ObserveMigration(result.Migrated, result.Skipped, len(result.Errors))
	}
	if m.log == nil {
		return
	}

	entry := m.log.WithFields(logrus.Fields{
		"user_id":  ownerID,
		"migrated": result.Migrated,
		"skipped":  result.Skipped,
	})
	if !result.Failed() {
		entry.Info("Migrated guest notes")
		return
	}
	for _, e := range result.Errors {
		entry.WithField("note_id", e.NoteID).WithError(e.Err).Warn("Guest note dropped during migration")
	}
}

func parseOrNow(ts string) time.Time {
	t, err := models.ParseISO(ts)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
