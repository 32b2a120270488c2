package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"notepad/internal/models"
	"notepad/internal/store"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// DBType represents the type of database
type DBType string

const (
	SQLite   DBType = "sqlite3"
	Postgres DBType = "postgres"
)

// SQLStore implements the Store interface for SQL databases
type SQLStore struct {
	db     *sql.DB
	dbType DBType
}

var _ store.Store = (*SQLStore)(nil)

// New opens the database, verifies the connection and applies the schema.
func New(driver, connStr string) (*SQLStore, error) {
	dbType := DBType(driver)
	if dbType != SQLite && dbType != Postgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, err
	}

	s, err := newWithDB(db, dbType)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func newWithDB(db *sql.DB, dbType DBType) (*SQLStore, error) {
	if dbType == SQLite {
		// A single connection keeps :memory: databases and PRAGMAs consistent
		// and serializes writers.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLStore{db: db, dbType: dbType}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return s, nil
}

// SetMaxOpenConns tunes the pool for server deployments.
func (s *SQLStore) SetMaxOpenConns(n int) {
	if s.dbType == SQLite || n <= 0 {
		return
	}
	s.db.SetMaxOpenConns(n)
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL
func (s *SQLStore) rebind(query string) string {
	if s.dbType == SQLite {
		return query
	}
	var result strings.Builder
	argNum := 1
	for _, c := range query {
		if c == '?' {
			result.WriteString(fmt.Sprintf("$%d", argNum))
			argNum++
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

func (s *SQLStore) initSchema() error {
	var stmts []string

	if s.dbType == Postgres {
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);`,
			`CREATE TABLE IF NOT EXISTS notes (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				title TEXT NOT NULL DEFAULT 'Untitled',
				content TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);`,
		}
	} else {
		stmts = []string{
			`PRAGMA foreign_keys = ON;`,
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at DATETIME NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS notes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				title TEXT NOT NULL DEFAULT 'Untitled',
				content TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
			);`,
		}
	}

	stmts = append(stmts,
		`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user_updated ON notes(user_id, updated_at DESC);`,
	)

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// insertID runs an INSERT and returns the new primary key for either dialect.
func (s *SQLStore) insertID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if s.dbType == Postgres {
		var id int64
		err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	result, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// User functions
func (s *SQLStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()
	id, err := s.insertID(ctx, "INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)", email, passwordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &models.User{ID: id, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT id, email, password_hash, created_at FROM users WHERE email = ?"), email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// Note functions
func (s *SQLStore) CreateNote(ctx context.Context, userID int64, title, content string) (*models.Note, error) {
	now := time.Now().UTC()
	id, err := s.insertID(ctx, "INSERT INTO notes (user_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		userID, title, content, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return &models.Note{ID: id, UserID: userID, Title: title, Content: content, CreatedAt: now, UpdatedAt: now}, nil
}

const noteColumns = "id, user_id, title, content, created_at, updated_at"

func (s *SQLStore) GetNotes(ctx context.Context, userID int64) ([]models.Note, error) {
	return s.queryNotes(ctx, "SELECT "+noteColumns+" FROM notes WHERE user_id = ? ORDER BY updated_at DESC, id DESC", userID)
}

func (s *SQLStore) SearchNotes(ctx context.Context, userID int64, query string) ([]models.Note, error) {
	if query == "" {
		return s.GetNotes(ctx, userID)
	}
	pattern := "%" + strings.ToLower(query) + "%"
	return s.queryNotes(ctx, "SELECT "+noteColumns+" FROM notes WHERE user_id = ? AND (LOWER(title) LIKE ? OR LOWER(content) LIKE ?) ORDER BY updated_at DESC, id DESC",
		userID, pattern, pattern)
}

func (s *SQLStore) queryNotes(ctx context.Context, query string, args ...interface{}) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *SQLStore) UpdateNote(ctx context.Context, noteID, userID int64, title, content string) (*models.Note, error) {
	result, err := s.db.ExecContext(ctx, s.rebind("UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ? AND user_id = ?"),
		title, content, time.Now().UTC(), noteID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, store.ErrNotFound
	}

	var n models.Note
	err = s.db.QueryRowContext(ctx, s.rebind("SELECT "+noteColumns+" FROM notes WHERE id = ? AND user_id = ?"), noteID, userID).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// deleted by a concurrent request
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read updated note: %w", err)
	}
	return &n, nil
}

func (s *SQLStore) DeleteNote(ctx context.Context, noteID, userID int64) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM notes WHERE id = ? AND user_id = ?"), noteID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

const importSQLite = `INSERT INTO notes (user_id, title, content, created_at, updated_at)
	SELECT ?, ?, ?, ?, ?
	WHERE NOT EXISTS (SELECT 1 FROM notes WHERE user_id = ? AND title = ? AND content = ?)`

const importPostgres = `INSERT INTO notes (user_id, title, content, created_at, updated_at)
	SELECT $1::bigint, $2::text, $3::text, $4::timestamptz, $5::timestamptz
	WHERE NOT EXISTS (SELECT 1 FROM notes WHERE user_id = $1 AND title = $2 AND content = $3)`

func (s *SQLStore) ImportNote(ctx context.Context, userID int64, title, content string, createdAt, updatedAt time.Time) (bool, error) {
	createdAt, updatedAt = createdAt.UTC(), updatedAt.UTC()

	if s.dbType == SQLite {
		result, err := s.db.ExecContext(ctx, importSQLite, userID, title, content, createdAt, updatedAt, userID, title, content)
		if err != nil {
			return false, fmt.Errorf("failed to import note: %w", err)
		}
		n, _ := result.RowsAffected()
		return n > 0, nil
	}

	// Under READ COMMITTED two imports could both pass NOT EXISTS, so
	// imports for the same owner are serialized with an advisory lock.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", userID); err != nil {
		return false, fmt.Errorf("failed to lock owner: %w", err)
	}
	result, err := tx.ExecContext(ctx, importPostgres, userID, title, content, createdAt, updatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to import note: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit import: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
