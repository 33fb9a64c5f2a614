// Package sqlstore persists the service collections in a libSQL database.
// The schema is managed by goose migrations embedded in the binary.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
	"github.com/zhouzirui/persona-studio/backend/internal/model/chat"
	"github.com/zhouzirui/persona-studio/backend/internal/model/persona"
	"github.com/zhouzirui/persona-studio/backend/internal/model/share"
	"github.com/zhouzirui/persona-studio/backend/internal/model/upload"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Fixed-width so stored timestamps sort lexically. Reads go through
// parseTime, which also accepts the trimmed RFC3339Nano text the driver
// hands back for time-like columns.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a libSQL-backed record store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates it. A path
// starting with "libsql://" or "http" is passed through as a remote URL.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if !strings.Contains(path, "://") && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		dsn = "file:" + path
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open libsql: %v", apperr.ErrPersistence, err)
	}
	if strings.HasPrefix(dsn, "file:") {
		// a local file has a single writer; serialize instead of failing with SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectTurso, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("%w: run migrations: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, session persona.Session) error {
	personas, err := json.Marshal(session.Personas)
	if err != nil {
		return fmt.Errorf("%w: encode personas: %v", apperr.ErrPersistence, err)
	}

	var original sql.NullString
	if session.OriginalRequest != nil {
		b, err := json.Marshal(session.OriginalRequest)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", apperr.ErrPersistence, err)
		}
		original = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO persona_sessions (id, personas, original_request, created_at) VALUES (?, ?, ?, ?)`,
		session.ID, string(personas), original, formatTime(session.CreatedAt),
	)
	return wrap(err)
}

func (s *Store) GetSession(ctx context.Context, id string) (persona.Session, error) {
	var (
		personas, created string
		original          sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT personas, original_request, created_at FROM persona_sessions WHERE id = ?`, id,
	).Scan(&personas, &original, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return persona.Session{}, fmt.Errorf("%w: session %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return persona.Session{}, wrap(err)
	}

	session := persona.Session{ID: id}
	if err := json.Unmarshal([]byte(personas), &session.Personas); err != nil {
		return persona.Session{}, fmt.Errorf("%w: decode personas: %v", apperr.ErrPersistence, err)
	}
	if original.Valid {
		var req persona.GenerationRequest
		if err := json.Unmarshal([]byte(original.String), &req); err != nil {
			return persona.Session{}, fmt.Errorf("%w: decode request: %v", apperr.ErrPersistence, err)
		}
		session.OriginalRequest = &req
	}
	if session.CreatedAt, err = parseTime(created); err != nil {
		return persona.Session{}, err
	}
	return session, nil
}

func (s *Store) CreateShare(ctx context.Context, rec share.Record) error {
	personas, err := json.Marshal(rec.Personas)
	if err != nil {
		return fmt.Errorf("%w: encode personas: %v", apperr.ErrPersistence, err)
	}
	settings, err := json.Marshal(rec.Settings)
	if err != nil {
		return fmt.Errorf("%w: encode settings: %v", apperr.ErrPersistence, err)
	}

	var last sql.NullString
	if rec.LastAccessed != nil {
		last = sql.NullString{String: formatTime(*rec.LastAccessed), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO shared_personas (id, personas, settings, expires_at, access_count, last_accessed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(personas), string(settings), formatTime(rec.ExpiresAt),
		rec.AccessCount, last, formatTime(rec.CreatedAt),
	)
	return wrap(err)
}

const shareColumns = `id, personas, settings, expires_at, access_count, last_accessed, created_at`

func (s *Store) GetShare(ctx context.Context, id string) (share.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+shareColumns+` FROM shared_personas WHERE id = ?`, id)
	return scanShare(row, id)
}

// RecordShareAccess increments in a single UPDATE ... RETURNING statement.
func (s *Store) RecordShareAccess(ctx context.Context, id string, at time.Time) (share.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE shared_personas
		    SET access_count = access_count + 1, last_accessed = ?
		  WHERE id = ?
		RETURNING `+shareColumns,
		formatTime(at), id,
	)
	return scanShare(row, id)
}

func (s *Store) AppendTurn(ctx context.Context, turn chat.Turn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, persona_id, user_message, persona_response, created_at) VALUES (?, ?, ?, ?, ?)`,
		turn.ID, turn.PersonaID, turn.UserMessage, turn.PersonaResponse, formatTime(turn.CreatedAt),
	)
	return wrap(err)
}

func (s *Store) ListTurns(ctx context.Context, personaID string) ([]chat.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, persona_id, user_message, persona_response, created_at
		   FROM conversations WHERE persona_id = ? ORDER BY created_at, rowid`, personaID,
	)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	var turns []chat.Turn
	for rows.Next() {
		var (
			turn    chat.Turn
			created string
		)
		if err := rows.Scan(&turn.ID, &turn.PersonaID, &turn.UserMessage, &turn.PersonaResponse, &created); err != nil {
			return nil, wrap(err)
		}
		if turn.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, wrap(rows.Err())
}

func (s *Store) SaveFile(ctx context.Context, f upload.File) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploaded_files (id, filename, file_type, size, processed_data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.Filename, f.FileType, f.Size, string(f.ProcessedData), formatTime(f.CreatedAt),
	)
	return wrap(err)
}

func (s *Store) GetFile(ctx context.Context, id string) (upload.File, error) {
	var (
		f             upload.File
		data, created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, file_type, size, processed_data, created_at FROM uploaded_files WHERE id = ?`, id,
	).Scan(&f.ID, &f.Filename, &f.FileType, &f.Size, &data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return upload.File{}, fmt.Errorf("%w: file %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return upload.File{}, wrap(err)
	}
	f.ProcessedData = json.RawMessage(data)
	if f.CreatedAt, err = parseTime(created); err != nil {
		return upload.File{}, err
	}
	return f, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShare(row scanner, id string) (share.Record, error) {
	var (
		rec                                  share.Record
		personas, settings, expires, created string
		last                                 sql.NullString
	)
	err := row.Scan(&rec.ID, &personas, &settings, &expires, &rec.AccessCount, &last, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return share.Record{}, fmt.Errorf("%w: share %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return share.Record{}, wrap(err)
	}

	if err := json.Unmarshal([]byte(personas), &rec.Personas); err != nil {
		return share.Record{}, fmt.Errorf("%w: decode personas: %v", apperr.ErrPersistence, err)
	}
	if err := json.Unmarshal([]byte(settings), &rec.Settings); err != nil {
		return share.Record{}, fmt.Errorf("%w: decode settings: %v", apperr.ErrPersistence, err)
	}
	if rec.ExpiresAt, err = parseTime(expires); err != nil {
		return share.Record{}, err
	}
	if rec.CreatedAt, err = parseTime(created); err != nil {
		return share.Record{}, err
	}
	if last.Valid {
		at, err := parseTime(last.String)
		if err != nil {
			return share.Record{}, err
		}
		rec.LastAccessed = &at
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parse time %q: %v", apperr.ErrPersistence, s, err)
	}
	return t, nil
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
}
