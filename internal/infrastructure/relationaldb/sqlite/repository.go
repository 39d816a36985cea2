// Package sqlite provides a SQLite implementation of the Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/ports"
	"github.com/ersonp/campaign-core/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.Store using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

var _ ports.Store = (*Repository)(nil)

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journals_user ON journals(user_id);

	-- Properties and tags are stored as JSON text
	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		properties TEXT NOT NULL DEFAULT '{}',
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entities_user ON entities(user_id);
	CREATE INDEX IF NOT EXISTS idx_entities_user_type ON entities(user_id, type);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema in %s: %w", r.path, err)
	}
	return nil
}

// Users ----------------------------------------------------------------------

// CreateUser inserts a user. A taken username returns ports.ErrConflict.
func (r *Repository) CreateUser(ctx context.Context, user *entities.User) (*entities.User, error) {
	rec := user.Clone()
	rec.CreatedAt = timeNow().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password, created_at) VALUES (?, ?, ?)`,
		rec.Username, rec.Password, formatTime(rec.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("username %q: %w", rec.Username, ports.ErrConflict)
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}
	return rec, nil
}

// GetUser finds a user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (*entities.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername finds a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// DeleteUser deletes a user by id.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "users", "user", id)
}

func scanUser(row *sql.Row) (*entities.User, error) {
	var (
		user    entities.User
		created string
	)
	err := row.Scan(&user.ID, &user.Username, &user.Password, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	if user.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &user, nil
}

// Journals -------------------------------------------------------------------

const journalColumns = `id, user_id, title, content, tags, created_at`

// GetJournals lists a user's journals in id order.
func (r *Repository) GetJournals(ctx context.Context, userID int64) ([]*entities.Journal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying journals: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Journal, 0)
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journals: %w", err)
	}
	return result, nil
}

// GetJournal finds a journal by id.
func (r *Repository) GetJournal(ctx context.Context, id int64) (*entities.Journal, error) {
	return getJournal(ctx, r.db, id)
}

// CreateJournal inserts a journal.
func (r *Repository) CreateJournal(ctx context.Context, journal *entities.Journal) (*entities.Journal, error) {
	rec := journal.Clone()
	rec.CreatedAt = timeNow().UTC()

	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshaling tags: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO journals (user_id, title, content, tags, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.UserID, rec.Title, rec.Content, string(tags), formatTime(rec.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting journal: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading journal id: %w", err)
	}
	return rec, nil
}

// UpdateJournal merges patch into an existing journal.
func (r *Repository) UpdateJournal(ctx context.Context, id int64, patch entities.JournalPatch) (*entities.Journal, error) {
	var updated *entities.Journal
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		j, err := getJournal(ctx, tx, id)
		if err != nil {
			return err
		}
		if j == nil {
			return fmt.Errorf("journal %d: %w", id, ports.ErrNotFound)
		}

		j.Apply(patch)
		tags, err := json.Marshal(j.Tags)
		if err != nil {
			return fmt.Errorf("marshaling tags: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE journals SET title = ?, content = ?, tags = ? WHERE id = ?`,
			j.Title, j.Content, string(tags), id,
		)
		if err != nil {
			return fmt.Errorf("updating journal: %w", err)
		}
		updated = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteJournal deletes a journal by id.
func (r *Repository) DeleteJournal(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "journals", "journal", id)
}

func getJournal(ctx context.Context, q querier, id int64) (*entities.Journal, error) {
	row := q.QueryRowContext(ctx, `SELECT `+journalColumns+` FROM journals WHERE id = ?`, id)
	j, err := scanJournal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

func scanJournal(s scanner) (*entities.Journal, error) {
	var (
		j       entities.Journal
		tags    string
		created string
	)
	if err := s.Scan(&j.ID, &j.UserID, &j.Title, &j.Content, &tags, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning journal: %w", err)
	}

	var err error
	if j.Tags, err = unmarshalTags(tags); err != nil {
		return nil, err
	}
	if j.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &j, nil
}

// Entities -------------------------------------------------------------------

const entityColumns = `id, user_id, name, type, description, properties, tags, created_at`

// GetEntities lists entities matching the filter in id order.
func (r *Repository) GetEntities(ctx context.Context, filter entities.EntityFilter) ([]*entities.Entity, error) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID != 0 {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(filter.Type))
	}

	query := `SELECT ` + entityColumns + ` FROM entities`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Entity, 0)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return result, nil
}

// GetEntity finds an entity by id.
func (r *Repository) GetEntity(ctx context.Context, id int64) (*entities.Entity, error) {
	return getEntity(ctx, r.db, id)
}

// CreateEntity inserts an entity.
func (r *Repository) CreateEntity(ctx context.Context, entity *entities.Entity) (*entities.Entity, error) {
	rec := entity.Clone()
	rec.CreatedAt = timeNow().UTC()

	props, tags, err := marshalEntity(rec)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO entities (user_id, name, type, description, properties, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.Name, string(rec.Type), rec.Description, props, tags, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting entity: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading entity id: %w", err)
	}
	return rec, nil
}

// UpdateEntity merges patch into an existing entity.
func (r *Repository) UpdateEntity(ctx context.Context, id int64, patch entities.EntityPatch) (*entities.Entity, error) {
	var updated *entities.Entity
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		e, err := getEntity(ctx, tx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("entity %d: %w", id, ports.ErrNotFound)
		}

		e.Apply(patch)
		props, tags, err := marshalEntity(e)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE entities SET name = ?, type = ?, description = ?, properties = ?, tags = ? WHERE id = ?`,
			e.Name, string(e.Type), e.Description, props, tags, id,
		)
		if err != nil {
			return fmt.Errorf("updating entity: %w", err)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEntity deletes an entity by id.
func (r *Repository) DeleteEntity(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "entities", "entity", id)
}

func getEntity(ctx context.Context, q querier, id int64) (*entities.Entity, error) {
	row := q.QueryRowContext(ctx, `SELECT `+entityColumns+` FROM entities WHERE id = ?`, id)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func scanEntity(s scanner) (*entities.Entity, error) {
	var (
		e       entities.Entity
		typ     string
		props   string
		tags    string
		created string
	)
	if err := s.Scan(&e.ID, &e.UserID, &e.Name, &typ, &e.Description, &props, &tags, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning entity: %w", err)
	}
	e.Type = entities.EntityType(typ)

	var raw map[string]any
	if err := json.Unmarshal([]byte(props), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling properties of entity %d: %w", e.ID, err)
	}
	p, err := entities.DecodeProperties(e.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding properties of entity %d: %w", e.ID, err)
	}
	e.Properties = p

	if e.Tags, err = unmarshalTags(tags); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &e, nil
}

func marshalEntity(e *entities.Entity) (props, tags string, err error) {
	p, err := json.Marshal(e.Properties)
	if err != nil {
		return "", "", fmt.Errorf("marshaling properties: %w", err)
	}
	t, err := json.Marshal(e.Tags)
	if err != nil {
		return "", "", fmt.Errorf("marshaling tags: %w", err)
	}
	return string(p), string(t), nil
}

// Helpers --------------------------------------------------------------------

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (r *Repository) deleteByID(ctx context.Context, table, kind string, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", kind, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ports.ErrNotFound)
	}
	return nil
}

func unmarshalTags(s string) ([]string, error) {
	tags := []string{}
	if s == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
