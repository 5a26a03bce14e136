package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/rxdocs/rxmcp/internal/docs"
	rxerrors "github.com/rxdocs/rxmcp/internal/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pages (
	slug        TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	raw_content TEXT NOT NULL,
	sections    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS components (
	name        TEXT PRIMARY KEY,
	category    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	properties  TEXT NOT NULL DEFAULT '[]',
	source_slug TEXT NOT NULL REFERENCES pages(slug) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_components_source ON components(source_slug);
CREATE INDEX IF NOT EXISTS idx_components_category ON components(category);

CREATE TABLE IF NOT EXISTS state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const (
	stateGenerationID = "generation_id"
	stateContentHash  = "content_hash"
	stateBuiltAt      = "built_at"
)

// lockTimeout bounds how long a writer waits for the cross-process lock.
const lockTimeout = 10 * time.Second

// Meta is the persisted generation metadata.
type Meta struct {
	GenerationID string
	ContentHash  string
	BuiltAt      time.Time
}

// SQLiteStore persists the parsed corpus so a restarted process can
// serve without re-reading the docs tree. One writer at a time across
// processes, enforced with a sidecar lock file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the store at path. A database that
// fails its integrity check is moved aside and recreated empty rather
// than blocking startup.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, rxerrors.IOError("failed to create data directory", err)
	}

	db, err := openAndVerify(path)
	if err != nil {
		logger.Warn("store_corrupt_recreating",
			slog.String("path", path),
			slog.String("error", err.Error()))
		if recoverErr := quarantineCorrupt(path); recoverErr != nil {
			return nil, rxerrors.New(rxerrors.ErrCodeCorruptStore,
				"store is corrupt and could not be moved aside", recoverErr)
		}
		db, err = openAndVerify(path)
		if err != nil {
			return nil, rxerrors.New(rxerrors.ErrCodeCorruptStore,
				"store is corrupt even after recreation", err)
		}
	}

	return &SQLiteStore{
		db:     db,
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}, nil
}

func openAndVerify(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		_ = db.Close()
		return nil, fmt.Errorf("integrity check reported: %s", result)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}

// quarantineCorrupt moves a damaged database (and its WAL sidecars) out
// of the way so a fresh one can be created.
func quarantineCorrupt(path string) error {
	stamp := time.Now().UTC().Format("20060102T150405")
	if err := os.Rename(path, path+".corrupt."+stamp); err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, sidecar := range []string{path + "-wal", path + "-shm"} {
		_ = os.Remove(sidecar)
	}
	return nil
}

// ReplaceAll swaps the persisted corpus for the given page set in one
// transaction, guarded by the cross-process lock.
func (p *SQLiteStore) ReplaceAll(ctx context.Context, generationID, contentHash string, builtAt time.Time, pages []*docs.Page) error {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := p.lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil || !locked {
		return rxerrors.New(rxerrors.ErrCodeStoreLocked,
			"another process is writing the store", err)
	}
	defer func() { _ = p.lock.Unlock() }()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return rxerrors.IOError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"components", "pages", "state"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return rxerrors.IOError("failed to clear "+table, err)
		}
	}

	pageStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO pages (slug, title, raw_content, sections) VALUES (?, ?, ?, ?)")
	if err != nil {
		return rxerrors.IOError("failed to prepare page insert", err)
	}
	defer pageStmt.Close()

	compStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO components (name, category, description, properties, source_slug) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return rxerrors.IOError("failed to prepare component insert", err)
	}
	defer compStmt.Close()

	for _, page := range pages {
		sections, err := json.Marshal(page.Sections)
		if err != nil {
			return rxerrors.IOError("failed to encode sections for "+page.Slug, err)
		}
		if _, err := pageStmt.ExecContext(ctx, page.Slug, page.Title, page.RawContent, string(sections)); err != nil {
			return rxerrors.IOError("failed to insert page "+page.Slug, err)
		}

		if c := page.Component; c != nil {
			props, err := json.Marshal(c.Properties)
			if err != nil {
				return rxerrors.IOError("failed to encode properties for "+c.Name, err)
			}
			if _, err := compStmt.ExecContext(ctx, c.Name, c.Category, c.Description, string(props), page.Slug); err != nil {
				return rxerrors.IOError("failed to insert component "+c.Name, err)
			}
		}
	}

	state := map[string]string{
		stateGenerationID: generationID,
		stateContentHash:  contentHash,
		stateBuiltAt:      builtAt.Format(time.RFC3339Nano),
	}
	for key, value := range state {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO state (key, value) VALUES (?, ?)", key, value); err != nil {
			return rxerrors.IOError("failed to write state "+key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return rxerrors.IOError("failed to commit store replacement", err)
	}

	p.logger.Debug("store_replaced",
		slog.String("generation_id", generationID),
		slog.Int("pages", len(pages)))
	return nil
}

// LoadAll reads the full persisted corpus. Pages come back slug-ordered
// with their components reattached.
func (p *SQLiteStore) LoadAll(ctx context.Context) ([]*docs.Page, Meta, error) {
	var meta Meta

	rows, err := p.db.QueryContext(ctx,
		"SELECT slug, title, raw_content, sections FROM pages ORDER BY slug")
	if err != nil {
		return nil, meta, rxerrors.IOError("failed to read pages", err)
	}
	defer rows.Close()

	bySlug := make(map[string]*docs.Page)
	var pages []*docs.Page
	for rows.Next() {
		var page docs.Page
		var sections string
		if err := rows.Scan(&page.Slug, &page.Title, &page.RawContent, &sections); err != nil {
			return nil, meta, rxerrors.IOError("failed to scan page row", err)
		}
		if err := json.Unmarshal([]byte(sections), &page.Sections); err != nil {
			return nil, meta, rxerrors.New(rxerrors.ErrCodeCorruptStore,
				"stored sections are not valid JSON for "+page.Slug, err)
		}
		pages = append(pages, &page)
		bySlug[page.Slug] = &page
	}
	if err := rows.Err(); err != nil {
		return nil, meta, rxerrors.IOError("failed to iterate pages", err)
	}

	compRows, err := p.db.QueryContext(ctx,
		"SELECT name, category, description, properties, source_slug FROM components")
	if err != nil {
		return nil, meta, rxerrors.IOError("failed to read components", err)
	}
	defer compRows.Close()

	for compRows.Next() {
		var c docs.Component
		var props string
		if err := compRows.Scan(&c.Name, &c.Category, &c.Description, &props, &c.SourceSlug); err != nil {
			return nil, meta, rxerrors.IOError("failed to scan component row", err)
		}
		if err := json.Unmarshal([]byte(props), &c.Properties); err != nil {
			return nil, meta, rxerrors.New(rxerrors.ErrCodeCorruptStore,
				"stored properties are not valid JSON for "+c.Name, err)
		}
		if page, ok := bySlug[c.SourceSlug]; ok {
			page.Component = &c
		}
	}
	if err := compRows.Err(); err != nil {
		return nil, meta, rxerrors.IOError("failed to iterate components", err)
	}

	meta, err = p.loadMeta(ctx)
	if err != nil {
		return nil, meta, err
	}
	return pages, meta, nil
}

func (p *SQLiteStore) loadMeta(ctx context.Context) (Meta, error) {
	var meta Meta
	rows, err := p.db.QueryContext(ctx, "SELECT key, value FROM state")
	if err != nil {
		return meta, rxerrors.IOError("failed to read state", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return meta, rxerrors.IOError("failed to scan state row", err)
		}
		switch key {
		case stateGenerationID:
			meta.GenerationID = value
		case stateContentHash:
			meta.ContentHash = value
		case stateBuiltAt:
			if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
				meta.BuiltAt = t
			}
		}
	}
	return meta, rows.Err()
}

// Close releases the database and the cross-process lock.
func (p *SQLiteStore) Close() error {
	_ = p.lock.Unlock()
	return p.db.Close()
}
