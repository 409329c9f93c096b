// Package snapshot persists periodic copies of a page document to a local
// SQLite database so unsaved edits survive a crash or an accidental exit.
// Snapshots are a recovery aid, not a history: the store keeps the newest N
// per page and quietly drops the rest.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"pbc/config"
	"pbc/document"
)

// ErrNotFound is returned by Latest when a page has no snapshots.
var ErrNotFound = errors.New("no snapshot")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id       TEXT PRIMARY KEY,
	slug     TEXT NOT NULL,
	taken_at INTEGER NOT NULL,
	document TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_by_page ON snapshots (slug, taken_at DESC);
`

// Entry describes one stored snapshot without its document payload.
type Entry struct {
	ID      string
	Slug    string
	TakenAt time.Time
}

// Store is a snapshot database. Safe for concurrent use; each operation
// borrows a pooled connection for its duration.
type Store struct {
	pool *sqlitex.Pool
	keep int
	log  *zap.Logger
}

// Open creates or opens the snapshot database at the configured path. The
// schema is created on first use; connections run in WAL mode so a reader
// (recovery) never blocks the writer (autosave).
func Open(cfg config.SnapshotConfig, log *zap.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("snapshot database path is not configured")
	}
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: 2,
		PrepareConn: func(conn *sqlite.Conn) error {
			for _, pragma := range []string{
				"PRAGMA journal_mode=WAL",
				"PRAGMA synchronous=NORMAL",
				"PRAGMA busy_timeout=5000",
			} {
				if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
					return err
				}
			}
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open snapshot database '%s': %w", cfg.Path, err)
	}
	return &Store{pool: pool, keep: cfg.Keep, log: log}, nil
}

// Close releases the connection pool. Blocks until borrowed connections are
// returned.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Put stores the document under the given page slug and prunes that page
// down to the configured retention. Returns the entry for the new snapshot.
func (s *Store) Put(ctx context.Context, slug string, doc *document.PageDocument) (Entry, error) {
	if doc == nil {
		return Entry{}, errors.New("nothing to snapshot")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return Entry{}, fmt.Errorf("unable to serialize document for snapshot: %w", err)
	}

	e := Entry{
		ID:      uuid.NewString(),
		Slug:    slug,
		TakenAt: time.Now().UTC(),
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("snapshot put: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `INSERT INTO snapshots (id, slug, taken_at, document) VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{e.ID, e.Slug, e.TakenAt.UnixNano(), string(data)}})
	if err != nil {
		return Entry{}, fmt.Errorf("snapshot put: %w", err)
	}

	if s.keep > 0 {
		if dropped, err := s.prune(conn, slug, s.keep); err != nil {
			// retention is best effort, the snapshot itself is already in
			s.log.Warn("Unable to prune old snapshots", zap.String("slug", slug), zap.Error(err))
		} else if dropped > 0 {
			s.log.Debug("Pruned old snapshots", zap.String("slug", slug), zap.Int("dropped", dropped))
		}
	}
	return e, nil
}

// Latest returns the newest snapshot for the page, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, slug string) (*document.PageDocument, Entry, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, Entry{}, fmt.Errorf("snapshot latest: %w", err)
	}
	defer s.pool.Put(conn)

	var (
		found bool
		e     Entry
		raw   string
	)
	err = sqlitex.Execute(conn, `SELECT id, slug, taken_at, document FROM snapshots WHERE slug = ? ORDER BY taken_at DESC, rowid DESC LIMIT 1`,
		&sqlitex.ExecOptions{
			Args: []any{slug},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				e = entryFromRow(stmt)
				raw = stmt.ColumnText(3)
				return nil
			},
		})
	if err != nil {
		return nil, Entry{}, fmt.Errorf("snapshot latest: %w", err)
	}
	if !found {
		return nil, Entry{}, fmt.Errorf("page '%s': %w", slug, ErrNotFound)
	}

	var doc document.PageDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, Entry{}, fmt.Errorf("snapshot '%s' is damaged: %w", e.ID, err)
	}
	return &doc, e, nil
}

// List returns up to n entries for the page, newest first. n <= 0 means all.
func (s *Store) List(ctx context.Context, slug string, n int) ([]Entry, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot list: %w", err)
	}
	defer s.pool.Put(conn)

	limit := n
	if limit <= 0 {
		limit = -1 // sqlite treats negative LIMIT as unlimited
	}

	var entries []Entry
	err = sqlitex.Execute(conn, `SELECT id, slug, taken_at FROM snapshots WHERE slug = ? ORDER BY taken_at DESC, rowid DESC LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{slug, limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				entries = append(entries, entryFromRow(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("snapshot list: %w", err)
	}
	return entries, nil
}

// Prune deletes all but the newest keep snapshots for the page, returning
// the number of rows removed.
func (s *Store) Prune(ctx context.Context, slug string, keep int) (int, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("snapshot prune: %w", err)
	}
	defer s.pool.Put(conn)

	return s.prune(conn, slug, keep)
}

func (s *Store) prune(conn *sqlite.Conn, slug string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	err := sqlitex.Execute(conn,
		`DELETE FROM snapshots WHERE slug = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE slug = ? ORDER BY taken_at DESC, rowid DESC LIMIT ?)`,
		&sqlitex.ExecOptions{Args: []any{slug, slug, keep}})
	if err != nil {
		return 0, err
	}
	return conn.Changes(), nil
}

func entryFromRow(stmt *sqlite.Stmt) Entry {
	e := Entry{
		ID:   stmt.ColumnText(0),
		Slug: stmt.ColumnText(1),
	}
	e.TakenAt = time.Unix(0, stmt.ColumnInt64(2)).UTC()
	return e
}
