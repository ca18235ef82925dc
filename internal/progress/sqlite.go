package progress

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/vaultfm/internal/sqlutil"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	pass TEXT NOT NULL,
	current_mode TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	last_updated TEXT NOT NULL DEFAULT '',
	last_processed TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS processed (
	mode TEXT NOT NULL,
	path TEXT NOT NULL,
	seq INTEGER NOT NULL,
	PRIMARY KEY (mode, path)
);
CREATE TABLE IF NOT EXISTS errors (
	path TEXT PRIMARY KEY,
	message TEXT NOT NULL,
	at TEXT NOT NULL
);
`

// SQLiteStore keeps progress in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Backend = (*SQLiteStore)(nil)

// OpenSQLiteStore opens or creates the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize progress database: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Load reads the stored state. An empty database yields nil state.
func (s *SQLiteStore) Load() (*State, error) {
	var (
		st                    State
		mode                  string
		startedAt, lastUpdate string
	)
	err := s.db.QueryRow(`SELECT pass, current_mode, started_at, last_updated, last_processed FROM meta WHERE id = 1`).
		Scan(&st.Pass, &mode, &startedAt, &lastUpdate, &st.LastProcessed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	st.CurrentMode = Mode(mode)
	st.StartedAt = parseTime(startedAt)
	st.LastUpdated = parseTime(lastUpdate)

	rows, err := s.db.Query(`SELECT mode, path FROM processed ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("read processed notes: %w", err)
	}
	type processedRow struct{ mode, path string }
	processed, err := sqlutil.ScanRows(rows, func(r *sql.Rows) (processedRow, error) {
		var p processedRow
		err := r.Scan(&p.mode, &p.path)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("read processed notes: %w", err)
	}
	for _, p := range processed {
		list := st.list(Mode(p.mode))
		*list = append(*list, p.path)
	}

	rows, err = s.db.Query(`SELECT path, message, at FROM errors ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("read errors: %w", err)
	}
	st.Errors, err = sqlutil.ScanRows(rows, func(r *sql.Rows) (ErrorEntry, error) {
		var (
			e  ErrorEntry
			at string
		)
		err := r.Scan(&e.Path, &e.Message, &at)
		e.At = parseTime(at)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("read errors: %w", err)
	}

	return &st, nil
}

// Persist replaces the stored state in one transaction.
func (s *SQLiteStore) Persist(st *State) error {
	return sqlutil.WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO meta (id, pass, current_mode, started_at, last_updated, last_processed)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET pass = excluded.pass, current_mode = excluded.current_mode,
				started_at = excluded.started_at, last_updated = excluded.last_updated,
				last_processed = excluded.last_processed`,
			st.Pass, string(st.CurrentMode), formatTime(st.StartedAt), formatTime(st.LastUpdated), st.LastProcessed); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM processed`); err != nil {
			return err
		}
		seq := 0
		for _, mode := range []Mode{ModeDryRun, ModeLive} {
			for _, path := range *st.list(mode) {
				seq++
				if _, err := tx.Exec(`INSERT OR IGNORE INTO processed (mode, path, seq) VALUES (?, ?, ?)`, string(mode), path, seq); err != nil {
					return err
				}
			}
		}

		if _, err := tx.Exec(`DELETE FROM errors`); err != nil {
			return err
		}
		for _, e := range st.Errors {
			if _, err := tx.Exec(`INSERT OR REPLACE INTO errors (path, message, at) VALUES (?, ?, ?)`, e.Path, e.Message, formatTime(e.At)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
