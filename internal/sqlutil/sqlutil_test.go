package sqlutil

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(`CREATE TABLE notes (path TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	db := openMemory(t)

	if err := WithTx(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO notes (path) VALUES ('a.md')`)
		return err
	}); err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}

	boom := errors.New("boom")
	err := WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO notes (path) VALUES ('b.md')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	rows, err := db.Query(`SELECT path FROM notes ORDER BY path`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	got, err := ScanRows(rows, func(r *sql.Rows) (string, error) {
		var p string
		err := r.Scan(&p)
		return p, err
	})
	if err != nil {
		t.Fatalf("ScanRows() error = %v", err)
	}
	if len(got) != 1 || got[0] != "a.md" {
		t.Fatalf("rows = %v, want [a.md]", got)
	}
}
