package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS exercise_results (
	lesson_id       TEXT    NOT NULL,
	exercise_type   TEXT    NOT NULL,
	total_questions INTEGER NOT NULL,
	correct_answers REAL    NOT NULL,
	percentage      INTEGER NOT NULL,
	passed          INTEGER NOT NULL DEFAULT 0,
	per_answer      TEXT    NOT NULL DEFAULT '[]',
	completed_at    TEXT    NOT NULL,
	updated_at      TEXT    NOT NULL,
	PRIMARY KEY (lesson_id, exercise_type)
);
`

// DB wraps a SQLite connection.
type DB struct {
	*sql.DB
}

// Open connects to the SQLite file at path in WAL mode and applies the schema.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	wrapped := &DB{DB: db}
	if err := wrapped.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return wrapped, nil
}

func (db *DB) Migrate() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
