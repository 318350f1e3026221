// Package index provides the SQLite-backed page, block and edge store with
// optional FTS5 full-text search over blocks.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS pages (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	aliases    TEXT NOT NULL DEFAULT '[]',
	tags       TEXT NOT NULL DEFAULT '[]',
	content    TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pages_title ON pages(title);

CREATE TABLE IF NOT EXISTS blocks (
	id       TEXT PRIMARY KEY,
	page_id  TEXT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
	text     TEXT NOT NULL DEFAULT '',
	anchor   TEXT,
	order_no INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_blocks_page ON blocks(page_id, order_no);

CREATE TABLE IF NOT EXISTS edges (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	src_block_id TEXT,
	src_page_id  TEXT NOT NULL,
	dst_page_id  TEXT NOT NULL,
	dst_block_id TEXT,
	type         TEXT NOT NULL DEFAULT 'link',
	props        TEXT,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_edges_src ON edges(src_page_id);
CREATE INDEX IF NOT EXISTS idx_edges_dst ON edges(dst_page_id);

CREATE TABLE IF NOT EXISTS vault_files (
	path     TEXT PRIMARY KEY,
	page_id  TEXT NOT NULL,
	checksum TEXT NOT NULL DEFAULT ''
);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
