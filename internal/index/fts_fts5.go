//go:build sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/bidinote/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS blocks_fts USING fts5(
			block_id UNINDEXED,
			page_id UNINDEXED,
			text,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsReplace(ctx context.Context, tx *sql.Tx, pageID string, blocks []models.Block) error {
	ftsDelete(ctx, tx, pageID)
	for _, b := range blocks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO blocks_fts (block_id, page_id, text) VALUES (?, ?, ?)`,
			b.ID, pageID, b.Text); err != nil {
			return fmt.Errorf("index: upsert fts: %w", err)
		}
	}
	return nil
}

func ftsDelete(ctx context.Context, tx *sql.Tx, pageID string) {
	_, _ = tx.ExecContext(ctx, `DELETE FROM blocks_fts WHERE page_id = ?`, pageID)
}

// matchExpr turns free text into an FTS5 prefix query: every word quoted
// and starred, implicitly ANDed.
func matchExpr(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"*`)
	}
	return strings.Join(terms, " ")
}

// Search runs an FTS5 query over block text. Higher scores rank better.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	expr := matchExpr(query)
	if expr == "" {
		return []models.SearchHit{}, nil
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT page_id,
		       block_id,
		       snippet(blocks_fts, 2, '<b>', '</b>', '...', 16),
		       bm25(blocks_fts)
		FROM blocks_fts
		WHERE blocks_fts MATCH ?
		ORDER BY bm25(blocks_fts)
		LIMIT ?
	`, expr, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []models.SearchHit{}
	for rows.Next() {
		var h models.SearchHit
		if err := rows.Scan(&h.PageID, &h.BlockID, &h.Snippet, &h.Score); err != nil {
			return nil, err
		}
		h.Score = -h.Score
		out = append(out, h)
	}
	return out, rows.Err()
}
