package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/bidinote/internal/apperr"
	"github.com/starford/bidinote/internal/models"
)

// CommitSave writes the page content and atomically replaces the page's
// blocks, their search entries and its outgoing edges in one transaction.
func (db *DB) CommitSave(ctx context.Context, rec PageRecord, blocks []models.Block, edges []models.Edge) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	p := rec.Page
	res, err := tx.ExecContext(ctx, `
		UPDATE pages SET title = ?, aliases = ?, tags = ?, content = ?, checksum = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, jsonList(p.Aliases), jsonList(p.Tags), rec.Content, rec.Checksum, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("index: save page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("index: save page %s: %w", p.ID, apperr.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE page_id = ?`, p.ID); err != nil {
		return fmt.Errorf("index: clear blocks: %w", err)
	}
	if len(blocks) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO blocks (id, page_id, text, anchor, order_no) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare block insert: %w", err)
		}
		defer stmt.Close()
		for _, b := range blocks {
			if _, err := stmt.ExecContext(ctx, b.ID, p.ID, b.Text, nullString(b.Anchor), b.Order); err != nil {
				return fmt.Errorf("index: insert block: %w", err)
			}
		}
	}
	if err := ftsReplace(ctx, tx, p.ID, blocks); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE src_page_id = ?`, p.ID); err != nil {
		return fmt.Errorf("index: clear edges: %w", err)
	}
	if len(edges) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO edges (src_block_id, src_page_id, dst_page_id, dst_block_id, type, props, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare edge insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range edges {
			var props sql.NullString
			if len(e.Props) > 0 {
				props = sql.NullString{String: string(e.Props), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, nullString(e.SrcBlockID), e.SrcPageID, e.DstPageID,
				nullString(e.DstBlockID), e.Type, props, e.CreatedAt); err != nil {
				return fmt.Errorf("index: insert edge: %w", err)
			}
		}
	}

	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// LoadBlocks returns the blocks of a page in document order.
func (db *DB) LoadBlocks(ctx context.Context, pageID string) ([]models.Block, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, page_id, text, anchor, order_no FROM blocks WHERE page_id = ? ORDER BY order_no
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("index: load blocks: %w", err)
	}
	defer rows.Close()

	out := []models.Block{}
	for rows.Next() {
		var (
			b      models.Block
			anchor sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.PageID, &b.Text, &anchor, &b.Order); err != nil {
			return nil, err
		}
		b.Anchor = anchor.String
		out = append(out, b)
	}
	return out, rows.Err()
}

const edgeColumns = `src_block_id, src_page_id, dst_page_id, dst_block_id, type, props, created_at`

// EdgesFrom returns the outgoing edges of a page.
func (db *DB) EdgesFrom(ctx context.Context, pageID string) ([]models.Edge, error) {
	return db.queryEdges(ctx, `SELECT `+edgeColumns+` FROM edges WHERE src_page_id = ? ORDER BY id`, pageID)
}

// EdgesTo returns the edges pointing at a page.
func (db *DB) EdgesTo(ctx context.Context, pageID string) ([]models.Edge, error) {
	return db.queryEdges(ctx, `SELECT `+edgeColumns+` FROM edges WHERE dst_page_id = ? ORDER BY id`, pageID)
}

// LoadEdges returns every edge in insertion order.
func (db *DB) LoadEdges(ctx context.Context) ([]models.Edge, error) {
	return db.queryEdges(ctx, `SELECT `+edgeColumns+` FROM edges ORDER BY id`)
}

func (db *DB) queryEdges(ctx context.Context, query string, args ...any) ([]models.Edge, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query edges: %w", err)
	}
	defer rows.Close()

	out := []models.Edge{}
	for rows.Next() {
		var (
			e                models.Edge
			srcBlock, dstBlk sql.NullString
			props            sql.NullString
			created          time.Time
		)
		if err := rows.Scan(&srcBlock, &e.SrcPageID, &e.DstPageID, &dstBlk, &e.Type, &props, &created); err != nil {
			return nil, err
		}
		e.SrcBlockID = srcBlock.String
		e.DstBlockID = dstBlk.String
		if props.Valid {
			e.Props = json.RawMessage(props.String)
		}
		e.CreatedAt = created.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
