package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/bidinote/internal/apperr"
	"github.com/starford/bidinote/internal/models"
)

const pageColumns = `id, title, aliases, tags, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(r rowScanner, extra ...any) (models.Page, error) {
	var (
		p                  models.Page
		aliasJSON, tagJSON string
		updated            time.Time
	)
	dest := append([]any{&p.ID, &p.Title, &aliasJSON, &tagJSON, &updated}, extra...)
	if err := r.Scan(dest...); err != nil {
		return models.Page{}, err
	}
	var aliases, tags []string
	if err := json.Unmarshal([]byte(aliasJSON), &aliases); err != nil {
		return models.Page{}, fmt.Errorf("index: decode page %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(tagJSON), &tags); err != nil {
		return models.Page{}, fmt.Errorf("index: decode page %s: %w", p.ID, err)
	}
	p.SetAliases(aliases)
	p.SetTags(tags)
	p.UpdatedAt = updated.UTC()
	return p, nil
}

func jsonList(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return string(b)
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique)
}

// InsertPage stores a new page. An existing id yields apperr.ErrAlreadyExists.
func (db *DB) InsertPage(ctx context.Context, rec PageRecord) error {
	p := rec.Page
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO pages (id, title, aliases, tags, content, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, jsonList(p.Aliases), jsonList(p.Tags), rec.Content, rec.Checksum, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("index: insert page %s: %w", p.ID, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("index: insert page: %w", err)
	}
	return nil
}

// GetPage returns the page with its content, or apperr.ErrNotFound.
func (db *DB) GetPage(ctx context.Context, id string) (*PageRecord, error) {
	var rec PageRecord
	row := db.conn.QueryRowContext(ctx, `SELECT `+pageColumns+`, content, checksum FROM pages WHERE id = ?`, id)
	p, err := scanPage(row, &rec.Content, &rec.Checksum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("index: page %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("index: get page: %w", err)
	}
	rec.Page = p
	return &rec, nil
}

// FindPageByTitle returns the oldest page with exactly this title.
func (db *DB) FindPageByTitle(ctx context.Context, title string) (*models.Page, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE title = ? ORDER BY id LIMIT 1`, title)
	p, err := scanPage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("index: page titled %q: %w", title, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("index: find page: %w", err)
	}
	return &p, nil
}

// LoadPages returns every page ordered by id, which is creation order for
// generated ids.
func (db *DB) LoadPages(ctx context.Context) ([]models.Page, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("index: load pages: %w", err)
	}
	defer rows.Close()
	return collectPages(rows)
}

// ListPages returns one page of results, optionally restricted to a tag,
// together with the total number of matches.
func (db *DB) ListPages(ctx context.Context, limit, offset int, tag string) ([]models.Page, int, error) {
	if limit <= 0 {
		limit = 50
	}
	where, args := "", []any{}
	if tag = strings.TrimSpace(tag); tag != "" {
		where = ` WHERE EXISTS (SELECT 1 FROM json_each(pages.tags) WHERE lower(json_each.value) = lower(?))`
		args = append(args, tag)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM pages`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count pages: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages`+where+` ORDER BY title, id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list pages: %w", err)
	}
	defer rows.Close()
	pages, err := collectPages(rows)
	return pages, total, err
}

func collectPages(rows *sql.Rows) ([]models.Page, error) {
	out := []models.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePageMeta persists title, aliases, tags and timestamp of p.
func (db *DB) UpdatePageMeta(ctx context.Context, p models.Page) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE pages SET title = ?, aliases = ?, tags = ?, updated_at = ? WHERE id = ?
	`, p.Title, jsonList(p.Aliases), jsonList(p.Tags), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("index: update page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("index: page %s: %w", p.ID, apperr.ErrNotFound)
	}
	return nil
}

// DeletePage removes a page with its blocks, every edge touching it and
// its vault file mapping.
func (db *DB) DeletePage(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("index: delete page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("index: page %s: %w", id, apperr.ErrNotFound)
	}
	ftsDelete(ctx, tx, id)
	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE page_id = ?`, id); err != nil {
		return fmt.Errorf("index: delete blocks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE src_page_id = ? OR dst_page_id = ?`, id, id); err != nil {
		return fmt.Errorf("index: delete edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vault_files WHERE page_id = ?`, id); err != nil {
		return fmt.Errorf("index: delete vault file: %w", err)
	}
	return tx.Commit()
}
