package index

import (
	"context"
	"fmt"
)

// VaultFiles returns the file → page mapping keyed by vault-relative path.
func (db *DB) VaultFiles(ctx context.Context) (map[string]VaultFile, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, page_id, checksum FROM vault_files`)
	if err != nil {
		return nil, fmt.Errorf("index: vault files: %w", err)
	}
	defer rows.Close()

	out := make(map[string]VaultFile)
	for rows.Next() {
		var f VaultFile
		if err := rows.Scan(&f.Path, &f.PageID, &f.Checksum); err != nil {
			return nil, err
		}
		out[f.Path] = f
	}
	return out, rows.Err()
}

// PutVaultFile records or replaces the mapping for f.Path.
func (db *DB) PutVaultFile(ctx context.Context, f VaultFile) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO vault_files (path, page_id, checksum) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET page_id = excluded.page_id, checksum = excluded.checksum
	`, f.Path, f.PageID, f.Checksum)
	if err != nil {
		return fmt.Errorf("index: put vault file: %w", err)
	}
	return nil
}

// DeleteVaultFile forgets the mapping for path.
func (db *DB) DeleteVaultFile(ctx context.Context, path string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM vault_files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete vault file: %w", err)
	}
	return nil
}
