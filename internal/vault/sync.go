// Package vault mirrors a directory of markdown files into the page index.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/bidinote/internal/apperr"
	"github.com/starford/bidinote/internal/checksum"
	"github.com/starford/bidinote/internal/index"
	"github.com/starford/bidinote/internal/noteservice"
	"github.com/starford/bidinote/internal/parser"
	"github.com/starford/bidinote/internal/storage"
)

// Syncer imports vault files as pages. The vault_files table remembers
// which page each file became, so ids survive title changes.
type Syncer struct {
	db     index.PageIndex
	svc    *noteservice.Service
	store  storage.Provider
	logger *slog.Logger
}

// NewSyncer creates a Syncer.
func NewSyncer(db index.PageIndex, svc *noteservice.Service, store storage.Provider, logger *slog.Logger) *Syncer {
	return &Syncer{db: db, svc: svc, store: store, logger: logger}
}

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and imported
//   - pages whose files were removed from disk are deleted
//
// Changed files are imported twice when more than one changed, so links
// between files of the same batch resolve regardless of walk order.
func (s *Syncer) Sync(ctx context.Context) error {
	metas, err := s.store.List("")
	if err != nil {
		return err
	}
	known, err := s.db.VaultFiles(ctx)
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	var changed []string
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if f, ok := known[m.Path]; ok && f.Checksum == m.Checksum {
			continue
		}
		if _, err := s.importPath(ctx, m.Path, known, true); err != nil {
			s.logger.Warn("sync: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		changed = append(changed, m.Path)
		s.logger.Debug("sync: imported", slog.String("path", m.Path))
	}

	if len(changed) > 1 {
		for _, p := range changed {
			if _, err := s.importPath(ctx, p, known, false); err != nil {
				s.logger.Warn("sync: relink failed", slog.String("path", p), slog.String("error", err.Error()))
			}
		}
	}

	// Remove stale entries.
	for p, f := range known {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := s.removeFile(ctx, f); err != nil {
			s.logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			s.logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}

	s.logger.Info("sync: done", slog.Int("files", len(metas)), slog.Int("imported", len(changed)))
	return nil
}

// importPath reads path and imports it, recording the mapping in known.
// With skipUnchanged, a file whose checksum matches the recorded one is
// left alone and reported as false.
func (s *Syncer) importPath(ctx context.Context, path string, known map[string]index.VaultFile, skipUnchanged bool) (bool, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return false, err
	}
	prev, ok := known[path]
	sum := checksum.Sum(data)
	if skipUnchanged && ok && prev.Checksum == sum {
		return false, nil
	}

	doc := parser.ParseDocument(path, data)
	id := doc.Meta.ID
	if ok {
		id = prev.PageID
	}
	res, err := s.svc.Import(ctx, noteservice.PageInput{
		ID:      id,
		Title:   doc.Title,
		Aliases: doc.Meta.Aliases,
		Tags:    doc.Meta.Tags,
		Content: doc.Body,
	})
	if err != nil {
		return false, fmt.Errorf("vault: import %s: %w", path, err)
	}
	f := index.VaultFile{Path: path, PageID: res.Page.ID, Checksum: sum}
	if err := s.db.PutVaultFile(ctx, f); err != nil {
		return false, err
	}
	known[path] = f
	return true, nil
}

// removePath deletes the page imported from path, if any.
func (s *Syncer) removePath(ctx context.Context, path string) (bool, error) {
	known, err := s.db.VaultFiles(ctx)
	if err != nil {
		return false, err
	}
	f, ok := known[path]
	if !ok {
		return false, nil
	}
	return true, s.removeFile(ctx, f)
}

func (s *Syncer) removeFile(ctx context.Context, f index.VaultFile) error {
	if err := s.svc.DeletePage(ctx, f.PageID); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return s.db.DeleteVaultFile(ctx, f.Path)
}
