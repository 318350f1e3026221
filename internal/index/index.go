package index

import (
	"context"

	"github.com/starford/bidinote/internal/models"
)

// PageRecord is a stored page with its current markdown and checksum.
type PageRecord struct {
	Page     models.Page
	Content  string
	Checksum string
}

// VaultFile maps a vault file to the page imported from it.
type VaultFile struct {
	Path     string
	PageID   string
	Checksum string
}

// PageIndex is the storage contract of the note engine.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type PageIndex interface {
	InsertPage(ctx context.Context, rec PageRecord) error
	GetPage(ctx context.Context, id string) (*PageRecord, error)
	FindPageByTitle(ctx context.Context, title string) (*models.Page, error)
	LoadPages(ctx context.Context) ([]models.Page, error)
	ListPages(ctx context.Context, limit, offset int, tag string) ([]models.Page, int, error)
	UpdatePageMeta(ctx context.Context, p models.Page) error
	DeletePage(ctx context.Context, id string) error

	CommitSave(ctx context.Context, rec PageRecord, blocks []models.Block, edges []models.Edge) error
	LoadBlocks(ctx context.Context, pageID string) ([]models.Block, error)
	EdgesFrom(ctx context.Context, pageID string) ([]models.Edge, error)
	EdgesTo(ctx context.Context, pageID string) ([]models.Edge, error)
	LoadEdges(ctx context.Context) ([]models.Edge, error)
	Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error)

	VaultFiles(ctx context.Context) (map[string]VaultFile, error)
	PutVaultFile(ctx context.Context, f VaultFile) error
	DeleteVaultFile(ctx context.Context, path string) error

	Close() error
}

// Verify *DB satisfies PageIndex at compile time.
var _ PageIndex = (*DB)(nil)
