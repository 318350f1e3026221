// Package noteservice orchestrates saves and graph queries on top of the
// page index.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/bidinote/internal/apperr"
	"github.com/starford/bidinote/internal/checksum"
	"github.com/starford/bidinote/internal/index"
	"github.com/starford/bidinote/internal/models"
)

// Change event kinds published after a successful mutation.
const (
	EventPageSaved   = "page.saved"
	EventPageDeleted = "page.deleted"
)

// EventSink receives change notifications.
type EventSink interface {
	PublishPageEvent(kind, pageID string)
}

// PageDetail is a page together with its current markdown.
type PageDetail struct {
	models.Page
	Content  string `json:"content"`
	Checksum string `json:"checksum"`
}

// PageInput describes a page to create or import. A blank ID mints a new one.
type PageInput struct {
	ID      string
	Title   string
	Aliases []string
	Tags    []string
	Content string
}

// Service coordinates the index and the note engine.
type Service struct {
	db     index.PageIndex
	logger *slog.Logger
	events EventSink
	now    func() time.Time

	suggestionLimit int
	graphDepth      int
	degreeThreshold int

	// writes serialises mutations so that If-Match checks and
	// read-modify-write cycles see a stable page.
	writes sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithEvents sets the sink notified after saves and deletes.
func WithEvents(sink EventSink) Option {
	return func(s *Service) { s.events = sink }
}

// WithSuggestionLimit caps the number of link suggestions per save.
func WithSuggestionLimit(n int) Option {
	return func(s *Service) { s.suggestionLimit = n }
}

// WithGraphDefaults sets the expansion depth and degree threshold used
// when a caller does not specify them.
func WithGraphDefaults(depth, degreeThreshold int) Option {
	return func(s *Service) {
		s.graphDepth = depth
		s.degreeThreshold = degreeThreshold
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new note service.
func NewService(db index.PageIndex, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		db:              db,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
		suggestionLimit: 5,
		graphDepth:      1,
		degreeThreshold: 0,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// GraphDefaults returns the configured expansion depth and degree threshold.
func (s *Service) GraphDefaults() (depth, degreeThreshold int) {
	return s.graphDepth, s.degreeThreshold
}

func (s *Service) publish(kind, pageID string) {
	if s.events != nil {
		s.events.PublishPageEvent(kind, pageID)
	}
}

// CreatePage stores a new page and, when content is given, saves it.
func (s *Service) CreatePage(ctx context.Context, in PageInput) (*SaveResult, error) {
	s.writes.Lock()
	defer s.writes.Unlock()
	return s.create(ctx, in)
}

func (s *Service) create(ctx context.Context, in PageInput) (*SaveResult, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("noteservice: title is required: %w", apperr.ErrInvalid)
	}
	id := in.ID
	if id == "" {
		id = models.NewID()
	}
	p, err := models.NewPage(id, strings.TrimSpace(in.Title))
	if err != nil {
		return nil, err
	}
	p.SetAliases(in.Aliases)
	p.SetTags(in.Tags)
	p.UpdatedAt = s.now()

	if err := s.db.InsertPage(ctx, index.PageRecord{Page: p, Checksum: checksum.Sum(nil)}); err != nil {
		return nil, err
	}
	s.logger.Info("page created", slog.String("page_id", p.ID), slog.String("title", p.Title))
	return s.save(ctx, p, in.Content)
}

// Import creates the page in.ID or, if it exists, replaces its metadata
// and content. Vault sync uses it to mirror files.
func (s *Service) Import(ctx context.Context, in PageInput) (*SaveResult, error) {
	s.writes.Lock()
	defer s.writes.Unlock()

	if in.ID != "" {
		rec, err := s.db.GetPage(ctx, in.ID)
		switch {
		case err == nil:
			p := rec.Page.Clone()
			if t := strings.TrimSpace(in.Title); t != "" {
				p.Title = t
			}
			p.SetAliases(in.Aliases)
			p.SetTags(in.Tags)
			return s.save(ctx, p, in.Content)
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
	}
	return s.create(ctx, in)
}

// GetPage returns a page with its markdown.
func (s *Service) GetPage(ctx context.Context, id string) (*PageDetail, error) {
	rec, err := s.db.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PageDetail{Page: rec.Page, Content: rec.Content, Checksum: rec.Checksum}, nil
}

// FindPageByTitle returns the page with exactly this title.
func (s *Service) FindPageByTitle(ctx context.Context, title string) (*models.Page, error) {
	return s.db.FindPageByTitle(ctx, title)
}

// ListPages returns paginated pages with an optional tag filter.
func (s *Service) ListPages(ctx context.Context, limit, offset int, tag string) ([]models.Page, int, error) {
	return s.db.ListPages(ctx, limit, offset, tag)
}

// Rename changes the title of a page and keeps the old title as an alias,
// so existing links by the old name keep resolving.
func (s *Service) Rename(ctx context.Context, id, newTitle string) (*models.Page, error) {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return nil, fmt.Errorf("noteservice: title is required: %w", apperr.ErrInvalid)
	}
	s.writes.Lock()
	defer s.writes.Unlock()

	rec, err := s.db.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	p := rec.Page.Clone()
	p.Rename(newTitle)
	p.UpdatedAt = s.now()
	if err := s.db.UpdatePageMeta(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("page renamed", slog.String("page_id", id), slog.String("title", newTitle))
	s.publish(EventPageSaved, id)
	return &p, nil
}

// UpdateMeta replaces the aliases and tags of a page.
func (s *Service) UpdateMeta(ctx context.Context, id string, aliases, tags []string) (*models.Page, error) {
	s.writes.Lock()
	defer s.writes.Unlock()

	rec, err := s.db.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	p := rec.Page.Clone()
	p.SetAliases(aliases)
	p.SetTags(tags)
	p.UpdatedAt = s.now()
	if err := s.db.UpdatePageMeta(ctx, p); err != nil {
		return nil, err
	}
	s.publish(EventPageSaved, id)
	return &p, nil
}

// DeletePage removes a page and every edge touching it.
func (s *Service) DeletePage(ctx context.Context, id string) error {
	s.writes.Lock()
	defer s.writes.Unlock()

	if err := s.db.DeletePage(ctx, id); err != nil {
		return err
	}
	s.logger.Info("page deleted", slog.String("page_id", id))
	s.publish(EventPageDeleted, id)
	return nil
}

// Blocks returns the blocks of a page in document order.
func (s *Service) Blocks(ctx context.Context, id string) ([]models.Block, error) {
	if _, err := s.db.GetPage(ctx, id); err != nil {
		return nil, err
	}
	return s.db.LoadBlocks(ctx, id)
}

// Backlinks returns the edges pointing at a page.
func (s *Service) Backlinks(ctx context.Context, id string) ([]models.Edge, error) {
	if _, err := s.db.GetPage(ctx, id); err != nil {
		return nil, err
	}
	return s.db.EdgesTo(ctx, id)
}

// Outlinks returns the edges leaving a page.
func (s *Service) Outlinks(ctx context.Context, id string) ([]models.Edge, error) {
	if _, err := s.db.GetPage(ctx, id); err != nil {
		return nil, err
	}
	return s.db.EdgesFrom(ctx, id)
}

// Search delegates full-text search over blocks to the index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	return s.db.Search(ctx, query, limit)
}
