package noteservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/bidinote/internal/alias"
	"github.com/starford/bidinote/internal/apperr"
	"github.com/starford/bidinote/internal/block"
	"github.com/starford/bidinote/internal/checksum"
	"github.com/starford/bidinote/internal/edge"
	"github.com/starford/bidinote/internal/index"
	"github.com/starford/bidinote/internal/mention"
	"github.com/starford/bidinote/internal/models"
	"github.com/starford/bidinote/internal/parser"
	"github.com/starford/bidinote/internal/suggest"
	"github.com/starford/bidinote/internal/wikilink"
)

// SaveResult is everything a save derived from the new markdown.
type SaveResult struct {
	Page        models.Page              `json:"page"`
	Checksum    string                   `json:"checksum"`
	Blocks      []models.Block           `json:"blocks"`
	Edges       []models.Edge            `json:"edges"`
	Mentions    []models.UnlinkedMention `json:"mentions"`
	Suggestions []suggest.Suggestion     `json:"suggestions"`
}

// Save replaces the markdown of a page. A non-empty ifMatch must equal the
// stored checksum, otherwise apperr.ErrConflict is returned.
//
// Blocks keep their identifiers where anchors or leading snippets match
// the previous version; blocks and outgoing edges are replaced in a single
// transaction.
func (s *Service) Save(ctx context.Context, id, markdown, ifMatch string) (*SaveResult, error) {
	s.writes.Lock()
	defer s.writes.Unlock()

	rec, err := s.db.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != rec.Checksum {
		return nil, fmt.Errorf("noteservice: page %s changed: %w", id, apperr.ErrConflict)
	}
	return s.save(ctx, rec.Page.Clone(), markdown)
}

// save runs reconcile, edge building, mention detection and suggestion for
// p and commits the result. Callers hold s.writes.
func (s *Service) save(ctx context.Context, p models.Page, markdown string) (*SaveResult, error) {
	now := s.now()
	p.UpdatedAt = now

	previous, err := s.db.LoadBlocks(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	pages, err := s.db.LoadPages(ctx)
	if err != nil {
		return nil, err
	}
	pages = withPage(pages, p)

	blocks, err := block.Reconcile(p.ID, previous, parser.Blocks(markdown), models.NewID)
	if err != nil {
		return nil, fmt.Errorf("noteservice: save %s: %w", p.ID, err)
	}

	resolver := edge.NewResolver(pages)
	edges, err := edge.Build(p.ID, blocks, markdown, resolver, now)
	if err != nil {
		return nil, fmt.Errorf("noteservice: save %s: %w", p.ID, err)
	}
	for l := range wikilink.Parse(markdown) {
		if _, ok := resolver.Resolve(l.Target); !ok {
			s.logger.Debug("unresolved link", slog.String("page_id", p.ID), slog.String("target", l.Target))
		}
	}

	sum := checksum.Sum([]byte(markdown))
	if err := s.db.CommitSave(ctx, index.PageRecord{Page: p, Content: markdown, Checksum: sum}, blocks, edges); err != nil {
		return nil, err
	}

	res := &SaveResult{
		Page:        p,
		Checksum:    sum,
		Blocks:      blocks,
		Edges:       nonNilSlice(edges),
		Mentions:    detectMentions(alias.FromPages(pages), markdown, p.ID),
		Suggestions: s.blockSuggestions(blocks, pages, p.ID),
	}
	s.logger.Info("page saved",
		slog.String("page_id", p.ID),
		slog.Int("blocks", len(blocks)),
		slog.Int("edges", len(res.Edges)),
		slog.Int("mentions", len(res.Mentions)))
	s.publish(EventPageSaved, p.ID)
	return res, nil
}

// withPage returns pages with the entry for p replaced (or appended).
func withPage(pages []models.Page, p models.Page) []models.Page {
	for i := range pages {
		if pages[i].ID == p.ID {
			pages[i] = p
			return pages
		}
	}
	return append(pages, p)
}

func detectMentions(dict *alias.Dictionary, text, selfID string) []models.UnlinkedMention {
	out := []models.UnlinkedMention{}
	for _, m := range mention.NewDetector(dict).Detect(text) {
		if m.PageID != "" && m.PageID != selfID {
			out = append(out, m)
		}
	}
	return out
}

// blockSuggestions gathers suggestions over every block, keeping the first
// occurrence of each page, up to the configured limit.
func (s *Service) blockSuggestions(blocks []models.Block, pages []models.Page, selfID string) []suggest.Suggestion {
	candidates := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		if p.ID != selfID {
			candidates = append(candidates, p)
		}
	}

	out := []suggest.Suggestion{}
	seen := make(map[string]bool)
	for _, b := range blocks {
		for _, sg := range suggest.Suggest(b.Text, candidates, s.suggestionLimit) {
			if seen[sg.Page.ID] {
				continue
			}
			seen[sg.Page.ID] = true
			out = append(out, sg)
			if len(out) == s.suggestionLimit {
				return out
			}
		}
	}
	return out
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
