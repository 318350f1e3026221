package noteservice

import (
	"context"

	"github.com/starford/bidinote/internal/alias"
	"github.com/starford/bidinote/internal/graph"
	"github.com/starford/bidinote/internal/models"
	"github.com/starford/bidinote/internal/suggest"
)

func (s *Service) snapshot(ctx context.Context) ([]models.Page, []models.Edge, error) {
	pages, err := s.db.LoadPages(ctx)
	if err != nil {
		return nil, nil, err
	}
	edges, err := s.db.LoadEdges(ctx)
	if err != nil {
		return nil, nil, err
	}
	return pages, edges, nil
}

// Graph returns every page and edge.
func (s *Service) Graph(ctx context.Context) (graph.Result, error) {
	pages, edges, err := s.snapshot(ctx)
	if err != nil {
		return graph.Result{}, err
	}
	return graph.Result{Nodes: pages, Edges: edges}, nil
}

// Expand returns the neighbourhood of a page. Negative depth or threshold
// fall back to the configured defaults. An unknown anchor yields
// apperr.ErrNotFound.
func (s *Service) Expand(ctx context.Context, anchorID string, depth, degreeThreshold int) (graph.Result, error) {
	rec, err := s.db.GetPage(ctx, anchorID)
	if err != nil {
		return graph.Result{}, err
	}
	if depth < 0 {
		depth = s.graphDepth
	}
	if degreeThreshold < 0 {
		degreeThreshold = s.degreeThreshold
	}
	pages, edges, err := s.snapshot(ctx)
	if err != nil {
		return graph.Result{}, err
	}
	return graph.Expand(rec.Page, pages, edges, depth, degreeThreshold), nil
}

// Query filters the graph with the query expression language.
func (s *Service) Query(ctx context.Context, expr string) (graph.Result, error) {
	pages, edges, err := s.snapshot(ctx)
	if err != nil {
		return graph.Result{}, err
	}
	return graph.Query(pages, edges, expr), nil
}

// DetectMentions finds unlinked mentions of known pages in text, ignoring
// mentions of excludeID.
func (s *Service) DetectMentions(ctx context.Context, text, excludeID string) ([]models.UnlinkedMention, error) {
	pages, err := s.db.LoadPages(ctx)
	if err != nil {
		return nil, err
	}
	return detectMentions(alias.FromPages(pages), text, excludeID), nil
}

// Suggest ranks pages text could link to. A non-positive limit uses the
// configured suggestion limit.
func (s *Service) Suggest(ctx context.Context, text, excludeID string, limit int) ([]suggest.Suggestion, error) {
	pages, err := s.db.LoadPages(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.suggestionLimit
	}
	candidates := pages[:0]
	for _, p := range pages {
		if p.ID != excludeID {
			candidates = append(candidates, p)
		}
	}
	return suggest.Suggest(text, candidates, limit), nil
}
