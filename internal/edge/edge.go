// Package edge resolves wiki links to pages and derives the typed edges of a page.
package edge

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/starford/bidinote/internal/models"
	"github.com/starford/bidinote/internal/wikilink"
)

// Resolver matches link targets against a snapshot of pages.
type Resolver struct {
	pages   []models.Page
	byTitle map[string]int
}

// NewResolver indexes pages. When titles collide the page that comes
// first in pages wins.
func NewResolver(pages []models.Page) *Resolver {
	r := &Resolver{pages: pages, byTitle: make(map[string]int, len(pages))}
	for i, p := range pages {
		if _, dup := r.byTitle[p.Title]; !dup {
			r.byTitle[p.Title] = i
		}
	}
	return r
}

// Resolve finds the page a link target refers to: an exact title match,
// otherwise the first page carrying a case-insensitively equal alias.
// Blank targets never resolve.
func (r *Resolver) Resolve(target string) (models.Page, bool) {
	if strings.TrimSpace(target) == "" {
		return models.Page{}, false
	}
	if i, ok := r.byTitle[target]; ok {
		return r.pages[i], true
	}
	for _, p := range r.pages {
		for _, a := range p.Aliases {
			if strings.EqualFold(a, target) {
				return p, true
			}
		}
	}
	return models.Page{}, false
}

// Build derives the outgoing edges of pageID.
//
// Every link inside a block yields a block-scoped edge: "embed" with
// follow props for embeds, "link" otherwise, with the anchor as the
// destination block for block references. A second pass over the whole
// markdown adds a page-scoped "transclusion" edge for every embed, so an
// embed inside a block produces both kinds. Unresolvable links are dropped.
// A blank pageID, or a resolved page without an identifier, fails with an
// error wrapping apperr.ErrInvalid.
func Build(pageID string, blocks []models.Block, markdown string, r *Resolver, now time.Time) ([]models.Edge, error) {
	var edges []models.Edge
	for _, b := range blocks {
		for l := range wikilink.Parse(b.Text) {
			target, ok := r.Resolve(l.Target)
			if !ok {
				continue
			}
			typ, props, dstBlock := models.EdgeLink, json.RawMessage(nil), ""
			if l.Kind == wikilink.KindBlock {
				dstBlock = l.Anchor
			}
			if l.Embed {
				typ, props = models.EdgeEmbed, models.FollowProps
			}
			e, err := models.NewEdge(b.ID, pageID, target.ID, dstBlock, typ, props, now)
			if err != nil {
				return nil, fmt.Errorf("edge: build: %w", err)
			}
			edges = append(edges, e)
		}
	}
	for l := range wikilink.Parse(markdown) {
		if !l.Embed {
			continue
		}
		target, ok := r.Resolve(l.Target)
		if !ok {
			continue
		}
		e, err := models.NewEdge("", pageID, target.ID, l.Anchor, models.EdgeTransclusion, models.FollowProps, now)
		if err != nil {
			return nil, fmt.Errorf("edge: build: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, nil
}
