// Package block assigns stable identifiers to the blocks of a re-saved page.
package block

import (
	"fmt"
	"strings"

	"github.com/starford/bidinote/internal/models"
	"github.com/starford/bidinote/internal/parser"
)

// SnippetLength is the number of leading characters used for fallback matching.
const SnippetLength = 40

// Snippet returns the first SnippetLength characters of text after trimming
// surrounding whitespace.
func Snippet(text string) string {
	s := []rune(strings.TrimSpace(text))
	if len(s) > SnippetLength {
		s = s[:SnippetLength]
	}
	return string(s)
}

// claimQueue hands out previous blocks for one key in their stored order.
type claimQueue map[string][]models.Block

func (q claimQueue) claim(key string, claimed map[string]bool) (models.Block, bool) {
	for len(q[key]) > 0 {
		b := q[key][0]
		q[key] = q[key][1:]
		if !claimed[b.ID] {
			return b, true
		}
	}
	return models.Block{}, false
}

// Reconcile builds the new block set for pageID from freshly parsed
// elements, reusing previous identifiers where content still matches.
//
// Each element first tries to claim a previous block with the same anchor,
// then one with the same leading snippet. A previous block is claimed at
// most once; among candidates for one key the earliest stored block wins.
// Unmatched elements get an identifier from newID. Orders are 0..N-1 in
// parse order. A blank pageID or a blank minted identifier fails with an
// error wrapping apperr.ErrInvalid.
func Reconcile(pageID string, previous []models.Block, parsed []parser.Element, newID func() string) ([]models.Block, error) {
	byAnchor := make(claimQueue)
	bySnippet := make(claimQueue)
	for _, b := range previous {
		if b.Anchor != "" {
			byAnchor[b.Anchor] = append(byAnchor[b.Anchor], b)
		}
		key := Snippet(b.Text)
		bySnippet[key] = append(bySnippet[key], b)
	}

	claimed := make(map[string]bool, len(previous))
	out := make([]models.Block, 0, len(parsed))
	for i, el := range parsed {
		var (
			match models.Block
			ok    bool
		)
		if el.Anchor != "" {
			match, ok = byAnchor.claim(el.Anchor, claimed)
		}
		if !ok {
			match, ok = bySnippet.claim(Snippet(el.Text), claimed)
		}

		id := ""
		if ok {
			id = match.ID
			claimed[id] = true
		}
		if strings.TrimSpace(id) == "" {
			id = newID()
		}
		b, err := models.NewBlock(id, pageID, el.Text, el.Anchor, i)
		if err != nil {
			return nil, fmt.Errorf("block: reconcile: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}
