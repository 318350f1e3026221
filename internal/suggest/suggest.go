// Package suggest ranks pages a piece of text could link to.
package suggest

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/bidinote/internal/models"
)

// Suggestion is a scored link candidate.
type Suggestion struct {
	Page  models.Page `json:"page"`
	Score int         `json:"score"`
}

// Tokens splits s on non-word characters, lower-cases the pieces and drops
// those shorter than two characters.
func Tokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 1 {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}

// Suggest scores every page by the frequency in text of the tokens found
// in its title, aliases and tags (each page token counted once) and
// returns at most limit pages with a positive score, best first. Ties
// keep the order of pages.
func Suggest(text string, pages []models.Page, limit int) []Suggestion {
	if limit <= 0 {
		return []Suggestion{}
	}
	tf := make(map[string]int)
	for _, tok := range Tokens(text) {
		tf[tok]++
	}
	if len(tf) == 0 {
		return []Suggestion{}
	}

	var scored []Suggestion
	for _, p := range pages {
		seen := make(map[string]bool)
		score := 0
		for _, field := range pageFields(p) {
			for _, tok := range Tokens(field) {
				if seen[tok] {
					continue
				}
				seen[tok] = true
				score += tf[tok]
			}
		}
		if score > 0 {
			scored = append(scored, Suggestion{Page: p, Score: score})
		}
	}

	slices.SortStableFunc(scored, func(a, b Suggestion) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	if scored == nil {
		return []Suggestion{}
	}
	return scored
}

func pageFields(p models.Page) []string {
	fields := make([]string, 0, 1+len(p.Aliases)+len(p.Tags))
	fields = append(fields, p.Title)
	fields = append(fields, p.Aliases...)
	return append(fields, p.Tags...)
}
