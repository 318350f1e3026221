// Package models defines the domain types for the note graph.
package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/bidinote/internal/apperr"
)

// NewID returns a fresh time-sortable identifier (UUIDv7).
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Page is a node of the note graph. ID never changes after creation;
// Title is mutable and not required to be unique.
//
// Aliases and Tags keep insertion order for display. Mutators never write
// through a shared backing array, so copies of a Page can be modified
// independently.
type Page struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Aliases   []string  `json:"aliases"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPage validates the identifier and returns a page stamped with the current time.
func NewPage(id, title string) (Page, error) {
	if strings.TrimSpace(id) == "" {
		return Page{}, fmt.Errorf("models: page id is required: %w", apperr.ErrInvalid)
	}
	return Page{
		ID:        id,
		Title:     title,
		Aliases:   []string{},
		Tags:      []string{},
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Clone returns a deep copy of p.
func (p Page) Clone() Page {
	c := p
	c.Aliases = slices.Clone(p.Aliases)
	c.Tags = slices.Clone(p.Tags)
	if c.Aliases == nil {
		c.Aliases = []string{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

// AddAlias appends a trimmed, non-blank alias if it is not already present.
func (p *Page) AddAlias(alias string) {
	p.Aliases = appendUnique(slices.Clone(p.Aliases), alias)
}

// SetAliases replaces the alias set.
func (p *Page) SetAliases(aliases []string) {
	p.Aliases = cleanSet(aliases)
}

// SetTags replaces the tag set.
func (p *Page) SetTags(tags []string) {
	p.Tags = cleanSet(tags)
}

// HasTag reports whether p carries tag, ignoring case.
func (p Page) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Rename sets a new title and keeps the previous one reachable as an alias.
func (p *Page) Rename(newTitle string) {
	old := p.Title
	p.Title = newTitle
	p.AddAlias(old)
}

func cleanSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = appendUnique(out, v)
	}
	return out
}

func appendUnique(dst []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" || slices.Contains(dst, v) {
		if dst == nil {
			return []string{}
		}
		return dst
	}
	return append(dst, v)
}

// PagesByID indexes pages by identifier.
func PagesByID(pages []Page) map[string]Page {
	out := make(map[string]Page, len(pages))
	for _, p := range pages {
		out[p.ID] = p
	}
	return out
}
