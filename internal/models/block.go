package models

import (
	"fmt"
	"strings"

	"github.com/starford/bidinote/internal/apperr"
)

// Block is one block-level element of a page. Blocks are replaced
// wholesale on every save.
type Block struct {
	ID     string `json:"id"`
	PageID string `json:"page_id"`
	Text   string `json:"text"`
	// Anchor is the heading text; empty for non-heading blocks.
	Anchor string `json:"anchor,omitempty"`
	Order  int    `json:"order"`
}

// NewBlock validates identifiers and order.
func NewBlock(id, pageID, text, anchor string, order int) (Block, error) {
	if strings.TrimSpace(id) == "" {
		return Block{}, fmt.Errorf("models: block id is required: %w", apperr.ErrInvalid)
	}
	if strings.TrimSpace(pageID) == "" {
		return Block{}, fmt.Errorf("models: block page id is required: %w", apperr.ErrInvalid)
	}
	if order < 0 {
		return Block{}, fmt.Errorf("models: block order %d is negative: %w", order, apperr.ErrInvalid)
	}
	return Block{ID: id, PageID: pageID, Text: text, Anchor: anchor, Order: order}, nil
}
