package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/starford/bidinote/internal/apperr"
)

// Edge types.
const (
	EdgeLink         = "link"
	EdgeEmbed        = "embed"
	EdgeTransclusion = "transclusion"
)

// FollowProps is the property payload carried by embed and transclusion edges.
var FollowProps = json.RawMessage(`{"mode":"follow"}`)

// Edge is a derived, typed link between pages (optionally anchored to blocks).
type Edge struct {
	SrcBlockID string          `json:"src_block_id,omitempty"`
	SrcPageID  string          `json:"src_page_id"`
	DstPageID  string          `json:"dst_page_id"`
	DstBlockID string          `json:"dst_block_id,omitempty"`
	Type       string          `json:"type"`
	Props      json.RawMessage `json:"props,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewEdge validates the page endpoints. An empty type falls back to
// EdgeLink and a zero createdAt to the current time.
func NewEdge(srcBlockID, srcPageID, dstPageID, dstBlockID, typ string, props json.RawMessage, createdAt time.Time) (Edge, error) {
	if strings.TrimSpace(srcPageID) == "" {
		return Edge{}, fmt.Errorf("models: edge source page is required: %w", apperr.ErrInvalid)
	}
	if strings.TrimSpace(dstPageID) == "" {
		return Edge{}, fmt.Errorf("models: edge destination page is required: %w", apperr.ErrInvalid)
	}
	if typ == "" {
		typ = EdgeLink
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return Edge{
		SrcBlockID: srcBlockID,
		SrcPageID:  srcPageID,
		DstPageID:  dstPageID,
		DstBlockID: dstBlockID,
		Type:       typ,
		Props:      props,
		CreatedAt:  createdAt,
	}, nil
}

// Other returns the endpoint opposite to pageID.
func (e Edge) Other(pageID string) string {
	if e.SrcPageID == pageID {
		return e.DstPageID
	}
	return e.SrcPageID
}
