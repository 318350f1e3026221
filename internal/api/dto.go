package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/bidinote/internal/models"
	"github.com/starford/bidinote/internal/noteservice"
	"github.com/starford/bidinote/internal/suggest"
)

var labelRules = validation.Each(validation.Length(0, 256))

// CreatePageRequest is the request body for creating a page.
type CreatePageRequest struct {
	Title   string   `json:"title" example:"Page B" validate:"required"`
	Aliases []string `json:"aliases" example:"B,Bee"`
	Tags    []string `json:"tags" example:"project"`
	Content string   `json:"content" example:"# Page B\nlink to [[Page A]]"`
}

// Validate implements validation.Validatable.
func (r *CreatePageRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 512)),
		validation.Field(&r.Aliases, labelRules),
		validation.Field(&r.Tags, labelRules),
	)
}

// UpdateMetaRequest replaces aliases and tags of a page.
type UpdateMetaRequest struct {
	Aliases []string `json:"aliases"`
	Tags    []string `json:"tags"`
}

// Validate implements validation.Validatable.
func (r *UpdateMetaRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Aliases, labelRules),
		validation.Field(&r.Tags, labelRules),
	)
}

// SaveContentRequest is the request body for saving page markdown.
type SaveContentRequest struct {
	Content string `json:"content" example:"link to [[Page B]]"`
}

// Validate implements validation.Validatable.
func (r *SaveContentRequest) Validate() error { return nil }

// RenameRequest is the request body for renaming a page.
type RenameRequest struct {
	Title string `json:"title" example:"Page B 2025" validate:"required"`
}

// Validate implements validation.Validatable.
func (r *RenameRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 512)),
	)
}

// TextRequest carries free text for mention detection and suggestions.
// Exclude names a page to leave out of the results.
type TextRequest struct {
	Text    string `json:"text" example:"mentions Page B without linking" validate:"required"`
	Exclude string `json:"exclude,omitempty"`
	Limit   int    `json:"limit,omitempty" example:"5"`
}

// Validate implements validation.Validatable.
func (r *TextRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Limit, validation.Min(0), validation.Max(100)),
	)
}

// PageDetail is the full page response type (aliased from the domain layer).
type PageDetail = noteservice.PageDetail

// SaveResult is the save response type (aliased from the domain layer).
type SaveResult = noteservice.SaveResult

// PageListResponse wraps paginated page listings.
type PageListResponse struct {
	Pages []models.Page `json:"pages" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// EdgeListResponse wraps edges of one page.
type EdgeListResponse struct {
	Edges []models.Edge `json:"edges" validate:"required"`
}

// BlockListResponse wraps the blocks of one page.
type BlockListResponse struct {
	Blocks []models.Block `json:"blocks" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchHit `json:"results" validate:"required"`
}

// GraphResponse is a selected subgraph.
type GraphResponse struct {
	Nodes []models.Page `json:"nodes" validate:"required"`
	Edges []models.Edge `json:"edges" validate:"required"`
}

// MentionsResponse wraps unlinked mentions.
type MentionsResponse struct {
	Mentions []models.UnlinkedMention `json:"mentions" validate:"required"`
}

// SuggestResponse wraps link suggestions.
type SuggestResponse struct {
	Suggestions []suggest.Suggestion `json:"suggestions" validate:"required"`
}
