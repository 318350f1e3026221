package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bidinote/internal/checksum"
	"github.com/starford/bidinote/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

func pageID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// intParam parses an optional integer query parameter, returning def when
// it is absent or malformed.
func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// ListPages handles GET /api/pages.
//
//	@Summary		List pages with optional pagination and tag filter
//	@Tags			pages
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			tag		query		string	false	"Filter by tag"
//	@Success		200		{object}	PageListResponse
//	@Security		BearerAuth
//	@Router			/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, total, err := h.svc.ListPages(r.Context(), intParam(r, "limit", 0), intParam(r, "offset", 0), r.URL.Query().Get("tag"))
	if err != nil {
		writeError(w, "list pages", err)
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: pages, Total: total})
}

// CreatePage handles POST /api/pages.
//
//	@Summary		Create a page, optionally with initial markdown
//	@Tags			pages
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreatePageRequest	true	"Page to create"
//	@Success		201		{object}	SaveResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages [post]
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreatePage(r.Context(), noteservice.PageInput{
		Title:   req.Title,
		Aliases: req.Aliases,
		Tags:    req.Tags,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, "create page", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(res.Checksum))
	writeJSON(w, http.StatusCreated, res)
}

// GetPage handles GET /api/pages/{id}.
//
//	@Summary		Get a page with its markdown
//	@Tags			pages
//	@Produce		json
//	@Param			id	path		string	true	"Page id"
//	@Success		200	{object}	PageDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{id} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.GetPage(r.Context(), pageID(r))
	if err != nil {
		writeError(w, "get page", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(page.Checksum))
	writeJSON(w, http.StatusOK, page)
}

// UpdateMeta handles PATCH /api/pages/{id}.
//
//	@Summary		Replace aliases and tags of a page
//	@Tags			pages
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Page id"
//	@Param			body	body		UpdateMetaRequest	true	"New aliases and tags"
//	@Success		200		{object}	models.Page
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{id} [patch]
func (h *Handler) UpdateMeta(w http.ResponseWriter, r *http.Request) {
	var req UpdateMetaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	page, err := h.svc.UpdateMeta(r.Context(), pageID(r), req.Aliases, req.Tags)
	if err != nil {
		writeError(w, "update page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// DeletePage handles DELETE /api/pages/{id}.
//
//	@Summary		Delete a page and every edge touching it
//	@Tags			pages
//	@Param			id	path	string	true	"Page id"
//	@Success		204	"Page deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{id} [delete]
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePage(r.Context(), pageID(r)); err != nil {
		writeError(w, "delete page", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveContent handles PUT /api/pages/{id}/content.
//
//	@Summary		Save page markdown with optimistic concurrency
//	@Tags			pages
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Page id"
//	@Param			If-Match	header		string				false	"Checksum from a previous read"
//	@Param			body		body		SaveContentRequest	true	"New markdown"
//	@Success		200			{object}	SaveResult
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{id}/content [put]
func (h *Handler) SaveContent(w http.ResponseWriter, r *http.Request) {
	var req SaveContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ifMatch := checksum.FromIfMatch(r.Header.Get("If-Match"))
	res, err := h.svc.Save(r.Context(), pageID(r), req.Content, ifMatch)
	if err != nil {
		writeError(w, "save page", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(res.Checksum))
	writeJSON(w, http.StatusOK, res)
}

// Rename handles POST /api/pages/{id}/rename.
//
//	@Summary		Rename a page; the old title becomes an alias
//	@Tags			pages
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Page id"
//	@Param			body	body		RenameRequest	true	"New title"
//	@Success		200		{object}	models.Page
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{id}/rename [post]
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	page, err := h.svc.Rename(r.Context(), pageID(r), req.Title)
	if err != nil {
		writeError(w, "rename page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Backlinks handles GET /api/pages/{id}/backlinks.
//
//	@Summary		Edges pointing at a page
//	@Tags			graph
//	@Produce		json
//	@Param			id	path		string	true	"Page id"
//	@Success		200	{object}	EdgeListResponse
//	@Security		BearerAuth
//	@Router			/pages/{id}/backlinks [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	edges, err := h.svc.Backlinks(r.Context(), pageID(r))
	if err != nil {
		writeError(w, "backlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, EdgeListResponse{Edges: edges})
}

// Outlinks handles GET /api/pages/{id}/outlinks.
//
//	@Summary		Edges leaving a page
//	@Tags			graph
//	@Produce		json
//	@Param			id	path		string	true	"Page id"
//	@Success		200	{object}	EdgeListResponse
//	@Security		BearerAuth
//	@Router			/pages/{id}/outlinks [get]
func (h *Handler) Outlinks(w http.ResponseWriter, r *http.Request) {
	edges, err := h.svc.Outlinks(r.Context(), pageID(r))
	if err != nil {
		writeError(w, "outlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, EdgeListResponse{Edges: edges})
}

// Blocks handles GET /api/pages/{id}/blocks.
//
//	@Summary		Blocks of a page in document order
//	@Tags			pages
//	@Produce		json
//	@Param			id	path		string	true	"Page id"
//	@Success		200	{object}	BlockListResponse
//	@Security		BearerAuth
//	@Router			/pages/{id}/blocks [get]
func (h *Handler) Blocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.svc.Blocks(r.Context(), pageID(r))
	if err != nil {
		writeError(w, "blocks", err)
		return
	}
	writeJSON(w, http.StatusOK, BlockListResponse{Blocks: blocks})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across blocks
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results, err := h.svc.Search(r.Context(), q, intParam(r, "limit", 0))
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Graph handles GET /api/graph.
//
//	@Summary		Get every page and edge
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Graph(r.Context())
	if err != nil {
		writeError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse(res))
}

// Expand handles GET /api/graph/expand.
//
//	@Summary		Breadth-first neighbourhood of a page
//	@Tags			graph
//	@Produce		json
//	@Param			page		query		string	true	"Anchor page id"
//	@Param			depth		query		int		false	"Hops from the anchor"
//	@Param			threshold	query		int		false	"Minimum degree for a page to propagate"
//	@Success		200			{object}	GraphResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/graph/expand [get]
func (h *Handler) Expand(w http.ResponseWriter, r *http.Request) {
	anchor := r.URL.Query().Get("page")
	if anchor == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'page' is required"))
		return
	}
	res, err := h.svc.Expand(r.Context(), anchor, intParam(r, "depth", -1), intParam(r, "threshold", -1))
	if err != nil {
		writeError(w, "expand", err)
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse(res))
}

// Query handles GET /api/query.
//
//	@Summary		Filter the graph with a query expression
//	@Tags			graph
//	@Produce		json
//	@Param			q	query		string	false	"Expression, e.g. tag=\"x\" AND out(type=\"link\")->tag=\"y\""
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/query [get]
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Query(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, "query", err)
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse(res))
}

// Mentions handles POST /api/mentions.
//
//	@Summary		Find unlinked mentions of known pages in text
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TextRequest	true	"Text to scan"
//	@Success		200		{object}	MentionsResponse
//	@Security		BearerAuth
//	@Router			/mentions [post]
func (h *Handler) Mentions(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ms, err := h.svc.DetectMentions(r.Context(), req.Text, req.Exclude)
	if err != nil {
		writeError(w, "mentions", err)
		return
	}
	writeJSON(w, http.StatusOK, MentionsResponse{Mentions: ms})
}

// Suggest handles POST /api/suggest.
//
//	@Summary		Rank pages the text could link to
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TextRequest	true	"Text to score"
//	@Success		200		{object}	SuggestResponse
//	@Security		BearerAuth
//	@Router			/suggest [post]
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sg, err := h.svc.Suggest(r.Context(), req.Text, req.Exclude, req.Limit)
	if err != nil {
		writeError(w, "suggest", err)
		return
	}
	writeJSON(w, http.StatusOK, SuggestResponse{Suggestions: sg})
}
