package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bidinote/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/pages", func(r chi.Router) {
		r.Get("/", h.ListPages)
		r.Post("/", h.CreatePage)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetPage)
			r.Patch("/", h.UpdateMeta)
			r.Delete("/", h.DeletePage)
			r.Put("/content", h.SaveContent)
			r.Post("/rename", h.Rename)
			r.Get("/backlinks", h.Backlinks)
			r.Get("/outlinks", h.Outlinks)
			r.Get("/blocks", h.Blocks)
		})
	})

	r.Get("/graph", h.Graph)
	r.Get("/graph/expand", h.Expand)
	r.Get("/query", h.Query)
	r.Get("/search", h.Search)
	r.Post("/mentions", h.Mentions)
	r.Post("/suggest", h.Suggest)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
