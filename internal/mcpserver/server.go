// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the note graph as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/bidinote/internal/noteservice"
)

const formatURI = "bidinote://page-format"

// Server wraps the MCP server with note graph tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"bidinote",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Full-text search through page blocks. Returns page id, block id, snippet and score."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read a page with its markdown by id or by exact title."),
		mcp.WithString("id", mcp.Description("Page id")),
		mcp.WithString("title", mcp.Description("Exact page title, used when id is empty")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new page. Content is Markdown with [[wiki links]]; "+
			"read the format first via get_page_format or the "+formatURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Page title")),
		mcp.WithString("content", mcp.Description("Markdown body")),
		mcp.WithString("aliases", mcp.Description("Comma-separated alternative names")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.createPage)

	s.mcp.AddTool(mcp.NewTool("save_page",
		mcp.WithDescription("Replace the markdown of a page. Returns derived blocks, edges, "+
			"unlinked mentions and link suggestions."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New markdown body")),
		mcp.WithString("checksum", mcp.Description("Checksum from read_page; the save fails if the page changed since")),
	), s.savePage)

	s.mcp.AddTool(mcp.NewTool("rename_page",
		mcp.WithDescription("Rename a page. The old title stays reachable as an alias."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page id")),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
	), s.renamePage)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("List the edges pointing at a page."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page id")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("expand_graph",
		mcp.WithDescription("Breadth-first neighbourhood of a page. Pages with fewer edges "+
			"than the degree threshold are included but not expanded."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Anchor page id")),
		mcp.WithNumber("depth", mcp.Description("Hops from the anchor (default from config)")),
		mcp.WithNumber("threshold", mcp.Description("Minimum degree to expand a page (default from config)")),
	), s.expandGraph)

	s.mcp.AddTool(mcp.NewTool("query_graph",
		mcp.WithDescription(`Filter pages with clauses joined by " AND ": type="note", tag="x", `+
			`out(type="link")->tag="y". Returns matching pages and the edges touching them.`),
		mcp.WithString("expr", mcp.Required(), mcp.Description("Query expression")),
	), s.queryGraph)

	s.mcp.AddTool(mcp.NewTool("find_unlinked_mentions",
		mcp.WithDescription("Find titles or aliases of existing pages mentioned in text without a wiki link."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to scan")),
		mcp.WithString("exclude", mcp.Description("Page id to ignore, usually the page the text belongs to")),
	), s.findUnlinkedMentions)

	s.mcp.AddTool(mcp.NewTool("suggest_links",
		mcp.WithDescription("Rank existing pages the text could link to."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to score")),
		mcp.WithString("exclude", mcp.Description("Page id to leave out")),
		mcp.WithNumber("limit", mcp.Description("Maximum suggestions (default from config)")),
	), s.suggestLinks)

	s.mcp.AddTool(mcp.NewTool("get_page_format",
		mcp.WithDescription("Returns the page markdown format and link syntax. "+
			"Call this before creating or saving pages."),
	), s.getPageFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Page Format",
			mcp.WithResourceDescription("Markdown and wiki-link syntax understood by the note graph."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPageFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits)
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		title := req.GetString("title", "")
		if title == "" {
			return mcp.NewToolResultError("id or title is required"), nil
		}
		p, err := s.svc.FindPageByTitle(ctx, title)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", title)), nil
		}
		id = p.ID
	}
	page, err := s.svc.GetPage(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(page)
}

func (s *Server) createPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.CreatePage(ctx, noteservice.PageInput{
		Title:   title,
		Content: req.GetString("content", ""),
		Aliases: splitList(req.GetString("aliases", "")),
		Tags:    splitList(req.GetString("tags", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) savePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Save(ctx, id, content, req.GetString("checksum", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) renamePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.Rename(ctx, id, title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(page)
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	edges, err := s.svc.Backlinks(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(edges) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return jsonResult(edges)
}

func (s *Server) expandGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Expand(ctx, id, req.GetInt("depth", -1), req.GetInt("threshold", -1))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) queryGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := req.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Query(ctx, expr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) findUnlinkedMentions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ms, err := s.svc.DetectMentions(ctx, text, req.GetString("exclude", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ms)
}

func (s *Server) suggestLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sg, err := s.svc.Suggest(ctx, text, req.GetString("exclude", ""), req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sg)
}

func (s *Server) getPageFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PageFormatContract), nil
}

func (s *Server) readPageFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     PageFormatContract,
		},
	}, nil
}
