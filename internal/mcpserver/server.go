// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the library catalog as tools for LLM integration via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/libris/internal/apperr"
	"github.com/starford/libris/internal/catalog"
	"github.com/starford/libris/internal/pipeline"
)

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalog.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *catalog.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Libris",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	idArg := func(what string) mcp.ToolOption {
		return mcp.WithString("id", mcp.Required(), mcp.Description("Identifier of the "+what+" (UUID)"))
	}

	s.mcp.AddTool(mcp.NewTool("list_genres",
		mcp.WithDescription("List every genre ordered by name."),
	), s.listGenres)

	s.mcp.AddTool(mcp.NewTool("get_genre",
		mcp.WithDescription("Get a genre together with the books tagged with it."),
		idArg("genre"),
	), s.getGenre)

	s.mcp.AddTool(mcp.NewTool("list_authors",
		mcp.WithDescription("List every author ordered by family name."),
	), s.listAuthors)

	s.mcp.AddTool(mcp.NewTool("get_author",
		mcp.WithDescription("Get an author together with their books."),
		idArg("author"),
	), s.getAuthor)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List every book with its author."),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("get_book",
		mcp.WithDescription("Get a book with its author, genres and physical copies."),
		idArg("book"),
	), s.getBook)

	s.mcp.AddTool(mcp.NewTool("list_bookinstances",
		mcp.WithDescription("List every physical copy with its book and circulation status."),
	), s.listBookInstances)

	s.mcp.AddTool(mcp.NewTool("create_genre",
		mcp.WithDescription("Create a genre. If a genre with the same name exists it is returned instead. "+
			"Read the field rules first via get_catalog_rules or the libris://catalog-rules resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Genre name, e.g. Fantasy")),
	), s.createGenre)

	s.mcp.AddTool(mcp.NewTool("delete_genre",
		mcp.WithDescription("Delete a genre. Fails while any book is tagged with it and lists those books."),
		idArg("genre"),
	), s.deleteGenre)

	s.mcp.AddTool(mcp.NewTool("get_catalog_rules",
		mcp.WithDescription("Returns the field rules applied when catalog records are created or updated."),
	), s.getCatalogRules)

	s.mcp.AddResource(
		mcp.NewResource(rulesURI, "Catalog Field Rules",
			mcp.WithResourceDescription("Validation and sanitization rules for every catalog form field."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCatalogRulesResource,
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

func errorResult(id string, err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	case errors.Is(err, apperr.ErrInvalidID):
		return mcp.NewToolResultError(fmt.Sprintf("invalid id: %s", id)), nil
	default:
		return mcp.NewToolResultError(err.Error()), nil
	}
}

// lookup adapts a catalog read keyed by the "id" argument into a tool handler.
func lookup[T any](fetch func(ctx context.Context, id string) (T, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		v, err := fetch(ctx, id)
		if err != nil {
			return errorResult(id, err)
		}
		return jsonResult(v)
	}
}

// list adapts a catalog listing into a tool handler.
func list[T any](fetch func(ctx context.Context) (T, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v, err := fetch(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(v)
	}
}

func (s *Server) listGenres(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return list(s.svc.ListGenres)(ctx, req)
}

func (s *Server) getGenre(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return lookup(s.svc.GenreDetail)(ctx, req)
}

func (s *Server) listAuthors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return list(s.svc.ListAuthors)(ctx, req)
}

func (s *Server) getAuthor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return lookup(s.svc.AuthorDetail)(ctx, req)
}

func (s *Server) listBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return list(s.svc.ListBooks)(ctx, req)
}

func (s *Server) getBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return lookup(s.svc.BookDetail)(ctx, req)
}

func (s *Server) listBookInstances(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return list(s.svc.ListBookInstances)(ctx, req)
}

func (s *Server) createGenre(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.CreateGenre(ctx, url.Values{"name": {name}})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.Action == pipeline.Redisplay {
		msgs := make([]string, len(res.Failures))
		for i, f := range res.Failures {
			msgs[i] = f.Field + ": " + f.Message
		}
		return mcp.NewToolResultError("validation failed: " + strings.Join(msgs, "; ")), nil
	}

	return jsonResult(map[string]any{
		"genre":    res.Entity,
		"url":      res.Location,
		"existing": res.Existing,
	})
}

func (s *Server) deleteGenre(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.DeleteGenre(ctx, id)
	if err != nil {
		return errorResult(id, err)
	}
	switch res.State {
	case pipeline.Blocked:
		titles := make([]string, len(res.Dependents))
		for i, b := range res.Dependents {
			titles[i] = b.Title
		}
		return mcp.NewToolResultError(fmt.Sprintf("genre is used by %d book(s): %s",
			len(titles), strings.Join(titles, ", "))), nil
	case pipeline.Gone:
		return mcp.NewToolResultText(fmt.Sprintf("already deleted: %s", id)), nil
	default:
		return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
	}
}

func (s *Server) getCatalogRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CatalogRules), nil
}

func (s *Server) readCatalogRulesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      rulesURI,
			MIMEType: "text/markdown",
			Text:     CatalogRules,
		},
	}, nil
}
