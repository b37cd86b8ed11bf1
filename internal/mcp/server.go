// Package mcp exposes the training log and the substitution engine as
// MCP tools, so an assistant can answer questions like "what can I do
// instead of bench press today".
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/pivotfit/internal/catalog"
	"github.com/meltforce/pivotfit/internal/pivot"
	"github.com/meltforce/pivotfit/internal/program"
	"github.com/meltforce/pivotfit/internal/quota"
	"github.com/meltforce/pivotfit/internal/swap"
)

// Deps are the collaborators the MCP tools read from. Everything here
// is read-only: swaps and set logging stay behind the HTTP API where
// the confirmation flow lives.
type Deps struct {
	Catalog      catalog.Provider
	Engine       *pivot.Engine
	Store        *program.Store
	Quota        *quota.Tracker
	Entitlements swap.Entitlements
	Log          *slog.Logger
}

// New creates an MCP server with all tools and resources registered.
func New(d Deps, version string) *server.MCPServer {
	s := server.NewMCPServer("PivotFit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("PivotFit workout tracker. Query the exercise catalog, find substitution candidates for an exercise, and read the training log and swap quota."),
	)

	h := &handlers{deps: d}

	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolFindAlternatives, Handler: h.findAlternatives},
		server.ServerTool{Tool: toolGetDayLog, Handler: h.getDayLog},
		server.ServerTool{Tool: toolGetSwapQuota, Handler: h.getSwapQuota},
		server.ServerTool{Tool: toolGetFavorites, Handler: h.getFavorites},
	)

	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.catalogResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	deps Deps
}

var resCatalog = mcp.NewResource(
	"pivotfit://catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("The full exercise catalog with movement pattern, muscle and equipment tags"),
	mcp.WithMIMEType("application/json"),
)
