// Package mcp exposes read-only audit tools over discovered sessions, the
// facet cache, and run history.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/insights/internal/discovery"
	"github.com/joescharf/insights/internal/facet"
	"github.com/joescharf/insights/internal/store"
)

// Server wraps the insights data layer and exposes it as MCP tools. Every
// tool is read-only: the server never triggers analysis or mutates the
// cache.
type Server struct {
	scanner *discovery.Scanner
	cache   *facet.Cache
	store   store.Store
	model   string
}

// NewServer creates the MCP server wrapper with all required dependencies.
func NewServer(scanner *discovery.Scanner, cache *facet.Cache, st store.Store, model string) *Server {
	return &Server{
		scanner: scanner,
		cache:   cache,
		store:   st,
		model:   model,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("insights", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listSessionsTool())
	srv.AddTool(s.cacheStatusTool())
	srv.AddTool(s.lastRunTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// insights_list_sessions
func (s *Server) listSessionsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("insights_list_sessions",
		mcp.WithDescription("List discovered Claude Code session transcripts. Returns a JSON array with session id, project, modification time, size, and whether a cached analysis exists."),
		mcp.WithString("project", mcp.Description("Filter projects by glob pattern, e.g. '*api*'")),
		mcp.WithString("after", mcp.Description("Only sessions modified after this date (YYYY-MM-DD)")),
	)
	return tool, s.handleListSessions
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := discovery.Filter{ProjectGlob: request.GetString("project", "")}
	if after := request.GetString("after", ""); after != "" {
		t, err := time.Parse("2006-01-02", after)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid after date %q: expected YYYY-MM-DD", after)), nil
		}
		filter.After = t
	}

	result, err := s.scanner.Scan(filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to scan sessions: %v", err)), nil
	}

	type sessionOut struct {
		SessionID string `json:"session_id"`
		Project   string `json:"project"`
		ModTime   string `json:"mod_time"`
		SizeBytes int64  `json:"size_bytes"`
		IsAgent   bool   `json:"is_agent"`
		Analyzed  bool   `json:"analyzed"`
	}

	out := make([]sessionOut, len(result.Sessions))
	for i, sess := range result.Sessions {
		out[i] = sessionOut{
			SessionID: sess.Identity.SessionID,
			Project:   s.scanner.DisplayName(sess.Path, sess.Identity.ProjectHash),
			ModTime:   sess.ModTime.UTC().Format(time.RFC3339),
			SizeBytes: sess.Size,
			IsAgent:   sess.IsAgent,
			Analyzed:  s.cache.Has(sess.Identity),
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal sessions: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// insights_cache_status
func (s *Server) cacheStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("insights_cache_status",
		mcp.WithDescription("Summarize the facet cache: entry count, entries produced by a different model than currently configured, and the cache directory."),
	)
	return tool, s.handleCacheStatus
}

func (s *Server) handleCacheStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	total, stale, err := s.cache.Count(s.model)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read cache: %v", err)), nil
	}

	data, err := json.Marshal(map[string]any{
		"directory":     s.cache.Dir(),
		"entries":       total,
		"stale_model":   stale,
		"current_model": s.model,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal cache status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// insights_last_run
func (s *Server) lastRunTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("insights_last_run",
		mcp.WithDescription("Return the most recent generation run: timings, session counts, facet cache hits and extractions, failures, and the report path."),
	)
	return tool, s.handleLastRun
}

func (s *Server) handleLastRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run, err := s.store.LastRun(ctx)
	if errors.Is(err, store.ErrNoRuns) {
		return mcp.NewToolResultText(`{"message": "no runs recorded yet"}`), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load last run: %v", err)), nil
	}

	data, err := json.Marshal(run)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal run: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
