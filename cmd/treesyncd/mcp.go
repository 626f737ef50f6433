package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/synctree/synctree/internal/changes"
)

// buildMCPServer registers the engine's seven operations as MCP tools,
// one AddTool call per operation, mirroring the handlers httpServer
// exposes over plain HTTP.
func buildMCPServer(e *Engine) *sdkmcp.Server {
	impl := &sdkmcp.Implementation{
		Name:    "treesyncd",
		Version: ProtocolVersion,
	}
	server := sdkmcp.NewServer(impl, nil)

	sdkmcp.AddTool[subscribeRequest, map[string]bool](server,
		&sdkmcp.Tool{Name: "sync_subscribe", Description: "Subscribe a client to the change-set queue"},
		func(ctx context.Context, req *sdkmcp.CallToolRequest, in subscribeRequest) (*sdkmcp.CallToolResult, map[string]bool, error) {
			if in.ClientID == "" {
				return nil, nil, fmt.Errorf("clientId is required")
			}
			e.Subscribe(in.ClientID, in.PlaceID, in.GameID)
			return nil, map[string]bool{"subscribed": true}, nil
		},
	)

	sdkmcp.AddTool[clientIDRequest, map[string]bool](server,
		&sdkmcp.Tool{Name: "sync_unsubscribe", Description: "Unsubscribe a client from the change-set queue"},
		func(ctx context.Context, req *sdkmcp.CallToolRequest, in clientIDRequest) (*sdkmcp.CallToolResult, map[string]bool, error) {
			e.Unsubscribe(in.ClientID)
			return nil, map[string]bool{"unsubscribed": true}, nil
		},
	)

	sdkmcp.AddTool[clientIDRequest, changes.Changes](server,
		&sdkmcp.Tool{Name: "sync_read", Description: "Long-poll the next change set for a subscribed client"},
		func(ctx context.Context, req *sdkmcp.CallToolRequest, in clientIDRequest) (*sdkmcp.CallToolResult, changes.Changes, error) {
			if in.ClientID == "" {
				return nil, changes.Empty(), fmt.Errorf("clientId is required")
			}
			out, err := e.Read(ctx, in.ClientID)
			if err != nil {
				return nil, changes.Empty(), nil
			}
			return nil, out, nil
		},
	)

	sdkmcp.AddTool[struct{}, changes.Changes](server,
		&sdkmcp.Tool{Name: "sync_read_all", Description: "Trigger a full-tree sync"},
		func(ctx context.Context, req *sdkmcp.CallToolRequest, in struct{}) (*sdkmcp.CallToolResult, changes.Changes, error) {
			return nil, e.ReadAll(), nil
		},
	)

	sdkmcp.AddTool[changes.Changes, changes.Changes](server,
		&sdkmcp.Tool{Name: "sync_write", Description: "Apply a reverse change set from a client"},
		func(ctx context.Context, req *sdkmcp.CallToolRequest, in changes.Changes) (*sdkmcp.CallToolResult, changes.Changes, error) {
			committed, err := e.Write(in)
			if err != nil {
				return nil, changes.Empty(), err
			}
			return nil, committed, nil
		},
	)

	sdkmcp.AddTool[struct{}, changes.Changes](server,
		&sdkmcp.Tool{Name: "sync_snapshot", Description: "Return the full current instance tree"},
		func(ctx context.Context, req *sdkmcp.CallToolRequest, in struct{}) (*sdkmcp.CallToolResult, changes.Changes, error) {
			return nil, e.Snapshot(), nil
		},
	)

	sdkmcp.AddTool[struct{}, Details](server,
		&sdkmcp.Tool{Name: "sync_details", Description: "Report the project's serving metadata"},
		func(ctx context.Context, req *sdkmcp.CallToolRequest, in struct{}) (*sdkmcp.CallToolResult, Details, error) {
			return nil, e.Details(), nil
		},
	)

	return server
}

// RunMCP serves the MCP tool surface over the streamable HTTP transport,
// on its own port so it can run alongside the plain JSON transport.
func RunMCP(host string, port int, e *Engine, logger *slog.Logger) {
	server := buildMCPServer(e)
	handler := sdkmcp.NewStreamableHTTPHandler(func(r *http.Request) *sdkmcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	logger.Info("starting MCP transport", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("MCP transport failed", "error", err)
	}
}
