package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/ipc"
	"github.com/1broseidon/tiledock/internal/platform"
)

const (
	ServerName    = "tiledock"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools forward to.
type Daemon interface {
	Snap(p ipc.SnapPayload) (*dock.Binding, error)
	Detach(id platform.PanelID) (platform.PanelID, error)
	Resnap(id platform.PanelID) (*dock.Binding, error)
	SnapDistance(id platform.PanelID) (*ipc.DistanceData, error)
	ListBindings() (*ipc.BindingsData, error)
	SetAutoSnap(cfg dock.AutoSnapConfig) error
	DisableAutoSnap(id platform.PanelID) error
	Events(limit int) ([]dock.Event, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server exposing docking operations of a running daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a new MCP server forwarding to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_panel",
		Description: "Dock a follower panel onto an edge of a target panel. The follower moves into place immediately and keeps following the target until detached. Edges must be opposite (follower top onto target bottom, left onto right).",
	}, s.handleSnapPanel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "detach_panel",
		Description: "Remove the docking binding of a follower panel. Detaching a panel that is not docked succeeds without changes.",
	}, s.handleDetachPanel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resnap_panel",
		Description: "Move a docked follower back to its anchored position next to its target.",
	}, s.handleResnapPanel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_distance",
		Description: "Report how far a docked follower currently is from its anchored position.",
	}, s.handleSnapDistance)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_bindings",
		Description: "List every docking binding and every panel's auto-snap configuration.",
	}, s.handleListBindings)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_auto_snap",
		Description: "Declare which edges of a panel participate in drag-time auto-snap. Passing no edges disables auto-snap for the panel.",
	}, s.handleSetAutoSnap)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "disable_auto_snap",
		Description: "Remove a panel's auto-snap configuration.",
	}, s.handleDisableAutoSnap)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "recent_events",
		Description: "Return recent docking events (snapped, detached, proximity and follower drag events), oldest first.",
	}, s.handleRecentEvents)
}
