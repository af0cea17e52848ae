package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tiledock/internal/config"
	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/ipc"
	"github.com/1broseidon/tiledock/internal/platform"
)

const defaultEventLimit = 50

func (s *Server) handleSnapPanel(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapPanelInput) (*mcpsdk.CallToolResult, BindingOutput, error) {
	b, err := s.daemon.Snap(ipc.SnapPayload{
		FollowerID:        platform.PanelID(args.FollowerID),
		TargetID:          platform.PanelID(args.TargetID),
		FollowerEdge:      args.FollowerEdge,
		TargetEdge:        args.TargetEdge,
		Alignment:         args.Alignment,
		Gap:               args.Gap,
		OnTargetHidden:    args.OnTargetHidden,
		OnTargetDestroyed: args.OnTargetDestroyed,
	})
	if err != nil {
		s.logger.Debug("snap_panel failed", "follower", args.FollowerID, "target", args.TargetID, "error", err)
		return nil, BindingOutput{}, err
	}
	return nil, BindingOutput{Binding: *b}, nil
}

func (s *Server) handleDetachPanel(_ context.Context, _ *mcpsdk.CallToolRequest, args PanelInput) (*mcpsdk.CallToolResult, DetachPanelOutput, error) {
	id, err := s.daemon.Detach(platform.PanelID(args.PanelID))
	if err != nil {
		return nil, DetachPanelOutput{}, err
	}
	return nil, DetachPanelOutput{PanelID: string(id), Detached: true}, nil
}

func (s *Server) handleResnapPanel(_ context.Context, _ *mcpsdk.CallToolRequest, args PanelInput) (*mcpsdk.CallToolResult, BindingOutput, error) {
	b, err := s.daemon.Resnap(platform.PanelID(args.PanelID))
	if err != nil {
		return nil, BindingOutput{}, err
	}
	return nil, BindingOutput{Binding: *b}, nil
}

func (s *Server) handleSnapDistance(_ context.Context, _ *mcpsdk.CallToolRequest, args PanelInput) (*mcpsdk.CallToolResult, SnapDistanceOutput, error) {
	d, err := s.daemon.SnapDistance(platform.PanelID(args.PanelID))
	if err != nil {
		return nil, SnapDistanceOutput{}, err
	}
	return nil, SnapDistanceOutput{PanelID: string(d.PanelID), Distance: d.Distance}, nil
}

func (s *Server) handleListBindings(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListBindingsInput) (*mcpsdk.CallToolResult, ListBindingsOutput, error) {
	data, err := s.daemon.ListBindings()
	if err != nil {
		return nil, ListBindingsOutput{}, err
	}
	return nil, ListBindingsOutput{Bindings: data.Bindings, AutoSnap: data.AutoSnap}, nil
}

func (s *Server) handleSetAutoSnap(_ context.Context, _ *mcpsdk.CallToolRequest, args SetAutoSnapInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	cfg, err := autoSnapConfigFromInput(args)
	if err != nil {
		return nil, OKOutput{}, err
	}
	if err := s.daemon.SetAutoSnap(cfg); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func autoSnapConfigFromInput(args SetAutoSnapInput) (dock.AutoSnapConfig, error) {
	accepts, err := config.ParseEdges(args.AcceptsSnapOn)
	if err != nil {
		return dock.AutoSnapConfig{}, fmt.Errorf("accepts_snap_on: %w", err)
	}
	from, err := config.ParseEdges(args.CanSnapFrom)
	if err != nil {
		return dock.AutoSnapConfig{}, fmt.Errorf("can_snap_from: %w", err)
	}
	targets := make([]platform.PanelID, 0, len(args.Targets))
	for _, t := range args.Targets {
		targets = append(targets, platform.PanelID(t))
	}
	return dock.AutoSnapConfig{
		PanelID:       platform.PanelID(args.PanelID),
		AcceptsSnapOn: accepts,
		CanSnapFrom:   from,
		Targets:       targets,
		Threshold:     args.ProximityThreshold,
		ShowFeedback:  args.ShowFeedback,
	}, nil
}

func (s *Server) handleDisableAutoSnap(_ context.Context, _ *mcpsdk.CallToolRequest, args RequiredPanelInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := s.daemon.DisableAutoSnap(platform.PanelID(args.PanelID)); err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func (s *Server) handleRecentEvents(_ context.Context, _ *mcpsdk.CallToolRequest, args RecentEventsInput) (*mcpsdk.CallToolResult, RecentEventsOutput, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	events, err := s.daemon.Events(limit)
	if err != nil {
		return nil, RecentEventsOutput{}, err
	}
	if events == nil {
		events = []dock.Event{}
	}
	return nil, RecentEventsOutput{Events: events}, nil
}
