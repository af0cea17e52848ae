package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
	"github.com/1broseidon/tiledock/internal/runtimepath"
)

// Engine is the docking surface served over IPC. *dock.Controller
// implements it.
type Engine interface {
	Snap(req dock.SnapRequest) error
	Detach(follower platform.PanelID) error
	ReSnap(follower platform.PanelID) error
	SnapDistance(follower platform.PanelID) (float64, error)
	Binding(follower platform.PanelID) (dock.Binding, error)
	Bindings() []dock.Binding
	SetAutoSnapConfig(cfg dock.AutoSnapConfig) error
	DisableAutoSnap(id platform.PanelID)
	AutoSnapConfigs() []dock.AutoSnapConfig
	Proximity() (dock.ProximityState, bool)
}

// EventSource returns recently emitted docking events, oldest first.
type EventSource interface {
	Events() []dock.Event
}

// ServerOptions wires a Server. Only Engine is required.
type ServerOptions struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath  string
	Engine      Engine
	Events      EventSource
	ActivePanel func() (platform.PanelID, error)
	Reload      func() error
	Logger      *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	events       EventSource
	activePanel  func() (platform.PanelID, error)
	reload       func() error
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("ipc server requires an engine")
	}
	socketPath := opts.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath:  socketPath,
		engine:      opts.Engine,
		events:      opts.Events,
		activePanel: opts.ActivePanel,
		reload:      opts.Reload,
		logger:      logger,
		startTime:   time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

// Run starts the server and stops it when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(CodeInvalidRequest, fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	s.send(conn, s.handleCommand(req))
}

func (s *Server) send(conn net.Conn, resp *Response) {
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)

	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandSnap:
		return s.handleSnap(req.Payload)
	case CommandDetach:
		return s.handleDetach(req.Payload)
	case CommandResnap:
		return s.handleResnap(req.Payload)
	case CommandSnapDistance:
		return s.handleSnapDistance(req.Payload)
	case CommandGetBinding:
		return s.handleGetBinding(req.Payload)
	case CommandListBindings:
		return s.handleListBindings()
	case CommandSetAutoSnap:
		return s.handleSetAutoSnap(req.Payload)
	case CommandDisableAutoSnap:
		return s.handleDisableAutoSnap(req.Payload)
	case CommandEvents:
		return s.handleEvents(req.Payload)
	default:
		return NewErrorResponse(CodeInvalidRequest, fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func decodePayload(payload json.RawMessage, out any) *Response {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return NewErrorResponse(CodeInvalidRequest, fmt.Sprintf("Invalid payload: %v", err))
	}
	return nil
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(CodeInternal, err.Error())
	}
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	if s.reload == nil {
		return NewErrorResponse(CodeInternal, "reload is not supported")
	}
	if err := s.reload(); err != nil {
		return NewErrorResponse(CodeInternal, fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.logger.Info("config reloaded via IPC")
	return ok(nil)
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		DaemonRunning:  true,
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		BindingCount:   len(s.engine.Bindings()),
		AutoSnapPanels: len(s.engine.AutoSnapConfigs()),
	}
	if p, found := s.engine.Proximity(); found {
		status.Proximity = &p
	}
	return ok(status)
}

func (s *Server) handleSnap(payload json.RawMessage) *Response {
	var p SnapPayload
	if resp := decodePayload(payload, &p); resp != nil {
		return resp
	}

	followerEdge, err := geometry.ParseEdge(p.FollowerEdge)
	if err != nil {
		return NewErrorResponse(CodeInvalidRequest, err.Error())
	}
	targetEdge, err := geometry.ParseEdge(p.TargetEdge)
	if err != nil {
		return NewErrorResponse(CodeInvalidRequest, err.Error())
	}

	req := dock.SnapRequest{
		FollowerID:   p.FollowerID,
		TargetID:     p.TargetID,
		FollowerEdge: followerEdge,
		TargetEdge:   targetEdge,
		Alignment:    geometry.Alignment(p.Alignment),
		Gap:          p.Gap,
		Policies: dock.Policies{
			OnTargetHidden:    dock.HiddenPolicy(p.OnTargetHidden),
			OnTargetDestroyed: dock.DestroyedPolicy(p.OnTargetDestroyed),
		},
	}
	if err := s.engine.Snap(req); err != nil {
		return ErrorResponseFor(err)
	}

	b, err := s.engine.Binding(p.FollowerID)
	if err != nil {
		return ErrorResponseFor(err)
	}
	return ok(b)
}

// panelFromPayload decodes a PanelPayload. When allowActive is set an empty
// ID resolves to the focused panel.
func (s *Server) panelFromPayload(payload json.RawMessage, allowActive bool) (platform.PanelID, *Response) {
	var p PanelPayload
	if resp := decodePayload(payload, &p); resp != nil {
		return "", resp
	}
	if p.PanelID != "" {
		return p.PanelID, nil
	}
	if allowActive && s.activePanel != nil {
		id, err := s.activePanel()
		if err != nil {
			return "", NewErrorResponse(CodeNotFound, fmt.Sprintf("no active panel: %v", err))
		}
		return id, nil
	}
	return "", NewErrorResponse(CodeInvalidRequest, "panel_id is required")
}

func (s *Server) handleDetach(payload json.RawMessage) *Response {
	id, resp := s.panelFromPayload(payload, true)
	if resp != nil {
		return resp
	}
	if err := s.engine.Detach(id); err != nil {
		return ErrorResponseFor(err)
	}
	return ok(PanelPayload{PanelID: id})
}

func (s *Server) handleResnap(payload json.RawMessage) *Response {
	id, resp := s.panelFromPayload(payload, true)
	if resp != nil {
		return resp
	}
	if err := s.engine.ReSnap(id); err != nil {
		return ErrorResponseFor(err)
	}
	b, err := s.engine.Binding(id)
	if err != nil {
		return ErrorResponseFor(err)
	}
	return ok(b)
}

func (s *Server) handleSnapDistance(payload json.RawMessage) *Response {
	id, resp := s.panelFromPayload(payload, true)
	if resp != nil {
		return resp
	}
	dist, err := s.engine.SnapDistance(id)
	if err != nil {
		return ErrorResponseFor(err)
	}
	return ok(DistanceData{PanelID: id, Distance: dist})
}

func (s *Server) handleGetBinding(payload json.RawMessage) *Response {
	id, resp := s.panelFromPayload(payload, true)
	if resp != nil {
		return resp
	}
	b, err := s.engine.Binding(id)
	if err != nil {
		return ErrorResponseFor(err)
	}
	return ok(b)
}

func (s *Server) handleListBindings() *Response {
	data := BindingsData{
		Bindings: s.engine.Bindings(),
		AutoSnap: s.engine.AutoSnapConfigs(),
	}
	if data.Bindings == nil {
		data.Bindings = []dock.Binding{}
	}
	if data.AutoSnap == nil {
		data.AutoSnap = []dock.AutoSnapConfig{}
	}
	return ok(data)
}

func (s *Server) handleSetAutoSnap(payload json.RawMessage) *Response {
	var cfg dock.AutoSnapConfig
	if resp := decodePayload(payload, &cfg); resp != nil {
		return resp
	}
	if cfg.PanelID == "" {
		return NewErrorResponse(CodeInvalidRequest, "panel_id is required")
	}
	if err := s.engine.SetAutoSnapConfig(cfg); err != nil {
		return ErrorResponseFor(err)
	}
	return ok(nil)
}

func (s *Server) handleDisableAutoSnap(payload json.RawMessage) *Response {
	id, resp := s.panelFromPayload(payload, false)
	if resp != nil {
		return resp
	}
	s.engine.DisableAutoSnap(id)
	return ok(nil)
}

func (s *Server) handleEvents(payload json.RawMessage) *Response {
	var p EventsPayload
	if resp := decodePayload(payload, &p); resp != nil {
		return resp
	}
	if p.Limit < 0 {
		return NewErrorResponse(CodeInvalidRequest, "limit must be >= 0")
	}

	events := []dock.Event{}
	if s.events != nil {
		events = append(events, s.events.Events()...)
	}
	if p.Limit > 0 && len(events) > p.Limit {
		events = events[len(events)-p.Limit:]
	}
	return ok(EventsData{Events: events})
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
