package ipc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload          CommandType = "RELOAD"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandSnap            CommandType = "SNAP"
	CommandDetach          CommandType = "DETACH"
	CommandResnap          CommandType = "RESNAP"
	CommandSnapDistance    CommandType = "SNAP_DISTANCE"
	CommandGetBinding      CommandType = "GET_BINDING"
	CommandListBindings    CommandType = "LIST_BINDINGS"
	CommandSetAutoSnap     CommandType = "SET_AUTO_SNAP"
	CommandDisableAutoSnap CommandType = "DISABLE_AUTO_SNAP"
	CommandEvents          CommandType = "EVENTS"
)

// ErrorCode classifies an ERROR response.
type ErrorCode string

const (
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	CodeInternal       ErrorCode = "INTERNAL"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   ErrorCode       `json:"code,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning  bool                 `json:"daemon_running"`
	UptimeSeconds  int64                `json:"uptime_seconds"`
	BindingCount   int                  `json:"binding_count"`
	AutoSnapPanels int                  `json:"auto_snap_panels"`
	Proximity      *dock.ProximityState `json:"proximity,omitempty"`
}

// SnapPayload is the payload of SNAP. Empty alignment and policies take the
// daemon defaults.
type SnapPayload struct {
	FollowerID        platform.PanelID `json:"follower_id"`
	TargetID          platform.PanelID `json:"target_id"`
	FollowerEdge      string           `json:"follower_edge"`
	TargetEdge        string           `json:"target_edge"`
	Alignment         string           `json:"alignment,omitempty"`
	Gap               int              `json:"gap,omitempty"`
	OnTargetHidden    string           `json:"on_target_hidden,omitempty"`
	OnTargetDestroyed string           `json:"on_target_destroyed,omitempty"`
}

// PanelPayload addresses a single panel. An empty ID means the active panel
// for DETACH and RESNAP.
type PanelPayload struct {
	PanelID platform.PanelID `json:"panel_id,omitempty"`
}

// EventsPayload limits EVENTS to the most recent Limit entries; 0 means all.
type EventsPayload struct {
	Limit int `json:"limit,omitempty"`
}

type DistanceData struct {
	PanelID  platform.PanelID `json:"panel_id"`
	Distance float64          `json:"distance"`
}

type BindingsData struct {
	Bindings []dock.Binding        `json:"bindings"`
	AutoSnap []dock.AutoSnapConfig `json:"auto_snap"`
}

type EventsData struct {
	Events []dock.Event `json:"events"`
}

// RemoteError is an ERROR response surfaced by the client. It unwraps to
// the dock sentinel matching its code.
type RemoteError struct {
	Code    ErrorCode
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("daemon error: %s", e.Message)
}

func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case CodeNotFound:
		return dock.ErrNotFound
	case CodeInvalidRequest:
		return dock.ErrInvalidRequest
	default:
		return nil
	}
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(code ErrorCode, errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
		Code:   code,
	}
}

// ErrorResponseFor maps err onto an error code.
func ErrorResponseFor(err error) *Response {
	switch {
	case errors.Is(err, dock.ErrNotFound):
		return NewErrorResponse(CodeNotFound, err.Error())
	case errors.Is(err, dock.ErrInvalidRequest):
		return NewErrorResponse(CodeInvalidRequest, err.Error())
	default:
		return NewErrorResponse(CodeInternal, err.Error())
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
