package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/platform"
	"github.com/1broseidon/tiledock/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, &RemoteError{Code: resp.Code, Message: resp.Error}
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Snap docks a follower and returns the stored binding.
func (c *Client) Snap(p SnapPayload) (*dock.Binding, error) {
	var b dock.Binding
	if err := c.call(CommandSnap, p, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Detach removes the binding of id, or of the active panel when id is empty.
// It returns the panel that was addressed.
func (c *Client) Detach(id platform.PanelID) (platform.PanelID, error) {
	var out PanelPayload
	if err := c.call(CommandDetach, PanelPayload{PanelID: id}, &out); err != nil {
		return "", err
	}
	return out.PanelID, nil
}

// Resnap moves a follower back to its anchored position.
func (c *Client) Resnap(id platform.PanelID) (*dock.Binding, error) {
	var b dock.Binding
	if err := c.call(CommandResnap, PanelPayload{PanelID: id}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SnapDistance reports how far a follower is from its anchored position.
func (c *Client) SnapDistance(id platform.PanelID) (*DistanceData, error) {
	var d DistanceData
	if err := c.call(CommandSnapDistance, PanelPayload{PanelID: id}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetBinding returns the binding of a follower.
func (c *Client) GetBinding(id platform.PanelID) (*dock.Binding, error) {
	var b dock.Binding
	if err := c.call(CommandGetBinding, PanelPayload{PanelID: id}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBindings returns every binding and auto-snap config.
func (c *Client) ListBindings() (*BindingsData, error) {
	var data BindingsData
	if err := c.call(CommandListBindings, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SetAutoSnap installs or replaces a panel's auto-snap config.
func (c *Client) SetAutoSnap(cfg dock.AutoSnapConfig) error {
	return c.call(CommandSetAutoSnap, cfg, nil)
}

// DisableAutoSnap removes a panel's auto-snap config.
func (c *Client) DisableAutoSnap(id platform.PanelID) error {
	return c.call(CommandDisableAutoSnap, PanelPayload{PanelID: id}, nil)
}

// Events returns up to limit recent events; 0 returns all retained events.
func (c *Client) Events(limit int) ([]dock.Event, error) {
	var data EventsData
	if err := c.call(CommandEvents, EventsPayload{Limit: limit}, &data); err != nil {
		return nil, err
	}
	return data.Events, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
