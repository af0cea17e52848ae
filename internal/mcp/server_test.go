package mcp

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/ipc"
	"github.com/1broseidon/tiledock/internal/platform"
)

type mockDaemon struct {
	mock.Mock
}

func (m *mockDaemon) Snap(p ipc.SnapPayload) (*dock.Binding, error) {
	args := m.Called(p)
	b, _ := args.Get(0).(*dock.Binding)
	return b, args.Error(1)
}

func (m *mockDaemon) Detach(id platform.PanelID) (platform.PanelID, error) {
	args := m.Called(id)
	return args.Get(0).(platform.PanelID), args.Error(1)
}

func (m *mockDaemon) Resnap(id platform.PanelID) (*dock.Binding, error) {
	args := m.Called(id)
	b, _ := args.Get(0).(*dock.Binding)
	return b, args.Error(1)
}

func (m *mockDaemon) SnapDistance(id platform.PanelID) (*ipc.DistanceData, error) {
	args := m.Called(id)
	d, _ := args.Get(0).(*ipc.DistanceData)
	return d, args.Error(1)
}

func (m *mockDaemon) ListBindings() (*ipc.BindingsData, error) {
	args := m.Called()
	d, _ := args.Get(0).(*ipc.BindingsData)
	return d, args.Error(1)
}

func (m *mockDaemon) SetAutoSnap(cfg dock.AutoSnapConfig) error {
	return m.Called(cfg).Error(0)
}

func (m *mockDaemon) DisableAutoSnap(id platform.PanelID) error {
	return m.Called(id).Error(0)
}

func (m *mockDaemon) Events(limit int) ([]dock.Event, error) {
	args := m.Called(limit)
	evs, _ := args.Get(0).([]dock.Event)
	return evs, args.Error(1)
}

func newTestServer(d Daemon) *Server {
	return NewServer(d, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSnapPanelForwardsPayload(t *testing.T) {
	d := &mockDaemon{}
	want := &dock.Binding{FollowerID: "0x2", TargetID: "0x1", FollowerEdge: geometry.EdgeTop, TargetEdge: geometry.EdgeBottom}
	d.On("Snap", ipc.SnapPayload{
		FollowerID:   "0x2",
		TargetID:     "0x1",
		FollowerEdge: "top",
		TargetEdge:   "bottom",
		Gap:          8,
	}).Return(want, nil)

	s := newTestServer(d)
	_, out, err := s.handleSnapPanel(context.Background(), nil, SnapPanelInput{
		FollowerID:   "0x2",
		TargetID:     "0x1",
		FollowerEdge: "top",
		TargetEdge:   "bottom",
		Gap:          8,
	})
	require.NoError(t, err)
	assert.Equal(t, *want, out.Binding)
	d.AssertExpectations(t)
}

func TestDetachPanelPropagatesErrors(t *testing.T) {
	d := &mockDaemon{}
	d.On("Detach", platform.PanelID("")).Return(platform.PanelID(""), &ipc.RemoteError{Code: ipc.CodeNotFound, Message: "no active panel"})

	s := newTestServer(d)
	_, _, err := s.handleDetachPanel(context.Background(), nil, PanelInput{})
	assert.ErrorIs(t, err, dock.ErrNotFound)
}

func TestSetAutoSnapParsesEdges(t *testing.T) {
	d := &mockDaemon{}
	d.On("SetAutoSnap", dock.AutoSnapConfig{
		PanelID:       "0x2",
		AcceptsSnapOn: []geometry.Edge{},
		CanSnapFrom:   []geometry.Edge{geometry.EdgeTop, geometry.EdgeLeft},
		Targets:       []platform.PanelID{"0x1"},
		Threshold:     30,
	}).Return(nil)

	s := newTestServer(d)
	_, out, err := s.handleSetAutoSnap(context.Background(), nil, SetAutoSnapInput{
		PanelID:            "0x2",
		CanSnapFrom:        []string{"Top", "left"},
		Targets:            []string{"0x1"},
		ProximityThreshold: 30,
	})
	require.NoError(t, err)
	assert.True(t, out.OK)
	d.AssertExpectations(t)
}

func TestSetAutoSnapRejectsUnknownEdge(t *testing.T) {
	d := &mockDaemon{}
	s := newTestServer(d)

	_, _, err := s.handleSetAutoSnap(context.Background(), nil, SetAutoSnapInput{
		PanelID:     "0x2",
		CanSnapFrom: []string{"diagonal"},
	})
	assert.Error(t, err)
	d.AssertNotCalled(t, "SetAutoSnap", mock.Anything)
}

func TestRecentEventsDefaultsLimit(t *testing.T) {
	d := &mockDaemon{}
	d.On("Events", defaultEventLimit).Return([]dock.Event(nil), nil)

	s := newTestServer(d)
	_, out, err := s.handleRecentEvents(context.Background(), nil, RecentEventsInput{})
	require.NoError(t, err)
	assert.NotNil(t, out.Events)
	assert.Empty(t, out.Events)
	d.AssertExpectations(t)
}

func TestSnapDistanceAndList(t *testing.T) {
	d := &mockDaemon{}
	d.On("SnapDistance", platform.PanelID("0x2")).Return(&ipc.DistanceData{PanelID: "0x2", Distance: 12.5}, nil)
	d.On("ListBindings").Return(&ipc.BindingsData{Bindings: []dock.Binding{{FollowerID: "0x2"}}}, nil)

	s := newTestServer(d)
	_, dist, err := s.handleSnapDistance(context.Background(), nil, PanelInput{PanelID: "0x2"})
	require.NoError(t, err)
	assert.Equal(t, 12.5, dist.Distance)

	_, list, err := s.handleListBindings(context.Background(), nil, ListBindingsInput{})
	require.NoError(t, err)
	assert.Len(t, list.Bindings, 1)
}
