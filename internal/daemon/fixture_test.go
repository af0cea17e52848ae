package daemon

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/drag"
	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	backend *platform.MemoryBackend
	rec     *dock.Recorder
	ctl     *dock.Controller
	driver  *drag.Driver
	bridge  *Bridge
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backend: platform.NewMemoryBackend(),
		rec:     dock.NewRecorder(64),
	}
	opts := dock.DefaultOptions()
	opts.Logger = quietLogger()
	h.ctl = dock.NewControllerForBackend(h.backend, h.rec, opts)
	h.driver = drag.NewDriver(h.backend, h.ctl, quietLogger())
	h.bridge = NewBridge(h.ctl, h.driver, quietLogger())
	return h
}

func (h *harness) put(t *testing.T, id platform.PanelID, app string, frame geometry.Rect) {
	t.Helper()
	h.backend.PutPanel(platform.Panel{ID: id, AppID: app, Frame: frame, Visible: true, Draggable: true})
	_, err := h.backend.Frame(id)
	require.NoError(t, err)
}

func (h *harness) snap(t *testing.T, follower, target platform.PanelID) {
	t.Helper()
	require.NoError(t, h.ctl.Snap(dock.SnapRequest{
		FollowerID:   follower,
		TargetID:     target,
		FollowerEdge: geometry.EdgeTop,
		TargetEdge:   geometry.EdgeBottom,
		Alignment:    geometry.AlignCenter,
		Gap:          4,
	}))
}

func rect(x, y, w, h int) geometry.Rect {
	return geometry.Rect{X: x, Y: y, Width: w, Height: h}
}
