package dock

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

type fixture struct {
	t       *testing.T
	backend *platform.MemoryBackend
	rec     *Recorder
	ctl     *Controller
	now     time.Time
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		backend: platform.NewMemoryBackend(),
		rec:     NewRecorder(64),
		now:     time.Unix(1_700_000_000, 0),
	}
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	opts.Now = func() time.Time { return f.now }
	for _, fn := range configure {
		fn(&opts)
	}
	f.ctl = NewControllerForBackend(f.backend, f.rec, opts)
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) add(id platform.PanelID, x, y, w, h int) {
	f.backend.AddPanel(id, geometry.Rect{X: x, Y: y, Width: w, Height: h})
}

func (f *fixture) frame(id platform.PanelID) geometry.Rect {
	f.t.Helper()
	r, err := f.backend.Frame(id)
	require.NoError(f.t, err)
	return r
}

func (f *fixture) visible(id platform.PanelID) bool {
	f.t.Helper()
	v, err := f.backend.IsVisible(id)
	require.NoError(f.t, err)
	return v
}

// drag moves id to frame through the controller the way the drag driver does.
func (f *fixture) drag(id platform.PanelID, frame geometry.Rect) {
	f.t.Helper()
	require.NoError(f.t, f.backend.SetFrame(id, frame))
	f.ctl.OnDragMoved(id, frame)
}

func (f *fixture) snapTopToBottom(follower, target platform.PanelID) {
	f.t.Helper()
	require.NoError(f.t, f.ctl.Snap(SnapRequest{
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

func edges(e ...geometry.Edge) []geometry.Edge { return e }
