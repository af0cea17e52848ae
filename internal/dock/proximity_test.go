package dock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

func proximityFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.add("T", 0, 0, 200, 100)
	f.add("D", 0, -300, 100, 50)
	require.NoError(t, f.ctl.SetAutoSnapConfig(AutoSnapConfig{PanelID: "T", AcceptsSnapOn: edges(geometry.EdgeBottom)}))
	require.NoError(t, f.ctl.SetAutoSnapConfig(AutoSnapConfig{PanelID: "D", CanSnapFrom: edges(geometry.EdgeTop)}))
	return f
}

func TestDetector_Evaluate(t *testing.T) {
	tests := []struct {
		name  string
		frame geometry.Rect
		want  bool
		dist  float64
	}{
		{"close and overlapping", rect(50, -60, 100, 50), true, 10},
		{"touching", rect(50, -50, 100, 50), true, 0},
		{"close without overlap", rect(300, -60, 100, 50), false, 0},
		{"adjacent corners do not overlap", rect(200, -60, 100, 50), false, 0},
		{"at threshold", rect(50, -100, 100, 50), false, 0},
		{"just under threshold", rect(50, -99, 100, 50), true, 49},
		{"overlapping from the other side", rect(50, 10, 100, 50), false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := proximityFixture(t)
			got, ok := f.ctl.detector.Evaluate("D", tt.frame, f.now)
			require.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, platform.PanelID("T"), got.TargetID)
				assert.Equal(t, geometry.EdgeTop, got.DraggedEdge)
				assert.Equal(t, geometry.EdgeBottom, got.TargetEdge)
				assert.InDelta(t, tt.dist, got.Distance, 1e-9)
			}
		})
	}
}

func TestDetector_RequiresDraggedConfig(t *testing.T) {
	f := proximityFixture(t)
	f.ctl.DisableAutoSnap("D")

	_, ok := f.ctl.detector.Evaluate("D", rect(50, -60, 100, 50), f.now)
	assert.False(t, ok)

	require.NoError(t, f.ctl.SetAutoSnapConfig(AutoSnapConfig{PanelID: "D", AcceptsSnapOn: edges(geometry.EdgeTop)}))
	_, ok = f.ctl.detector.Evaluate("D", rect(50, -60, 100, 50), f.now)
	assert.False(t, ok, "a panel that only accepts snaps cannot snap from its edges")
}

func TestDetector_SkipsHiddenTargets(t *testing.T) {
	f := proximityFixture(t)
	require.NoError(t, f.backend.SetVisible("T", false))

	_, ok := f.ctl.detector.Evaluate("D", rect(50, -60, 100, 50), f.now)
	assert.False(t, ok)
}

func TestDetector_SkipsReverseCandidate(t *testing.T) {
	f := proximityFixture(t)
	require.NoError(t, f.ctl.Snap(SnapRequest{
		FollowerID:   "T",
		TargetID:     "D",
		FollowerEdge: geometry.EdgeBottom,
		TargetEdge:   geometry.EdgeTop,
	}))
	require.NoError(t, f.backend.DetachLinked("T", "D"))
	require.NoError(t, f.backend.SetFrame("T", rect(0, 0, 200, 100)))

	_, ok := f.ctl.detector.Evaluate("D", rect(50, -60, 100, 50), f.now)
	assert.False(t, ok)
}

func TestDetector_AllowList(t *testing.T) {
	f := proximityFixture(t)
	require.NoError(t, f.ctl.SetAutoSnapConfig(AutoSnapConfig{
		PanelID:     "D",
		CanSnapFrom: edges(geometry.EdgeTop),
		Targets:     []platform.PanelID{"other"},
	}))
	_, ok := f.ctl.detector.Evaluate("D", rect(50, -60, 100, 50), f.now)
	assert.False(t, ok)

	require.NoError(t, f.ctl.SetAutoSnapConfig(AutoSnapConfig{
		PanelID:     "D",
		CanSnapFrom: edges(geometry.EdgeTop),
		Targets:     []platform.PanelID{"other", "T"},
	}))
	_, ok = f.ctl.detector.Evaluate("D", rect(50, -60, 100, 50), f.now)
	assert.True(t, ok)
}

func TestDetector_ThresholdOverride(t *testing.T) {
	f := proximityFixture(t)
	require.NoError(t, f.ctl.SetAutoSnapConfig(AutoSnapConfig{
		PanelID:     "D",
		CanSnapFrom: edges(geometry.EdgeTop),
		Threshold:   5,
	}))
	_, ok := f.ctl.detector.Evaluate("D", rect(50, -60, 100, 50), f.now)
	assert.False(t, ok)
	_, ok = f.ctl.detector.Evaluate("D", rect(50, -54, 100, 50), f.now)
	assert.True(t, ok)
}

func TestDetector_PicksClosestAndBreaksTiesByID(t *testing.T) {
	f := newFixture(t)
	f.add("b", 150, 0, 200, 100)
	f.add("a", 0, 0, 200, 100)
	f.add("D", 0, -300, 100, 50)
	for _, id := range []platform.PanelID{"a", "b"} {
		require.NoError(t, f.ctl.SetAutoSnapConfig(AutoSnapConfig{PanelID: id, AcceptsSnapOn: edges(geometry.EdgeBottom)}))
	}
	require.NoError(t, f.ctl.SetAutoSnapConfig(AutoSnapConfig{PanelID: "D", CanSnapFrom: edges(geometry.EdgeTop, geometry.EdgeRight)}))

	got, ok := f.ctl.detector.Evaluate("D", rect(100, -70, 100, 50), f.now)
	require.True(t, ok)
	assert.Equal(t, platform.PanelID("a"), got.TargetID)

	// Move b closer to D.
	require.NoError(t, f.backend.SetFrame("b", rect(150, -10, 200, 100)))
	got, ok = f.ctl.detector.Evaluate("D", rect(100, -70, 100, 50), f.now)
	require.True(t, ok)
	assert.Equal(t, platform.PanelID("b"), got.TargetID)
	assert.InDelta(t, 10.0, got.Distance, 1e-9)
}
