package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/drag"
	"github.com/1broseidon/tiledock/internal/geometry"
)

func TestBridge_DragMovesPanel(t *testing.T) {
	h := newHarness(t)
	h.put(t, "P", "term", rect(300, 300, 50, 50))

	require.True(t, h.bridge.BeginDrag("P", geometry.Point{}))
	assert.Equal(t, drag.PhaseDragging, h.driver.Phase())

	h.bridge.ContinueDrag(geometry.Point{X: 10, Y: 5})
	h.bridge.EndDrag(geometry.Point{X: 20, Y: 5})

	got, err := h.backend.Frame("P")
	require.NoError(t, err)
	assert.Equal(t, rect(320, 305, 50, 50), got)
	assert.Equal(t, drag.PhaseIdle, h.driver.Phase())
}

func TestBridge_RefusesUnknownPanel(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.bridge.BeginDrag("ghost", geometry.Point{}))
	assert.Equal(t, drag.PhaseIdle, h.driver.Phase())
}

func TestBridge_DestroyedTargetAppliesPolicy(t *testing.T) {
	h := newHarness(t)
	h.put(t, "T", "editor", rect(0, 0, 200, 100))
	h.put(t, "F", "term", rect(500, 500, 100, 50))
	h.snap(t, "F", "T")

	h.backend.RemovePanel("T")
	h.bridge.PanelDestroyed("T")

	assert.Empty(t, h.ctl.Bindings())
	visible, err := h.backend.IsVisible("F")
	require.NoError(t, err)
	assert.False(t, visible, "default destroyed policy hides the follower")
	assert.Contains(t, h.rec.Kinds(), dock.EventDetached)
}

func TestBridge_DestroyCancelsDrag(t *testing.T) {
	h := newHarness(t)
	h.put(t, "P", "term", rect(0, 0, 50, 50))
	require.True(t, h.bridge.BeginDrag("P", geometry.Point{}))

	h.backend.RemovePanel("P")
	h.bridge.PanelDestroyed("P")

	assert.Equal(t, drag.PhaseIdle, h.driver.Phase())
}

func TestBridge_HiddenAndShownTarget(t *testing.T) {
	h := newHarness(t)
	h.put(t, "T", "editor", rect(0, 0, 200, 100))
	h.put(t, "F", "term", rect(500, 500, 100, 50))
	h.snap(t, "F", "T")

	require.NoError(t, h.backend.SetVisible("T", false))
	h.bridge.PanelHidden("T")
	visible, _ := h.backend.IsVisible("F")
	assert.False(t, visible)

	require.NoError(t, h.backend.SetVisible("T", true))
	h.bridge.PanelShown("T")
	visible, _ = h.backend.IsVisible("F")
	assert.True(t, visible)
	assert.Len(t, h.ctl.Bindings(), 1)
}
