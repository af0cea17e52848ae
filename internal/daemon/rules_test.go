package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/tiledock/internal/config"
	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

func panels() []platform.Panel {
	return []platform.Panel{
		{ID: "e1", AppID: "Emacs"},
		{ID: "t1", AppID: "kitty"},
		{ID: "t2", AppID: "kitty"},
		{ID: "x1", AppID: "firefox"},
	}
}

func TestConfigsForPanels(t *testing.T) {
	rules := []config.AutoSnapRule{
		{AppID: "emacs", AcceptsSnapOn: []string{"bottom"}},
		{AppID: "kitty", CanSnapFrom: []string{"top"}, Targets: []string{"emacs"}, ShowFeedback: true, ProximityThreshold: 30},
	}
	got := ConfigsForPanels(rules, panels())
	require.Len(t, got, 3)

	assert.Equal(t, dock.AutoSnapConfig{
		PanelID:       "e1",
		AcceptsSnapOn: []geometry.Edge{geometry.EdgeBottom},
		CanSnapFrom:   []geometry.Edge{},
	}, got[0])
	assert.Equal(t, platform.PanelID("t1"), got[1].PanelID)
	assert.Equal(t, []platform.PanelID{"e1"}, got[1].Targets)
	assert.Equal(t, 30.0, got[1].Threshold)
	assert.True(t, got[1].ShowFeedback)
	assert.Equal(t, platform.PanelID("t2"), got[2].PanelID)
}

func TestConfigsForPanels_TargetsWithoutMatchesCannotSnap(t *testing.T) {
	rules := []config.AutoSnapRule{
		{AppID: "kitty", CanSnapFrom: []string{"top"}, Targets: []string{"code"}},
		{AppID: "firefox", AcceptsSnapOn: []string{"left"}, CanSnapFrom: []string{"right"}, Targets: []string{"code"}},
	}
	got := ConfigsForPanels(rules, panels())
	require.Len(t, got, 1)
	assert.Equal(t, platform.PanelID("x1"), got[0].PanelID)
	assert.Nil(t, got[0].CanSnapFrom)
	assert.Equal(t, []geometry.Edge{geometry.EdgeLeft}, got[0].AcceptsSnapOn)
}

func TestConfigsForPanels_FirstRuleWins(t *testing.T) {
	rules := []config.AutoSnapRule{
		{AppID: "kitty", CanSnapFrom: []string{"top"}},
		{AppID: "kitty", CanSnapFrom: []string{"left"}},
	}
	got := ConfigsForPanels(rules, panels()[1:2])
	require.Len(t, got, 1)
	assert.Equal(t, []geometry.Edge{geometry.EdgeTop}, got[0].CanSnapFrom)
}

func TestRules_ApplyAndWithdraw(t *testing.T) {
	h := newHarness(t)
	h.put(t, "e1", "emacs", rect(0, 0, 200, 100))
	h.put(t, "t1", "kitty", rect(400, 400, 100, 50))
	listed, err := h.backend.ListPanels()
	require.NoError(t, err)

	r := NewRules([]config.AutoSnapRule{
		{AppID: "emacs", AcceptsSnapOn: []string{"bottom"}},
		{AppID: "kitty", CanSnapFrom: []string{"top"}},
	}, quietLogger())
	r.Apply(h.ctl, listed)

	assert.Len(t, h.ctl.AutoSnapConfigs(), 2)
	assert.True(t, r.Managed("e1"))
	assert.True(t, r.Managed("t1"))

	r.SetRules([]config.AutoSnapRule{{AppID: "emacs", AcceptsSnapOn: []string{"bottom"}}})
	r.Apply(h.ctl, listed)

	_, ok := h.ctl.AutoSnapConfig("t1")
	assert.False(t, ok, "withdrawn rule disables the panel")
	assert.False(t, r.Managed("t1"))
	_, ok = h.ctl.AutoSnapConfig("e1")
	assert.True(t, ok)
}

func TestRules_ExplicitConfigWins(t *testing.T) {
	h := newHarness(t)
	h.put(t, "t1", "kitty", rect(400, 400, 100, 50))
	listed, err := h.backend.ListPanels()
	require.NoError(t, err)

	manual := dock.AutoSnapConfig{PanelID: "t1", CanSnapFrom: []geometry.Edge{geometry.EdgeLeft}}
	require.NoError(t, h.ctl.SetAutoSnapConfig(manual))

	r := NewRules([]config.AutoSnapRule{{AppID: "kitty", CanSnapFrom: []string{"top"}}}, quietLogger())
	r.Apply(h.ctl, listed)

	got, ok := h.ctl.AutoSnapConfig("t1")
	require.True(t, ok)
	assert.Equal(t, manual, got)
	assert.False(t, r.Managed("t1"))

	// Once the rule is gone the explicit config stays.
	r.SetRules(nil)
	r.Apply(h.ctl, listed)
	_, ok = h.ctl.AutoSnapConfig("t1")
	assert.True(t, ok)
}

func TestRules_OverriddenConfigIsNoLongerManaged(t *testing.T) {
	h := newHarness(t)
	h.put(t, "t1", "kitty", rect(400, 400, 100, 50))
	listed, err := h.backend.ListPanels()
	require.NoError(t, err)

	r := NewRules([]config.AutoSnapRule{{AppID: "kitty", CanSnapFrom: []string{"top"}}}, quietLogger())
	r.Apply(h.ctl, listed)
	require.True(t, r.Managed("t1"))

	require.NoError(t, h.ctl.SetAutoSnapConfig(dock.AutoSnapConfig{PanelID: "t1", CanSnapFrom: []geometry.Edge{geometry.EdgeRight}}))
	r.Apply(h.ctl, listed)

	assert.False(t, r.Managed("t1"))
	got, _ := h.ctl.AutoSnapConfig("t1")
	assert.Equal(t, []geometry.Edge{geometry.EdgeRight}, got.CanSnapFrom)
}
