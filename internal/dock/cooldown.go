package dock

import (
	"time"

	"github.com/1broseidon/tiledock/internal/platform"
)

// cooldowns tracks recent auto-detaches. Entries expire lazily on lookup.
type cooldowns struct {
	window time.Duration
	since  map[platform.PanelID]time.Time
}

func newCooldowns(window time.Duration) *cooldowns {
	return &cooldowns{window: window, since: make(map[platform.PanelID]time.Time)}
}

func (c *cooldowns) start(id platform.PanelID, now time.Time) {
	c.since[id] = now
}

func (c *cooldowns) active(id platform.PanelID, now time.Time) bool {
	t, ok := c.since[id]
	if !ok {
		return false
	}
	if now.Sub(t) < c.window {
		return true
	}
	delete(c.since, id)
	return false
}

func (c *cooldowns) clear(id platform.PanelID) {
	delete(c.since, id)
}
