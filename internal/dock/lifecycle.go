package dock

import (
	"slices"

	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

// OnPanelMoved repositions the manual followers of id. Linked followers are
// kept in place by the glue.
func (c *Controller) OnPanelMoved(id platform.PanelID) {
	c.lock()
	defer c.unlock()
	c.followTarget(id)
}

// OnPanelResized repositions every follower of id and, when id is itself a
// follower, id too.
func (c *Controller) OnPanelResized(id platform.PanelID, _ geometry.Rect) {
	c.lock()
	defer c.unlock()
	for b := range c.store.BindingsTargeting(id) {
		c.place(b)
	}
	if b, ok := c.store.Binding(id); ok {
		c.place(b)
	}
}

// OnPanelHidden applies each follower's hidden policy.
func (c *Controller) OnPanelHidden(id platform.PanelID) {
	c.lock()
	defer c.unlock()
	for _, b := range slices.Collect(c.store.BindingsTargeting(id)) {
		switch b.OnTargetHidden {
		case HideFollower:
			if err := c.registry.SetVisible(b.FollowerID, false); err != nil {
				c.log.Warn("hide follower", "follower", b.FollowerID, "error", err)
				continue
			}
			c.autoHidden[b.FollowerID] = true
		case DetachOnHidden:
			c.detach(b.FollowerID, ReasonTargetHidden)
		case KeepBinding:
		}
	}
	c.dropProximity(func(p ProximityState) bool { return p.TargetID == id })
}

// OnPanelShown repositions the followers of id and re-shows those that were
// hidden along with it.
func (c *Controller) OnPanelShown(id platform.PanelID) {
	c.lock()
	defer c.unlock()
	for b := range c.store.BindingsTargeting(id) {
		b = c.place(b)
		if !c.autoHidden[b.FollowerID] {
			continue
		}
		if err := c.registry.SetVisible(b.FollowerID, true); err != nil {
			c.log.Warn("show follower", "follower", b.FollowerID, "error", err)
			continue
		}
		delete(c.autoHidden, b.FollowerID)
	}
}

// OnPanelDestroyed applies each follower's destroyed policy and purges all
// state that mentions id.
func (c *Controller) OnPanelDestroyed(id platform.PanelID) {
	c.lock()
	defer c.unlock()
	for _, b := range slices.Collect(c.store.BindingsTargeting(id)) {
		if b.OnTargetDestroyed == HideAndDetach {
			if err := c.registry.SetVisible(b.FollowerID, false); err != nil {
				c.log.Warn("hide follower", "follower", b.FollowerID, "error", err)
			}
			// Keep detach from showing it again.
			delete(c.autoHidden, b.FollowerID)
		}
		c.detach(b.FollowerID, ReasonTargetDestroyed)
	}
	if b, ok := c.store.RemoveBinding(id); ok {
		c.releaseGlue(b)
		c.emit(Event{Kind: EventDetached, PanelID: id, TargetID: b.TargetID, Reason: ReasonFollowerDestroyed})
	}
	c.store.ClearAutoSnapConfig(id)
	c.cooldowns.clear(id)
	delete(c.autoHidden, id)
	c.dropProximity(func(p ProximityState) bool { return p.mentions(id) })
}
