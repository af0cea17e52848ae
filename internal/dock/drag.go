package dock

import (
	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

// OnDragBegan releases linked glue for a bound follower so it can move
// freely. The binding itself is kept for the detach-threshold check.
func (c *Controller) OnDragBegan(id platform.PanelID) {
	c.lock()
	defer c.unlock()

	c.dropProximity(func(p ProximityState) bool { return p.DraggedID == id })

	b, ok := c.store.Binding(id)
	if !ok {
		return
	}
	c.releaseGlue(b)
	frame, err := c.frame(id)
	if err != nil {
		return
	}
	dist, _ := c.distanceFrom(b, frame)
	c.emit(Event{
		Kind:     EventFollowerDragStarted,
		PanelID:  id,
		TargetID: b.TargetID,
		Frame:    &frame,
		Distance: dist,
	})
}

// OnDragMoved handles one drag tick. Bound linked followers are checked
// against the detach threshold; everything else runs proximity detection.
func (c *Controller) OnDragMoved(id platform.PanelID, frame geometry.Rect) {
	c.lock()
	defer c.unlock()

	c.followTarget(id)

	if b, ok := c.store.Binding(id); ok {
		dist, err := c.distanceFrom(b, frame)
		if err != nil {
			c.log.Debug("drag distance", "panel", id, "error", err)
			return
		}
		if b.Tracking == TrackingLinked {
			if dist > c.opts.DetachThreshold {
				c.autoDetach(id)
				return
			}
			c.emitDragging(b, frame, dist)
			return
		}
		c.emitDragging(b, frame, dist)
	}
	c.updateProximity(id, frame)
}

func (c *Controller) emitDragging(b Binding, frame geometry.Rect, dist float64) {
	c.emit(Event{
		Kind:     EventFollowerDragging,
		PanelID:  b.FollowerID,
		TargetID: b.TargetID,
		Frame:    &frame,
		Distance: dist,
	})
}

func (c *Controller) autoDetach(id platform.PanelID) {
	now := c.opts.Now()
	c.detach(id, ReasonDraggedAway)
	c.cooldowns.start(id, now)
	c.dropProximity(func(p ProximityState) bool { return p.mentions(id) })
}

// followTarget keeps manual followers of a dragged target in place. Linked
// followers ride the platform glue.
func (c *Controller) followTarget(target platform.PanelID) {
	for b := range c.store.BindingsTargeting(target) {
		if b.Tracking != TrackingManual {
			continue
		}
		if err := c.position(b); err != nil {
			c.log.Debug("follow target", "follower", b.FollowerID, "error", err)
		}
	}
}

func (c *Controller) updateProximity(id platform.PanelID, frame geometry.Rect) {
	next, ok := c.detector.Evaluate(id, frame, c.opts.Now())
	prev := c.proximity

	if !ok {
		c.dropProximity(func(ProximityState) bool { return true })
		return
	}
	if prev != nil && prev.sameMatch(next) {
		if prev.Distance != next.Distance {
			c.proximity = &next
			c.emit(proximityEvent(EventProximityUpdated, next))
		}
		return
	}
	c.dropProximity(func(ProximityState) bool { return true })
	c.proximity = &next
	c.log.Debug("proximity", "dragged", id, "target", next.TargetID,
		"edges", string(next.DraggedEdge)+"->"+string(next.TargetEdge), "distance", next.Distance)
	c.emit(proximityEvent(EventProximityEntered, next))
}

// OnDragEnded snaps a still-bound follower back onto its edge, or commits
// the pending proximity candidate as a new linked binding.
func (c *Controller) OnDragEnded(id platform.PanelID, frame geometry.Rect) {
	c.lock()
	defer c.unlock()

	c.followTarget(id)

	if b, ok := c.store.Binding(id); ok {
		dist, _ := c.distanceFrom(b, frame)
		c.dropProximity(func(p ProximityState) bool { return p.DraggedID == id })
		c.place(b)
		c.emit(Event{
			Kind:     EventFollowerDragEnded,
			PanelID:  id,
			TargetID: b.TargetID,
			Frame:    &frame,
			Distance: dist,
		})
		return
	}

	if c.cooldowns.active(id, c.opts.Now()) {
		c.dropProximity(func(p ProximityState) bool { return p.DraggedID == id })
		return
	}

	p := c.proximity
	if p == nil || p.DraggedID != id {
		return
	}
	if _, err := c.frame(p.TargetID); err != nil {
		c.log.Debug("proximity target vanished", "target", p.TargetID, "error", err)
		c.dropProximity(func(p ProximityState) bool { return p.DraggedID == id })
		return
	}
	c.proximity = nil
	c.commit(Binding{
		FollowerID:   id,
		TargetID:     p.TargetID,
		FollowerEdge: p.DraggedEdge,
		TargetEdge:   p.TargetEdge,
		Alignment:    c.opts.Alignment,
		Gap:          c.opts.Gap,
		Policies:     c.opts.Policies,
		Tracking:     c.trackingFor(id, p.TargetID),
	})
}
