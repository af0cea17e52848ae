package dock

import (
	"math"
	"time"

	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

// DefaultProximityThreshold applies to configs that leave the threshold at 0.
const DefaultProximityThreshold = 50

// Detector finds the best auto-snap candidate for a dragged panel.
type Detector struct {
	store     *Store
	registry  platform.Registry
	cooldowns *cooldowns
	// Threshold is used for configs without their own threshold.
	Threshold float64
}

// Evaluate returns the closest compatible target edge within the dragged
// panel's threshold. Candidates are scanned in panel ID order and edge
// declaration order; the first minimum wins.
func (d *Detector) Evaluate(draggedID platform.PanelID, frame geometry.Rect, now time.Time) (ProximityState, bool) {
	if d.cooldowns != nil && d.cooldowns.active(draggedID, now) {
		return ProximityState{}, false
	}
	cfg, ok := d.store.AutoSnapConfig(draggedID)
	if !ok || len(cfg.CanSnapFrom) == 0 {
		return ProximityState{}, false
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = d.Threshold
	}
	if threshold <= 0 {
		threshold = DefaultProximityThreshold
	}

	best := ProximityState{Distance: math.Inf(1)}
	found := false
	for target := range d.store.AllAutoSnapConfigs() {
		if target.PanelID == draggedID || len(target.AcceptsSnapOn) == 0 {
			continue
		}
		if !cfg.allowsTarget(target.PanelID) {
			continue
		}
		// A panel already docked to the dragged one would form a 2-cycle.
		if b, ok := d.store.Binding(target.PanelID); ok && b.TargetID == draggedID {
			continue
		}
		if visible, err := d.registry.IsVisible(target.PanelID); err != nil || !visible {
			continue
		}
		targetFrame, err := d.registry.Frame(target.PanelID)
		if err != nil {
			continue
		}
		for _, de := range cfg.CanSnapFrom {
			for _, te := range target.AcceptsSnapOn {
				dist := geometry.EdgeDistance(frame, de, targetFrame, te)
				if dist >= threshold || dist >= best.Distance {
					continue
				}
				best = ProximityState{
					DraggedID:   draggedID,
					TargetID:    target.PanelID,
					DraggedEdge: de,
					TargetEdge:  te,
					Distance:    dist,
				}
				found = true
			}
		}
	}
	return best, found
}
