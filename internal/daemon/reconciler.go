package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

// PanelSource lists panels and answers whether a missing one still exists.
type PanelSource interface {
	ListPanels() ([]platform.Panel, error)
	Frame(id platform.PanelID) (geometry.Rect, error)
}

// Engine is the controller state the reconciler inspects.
type Engine interface {
	AutoSnapper
	Bindings() []dock.Binding
	AutoSnapConfigs() []dock.AutoSnapConfig
}

// DestroyHandler receives panels found to be gone.
type DestroyHandler interface {
	PanelDestroyed(id platform.PanelID)
}

// tracker is implemented by backends that need panels registered before
// they report changes.
type tracker interface {
	Track(id platform.PanelID) error
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically lines docking state up with the panels that
// actually exist: it tracks new panels, applies auto-snap rules and purges
// panels whose destroy notification was missed.
type Reconciler struct {
	interval  time.Duration
	source    PanelSource
	engine    Engine
	rules     *Rules
	destroyed DestroyHandler
	logger    *slog.Logger

	mu    sync.Mutex
	known map[platform.PanelID]bool
}

// NewReconciler creates a new reconciler. rules may be nil.
func NewReconciler(cfg ReconcilerConfig, source PanelSource, engine Engine, rules *Rules, destroyed DestroyHandler) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:  interval,
		source:    source,
		engine:    engine,
		rules:     rules,
		destroyed: destroyed,
		logger:    logger,
		known:     make(map[platform.PanelID]bool),
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return nil
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// ReconcileNow runs a single pass immediately.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	panels, err := r.source.ListPanels()
	if err != nil {
		r.logger.Error("reconciler: failed to list panels", "error", err)
		return
	}

	present := make(map[platform.PanelID]bool, len(panels))
	t, canTrack := r.source.(tracker)
	for _, p := range panels {
		present[p.ID] = true
		if canTrack {
			if err := t.Track(p.ID); err != nil {
				r.logger.Debug("reconciler: track failed", "panel", p.ID, "error", err)
			}
		}
	}

	if r.rules != nil {
		r.rules.Apply(r.engine, panels)
	}

	r.mu.Lock()
	referenced := make(map[platform.PanelID]bool, len(r.known))
	for id := range r.known {
		referenced[id] = true
	}
	r.known = present
	r.mu.Unlock()

	for _, b := range r.engine.Bindings() {
		referenced[b.FollowerID] = true
		referenced[b.TargetID] = true
	}
	for _, c := range r.engine.AutoSnapConfigs() {
		referenced[c.PanelID] = true
	}

	for id := range referenced {
		if present[id] {
			continue
		}
		// Panels on other desktops are not listed but still exist.
		if _, err := r.source.Frame(id); !errors.Is(err, platform.ErrPanelNotFound) {
			continue
		}
		r.logger.Info("reconciler: panel vanished", "panel", id)
		r.destroyed.PanelDestroyed(id)
	}
}
