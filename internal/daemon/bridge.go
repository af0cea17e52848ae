package daemon

import (
	"log/slog"

	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/drag"
	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

// Bridge forwards window-system notifications and pointer drags to the
// docking controller and the drag driver.
type Bridge struct {
	ctl    *dock.Controller
	driver *drag.Driver
	logger *slog.Logger
}

// NewBridge creates a bridge. logger may be nil.
func NewBridge(ctl *dock.Controller, driver *drag.Driver, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{ctl: ctl, driver: driver, logger: logger}
}

func (b *Bridge) PanelMoved(id platform.PanelID, _ geometry.Rect) {
	b.ctl.OnPanelMoved(id)
}

func (b *Bridge) PanelResized(id platform.PanelID, frame geometry.Rect) {
	b.ctl.OnPanelResized(id, frame)
}

func (b *Bridge) PanelHidden(id platform.PanelID) {
	b.ctl.OnPanelHidden(id)
}

func (b *Bridge) PanelShown(id platform.PanelID) {
	b.ctl.OnPanelShown(id)
}

// PanelDestroyed drops a drag of id before purging its docking state.
func (b *Bridge) PanelDestroyed(id platform.PanelID) {
	if b.driver.Cancel(id) {
		b.logger.Info("drag cancelled, panel destroyed", "panel", id)
	}
	b.ctl.OnPanelDestroyed(id)
}

// BeginDrag starts a drag session. Refused drags leave the pointer grab to
// the window manager.
func (b *Bridge) BeginDrag(id platform.PanelID, pointer geometry.Point) bool {
	started, err := b.driver.Start(id, pointer)
	if err != nil {
		b.logger.Debug("drag refused", "panel", id, "error", err)
		return false
	}
	return started
}

func (b *Bridge) ContinueDrag(pointer geometry.Point) {
	b.driver.Move(pointer)
}

func (b *Bridge) EndDrag(pointer geometry.Point) {
	b.driver.End(pointer)
}
