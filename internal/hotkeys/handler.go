package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/tiledock/internal/platform"
)

// Docker is the part of the docking controller hotkeys drive.
type Docker interface {
	Detach(follower platform.PanelID) error
	ReSnap(follower platform.PanelID) error
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts.
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	backend platform.Backend
	docker  Docker
	logger  *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. The backend must expose X11
// internals for bindings to register.
func NewHandler(backend platform.Backend, docker Docker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	return &Handler{
		xu:      xu,
		root:    root,
		backend: backend,
		docker:  docker,
		logger:  logger,
	}
}

// Register binds the detach and re-snap hotkeys. Empty sequences are
// skipped.
func (h *Handler) Register(detachSeq, resnapSeq string) error {
	if detachSeq != "" {
		if err := h.RegisterFunc(detachSeq, func() { h.onActive("detach", h.docker.Detach) }); err != nil {
			return fmt.Errorf("register detach hotkey %q: %w", detachSeq, err)
		}
		h.logger.Info("hotkey registered", "action", "detach", "keys", detachSeq)
	}
	if resnapSeq != "" {
		if err := h.RegisterFunc(resnapSeq, func() { h.onActive("resnap", h.docker.ReSnap) }); err != nil {
			return fmt.Errorf("register resnap hotkey %q: %w", resnapSeq, err)
		}
		h.logger.Info("hotkey registered", "action", "resnap", "keys", resnapSeq)
	}
	return nil
}

// Unregister drops every key binding on the root window.
func (h *Handler) Unregister() {
	if h.xu == nil {
		return
	}
	keybind.Detach(h.xu, h.root)
}

// onActive runs action on the focused panel.
func (h *Handler) onActive(name string, action func(platform.PanelID) error) {
	id, err := h.backend.ActivePanel()
	if err != nil {
		h.logger.Warn("hotkey: no active panel", "action", name, "error", err)
		return
	}
	if err := action(id); err != nil {
		h.logger.Warn("hotkey action failed", "action", name, "panel", id, "error", err)
		return
	}
	h.logger.Debug("hotkey action", "action", name, "panel", id)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	if h.xu == nil {
		return fmt.Errorf("hotkeys need an X11 backend")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}
	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns every combination of base, including the empty one.
func ignoreMasks(base []uint16) []uint16 {
	out := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
