//go:build linux

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/tiledock/internal/config"
	"github.com/1broseidon/tiledock/internal/dock"
	"github.com/1broseidon/tiledock/internal/drag"
	"github.com/1broseidon/tiledock/internal/hotkeys"
	"github.com/1broseidon/tiledock/internal/ipc"
	"github.com/1broseidon/tiledock/internal/logging"
	"github.com/1broseidon/tiledock/internal/platform"
)

// Daemon owns the X11 connection, the docking controller and the control
// surfaces around it.
type Daemon struct {
	configPath string
	handler    *log.Logger
	logger     *slog.Logger

	backend    *platform.X11Backend
	ctl        *dock.Controller
	recorder   *dock.Recorder
	rules      *Rules
	reconciler *Reconciler
	watcher    *Watcher

	mu  sync.Mutex
	cfg *config.Config
}

// Run loads configPath, connects to the display and serves until ctx is
// cancelled or the X11 connection goes away.
func Run(ctx context.Context, configPath string) error {
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := res.Config

	lvl, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	handler := logging.NewHandler(os.Stderr, lvl)
	logger := slog.New(handler)

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	backend, err := platform.NewX11BackendFromDisplay(cfg.Display, logging.Component(logger, "x11"))
	if err != nil {
		return fmt.Errorf("connect to display: %w", err)
	}
	defer backend.Disconnect()

	d := &Daemon{
		configPath: configPath,
		handler:    handler,
		logger:     logger,
		backend:    backend,
		recorder:   dock.NewRecorder(dock.DefaultRecorderSize),
		cfg:        cfg,
	}

	feedback := NewFeedbackSink(backend, logging.Component(logger, "feedback"))
	d.ctl = dock.NewControllerForBackend(backend,
		dock.Tee(d.recorder, feedback, LogSink(logging.Component(logger, "events"))),
		OptionsFromConfig(cfg, logging.Component(logger, "dock")))
	feedback.SetLookup(d.ctl)

	driver := drag.NewDriver(backend, d.ctl, logging.Component(logger, "drag"))
	bridge := NewBridge(d.ctl, driver, logging.Component(logger, "bridge"))
	backend.SetEventHandler(bridge)
	if cfg.Drag.Button != "" {
		backend.BindDrag(cfg.Drag.Button, bridge)
		logger.Info("drag button bound", "button", cfg.Drag.Button)
	}

	keys := hotkeys.NewHandler(backend, d.ctl, logging.Component(logger, "hotkeys"))
	if err := keys.Register(cfg.Hotkeys.Detach, cfg.Hotkeys.Resnap); err != nil {
		logger.Warn("hotkeys unavailable", "error", err)
	}

	d.rules = NewRules(cfg.AutoSnap, logging.Component(logger, "rules"))
	d.reconciler = NewReconciler(ReconcilerConfig{
		Interval: time.Duration(cfg.ReconcileIntervalSeconds) * time.Second,
		Logger:   logging.Component(logger, "reconciler"),
	}, backend, d.ctl, d.rules, bridge)
	d.reconciler.ReconcileNow()

	server, err := ipc.NewServer(ipc.ServerOptions{
		Engine:      d.ctl,
		Events:      d.recorder,
		ActivePanel: backend.ActivePanel,
		Reload:      d.Reload,
		Logger:      logging.Component(logger, "ipc"),
	})
	if err != nil {
		return err
	}

	watchFiles := res.Files
	if len(watchFiles) == 0 {
		watchFiles = []string{configPath}
	}
	d.watcher, err = NewWatcher(watchFiles, d.Reload, logging.Component(logger, "watcher"))
	if err != nil {
		logger.Warn("config watching disabled", "error", err)
	}

	logger.Info("tiledock daemon started", "config", configPath)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(ctx) })
	g.Go(func() error { return d.reconciler.Run(ctx) })
	if d.watcher != nil {
		g.Go(func() error { return d.watcher.Run(ctx) })
	}
	g.Go(func() error { return d.handleSignals(ctx) })
	g.Go(func() error {
		loopDone := make(chan struct{})
		go func() {
			backend.EventLoop()
			close(loopDone)
		}()
		select {
		case <-ctx.Done():
			backend.Quit()
			return nil
		case <-loopDone:
			return errors.New("X11 event loop exited")
		}
	})

	err = g.Wait()
	keys.Unregister()
	backend.HideFeedback()
	logger.Info("tiledock daemon stopped")
	return err
}

// handleSignals reloads the configuration on SIGHUP.
func (d *Daemon) handleSignals(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigCh:
			d.logger.Info("received SIGHUP, reloading config")
			if err := d.Reload(); err != nil {
				d.logger.Warn("config reload failed", "error", err)
			}
		}
	}
}

// Reload re-reads the configuration and applies what can change at runtime.
// The drag button and hotkeys need a restart.
func (d *Daemon) Reload() error {
	res, err := config.LoadFromPath(d.configPath)
	if err != nil {
		return err
	}
	cfg := res.Config

	d.mu.Lock()
	prev := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	if lvl, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
		d.handler.SetLevel(lvl)
	}
	d.ctl.SetOptions(OptionsFromConfig(cfg, logging.Component(d.logger, "dock")))
	d.rules.SetRules(cfg.AutoSnap)
	if d.watcher != nil && len(res.Files) > 0 {
		if err := d.watcher.SetFiles(res.Files); err != nil {
			d.logger.Warn("config watch update failed", "error", err)
		}
	}
	if prev.Drag != cfg.Drag || prev.Hotkeys != cfg.Hotkeys {
		d.logger.Warn("drag button and hotkey changes take effect after restart")
	}
	d.reconciler.ReconcileNow()
	d.logger.Info("configuration applied", "rules", len(cfg.AutoSnap))
	return nil
}
