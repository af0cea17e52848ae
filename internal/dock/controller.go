package dock

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/tiledock/internal/geometry"
	"github.com/1broseidon/tiledock/internal/platform"
)

// Defaults used when Options leave a field at its zero value. Gap is the
// exception: 0 is a valid gap, so only a negative Gap takes DefaultGap.
const (
	DefaultDetachThreshold = 50
	DefaultCooldown        = 300 * time.Millisecond
	DefaultGap             = 4
)

// DefaultPolicies are applied to auto-snapped bindings and to snap requests
// that leave policies empty.
var DefaultPolicies = Policies{
	OnTargetHidden:    HideFollower,
	OnTargetDestroyed: HideAndDetach,
}

// Options tune the controller.
type Options struct {
	// DetachThreshold is the distance past which a dragged linked follower
	// auto-detaches.
	DetachThreshold float64
	// Cooldown suppresses proximity and re-snap after an auto-detach.
	Cooldown time.Duration
	// Gap is used for auto-snapped bindings. Negative means DefaultGap.
	Gap int
	// Alignment is used for snap requests without one and for auto-snap.
	Alignment geometry.Alignment
	// ProximityThreshold applies to auto-snap configs without their own.
	ProximityThreshold float64
	// Policies fill in snap requests that leave policies empty.
	Policies Policies
	// NoClamp disables work-area clamping of anchored positions.
	NoClamp bool

	Logger *slog.Logger
	Now    func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DetachThreshold <= 0 {
		o.DetachThreshold = DefaultDetachThreshold
	}
	if o.Cooldown <= 0 {
		o.Cooldown = DefaultCooldown
	}
	if o.Gap < 0 {
		o.Gap = DefaultGap
	}
	if o.Alignment == "" {
		o.Alignment = geometry.AlignCenter
	}
	if o.ProximityThreshold <= 0 {
		o.ProximityThreshold = DefaultProximityThreshold
	}
	if o.Policies.OnTargetHidden == "" {
		o.Policies.OnTargetHidden = DefaultPolicies.OnTargetHidden
	}
	if o.Policies.OnTargetDestroyed == "" {
		o.Policies.OnTargetDestroyed = DefaultPolicies.OnTargetDestroyed
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{Gap: DefaultGap}.withDefaults()
}

// Controller owns the binding store and all transient docking state. Every
// public method is serialized by a single mutex; events are delivered to the
// sink after the mutex is released.
type Controller struct {
	mu sync.Mutex

	registry platform.Registry
	glue     platform.Glue
	workArea platform.WorkAreaProvider
	sink     Sink
	opts     Options
	log      *slog.Logger

	store      *Store
	cooldowns  *cooldowns
	detector   *Detector
	proximity  *ProximityState
	autoHidden map[platform.PanelID]bool

	pending []Event
}

// NewController wires a controller to the platform. glue and workArea may be
// nil: without glue every binding is tracked manually, without a work area
// anchored positions are never clamped.
func NewController(registry platform.Registry, glue platform.Glue, workArea platform.WorkAreaProvider, sink Sink, opts Options) *Controller {
	opts = opts.withDefaults()
	store := NewStore()
	cd := newCooldowns(opts.Cooldown)
	return &Controller{
		registry:  registry,
		glue:      glue,
		workArea:  workArea,
		sink:      sink,
		opts:      opts,
		log:       opts.Logger,
		store:     store,
		cooldowns: cd,
		detector: &Detector{
			store:     store,
			registry:  registry,
			cooldowns: cd,
			Threshold: opts.ProximityThreshold,
		},
		autoHidden: make(map[platform.PanelID]bool),
	}
}

// NewControllerForBackend is a shorthand for a full platform backend.
func NewControllerForBackend(b platform.Backend, sink Sink, opts Options) *Controller {
	return NewController(b, b, b, sink, opts)
}

// Options returns the effective options.
func (c *Controller) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// SetOptions replaces the tuning at runtime. Existing bindings are kept.
func (c *Controller) SetOptions(opts Options) {
	c.lock()
	defer c.unlock()
	opts = opts.withDefaults()
	c.opts = opts
	c.log = opts.Logger
	c.cooldowns.window = opts.Cooldown
	c.detector.Threshold = opts.ProximityThreshold
}

func (c *Controller) lock() { c.mu.Lock() }

// unlock releases the mutex and then flushes queued events.
func (c *Controller) unlock() {
	events := c.pending
	c.pending = nil
	c.mu.Unlock()
	if c.sink == nil {
		return
	}
	for _, e := range events {
		c.sink.Emit(e)
	}
}

func (c *Controller) emit(e Event) {
	e.Time = c.opts.Now()
	c.pending = append(c.pending, e)
}

// Snap docks req.FollowerID onto req.TargetID and moves it into place.
func (c *Controller) Snap(req SnapRequest) error {
	c.lock()
	defer c.unlock()

	if req.Alignment == "" {
		req.Alignment = c.opts.Alignment
	}
	if req.Policies.OnTargetHidden == "" {
		req.Policies.OnTargetHidden = c.opts.Policies.OnTargetHidden
	}
	if req.Policies.OnTargetDestroyed == "" {
		req.Policies.OnTargetDestroyed = c.opts.Policies.OnTargetDestroyed
	}
	if err := req.validate(); err != nil {
		return err
	}
	if req.Gap < 0 {
		return fmt.Errorf("%w: gap must be >= 0, got %d", ErrInvalidRequest, req.Gap)
	}
	if _, err := c.frame(req.FollowerID); err != nil {
		return err
	}
	if _, err := c.frame(req.TargetID); err != nil {
		return err
	}

	b := Binding{
		FollowerID:   req.FollowerID,
		TargetID:     req.TargetID,
		FollowerEdge: req.FollowerEdge,
		TargetEdge:   req.TargetEdge,
		Alignment:    req.Alignment,
		Gap:          req.Gap,
		Policies:     req.Policies,
		Tracking:     c.trackingFor(req.FollowerID, req.TargetID),
	}
	if old, ok := c.store.Binding(req.FollowerID); ok {
		c.releaseGlue(old)
	}
	c.reveal(req.FollowerID)
	c.commit(b)
	c.dropProximity(func(p ProximityState) bool { return p.DraggedID == req.FollowerID })
	return nil
}

// commit stores b, positions the follower and attaches glue. A glue failure
// downgrades the binding to manual tracking.
func (c *Controller) commit(b Binding) {
	c.store.SetBinding(b)
	b = c.place(b)
	c.log.Info("snapped",
		"follower", b.FollowerID,
		"target", b.TargetID,
		"edges", string(b.FollowerEdge)+"->"+string(b.TargetEdge),
		"tracking", b.Tracking)
	c.emit(Event{
		Kind:        EventSnapped,
		PanelID:     b.FollowerID,
		TargetID:    b.TargetID,
		DraggedEdge: b.FollowerEdge,
		TargetEdge:  b.TargetEdge,
	})
}

// place moves the follower to its anchored frame and, for linked bindings,
// (re)attaches glue afterwards so the recorded offset is the anchored one.
func (c *Controller) place(b Binding) Binding {
	if b.Tracking == TrackingLinked {
		c.releaseGlue(b)
	}
	if err := c.position(b); err != nil {
		c.log.Warn("reposition failed", "follower", b.FollowerID, "target", b.TargetID, "error", err)
	}
	if b.Tracking == TrackingLinked {
		if err := c.glue.AttachLinked(b.FollowerID, b.TargetID); err != nil {
			c.log.Warn("linked glue unavailable, tracking manually",
				"follower", b.FollowerID, "target", b.TargetID, "error", err)
			b.Tracking = TrackingManual
			c.store.SetBinding(b)
		}
	}
	return b
}

func (c *Controller) position(b Binding) error {
	frame, err := c.anchoredFrame(b)
	if err != nil {
		return err
	}
	return c.registry.SetFrame(b.FollowerID, frame)
}

// anchoredFrame is where the follower belongs right now, after clamping.
func (c *Controller) anchoredFrame(b Binding) (geometry.Rect, error) {
	target, err := c.frame(b.TargetID)
	if err != nil {
		return geometry.Rect{}, err
	}
	follower, err := c.frame(b.FollowerID)
	if err != nil {
		return geometry.Rect{}, err
	}
	frame := follower.At(geometry.AnchoredPosition(b.Anchor(), target, follower.Size()))
	if !c.opts.NoClamp && c.workArea != nil {
		if area, ok := c.workArea.WorkArea(target); ok {
			frame = geometry.Clamp(frame, area)
		}
	}
	return frame, nil
}

func (c *Controller) trackingFor(follower, target platform.PanelID) TrackingMode {
	if c.glue == nil {
		return TrackingManual
	}
	if back, ok := c.store.Binding(target); ok && back.TargetID == follower {
		return TrackingManual
	}
	return TrackingLinked
}

func (c *Controller) releaseGlue(b Binding) {
	if b.Tracking != TrackingLinked || c.glue == nil {
		return
	}
	if err := c.glue.DetachLinked(b.FollowerID, b.TargetID); err != nil {
		c.log.Debug("release glue", "follower", b.FollowerID, "error", err)
	}
}

func (c *Controller) frame(id platform.PanelID) (geometry.Rect, error) {
	if id == "" {
		return geometry.Rect{}, fmt.Errorf("%w: empty panel id", ErrInvalidRequest)
	}
	r, err := c.registry.Frame(id)
	if err != nil {
		if errors.Is(err, platform.ErrPanelNotFound) {
			return geometry.Rect{}, fmt.Errorf("%w: panel %s", ErrNotFound, id)
		}
		return geometry.Rect{}, fmt.Errorf("%w: panel %s: %v", ErrNotFound, id, err)
	}
	return r, nil
}

// Detach removes the follower's binding. Detaching an unbound follower is a
// no-op.
func (c *Controller) Detach(follower platform.PanelID) error {
	if follower == "" {
		return fmt.Errorf("%w: empty panel id", ErrInvalidRequest)
	}
	c.lock()
	defer c.unlock()
	c.detach(follower, ReasonRequested)
	return nil
}

func (c *Controller) detach(follower platform.PanelID, reason DetachReason) (Binding, bool) {
	b, ok := c.store.RemoveBinding(follower)
	if !ok {
		return Binding{}, false
	}
	c.releaseGlue(b)
	c.reveal(follower)
	c.log.Info("detached", "follower", follower, "target", b.TargetID, "reason", reason)
	c.emit(Event{
		Kind:     EventDetached,
		PanelID:  follower,
		TargetID: b.TargetID,
		Reason:   reason,
	})
	return b, true
}

// reveal shows a follower that was hidden along with its target.
func (c *Controller) reveal(follower platform.PanelID) {
	if !c.autoHidden[follower] {
		return
	}
	delete(c.autoHidden, follower)
	if err := c.registry.SetVisible(follower, true); err != nil {
		c.log.Warn("show follower", "follower", follower, "error", err)
	}
}

// ReSnap moves the follower back onto its anchored position.
func (c *Controller) ReSnap(follower platform.PanelID) error {
	c.lock()
	defer c.unlock()
	b, ok := c.store.Binding(follower)
	if !ok {
		return fmt.Errorf("%w: panel %s has no binding", ErrNotFound, follower)
	}
	if _, err := c.frame(b.TargetID); err != nil {
		return err
	}
	c.commit(b)
	return nil
}

// SnapDistance is the distance between the follower's origin and its
// anchored origin.
func (c *Controller) SnapDistance(follower platform.PanelID) (float64, error) {
	c.lock()
	defer c.unlock()
	b, ok := c.store.Binding(follower)
	if !ok {
		return 0, fmt.Errorf("%w: panel %s has no binding", ErrNotFound, follower)
	}
	current, err := c.frame(follower)
	if err != nil {
		return 0, err
	}
	return c.distanceFrom(b, current)
}

func (c *Controller) distanceFrom(b Binding, frame geometry.Rect) (float64, error) {
	anchored, err := c.anchoredFrame(b)
	if err != nil {
		return 0, err
	}
	return geometry.Distance(frame.Origin(), anchored.Origin()), nil
}

// Binding returns the follower's binding.
func (c *Controller) Binding(follower platform.PanelID) (Binding, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store.Binding(follower)
	if !ok {
		return Binding{}, fmt.Errorf("%w: panel %s has no binding", ErrNotFound, follower)
	}
	return b, nil
}

// Bindings returns every binding ordered by follower ID.
func (c *Controller) Bindings() []Binding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Bindings()
}

// SetAutoSnapConfig installs cfg for cfg.PanelID. A config without edges
// disables auto-snap for the panel.
func (c *Controller) SetAutoSnapConfig(cfg AutoSnapConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	c.lock()
	defer c.unlock()
	if _, err := c.frame(cfg.PanelID); err != nil {
		return err
	}
	if cfg.Disabled() {
		c.disableAutoSnap(cfg.PanelID)
		return nil
	}
	c.store.SetAutoSnapConfig(cfg)
	c.log.Debug("auto-snap configured", "panel", cfg.PanelID,
		"accepts", cfg.AcceptsSnapOn, "from", cfg.CanSnapFrom)
	return nil
}

// DisableAutoSnap removes the panel's auto-snap config.
func (c *Controller) DisableAutoSnap(id platform.PanelID) {
	c.lock()
	defer c.unlock()
	c.disableAutoSnap(id)
}

func (c *Controller) disableAutoSnap(id platform.PanelID) {
	c.store.ClearAutoSnapConfig(id)
	c.dropProximity(func(p ProximityState) bool { return p.DraggedID == id })
}

// AutoSnapConfig returns the panel's config.
func (c *Controller) AutoSnapConfig(id platform.PanelID) (AutoSnapConfig, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.AutoSnapConfig(id)
}

// AutoSnapConfigs returns every config ordered by panel ID.
func (c *Controller) AutoSnapConfigs() []AutoSnapConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []AutoSnapConfig
	for cfg := range c.store.AllAutoSnapConfigs() {
		out = append(out, cfg)
	}
	return out
}

// Proximity returns the current candidate, if any.
func (c *Controller) Proximity() (ProximityState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.proximity == nil {
		return ProximityState{}, false
	}
	return *c.proximity, true
}

// InCooldown reports whether id was auto-detached within the cooldown window.
func (c *Controller) InCooldown(id platform.PanelID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cooldowns.active(id, c.opts.Now())
}

// dropProximity clears the proximity state when match selects it and emits
// proximityExited.
func (c *Controller) dropProximity(match func(ProximityState) bool) {
	if c.proximity == nil || !match(*c.proximity) {
		return
	}
	p := *c.proximity
	c.proximity = nil
	c.emit(proximityEvent(EventProximityExited, p))
}

func proximityEvent(kind EventKind, p ProximityState) Event {
	return Event{
		Kind:        kind,
		PanelID:     p.DraggedID,
		TargetID:    p.TargetID,
		DraggedEdge: p.DraggedEdge,
		TargetEdge:  p.TargetEdge,
		Distance:    p.Distance,
	}
}
