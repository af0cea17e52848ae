package x11

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/tiledock/internal/geometry"
)

const (
	ColorCandidate    = 0x3498db // Blue - proximity candidate edge
	FeedbackThickness = 4
)

// Feedback is an override-redirect bar highlighting the target edge a
// dragged panel would snap to.
type Feedback struct {
	conn    *Connection
	window  xproto.Window
	created bool
	mapped  bool
}

func NewFeedback(conn *Connection) *Feedback {
	return &Feedback{conn: conn}
}

// Show places the bar over box, creating the window on first use.
func (f *Feedback) Show(box Box, color uint32) error {
	if !f.created {
		wid, err := f.createOverrideRedirectWindow()
		if err != nil {
			return err
		}
		f.window = wid
		f.created = true
	}

	f.updateWindow(box, color)
	xproto.MapWindow(f.conn.XUtil.Conn(), f.window)
	f.mapped = true
	return nil
}

// Hide unmaps the bar without destroying it.
func (f *Feedback) Hide() {
	if !f.mapped {
		return
	}
	xproto.UnmapWindow(f.conn.XUtil.Conn(), f.window)
	f.mapped = false
}

// Destroy releases the bar window.
func (f *Feedback) Destroy() {
	if !f.created {
		return
	}
	xproto.DestroyWindow(f.conn.XUtil.Conn(), f.window)
	f.created = false
	f.mapped = false
}

func (f *Feedback) createOverrideRedirectWindow() (xproto.Window, error) {
	conn := f.conn.XUtil.Conn()
	screen := f.conn.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		f.conn.Root,
		0, 0, // x, y (will be updated later)
		1, 1, // width, height (will be updated later)
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwBackPixel,
		// Value list order follows the bit positions of the mask (low to high).
		[]uint32{0, 1}, // back_pixel=black, override_redirect=true
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

func (f *Feedback) updateWindow(box Box, color uint32) {
	conn := f.conn.XUtil.Conn()

	xproto.ConfigureWindow(
		conn,
		f.window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(box.X),
			uint32(box.Y),
			uint32(max(box.Width, 1)),
			uint32(max(box.Height, 1)),
			xproto.StackModeAbove,
		},
	)
	xproto.ChangeWindowAttributes(conn, f.window, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(conn, false, f.window, 0, 0, 0, 0)
}

// EdgeBar returns a bar of the given thickness lying along edge of target,
// centered on the edge line.
func EdgeBar(target geometry.Rect, edge geometry.Edge, thickness int) geometry.Rect {
	half := thickness / 2
	switch edge {
	case geometry.EdgeTop:
		return geometry.Rect{X: target.MinX(), Y: target.MaxY() - half, Width: target.Width, Height: thickness}
	case geometry.EdgeBottom:
		return geometry.Rect{X: target.MinX(), Y: target.MinY() - half, Width: target.Width, Height: thickness}
	case geometry.EdgeLeft:
		return geometry.Rect{X: target.MinX() - half, Y: target.MinY(), Width: thickness, Height: target.Height}
	default:
		return geometry.Rect{X: target.MaxX() - half, Y: target.MinY(), Width: thickness, Height: target.Height}
	}
}
