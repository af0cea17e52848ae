package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display. Usable excludes dock struts.
type Monitor struct {
	ID     int
	Name   string
	Bounds Box
	Usable Box
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		bounds := Box{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			Bounds: bounds,
			Usable: bounds,
		})
	}

	c.applyWorkAreas(monitors)
	return monitors, nil
}

// applyWorkAreas shrinks each monitor's Usable box by dock struts, falling
// back to the EWMH work area when no dock publishes struts.
func (c *Connection) applyWorkAreas(monitors []Monitor) {
	rootWidth, rootHeight, err := c.RootSize()
	if err != nil {
		return
	}

	struts := c.dockStruts(rootWidth, rootHeight)
	if len(struts) > 0 {
		for i := range monitors {
			monitors[i].Usable = usableArea(monitors[i].Bounds, rootWidth, rootHeight, struts)
		}
		return
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	desktopIndex := 0
	if current, err := c.GetCurrentDesktop(); err == nil && current >= 0 && current < len(workArea) {
		desktopIndex = current
	}
	wa := workArea[desktopIndex]
	area := Box{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)}
	for i := range monitors {
		if isect, ok := monitors[i].Bounds.intersect(area); ok {
			monitors[i].Usable = isect
		}
	}
}

func (c *Connection) dockStruts(rootWidth, rootHeight int) []*ewmh.WmStrutPartial {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var out []*ewmh.WmStrutPartial
	for _, windowID := range clients {
		if !c.hasWindowType(windowID, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			out = append(out, sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			out = append(out, &ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(rootHeight - 1),
				RightEndY:  uint(rootHeight - 1),
				TopEndX:    uint(rootWidth - 1),
				BottomEndX: uint(rootWidth - 1),
			})
		}
	}
	return out
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func usableArea(bounds Box, rootWidth, rootHeight int, partials []*ewmh.WmStrutPartial) Box {
	var struts dockStruts
	for _, sp := range partials {
		updateStrutsForMonitor(bounds, rootWidth, rootHeight, sp, &struts)
	}

	out := bounds
	out.X += struts.left
	out.Y += struts.top
	out.Width -= struts.left + struts.right
	out.Height -= struts.top + struts.bottom
	out.Width = max(out.Width, 1)
	out.Height = max(out.Height, 1)
	return out
}

func updateStrutsForMonitor(monitor Box, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		strut := Box{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) - int(sp.TopStartX) + 1, Height: int(sp.Top)}
		if isect, ok := monitor.intersect(strut); ok {
			acc.top = max(acc.top, isect.Height)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		strut := Box{X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom), Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1, Height: int(sp.Bottom)}
		if isect, ok := monitor.intersect(strut); ok {
			acc.bottom = max(acc.bottom, isect.Height)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		strut := Box{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1}
		if isect, ok := monitor.intersect(strut); ok {
			acc.left = max(acc.left, isect.Width)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		strut := Box{X: rootWidth - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1}
		if isect, ok := monitor.intersect(strut); ok {
			acc.right = max(acc.right, isect.Width)
		}
	}
}
