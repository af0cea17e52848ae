//go:build !linux

package daemon

import (
	"context"
	"errors"
)

// Run is only supported on Linux, where the X11 backend is built.
func Run(ctx context.Context, configPath string) error {
	return errors.New("the tiledock daemon requires Linux with X11")
}
