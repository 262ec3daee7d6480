//go:build headless

package render

import (
	"context"
	"errors"
)

// RunWindow is unavailable in headless builds.
func RunWindow(ctx context.Context, b Board, opts Options) error {
	return errors.New("render: window frontend not built (headless)")
}
