// Package screen tracks the virtual desktop formed by all active displays
// and converts between absolute pixel coordinates and layout-independent
// normalized coordinates.
//
// A Normalizer owns the current Bounds. It refreshes once when constructed
// and, once started, polls the display Provider on a fixed interval so that
// monitors being attached, detached or resized are picked up:
//
//	n := screen.New(screen.ScreenshotProvider{}, screen.WithLogger(logger))
//	n.Start(ctx)
//	defer n.Stop()
//
//	nx, ny := n.Normalize(1920, 540) // 0.5, 0.5 on two 1920x1080 side by side
//
// When the provider fails or reports no displays, the last known bounds are
// kept; Normalize and Denormalize never fail.
package screen
