package screen

import (
	"image"

	"github.com/kbinani/screenshot"
)

// Provider enumerates the geometry of the active displays.
type Provider interface {
	Displays() ([]image.Rectangle, error)
}

// ScreenshotProvider reads display bounds through the platform screen
// capture APIs.
type ScreenshotProvider struct{}

// Displays returns the bounds of every active display.
func (ScreenshotProvider) Displays() ([]image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, ErrNoDisplays
	}
	rects := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		rects = append(rects, screenshot.GetDisplayBounds(i))
	}
	return rects, nil
}

// StaticProvider reports a fixed display layout. It is used for dry runs
// and tests.
type StaticProvider []image.Rectangle

// Displays returns the configured rectangles.
func (p StaticProvider) Displays() ([]image.Rectangle, error) {
	if len(p) == 0 {
		return nil, ErrNoDisplays
	}
	out := make([]image.Rectangle, len(p))
	copy(out, p)
	return out, nil
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func() ([]image.Rectangle, error)

// Displays calls f.
func (f ProviderFunc) Displays() ([]image.Rectangle, error) {
	return f()
}
