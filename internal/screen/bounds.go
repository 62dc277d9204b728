package screen

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrNoDisplays is returned when a provider reports no active displays.
var ErrNoDisplays = errors.New("no active displays")

// Bounds is the bounding rectangle of every active display in virtual
// desktop coordinates. MinX and MinY may be negative when a monitor sits
// left of or above the primary one. Width and Height are at least 1.
type Bounds struct {
	MinX   int `json:"min_x"`
	MinY   int `json:"min_y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultBounds is used before any display has been enumerated.
var DefaultBounds = Bounds{Width: 1, Height: 1}

// BoundsOf returns the smallest rectangle covering all rects.
func BoundsOf(rects []image.Rectangle) (Bounds, error) {
	if len(rects) == 0 {
		return Bounds{}, ErrNoDisplays
	}
	union := rects[0]
	for _, r := range rects[1:] {
		union = union.Union(r)
	}
	return Bounds{
		MinX:   union.Min.X,
		MinY:   union.Min.Y,
		Width:  max(union.Dx(), 1),
		Height: max(union.Dy(), 1),
	}.sanitized(), nil
}

func (b Bounds) sanitized() Bounds {
	if b.Width < 1 {
		b.Width = 1
	}
	if b.Height < 1 {
		b.Height = 1
	}
	return b
}

// IsZero reports whether b is the zero value (no layout recorded).
func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

// String formats b as "WxH+X+Y".
func (b Bounds) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", b.Width, b.Height, b.MinX, b.MinY)
}

// Normalize maps an absolute pixel to [0,1] coordinates relative to b.
func (b Bounds) Normalize(x, y int) (float64, float64) {
	b = b.sanitized()
	nx := float64(x-b.MinX) / float64(b.Width)
	ny := float64(y-b.MinY) / float64(b.Height)
	return nx, ny
}

// pixelEpsilon absorbs the rounding error of x/w*w so that whole pixels
// survive a Normalize/Denormalize round trip.
const pixelEpsilon = 1e-9

// Denormalize maps normalized coordinates back to pixels, flooring to
// whole pixels.
func (b Bounds) Denormalize(nx, ny float64) (int, int) {
	b = b.sanitized()
	x := int(math.Floor(nx*float64(b.Width)+pixelEpsilon)) + b.MinX
	y := int(math.Floor(ny*float64(b.Height)+pixelEpsilon)) + b.MinY
	return x, y
}
