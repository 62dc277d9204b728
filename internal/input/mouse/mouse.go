package mouse

import (
	"strings"
)

// Button represents a mouse button that an injection backend can press.
type Button uint8

const (
	// ButtonNone indicates a button that cannot be injected.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
)

// String returns the canonical token for the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

const buttonPrefix = "button."

// Canonical normalizes a raw button identifier to a lowercase token,
// dropping a "Button." namespace prefix ("Button.left" -> "left").
func Canonical(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, buttonPrefix)
	return s
}

// Classify maps a canonical token to a Button by substring match, so
// variants such as "left_button" still resolve. Tokens that mention neither
// left, right nor middle classify as ButtonNone.
func Classify(token string) Button {
	t := Canonical(token)
	switch {
	case strings.Contains(t, "left"):
		return ButtonLeft
	case strings.Contains(t, "right"):
		return ButtonRight
	case strings.Contains(t, "middle"):
		return ButtonMiddle
	default:
		return ButtonNone
	}
}

// Position represents a screen coordinate in absolute pixels.
type Position struct {
	X int
	Y int
}

// Equal returns true if two positions are equal.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Sub returns the component-wise difference p - other.
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y}
}
