package key

import (
	"fmt"
	"strings"
)

// Key represents a keyboard key.
// For character keys, use KeyRune and set the Rune field in Event.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Special keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Other special keys
	KeySpace
	KeyPause
	KeyPrintScreen
	KeyScrollLock
	KeyNumLock
	KeyCapsLock
	KeyMenu

	// Modifier keys. The unsuffixed variant is the left-hand key.
	KeyShift
	KeyShiftRight
	KeyCtrl
	KeyCtrlRight
	KeyAlt
	KeyAltRight
	KeyAltGr
	KeyCmd
	KeyCmdRight

	// KeyRune is used for character keys (letters, numbers, punctuation).
	// The actual character is stored in Event.Rune.
	KeyRune
)

var keyNames = map[Key]string{
	KeyNone:        "None",
	KeyEscape:      "Escape",
	KeyEnter:       "Enter",
	KeyTab:         "Tab",
	KeyBackspace:   "Backspace",
	KeyDelete:      "Delete",
	KeyInsert:      "Insert",
	KeyHome:        "Home",
	KeyEnd:         "End",
	KeyPageUp:      "PageUp",
	KeyPageDown:    "PageDown",
	KeyUp:          "Up",
	KeyDown:        "Down",
	KeyLeft:        "Left",
	KeyRight:       "Right",
	KeyF1:          "F1",
	KeyF2:          "F2",
	KeyF3:          "F3",
	KeyF4:          "F4",
	KeyF5:          "F5",
	KeyF6:          "F6",
	KeyF7:          "F7",
	KeyF8:          "F8",
	KeyF9:          "F9",
	KeyF10:         "F10",
	KeyF11:         "F11",
	KeyF12:         "F12",
	KeySpace:       "Space",
	KeyPause:       "Pause",
	KeyPrintScreen: "PrintScreen",
	KeyScrollLock:  "ScrollLock",
	KeyNumLock:     "NumLock",
	KeyCapsLock:    "CapsLock",
	KeyMenu:        "Menu",
	KeyShift:       "Shift",
	KeyShiftRight:  "ShiftRight",
	KeyCtrl:        "Ctrl",
	KeyCtrlRight:   "CtrlRight",
	KeyAlt:         "Alt",
	KeyAltRight:    "AltRight",
	KeyAltGr:       "AltGr",
	KeyCmd:         "Cmd",
	KeyCmdRight:    "CmdRight",
	KeyRune:        "Rune",
}

// String returns a human-readable name for the key.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", k)
}

// IsSpecial returns true if this is a special (non-character) key.
func (k Key) IsSpecial() bool {
	return k != KeyNone && k != KeyRune
}

// IsFunctionKey returns true if this is a function key (F1-F12).
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// IsArrowKey returns true if this is an arrow key.
func (k Key) IsArrowKey() bool {
	return k >= KeyUp && k <= KeyRight
}

// IsModifier returns true for shift, ctrl, alt and cmd keys on either side.
func (k Key) IsModifier() bool {
	return k >= KeyShift && k <= KeyCmdRight
}

// keyNameMap maps canonical key names to Key values. It covers the names
// emitted by pynput-style recorders ("page_down", "cmd_r"), X keysyms
// ("shift_l", "prior") and the short forms accepted in configuration.
var keyNameMap = map[string]Key{
	"escape":           KeyEscape,
	"esc":              KeyEscape,
	"enter":            KeyEnter,
	"return":           KeyEnter,
	"tab":              KeyTab,
	"backspace":        KeyBackspace,
	"delete":           KeyDelete,
	"del":              KeyDelete,
	"insert":           KeyInsert,
	"home":             KeyHome,
	"end":              KeyEnd,
	"pageup":           KeyPageUp,
	"page_up":          KeyPageUp,
	"prior":            KeyPageUp,
	"pagedown":         KeyPageDown,
	"page_down":        KeyPageDown,
	"next":             KeyPageDown,
	"up":               KeyUp,
	"down":             KeyDown,
	"left":             KeyLeft,
	"right":            KeyRight,
	"f1":               KeyF1,
	"f2":               KeyF2,
	"f3":               KeyF3,
	"f4":               KeyF4,
	"f5":               KeyF5,
	"f6":               KeyF6,
	"f7":               KeyF7,
	"f8":               KeyF8,
	"f9":               KeyF9,
	"f10":              KeyF10,
	"f11":              KeyF11,
	"f12":              KeyF12,
	"space":            KeySpace,
	"pause":            KeyPause,
	"print_screen":     KeyPrintScreen,
	"printscreen":      KeyPrintScreen,
	"print":            KeyPrintScreen,
	"scroll_lock":      KeyScrollLock,
	"scrolllock":       KeyScrollLock,
	"num_lock":         KeyNumLock,
	"numlock":          KeyNumLock,
	"caps_lock":        KeyCapsLock,
	"capslock":         KeyCapsLock,
	"menu":             KeyMenu,
	"shift":            KeyShift,
	"shift_l":          KeyShift,
	"shiftleft":        KeyShift,
	"shift_r":          KeyShiftRight,
	"shiftright":       KeyShiftRight,
	"ctrl":             KeyCtrl,
	"ctrl_l":           KeyCtrl,
	"control_l":        KeyCtrl,
	"ctrlleft":         KeyCtrl,
	"ctrl_r":           KeyCtrlRight,
	"control_r":        KeyCtrlRight,
	"ctrlright":        KeyCtrlRight,
	"alt":              KeyAlt,
	"alt_l":            KeyAlt,
	"altleft":          KeyAlt,
	"alt_r":            KeyAltRight,
	"altright":         KeyAltRight,
	"alt_gr":           KeyAltGr,
	"altgr":            KeyAltGr,
	"iso_level3_shift": KeyAltGr,
	"cmd":              KeyCmd,
	"cmd_l":            KeyCmd,
	"super_l":          KeyCmd,
	"win":              KeyCmd,
	"winleft":          KeyCmd,
	"cmd_r":            KeyCmdRight,
	"super_r":          KeyCmdRight,
	"winright":         KeyCmdRight,
	"cmdright":         KeyCmdRight,
}

// KeyFromName returns the Key for a given name (case-insensitive).
// Returns KeyNone if the name is not recognized.
func KeyFromName(name string) Key {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := keyNameMap[name]; ok {
		return k
	}
	return KeyNone
}
