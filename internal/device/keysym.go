package device

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dshills/macrokit/internal/input/key"
)

// Keymap maps X keycodes to keysym names.
type Keymap map[int]string

// Name returns the keysym for code, or a "<code>" placeholder that no key
// lookup resolves.
func (m Keymap) Name(code int) string {
	if name, ok := m[code]; ok {
		return name
	}
	return fmt.Sprintf("<%d>", code)
}

// ParseKeymap reads the output of "xmodmap -pke". Each line has the form
//
//	keycode  38 = a A a A
//
// and the first keysym is used. Keycodes without keysyms are skipped.
func ParseKeymap(r io.Reader) (Keymap, error) {
	m := make(Keymap)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		lhs, rhs, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields := strings.Fields(lhs)
		if len(fields) != 2 || fields[0] != "keycode" {
			continue
		}
		code, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		syms := strings.Fields(rhs)
		if len(syms) == 0 || syms[0] == "NoSymbol" {
			continue
		}
		m[code] = syms[0]
	}
	return m, sc.Err()
}

// LoadKeymap reads the current keymap with xmodmap. On failure the
// built-in US layout is returned along with the error.
func LoadKeymap() (Keymap, error) {
	out, err := exec.Command("xmodmap", "-pke").Output()
	if err != nil {
		return DefaultKeymap(), err
	}
	m, err := ParseKeymap(bytes.NewReader(out))
	if err != nil || len(m) == 0 {
		return DefaultKeymap(), fmt.Errorf("parsing xmodmap output: %v", err)
	}
	return m, nil
}

// DefaultKeymap returns the evdev keycodes of a US layout.
func DefaultKeymap() Keymap {
	m := Keymap{
		9: "Escape", 22: "BackSpace", 23: "Tab", 36: "Return", 65: "space",
		37: "Control_L", 105: "Control_R", 50: "Shift_L", 62: "Shift_R",
		64: "Alt_L", 108: "ISO_Level3_Shift", 133: "Super_L", 134: "Super_R",
		66: "Caps_Lock", 77: "Num_Lock", 78: "Scroll_Lock", 127: "Pause",
		107: "Print", 135: "Menu",
		110: "Home", 111: "Up", 112: "Prior", 113: "Left", 114: "Right",
		115: "End", 116: "Down", 117: "Next", 118: "Insert", 119: "Delete",
		95: "F11", 96: "F12",
		20: "minus", 21: "equal", 34: "bracketleft", 35: "bracketright",
		47: "semicolon", 48: "apostrophe", 49: "grave", 51: "backslash",
		59: "comma", 60: "period", 61: "slash",
	}
	rows := []struct {
		first int
		keys  string
	}{
		{10, "1234567890"},
		{24, "qwertyuiop"},
		{38, "asdfghjkl"},
		{52, "zxcvbnm"},
	}
	for _, row := range rows {
		for i, r := range row.keys {
			m[row.first+i] = string(r)
		}
	}
	for i := 0; i < 10; i++ {
		m[67+i] = fmt.Sprintf("F%d", i+1)
	}
	return m
}

// punctuationKeysyms maps characters to the keysym names X uses for them.
var punctuationKeysyms = map[rune]string{
	'-': "minus", '=': "equal", '[': "bracketleft", ']': "bracketright",
	';': "semicolon", '\'': "apostrophe", '`': "grave", '\\': "backslash",
	',': "comma", '.': "period", '/': "slash",
	'!': "exclam", '@': "at", '#': "numbersign", '$': "dollar",
	'%': "percent", '^': "asciicircum", '&': "ampersand", '*': "asterisk",
	'(': "parenleft", ')': "parenright", '_': "underscore", '+': "plus",
	'{': "braceleft", '}': "braceright", ':': "colon", '"': "quotedbl",
	'~': "asciitilde", '|': "bar", '<': "less", '>': "greater", '?': "question",
}

var specialKeysyms = map[key.Key]string{
	key.KeyEscape:      "Escape",
	key.KeyEnter:       "Return",
	key.KeyTab:         "Tab",
	key.KeyBackspace:   "BackSpace",
	key.KeyDelete:      "Delete",
	key.KeyInsert:      "Insert",
	key.KeyHome:        "Home",
	key.KeyEnd:         "End",
	key.KeyPageUp:      "Prior",
	key.KeyPageDown:    "Next",
	key.KeyUp:          "Up",
	key.KeyDown:        "Down",
	key.KeyLeft:        "Left",
	key.KeyRight:       "Right",
	key.KeySpace:       "space",
	key.KeyPause:       "Pause",
	key.KeyPrintScreen: "Print",
	key.KeyScrollLock:  "Scroll_Lock",
	key.KeyNumLock:     "Num_Lock",
	key.KeyCapsLock:    "Caps_Lock",
	key.KeyMenu:        "Menu",
	key.KeyShift:       "Shift_L",
	key.KeyShiftRight:  "Shift_R",
	key.KeyCtrl:        "Control_L",
	key.KeyCtrlRight:   "Control_R",
	key.KeyAlt:         "Alt_L",
	key.KeyAltRight:    "Alt_R",
	key.KeyAltGr:       "ISO_Level3_Shift",
	key.KeyCmd:         "Super_L",
	key.KeyCmdRight:    "Super_R",
}

// Keysym returns the X keysym name for ev.
func Keysym(ev key.Event) (string, bool) {
	if ev.Key == key.KeyRune {
		if ev.Rune == 0 {
			return "", false
		}
		if name, ok := punctuationKeysyms[ev.Rune]; ok {
			return name, true
		}
		return string(ev.Rune), true
	}
	if ev.Key.IsFunctionKey() {
		return fmt.Sprintf("F%d", int(ev.Key-key.KeyF1)+1), true
	}
	name, ok := specialKeysyms[ev.Key]
	return name, ok
}

// keysymTokens folds keysym names for punctuation back to the character,
// so a recording made on X stores "," rather than "comma".
var keysymTokens = func() map[string]string {
	m := make(map[string]string, len(punctuationKeysyms))
	for r, name := range punctuationKeysyms {
		m[name] = string(r)
	}
	return m
}()

// keysymToken converts a keysym name to the token recorded in a macro.
func keysymToken(name string) string {
	if tok, ok := keysymTokens[name]; ok {
		return tok
	}
	return name
}
