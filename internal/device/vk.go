package device

import (
	"fmt"
	"unicode"

	"github.com/dshills/macrokit/internal/input/key"
)

// Windows virtual-key codes for keys without a character.
var vkSpecial = map[key.Key]uint16{
	key.KeyBackspace:   0x08,
	key.KeyTab:         0x09,
	key.KeyEnter:       0x0D,
	key.KeyPause:       0x13,
	key.KeyCapsLock:    0x14,
	key.KeyEscape:      0x1B,
	key.KeySpace:       0x20,
	key.KeyPageUp:      0x21,
	key.KeyPageDown:    0x22,
	key.KeyEnd:         0x23,
	key.KeyHome:        0x24,
	key.KeyLeft:        0x25,
	key.KeyUp:          0x26,
	key.KeyRight:       0x27,
	key.KeyDown:        0x28,
	key.KeyPrintScreen: 0x2C,
	key.KeyInsert:      0x2D,
	key.KeyDelete:      0x2E,
	key.KeyCmd:         0x5B,
	key.KeyCmdRight:    0x5C,
	key.KeyMenu:        0x5D,
	key.KeyNumLock:     0x90,
	key.KeyScrollLock:  0x91,
	key.KeyShift:       0xA0,
	key.KeyShiftRight:  0xA1,
	key.KeyCtrl:        0xA2,
	key.KeyCtrlRight:   0xA3,
	key.KeyAlt:         0xA4,
	key.KeyAltRight:    0xA5,
	key.KeyAltGr:       0xA5,
}

// US layout OEM keys.
var vkPunctuation = map[rune]uint16{
	';': 0xBA, '=': 0xBB, ',': 0xBC, '-': 0xBD, '.': 0xBE, '/': 0xBF,
	'`': 0xC0, '[': 0xDB, '\\': 0xDC, ']': 0xDD, '\'': 0xDE,
}

// vkTokens names virtual keys the way recorded macros spell them.
var vkTokens = func() map[uint16]string {
	m := make(map[uint16]string, len(vkSpecial)+len(vkPunctuation)+2)
	for k, vk := range vkSpecial {
		if k == key.KeyAltGr {
			continue
		}
		if _, dup := m[vk]; !dup {
			m[vk] = key.Event{Key: k}.String()
		}
	}
	for r, vk := range vkPunctuation {
		m[vk] = string(r)
	}
	// Generic modifier codes reported by some keyboards.
	m[0x10] = "shift"
	m[0x11] = "ctrl"
	m[0x12] = "alt"
	return m
}()

// VirtualKey returns the Windows virtual-key code for ev. Characters
// outside the US layout report false; the Windows sink then asks the
// active keyboard layout.
func VirtualKey(ev key.Event) (uint16, bool) {
	if ev.Key == key.KeyRune {
		r := ev.Rune
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return uint16(unicode.ToUpper(r)), true
		case r >= '0' && r <= '9':
			return uint16(r), true
		}
		vk, ok := vkPunctuation[r]
		return vk, ok
	}
	if ev.Key.IsFunctionKey() {
		return 0x70 + uint16(ev.Key-key.KeyF1), true
	}
	vk, ok := vkSpecial[ev.Key]
	return vk, ok
}

// vkToken returns the macro token for a virtual-key code. Unknown codes
// become "<vk>", which playback reports as unmapped.
func vkToken(vk uint16) string {
	switch {
	case vk >= 'A' && vk <= 'Z':
		return string(rune(unicode.ToLower(rune(vk))))
	case vk >= '0' && vk <= '9':
		return string(rune(vk))
	case vk >= 0x70 && vk <= 0x7B:
		return fmt.Sprintf("f%d", vk-0x70+1)
	}
	if tok, ok := vkTokens[vk]; ok {
		return tok
	}
	return fmt.Sprintf("<%d>", vk)
}
