package key

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Event is a resolved key: either a special key or a single character.
type Event struct {
	// Key identifies the key.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// String returns the canonical token for the event.
func (e Event) String() string {
	if e.Key == KeyRune {
		return string(e.Rune)
	}
	return strings.ToLower(e.Key.String())
}

const namespacePrefix = "key."

// Canonical strips library decoration from a raw key identifier and folds
// it to lowercase. Surrounding single or double quotes are removed, as is a
// "Key." namespace prefix, so "'a'" becomes "a" and "Key.shift" becomes
// "shift". A quoted quote character ("'\”" or "\"'\"") keeps the inner quote.
func Canonical(raw string) string {
	s := strings.TrimSpace(raw)
	s = unquote(s)
	// A Caser is stateful, so each call gets its own.
	folded := cases.Lower(language.Und).String(s)
	if strings.HasPrefix(folded, namespacePrefix) && len(folded) > len(namespacePrefix) {
		folded = folded[len(namespacePrefix):]
	}
	return folded
}

func unquote(s string) string {
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first != last || (first != '\'' && first != '"') {
			return s
		}
		inner := s[1 : len(s)-1]
		if inner == "" {
			return s
		}
		s = inner
		if utf8.RuneCountInString(s) == 1 {
			return s
		}
	}
	return s
}

// Lookup resolves a raw or canonical key token.
// Named keys resolve to their Key; a single printable character resolves to
// KeyRune. Anything else (virtual-key numbers like "<96>", unknown names,
// control characters) is reported as not found.
func Lookup(token string) (Event, bool) {
	c := Canonical(token)
	if c == "" {
		return Event{}, false
	}
	if k, ok := keyNameMap[c]; ok {
		return Event{Key: k}, true
	}
	if utf8.RuneCountInString(c) != 1 {
		return Event{}, false
	}
	r, _ := utf8.DecodeRuneInString(c)
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return Event{}, false
	}
	if r == ' ' {
		return Event{Key: KeySpace}, true
	}
	return Event{Key: KeyRune, Rune: r}, true
}
