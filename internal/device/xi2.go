package device

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// XI2 event names as printed by "xinput test-xi2".
const (
	xiKeyPress      = "KeyPress"
	xiKeyRelease    = "KeyRelease"
	xiButtonPress   = "ButtonPress"
	xiButtonRelease = "ButtonRelease"
	xiMotion        = "Motion"
)

type xi2Block struct {
	kind    string
	detail  int
	x, y    int
	hasRoot bool
}

// xi2Parser turns "xinput test-xi2 --root" output into Listener calls.
type xi2Parser struct {
	keymap   Keymap
	listener Listener

	cur     *xi2Block
	lastX   int
	lastY   int
	havePos bool
}

// ParseXI2 reads XI2 event blocks from r until EOF and reports them to l.
// Raw and hierarchy events are ignored.
func ParseXI2(r io.Reader, keymap Keymap, l Listener) error {
	if keymap == nil {
		keymap = DefaultKeymap()
	}
	p := &xi2Parser{keymap: keymap, listener: l}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line(sc.Text())
	}
	p.flush()
	return sc.Err()
}

func (p *xi2Parser) line(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		p.flush()
		return
	}
	if strings.HasPrefix(line, "EVENT type") {
		p.flush()
		open := strings.IndexByte(line, '(')
		end := strings.LastIndexByte(line, ')')
		if open < 0 || end <= open {
			return
		}
		p.cur = &xi2Block{kind: line[open+1 : end]}
		return
	}
	if p.cur == nil {
		return
	}

	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	switch name {
	case "detail":
		if n, err := strconv.Atoi(value); err == nil {
			p.cur.detail = n
		}
	case "root":
		xs, ys, ok := strings.Cut(value, "/")
		if !ok {
			return
		}
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			return
		}
		p.cur.x = int(math.Floor(x))
		p.cur.y = int(math.Floor(y))
		p.cur.hasRoot = true
	}
}

func (p *xi2Parser) flush() {
	b := p.cur
	p.cur = nil
	if b == nil {
		return
	}

	switch b.kind {
	case xiMotion:
		if !b.hasRoot {
			return
		}
		if p.havePos && b.x == p.lastX && b.y == p.lastY {
			return
		}
		p.setPos(b)
		p.listener.OnMove(b.x, b.y)
	case xiButtonPress, xiButtonRelease:
		pressed := b.kind == xiButtonPress
		if b.hasRoot {
			p.setPos(b)
		}
		if dx, dy, ok := wheelDelta(b.detail); ok {
			if pressed {
				p.listener.OnScroll(p.lastX, p.lastY, dx, dy)
			}
			return
		}
		p.listener.OnClick(p.lastX, p.lastY, xButtonName(b.detail), pressed)
	case xiKeyPress:
		p.listener.OnKeyPress(keysymToken(p.keymap.Name(b.detail)))
	case xiKeyRelease:
		p.listener.OnKeyRelease(keysymToken(p.keymap.Name(b.detail)))
	}
}

func (p *xi2Parser) setPos(b *xi2Block) {
	p.lastX, p.lastY = b.x, b.y
	p.havePos = true
}

// wheelDelta maps X wheel buttons to scroll steps. Positive dy scrolls up.
func wheelDelta(button int) (dx, dy int, ok bool) {
	switch button {
	case 4:
		return 0, 1, true
	case 5:
		return 0, -1, true
	case 6:
		return -1, 0, true
	case 7:
		return 1, 0, true
	}
	return 0, 0, false
}

func xButtonName(button int) string {
	switch button {
	case 1:
		return "left"
	case 2:
		return "middle"
	case 3:
		return "right"
	case 8:
		return "x1"
	case 9:
		return "x2"
	default:
		return "button" + strconv.Itoa(button)
	}
}
