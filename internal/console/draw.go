package console

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/macrokit/internal/app"
)

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHelp    = tcell.StyleDefault.Foreground(tcell.ColorTeal)

	stateStyles = map[app.State]tcell.Style{
		app.StateIdle:      tcell.StyleDefault.Foreground(tcell.ColorGreen),
		app.StateRecording: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
		app.StatePlaying:   tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	}
	noticeStyles = map[app.NoticeLevel]tcell.Style{
		app.NoticeInfo:  tcell.StyleDefault,
		app.NoticeWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		app.NoticeError: tcell.StyleDefault.Foreground(tcell.ColorRed),
	}
)

var stateLabels = map[app.State]string{
	app.StateIdle:      "Idle",
	app.StateRecording: "Recording",
	app.StatePlaying:   "Playing",
}

type line struct {
	label string
	value string
	style tcell.Style
}

func (c *Console) status() []line {
	state := c.session.State()
	opts := c.session.Settings().Options()
	profile := c.session.Settings().Current()
	if profile == "" {
		profile = "(none)"
	}
	continuous := "off"
	if opts.ContinuousPlayback {
		continuous = "on"
	}

	return []line{
		{"State", stateLabels[state], stateStyles[state]},
		{"Timer", app.FormatDuration(c.session.Elapsed()), styleDefault},
		{"Loops", fmt.Sprint(c.session.Loops()), styleDefault},
		{"Events Recorded", fmt.Sprint(c.session.Events().Len()), styleDefault},
		{"Profile", profile, styleDefault},
		{"Continuous", continuous, styleDefault},
		{"Display", c.session.Displays().Bounds().String(), styleDefault},
	}
}

func (c *Console) draw() {
	s := c.screen
	s.Clear()

	drawText(s, 1, 0, styleTitle, "macrokit")
	y := 2
	for _, l := range c.status() {
		drawText(s, 1, y, styleLabel, l.label+":")
		drawText(s, 19, y, l.style, l.value)
		y++
	}

	y++
	help := fmt.Sprintf("[%s] record  [%s] play  [c] continuous  [s] save  [q] quit",
		c.recordLabel, c.playLabel)
	drawText(s, 1, y, styleHelp, help)

	c.mu.Lock()
	n := c.notice
	c.mu.Unlock()
	if n.Message != "" {
		drawText(s, 1, y+2, noticeStyles[n.Level], n.Message)
	}
	s.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	width, height := s.Size()
	if y < 0 || y >= height {
		return
	}
	for _, r := range text {
		if x >= width {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
