package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jpalmerr/gardenwatch/internal/poller"
)

// terminal palette
var (
	colorLabel   = lipgloss.Color("#6b7280")
	colorValue   = lipgloss.Color("#f9fafb")
	colorGarden  = lipgloss.Color("#22c55e")
	colorBorder  = lipgloss.Color("#4b5563")
	colorStale   = lipgloss.Color("#9ca3af")
	colorAlert   = lipgloss.Color("#dc2626")
	colorControl = lipgloss.Color("#d97706")
)

// ConsoleRenderer writes target changes to a terminal as styled lines.
//
// Only changes are written: repeating the same text produces no output. A
// non-empty page style switches every later line to a dimmed palette, the
// terminal's stand-in for the greyed-out page. Controls are announced with
// a prompt; the caller activates them with [ConsoleRenderer.ActivatePending]
// (the watch command does so on Enter).
type ConsoleRenderer struct {
	mu       sync.Mutex
	out      io.Writer
	texts    map[poller.Target]string
	stale    bool
	controls *Controls

	label   lipgloss.Style
	value   lipgloss.Style
	garden  lipgloss.Style
	dimmed  lipgloss.Style
	alert   lipgloss.Style
	control lipgloss.Style
}

// NewConsoleRenderer creates a renderer writing to out. Colour output is
// enabled only when out is a terminal that supports it.
func NewConsoleRenderer(out io.Writer) *ConsoleRenderer {
	lr := lipgloss.NewRenderer(out)
	c := &ConsoleRenderer{
		out:   out,
		texts: make(map[poller.Target]string),

		label: lr.NewStyle().Foreground(colorLabel).Width(10),
		value: lr.NewStyle().Foreground(colorValue).Bold(true),
		garden: lr.NewStyle().
			Foreground(colorGarden).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		dimmed:  lr.NewStyle().Foreground(colorStale).Faint(true),
		alert:   lr.NewStyle().Foreground(colorAlert).Bold(true),
		control: lr.NewStyle().Foreground(colorControl).Bold(true),
	}
	c.controls = NewControls(c.controlChanged)
	return c
}

func (c *ConsoleRenderer) SetText(target poller.Target, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.texts[target]; ok && prev == text {
		return
	}
	c.texts[target] = text

	switch {
	case target == poller.TargetGarden:
		style := c.garden
		if c.stale {
			style = style.Foreground(colorStale)
		}
		c.writeLine(style.Render(text))
	case text == poller.DisconnectedText:
		c.writeLine(c.label.Render(string(target)) + c.alert.Render(text))
	default:
		c.writeLine(c.label.Render(string(target)) + c.valueStyle().Render(text))
	}
}

func (c *ConsoleRenderer) SetStyle(target poller.Target, style string) {
	if target != poller.TargetPage {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stale := strings.TrimSpace(style) != ""
	if stale == c.stale {
		return
	}
	c.stale = stale
	if stale {
		c.writeLine(c.dimmed.Render("-- view is stale --"))
	} else {
		c.writeLine(c.label.Render("page") + c.value.Render("live"))
	}
}

func (c *ConsoleRenderer) AttachControl(target poller.Target, label string, onActivate func()) poller.Control {
	return c.controls.Attach(target, label, onActivate)
}

// ActivatePending fires the oldest pending control, if any.
func (c *ConsoleRenderer) ActivatePending() bool {
	return c.controls.ActivateOldest()
}

func (c *ConsoleRenderer) controlChanged(target poller.Target, label string) {
	if label == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLine(c.label.Render(string(target)) + c.control.Render(fmt.Sprintf("[ %s ]", label)) + " press Enter")
}

func (c *ConsoleRenderer) valueStyle() lipgloss.Style {
	if c.stale {
		return c.dimmed
	}
	return c.value
}

// writeLine writes s and a newline. c.mu must be held.
func (c *ConsoleRenderer) writeLine(s string) {
	_, _ = io.WriteString(c.out, s+"\n")
}
