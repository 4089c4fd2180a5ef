// Package input turns raw active-low button lines into debounced press
// events. Lines idle high; a press is the falling edge, and a fixed quiet
// window after each event swallows contact bounce no matter how fast the
// loop polls.
package input

import (
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/pvollmer/irgauge/pkg/menu"
)

// QuietWindow suppresses bounce after a detected edge
const QuietWindow = 30 * time.Millisecond

// Line debounces one active-low input line
type Line struct {
	quiet      time.Duration
	prevHigh   bool
	quietUntil time.Time
}

// NewLine makes a debouncer for a line idling high
func NewLine(quiet time.Duration) *Line {
	return &Line{quiet: quiet, prevHigh: true}
}

// Sample feeds one raw level reading. It reports true on the falling edge
// and never again until the line has gone high and the quiet window has
// passed.
func (l *Line) Sample(now time.Time, high bool) bool {
	pressed := false
	if l.prevHigh && !high && !now.Before(l.quietUntil) {
		pressed = true
		l.quietUntil = now.Add(l.quiet)
	}
	l.prevHigh = high
	return pressed
}

// Buttons polls the three station buttons through per-line debouncers
type Buttons struct {
	pins  [3]gpio.PinIO
	lines [3]*Line
}

// NewButtons wires the prev/next/select pins. Pins are configured as
// pulled-up inputs.
func NewButtons(prev, next, sel gpio.PinIO) (*Buttons, error) {
	b := &Buttons{pins: [3]gpio.PinIO{prev, next, sel}}
	for i, p := range b.pins {
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, err
		}
		b.lines[i] = NewLine(QuietWindow)
	}
	return b, nil
}

// Poll samples every line once and reports at most one press, prev first
func (b *Buttons) Poll(now time.Time) (menu.Button, bool) {
	var hit menu.Button
	found := false
	for i, p := range b.pins {
		if b.lines[i].Sample(now, p.Read() == gpio.High) && !found {
			hit = menu.Button(i)
			found = true
		}
	}
	return hit, found
}
