// Package statusled drives the RGB indicator, one GPIO line per channel.
package statusled

import (
	"image/color"

	"periph.io/x/conn/v3/gpio"
)

// LED is a common-cathode RGB LED
type LED struct {
	r, g, b gpio.PinIO
}

// New configures the three channel pins as low outputs
func New(r, g, b gpio.PinIO) (*LED, error) {
	for _, p := range []gpio.PinIO{r, g, b} {
		if err := p.Out(gpio.Low); err != nil {
			return nil, err
		}
	}
	return &LED{r: r, g: g, b: b}, nil
}

// Set lights the channels whose component is at least half on
func (l *LED) Set(c color.RGBA) error {
	if err := l.r.Out(gpio.Level(c.R >= 0x80)); err != nil {
		return err
	}
	if err := l.g.Out(gpio.Level(c.G >= 0x80)); err != nil {
		return err
	}
	return l.b.Out(gpio.Level(c.B >= 0x80))
}

// Off blanks the indicator
func (l *LED) Off() error {
	return l.Set(color.RGBA{})
}
