// Package tone drives the piezo buzzer with short bit-banged square waves
// for navigation and confirmation feedback.
package tone

import (
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

// Kind selects one of the fixed feedback tones
type Kind int

const (
	Nav Kind = iota
	Confirm
	Error
)

type shape struct {
	freq     int
	duration time.Duration
}

var shapes = map[Kind]shape{
	Nav:     {freq: 2000, duration: 30 * time.Millisecond},
	Confirm: {freq: 2700, duration: 60 * time.Millisecond},
	Error:   {freq: 400, duration: 120 * time.Millisecond},
}

// Buzzer is a piezo on one GPIO line
type Buzzer struct {
	pin gpio.PinIO
}

// NewBuzzer configures the pin as a low output
func NewBuzzer(pin gpio.PinIO) (*Buzzer, error) {
	if err := pin.Out(gpio.Low); err != nil {
		return nil, err
	}
	return &Buzzer{pin: pin}, nil
}

// Play blocks for the tone's duration. Volume 0..100 scales the square
// wave duty cycle; the tones are tens of milliseconds, short enough to run
// inside the polling loop.
func (b *Buzzer) Play(k Kind, volume int) {
	s, ok := shapes[k]
	if !ok {
		return
	}
	if volume <= 0 {
		return
	}
	if volume > 100 {
		volume = 100
	}

	period := time.Second / time.Duration(s.freq)
	high := period * time.Duration(volume) / 200 // duty tops out at 50%
	cycles := int(s.duration / period)
	for i := 0; i < cycles; i++ {
		if err := b.pin.Out(gpio.High); err != nil {
			log.Debugf("Buzzer write: %s", err)
			return
		}
		time.Sleep(high)
		if err := b.pin.Out(gpio.Low); err != nil {
			log.Debugf("Buzzer write: %s", err)
			return
		}
		time.Sleep(period - high)
	}
}
