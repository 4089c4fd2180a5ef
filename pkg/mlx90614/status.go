package mlx90614

import "image/color"

// Status is the qualitative reading classification shown next to the
// readout and mirrored on the indicator LED.
type Status int

const (
	StatusTooCold Status = iota
	StatusNormal
	StatusElevated
	StatusFever
)

// Fixed classification thresholds in degrees celsius
const (
	ThresholdTooCold  = 35.0
	ThresholdElevated = 37.5
	ThresholdFever    = 38.0
)

// Classify maps a reading in degrees celsius to its status
func Classify(c float64) Status {
	switch {
	case c < ThresholdTooCold:
		return StatusTooCold
	case c < ThresholdElevated:
		return StatusNormal
	case c < ThresholdFever:
		return StatusElevated
	}
	return StatusFever
}

// Label is the display string for the status
func (s Status) Label() string {
	switch s {
	case StatusTooCold:
		return "TOO COLD"
	case StatusNormal:
		return "NORMAL"
	case StatusElevated:
		return "ELEVATED"
	}
	return "FEVER"
}

// Color is the indicator LED color for the status
func (s Status) Color() color.RGBA {
	switch s {
	case StatusTooCold:
		return color.RGBA{B: 0xff, A: 0xff}
	case StatusNormal:
		return color.RGBA{G: 0xff, A: 0xff}
	case StatusElevated:
		return color.RGBA{R: 0xff, G: 0xff, A: 0xff}
	}
	return color.RGBA{R: 0xff, A: 0xff}
}
