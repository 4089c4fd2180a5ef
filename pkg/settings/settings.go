package settings

import (
	"fmt"
	"math"
)

// Marker confirms the blob was written by this firmware.
const Marker byte = 0xa5

// BlobLen is the size of the persisted settings blob in bytes.
const BlobLen = 7

// Unit selects the temperature readout scale.
type Unit byte

const (
	Celsius Unit = iota
	Fahrenheit
)

func (u Unit) String() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

// Suffix is the readout suffix for the unit
func (u Unit) Suffix() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// Convert takes degrees celsius to display units
func (u Unit) Convert(c float64) float64 {
	if u == Fahrenheit {
		return c*9/5 + 32
	}
	return c
}

// BrightnessTable holds the display brightness percentages BrightnessIndex
// selects from.
var BrightnessTable = [...]int{10, 25, 50, 75, 100}

// Field bounds
const (
	VolumeMin  = 25
	VolumeMax  = 100
	VolumeStep = 5

	EmissivityMin = 0.65
	EmissivityMax = 1.00
)

// legacyVolumes maps the old 2-bit sound setting to volume percent
var legacyVolumes = [...]int{25, 50, 75, 100}

// Record is the in-memory settings state, mirroring the persisted blob
type Record struct {
	Unit            Unit
	BrightnessIndex int
	GaugeVisible    bool
	SoundOn         bool
	Volume          int
	Emissivity      float64
}

// Default is the record used when storage is blank or not ours
func Default() Record {
	return Record{
		Unit:            Celsius,
		BrightnessIndex: 2,
		GaugeVisible:    true,
		SoundOn:         true,
		Volume:          50,
		Emissivity:      0.95,
	}
}

// Brightness is the percent the record's index selects
func (r Record) Brightness() int {
	if r.BrightnessIndex < 0 || r.BrightnessIndex >= len(BrightnessTable) {
		return BrightnessTable[Default().BrightnessIndex]
	}
	return BrightnessTable[r.BrightnessIndex]
}

func (r Record) String() string {
	return fmt.Sprintf(
		"unit=%s bri=%d gauge=%t snd=%t vol=%d emis=%.2f",
		r.Unit,
		r.BrightnessIndex,
		r.GaugeVisible,
		r.SoundOn,
		r.Volume,
		r.Emissivity,
	)
}

// Clamp forces every field back into its documented bounds. Values restored
// from storage pass through here so a stale blob can never index out of the
// brightness table or push emissivity outside the sensor's range.
func (r *Record) Clamp() {
	if r.Unit != Fahrenheit {
		r.Unit = Celsius
	}
	if r.BrightnessIndex < 0 || r.BrightnessIndex >= len(BrightnessTable) {
		r.BrightnessIndex = Default().BrightnessIndex
	}
	r.Volume = clampVolume(r.Volume)
	r.Emissivity = ClampEmissivity(r.Emissivity)
}

func clampVolume(v int) int {
	if v < VolumeMin {
		return VolumeMin
	}
	if v > VolumeMax {
		return VolumeMax
	}
	return v
}

// ClampEmissivity bounds e to the sensor's supported range, rounded to
// hundredths like the blob stores it.
func ClampEmissivity(e float64) float64 {
	e = math.Round(e*100) / 100
	if e < EmissivityMin {
		return EmissivityMin
	}
	if e > EmissivityMax {
		return EmissivityMax
	}
	return e
}

// Store persists the settings blob. Writes are always the full record so the
// stored blob stays self-consistent.
type Store interface {
	Load() (Record, error)
	Save(Record) error
}
