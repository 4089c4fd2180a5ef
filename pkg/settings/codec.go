package settings

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// blob is the persisted wire layout
// off 0: validity marker
// off 1: unit, 0=C 1=F
// off 2: brightness table index
// off 3: gauge visible flag
// off 4: sound byte, bit7 enabled + low 7 bits volume percent
// off 5: emissivity word, little endian, round(e*100)
type blob struct {
	Marker     byte
	Unit       byte
	Brightness byte
	Gauge      byte
	Sound      byte
	Emissivity uint16
}

func packSound(on bool, volume int) byte {
	b := byte(volume) & 0x7f
	if on {
		b |= 0x80
	}
	return b
}

// MarshalBinary encodes the record into the fixed BlobLen layout
func (r Record) MarshalBinary() ([]byte, error) {
	w := blob{
		Marker:     Marker,
		Unit:       byte(r.Unit),
		Brightness: byte(r.BrightnessIndex),
		Gauge:      0,
		Sound:      packSound(r.SoundOn, r.Volume),
		Emissivity: uint16(math.Round(r.Emissivity * 100)),
	}
	if r.GaugeVisible {
		w.Gauge = 1
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &w); err != nil {
		return buf.Bytes(), fmt.Errorf("failed to encode settings blob: %s", err)
	}
	return buf.Bytes(), nil
}

// Decode reads a persisted blob back into a record. A blob that is too
// short, or whose marker byte is not ours, yields the default record: blank
// or foreign storage is never an error. The second return reports a
// legacy-format sound byte that the caller should migrate by rewriting
// storage once.
func Decode(buf []byte) (Record, bool) {
	var w blob
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &w); err != nil {
		return Default(), false
	}
	if w.Marker != Marker {
		return Default(), false
	}

	r := Record{
		Unit:            Unit(w.Unit),
		BrightnessIndex: int(w.Brightness),
		GaugeVisible:    w.Gauge != 0,
		Emissivity:      float64(w.Emissivity) / 100,
	}

	// Firmware before the volume control packed a 2-bit level into the
	// sound byte. The <= 0x03 test is the documented detection heuristic;
	// every byte the current encoding writes carries at least VolumeMin in
	// its low bits, so only old records land here.
	legacy := w.Sound <= 0x03
	if legacy {
		r.SoundOn = true
		r.Volume = legacyVolumes[w.Sound&0x03]
	} else {
		r.SoundOn = w.Sound&0x80 != 0
		r.Volume = int(w.Sound & 0x7f)
	}

	r.Clamp()
	return r, legacy
}
