package settings

import (
	"fmt"
	"testing"
)

func TestCodec(t *testing.T) {
	t.Run("MarshalBinary", func(t *testing.T) {
		r := Record{
			Unit:            Fahrenheit,
			BrightnessIndex: 3,
			GaugeVisible:    true,
			SoundOn:         true,
			Volume:          75,
			Emissivity:      0.95,
		}
		b, err := r.MarshalBinary()
		if err != nil {
			t.Fatalf("Failed to MarshalBinary: %s", err)
		}
		if len(b) != BlobLen {
			t.Fatalf("Bad blob length %v", len(b))
		}
		// 0x4b = volume 75, 0xcb = with the enabled bit
		// 0x5f 0x00 = 95 little endian
		expected := "a5010301cb5f00"
		result := fmt.Sprintf("%x", b)
		if result != expected {
			t.Fatalf("Fail:\n%v\n%v", result, expected)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		recs := []Record{
			Default(),
			{Unit: Fahrenheit, BrightnessIndex: 4, GaugeVisible: false, SoundOn: false, Volume: 25, Emissivity: 0.65},
			{Unit: Celsius, BrightnessIndex: 0, GaugeVisible: true, SoundOn: true, Volume: 100, Emissivity: 1.00},
			{Unit: Celsius, BrightnessIndex: 1, GaugeVisible: true, SoundOn: false, Volume: 55, Emissivity: 0.87},
		}
		for _, r := range recs {
			b, err := r.MarshalBinary()
			if err != nil {
				t.Fatalf("Failed to MarshalBinary: %s", err)
			}
			got, legacy := Decode(b)
			if legacy {
				t.Fatalf("Fresh blob flagged legacy: % x", b)
			}
			if got != r {
				t.Fatalf("Fail:\n%v\n%v", got, r)
			}
		}
	})

	t.Run("BadMarker", func(t *testing.T) {
		r := Record{Unit: Fahrenheit, BrightnessIndex: 4, SoundOn: true, Volume: 100, Emissivity: 0.80}
		b, err := r.MarshalBinary()
		if err != nil {
			t.Fatalf("Failed to MarshalBinary: %s", err)
		}
		b[0] = 0xff
		got, legacy := Decode(b)
		if legacy {
			t.Fatal("Foreign blob flagged legacy")
		}
		if got != Default() {
			t.Fatalf("Expected defaults, got %v", got)
		}
	})

	t.Run("ShortBuffer", func(t *testing.T) {
		got, _ := Decode([]byte{Marker, 0x01})
		if got != Default() {
			t.Fatalf("Expected defaults, got %v", got)
		}
	})

	t.Run("LegacySoundByte", func(t *testing.T) {
		for idx, volume := range []int{25, 50, 75, 100} {
			b := []byte{Marker, 0x00, 0x02, 0x01, byte(idx), 0x5f, 0x00}
			got, legacy := Decode(b)
			if !legacy {
				t.Fatalf("Legacy byte %#x not detected", idx)
			}
			if !got.SoundOn {
				t.Fatal("Legacy sound should decode enabled")
			}
			if got.Volume != volume {
				t.Fatalf("Legacy index %d: volume %d != %d", idx, got.Volume, volume)
			}
		}
	})

	t.Run("ClampOnLoad", func(t *testing.T) {
		// brightness index beyond the table, volume above bounds,
		// emissivity word below the floor
		b := []byte{Marker, 0x00, 0x09, 0x01, 0x80 | 0x7f, 0x28, 0x00}
		got, _ := Decode(b)
		if got.BrightnessIndex != Default().BrightnessIndex {
			t.Fatalf("Brightness index not clamped: %d", got.BrightnessIndex)
		}
		if got.Volume != VolumeMax {
			t.Fatalf("Volume not clamped: %d", got.Volume)
		}
		if got.Emissivity != EmissivityMin {
			t.Fatalf("Emissivity not clamped: %v", got.Emissivity)
		}
	})
}
