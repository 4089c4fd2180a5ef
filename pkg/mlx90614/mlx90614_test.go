package mlx90614

import (
	"image/color"
	"math"
	"testing"
)

func TestRawToCelsius(t *testing.T) {
	t.Run("ObjectRegisterScenario", func(t *testing.T) {
		// 0x3a10 * 0.02 - 273.15
		c := RawToCelsius(0x3a10)
		if math.Abs(c-24.13) > 0.001 {
			t.Fatalf("Bad conversion %v", c)
		}
		s := Classify(c)
		if s != StatusTooCold {
			t.Fatalf("Bad status %v", s)
		}
		if s.Label() != "TOO COLD" {
			t.Fatalf("Bad label %q", s.Label())
		}
		want := color.RGBA{B: 0xff, A: 0xff}
		if s.Color() != want {
			t.Fatalf("Bad color %v", s.Color())
		}
	})

	t.Run("AbsoluteZero", func(t *testing.T) {
		if c := RawToCelsius(0); math.Abs(c+273.15) > 0.001 {
			t.Fatalf("Bad conversion %v", c)
		}
	})
}

func TestEmissivityWord(t *testing.T) {
	cases := []struct {
		e    float64
		word uint16
	}{
		{1.00, 0xffff},
		{0.95, 0xf332},
		{0.65, 0xa666},
	}
	for _, c := range cases {
		if got := EmissivityWord(c.e); got != c.word {
			t.Fatalf("EmissivityWord(%v) = %#04x, want %#04x", c.e, got, c.word)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		c float64
		s Status
	}{
		{34.9, StatusTooCold},
		{35.0, StatusNormal},
		{37.4, StatusNormal},
		{37.5, StatusElevated},
		{37.9, StatusElevated},
		{38.0, StatusFever},
		{41.2, StatusFever},
	}
	for _, tc := range cases {
		if got := Classify(tc.c); got != tc.s {
			t.Fatalf("Classify(%v) = %v, want %v", tc.c, got, tc.s)
		}
	}
}

func TestPEC(t *testing.T) {
	// SMBus CRC-8 check value from the standard: crc8 of "123456789"
	// as bytes is 0xf4
	digits := []byte("123456789")
	if got := crc8(digits...); got != 0xf4 {
		t.Fatalf("crc8 check value %#02x", got)
	}

	t.Run("ReadFrame", func(t *testing.T) {
		// the PEC covers addr+W, command, addr+R, then the data bytes
		pec := readPEC(byte(Addr), regTObject, 0x10, 0x3a)
		again := crc8(0xb4, 0x07, 0xb5, 0x10, 0x3a)
		if pec != again {
			t.Fatalf("readPEC framing mismatch %#02x != %#02x", pec, again)
		}
	})
}
