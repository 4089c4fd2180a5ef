package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pvollmer/irgauge/pkg/settings"
)

func TestFile(t *testing.T) {
	t.Run("MissingFileIsDefaults", func(t *testing.T) {
		f := NewFile(filepath.Join(t.TempDir(), "settings.bin"))
		rec, err := f.Load()
		if err != nil {
			t.Fatalf("Load: %s", err)
		}
		if rec != settings.Default() {
			t.Fatalf("Expected defaults, got %v", rec)
		}
	})

	t.Run("SaveThenLoad", func(t *testing.T) {
		f := NewFile(filepath.Join(t.TempDir(), "settings.bin"))
		want := settings.Record{
			Unit:            settings.Fahrenheit,
			BrightnessIndex: 1,
			GaugeVisible:    true,
			SoundOn:         false,
			Volume:          40,
			Emissivity:      0.90,
		}
		if err := f.Save(want); err != nil {
			t.Fatalf("Save: %s", err)
		}
		got, err := f.Load()
		if err != nil {
			t.Fatalf("Load: %s", err)
		}
		if got != want {
			t.Fatalf("Fail:\n%v\n%v", got, want)
		}
	})

	t.Run("CorruptBlobIsDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.bin")
		if err := os.WriteFile(path, []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x00, 0x00}, 0o644); err != nil {
			t.Fatal(err)
		}
		rec, err := NewFile(path).Load()
		if err != nil {
			t.Fatalf("Load: %s", err)
		}
		if rec != settings.Default() {
			t.Fatalf("Expected defaults, got %v", rec)
		}
	})

	t.Run("LegacyBlobRewrittenOnce", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.bin")
		legacy := []byte{settings.Marker, 0x00, 0x02, 0x01, 0x02, 0x5f, 0x00}
		if err := os.WriteFile(path, legacy, 0o644); err != nil {
			t.Fatal(err)
		}

		f := NewFile(path)
		rec, err := f.Load()
		if err != nil {
			t.Fatalf("Load: %s", err)
		}
		if !rec.SoundOn || rec.Volume != 75 {
			t.Fatalf("Legacy mapping wrong: %v", rec)
		}

		// blob on disk must now be new-format, and a second load must
		// not migrate again
		buf, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if buf[4] != 0x80|75 {
			t.Fatalf("Blob not rewritten, sound byte %#02x", buf[4])
		}
		if _, legacyAgain := settings.Decode(buf); legacyAgain {
			t.Fatal("Second decode still legacy")
		}
	})
}
