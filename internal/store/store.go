// Package store keeps the settings blob in a fixed-size file standing in
// for the device's EEPROM region.
package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/pvollmer/irgauge/pkg/settings"
)

// File is a settings.Store backed by a single small file
type File struct {
	path string
}

// NewFile makes a store at path
func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads and decodes the blob. Blank, foreign, or unreadable storage
// yields the default record; a legacy sound byte is migrated by rewriting
// the blob once, here.
func (f *File) Load() (settings.Record, error) {
	buf, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("No settings blob at %s, using defaults", f.path)
		return settings.Default(), nil
	}
	if err != nil {
		log.Warnf("Settings blob unreadable, using defaults: %s", err)
		return settings.Default(), nil
	}

	rec, legacy := settings.Decode(buf)
	if legacy {
		log.Infof("Migrating legacy sound byte, rewriting %s", f.path)
		if err := f.Save(rec); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// Save writes the full record; single fields are never written alone
func (f *File) Save(r settings.Record) error {
	buf, err := r.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path, buf, 0o644)
}
