// Package battery reads the charge level from the kernel's power_supply
// class.
package battery

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const sysBase = "/sys/class/power_supply"

// Gauge reads one power supply's capacity attribute
type Gauge struct {
	path string
}

// Find locates the first supply that exposes a capacity attribute
func Find() (*Gauge, error) {
	entries, err := os.ReadDir(sysBase)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		p := filepath.Join(sysBase, e.Name(), "capacity")
		if _, err := os.Stat(p); err == nil {
			return &Gauge{path: p}, nil
		}
	}
	return nil, fmt.Errorf("no battery under %s", sysBase)
}

// Percent reads the current charge level 0..100
func (g *Gauge) Percent() (int, error) {
	buf, err := os.ReadFile(g.path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(buf)))
}
