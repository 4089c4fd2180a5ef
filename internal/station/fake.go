package station

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"
)

// FakeSensor is an imaginary sensor so the daemon and its surfaces run
// without hardware. It sweeps a slow sine around body temperature.
type FakeSensor struct {
	start      time.Time
	emissivity float64
}

// NewFakeSensor makes a fake at the default calibration
func NewFakeSensor() *FakeSensor {
	log.Trace("FakeSensor start")
	return &FakeSensor{start: time.Now(), emissivity: 0.95}
}

// ObjectTemp sweeps 34..39 degrees over about 45 seconds
func (f *FakeSensor) ObjectTemp() (float64, error) {
	t := time.Since(f.start).Seconds()
	return 36.5 + 2.5*math.Sin(t/7), nil
}

// SetEmissivity records the value instead of programming EEPROM
func (f *FakeSensor) SetEmissivity(e float64) error {
	log.Infof("FakeSensor emissivity set to %.2f", e)
	f.emissivity = e
	return nil
}
