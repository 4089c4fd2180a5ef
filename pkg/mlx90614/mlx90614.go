// Package mlx90614 talks to the Melexis MLX90614 infrared thermometer over
// SMBus. Object temperature is a two-byte little-endian raw word scaled by
// 0.02K; the emissivity calibration is a 16-bit EEPROM word equal to
// round(e * 65535). Every bus read carries a PEC byte (SMBus CRC-8) that is
// validated before a reading is accepted.
package mlx90614

import (
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

// Addr is the factory default SMBus address
const Addr uint16 = 0x5a

// Registers
const (
	regTAmbient    = 0x06 // RAM: ambient die temperature
	regTObject     = 0x07 // RAM: object temperature, IR channel 1
	regEmissivity  = 0x24 // EEPROM 0x04 via the EEPROM access command
	eepromWriteGap = 10 * time.Millisecond
)

// Invalid is the sentinel returned for a failed reading. It sits far below
// absolute zero so no threshold ever matches it; the display layer treats
// it as "no update".
const Invalid = -1000.0

// busAttempts bounds the retry loop so a dead bus fails fast instead of
// hanging the polling loop.
const busAttempts = 3

// RawToCelsius converts a raw temperature word to degrees celsius
func RawToCelsius(raw uint16) float64 {
	return float64(raw)*0.02 - 273.15
}

// EmissivityWord converts a calibration value to the sensor's register
// encoding
func EmissivityWord(e float64) uint16 {
	return uint16(math.Round(e * 65535))
}

// Dev is a handle to the sensor on an open bus
type Dev struct {
	d *i2c.Dev
}

// New makes a sensor handle at the default address
func New(bus i2c.Bus) *Dev {
	return &Dev{d: &i2c.Dev{Bus: bus, Addr: Addr}}
}

// ObjectTemp reads the object temperature in degrees celsius. On bus
// failure or a PEC mismatch it returns Invalid and the error after the
// bounded retries are spent.
func (d *Dev) ObjectTemp() (float64, error) {
	raw, err := d.readWord(regTObject)
	if err != nil {
		return Invalid, err
	}
	if raw&0x8000 != 0 {
		// sensor flags a bad measurement in the high bit
		return Invalid, fmt.Errorf("sensor error flag in reading %#04x", raw)
	}
	return RawToCelsius(raw), nil
}

// AmbientTemp reads the die temperature in degrees celsius
func (d *Dev) AmbientTemp() (float64, error) {
	raw, err := d.readWord(regTAmbient)
	if err != nil {
		return Invalid, err
	}
	return RawToCelsius(raw), nil
}

// SetEmissivity programs the emissivity calibration register. EEPROM cells
// must be erased to zero before the new word is written, with a settle gap
// after each write.
func (d *Dev) SetEmissivity(e float64) error {
	word := EmissivityWord(e)
	log.WithFields(log.Fields{"emissivity": e, "word": fmt.Sprintf("%#04x", word)}).Debug("Programming emissivity")
	if err := d.writeWord(regEmissivity, 0x0000); err != nil {
		return fmt.Errorf("emissivity erase: %s", err)
	}
	time.Sleep(eepromWriteGap)
	if err := d.writeWord(regEmissivity, word); err != nil {
		return fmt.Errorf("emissivity write: %s", err)
	}
	time.Sleep(eepromWriteGap)
	return nil
}

func (d *Dev) readWord(reg byte) (uint16, error) {
	var lastErr error
	for i := 0; i < busAttempts; i++ {
		buf := make([]byte, 3)
		if err := d.d.Tx([]byte{reg}, buf); err != nil {
			lastErr = err
			continue
		}
		if pec := readPEC(byte(Addr), reg, buf[0], buf[1]); pec != buf[2] {
			lastErr = fmt.Errorf("PEC mismatch %#02x != %#02x", buf[2], pec)
			continue
		}
		return uint16(buf[0]) | uint16(buf[1])<<8, nil
	}
	return 0, fmt.Errorf("read %#02x failed after %d attempts: %s", reg, busAttempts, lastErr)
}

func (d *Dev) writeWord(reg byte, word uint16) error {
	lsb := byte(word)
	msb := byte(word >> 8)
	pec := writePEC(byte(Addr), reg, lsb, msb)
	return d.d.Tx([]byte{reg, lsb, msb, pec}, nil)
}

// crc8 is the SMBus PEC polynomial x^8+x^2+x+1
func crc8(data ...byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func readPEC(addr, reg, lsb, msb byte) byte {
	return crc8(addr<<1, reg, addr<<1|1, lsb, msb)
}

func writePEC(addr, reg, lsb, msb byte) byte {
	return crc8(addr<<1, reg, lsb, msb)
}
