// Package station owns the device state: the settings record, the menu
// machine, and the latest reading. One polling loop samples the buttons,
// the sensor, and the battery, and runs every settings mutation and
// persistence synchronously in the step that triggered it. The HTTP,
// HomeKit, and MQTT surfaces read snapshots and send settings changes over
// a channel.
package station

import (
	"context"
	"image/color"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pvollmer/irgauge/internal/screen"
	"github.com/pvollmer/irgauge/internal/tone"
	"github.com/pvollmer/irgauge/pkg/menu"
	"github.com/pvollmer/irgauge/pkg/mlx90614"
	"github.com/pvollmer/irgauge/pkg/settings"
)

// Sensor reads the IR thermometer
type Sensor interface {
	ObjectTemp() (float64, error)
	SetEmissivity(float64) error
}

// Display renders station frames
type Display interface {
	Render(screen.Frame) error
	SetBrightness(int) error
}

// Indicator is the RGB status LED
type Indicator interface {
	Set(color.RGBA) error
}

// Toner plays feedback tones
type Toner interface {
	Play(tone.Kind, int)
}

// ButtonSource reports debounced presses
type ButtonSource interface {
	Poll(time.Time) (menu.Button, bool)
}

// BatteryGauge reads the charge percent
type BatteryGauge interface {
	Percent() (int, error)
}

// Restarter restarts the device after a confirmed emissivity change
type Restarter interface {
	Restart() error
}

// Hardware collects the station's collaborators. Indicator, Tone, and
// Battery may be nil on hardware that lacks them.
type Hardware struct {
	Sensor    Sensor
	Display   Display
	Buttons   ButtonSource
	Store     settings.Store
	Indicator Indicator
	Tone      Toner
	Battery   BatteryGauge
	Restarter Restarter
}

// Snapshot is the read-only view the outer surfaces consume
type Snapshot struct {
	TempC     float64
	Valid     bool
	Status    string
	Battery   int
	Screen    string
	Settings  settings.Record
	UpdatedAt time.Time
}

// Loop cadences
const (
	pollInterval    = 10 * time.Millisecond
	sensorInterval  = 250 * time.Millisecond
	renderInterval  = 100 * time.Millisecond
	batteryInterval = 10 * time.Second
)

type settingsC chan settings.Record

// Station is the device controller
type Station struct {
	mu   sync.RWMutex
	snap Snapshot

	hw      Hardware
	rec     settings.Record
	machine *menu.Machine

	temp    float64
	valid   bool
	status  mlx90614.Status
	battery int

	nextSensor  time.Time
	nextRender  time.Time
	nextBattery time.Time
	nextTick    time.Time

	settingsC settingsC
}

// New loads the persisted settings and builds the controller
func New(hw Hardware) *Station {
	rec, err := hw.Store.Load()
	if err != nil {
		log.Warnf("Settings load: %s", err)
	}
	log.Infof("Settings: %s", rec)

	s := &Station{
		hw:        hw,
		rec:       rec,
		battery:   -1,
		settingsC: make(settingsC),
	}
	s.machine = menu.New(&s.rec)
	s.publish(time.Now())
	return s
}

// Run is the cooperative polling loop. It blocks until ctx is canceled.
func (s *Station) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer func() {
		log.Trace("Station calling done on main wait group")
		wg.Done()
	}()

	// boot: push persisted state out to the hardware
	if err := s.hw.Display.SetBrightness(s.rec.Brightness()); err != nil {
		log.Warnf("Display brightness: %s", err)
	}
	if err := s.hw.Sensor.SetEmissivity(s.rec.Emissivity); err != nil {
		log.Warnf("Sensor emissivity: %s", err)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Trace("Station loop running")
	for {
		select {
		case <-ctx.Done():
			log.Tracef("Cancel: station loop: %v", ctx.Err())
			return
		case r := <-s.settingsC:
			s.applyExternal(r)
		case now := <-ticker.C:
			s.step(now)
		}
	}
}

// step is one pass of the loop: inputs, sensor, battery, countdown, render
func (s *Station) step(now time.Time) {
	if b, ok := s.hw.Buttons.Poll(now); ok {
		before := s.machine.State()
		fx := s.machine.Press(b)
		s.applyEffects(fx)
		if s.machine.State() == menu.RestartCountdown && before != menu.RestartCountdown {
			s.nextTick = now.Add(time.Second)
		}
	}

	if !now.Before(s.nextSensor) {
		s.nextSensor = now.Add(sensorInterval)
		s.readSensor()
	}

	if !now.Before(s.nextBattery) {
		s.nextBattery = now.Add(batteryInterval)
		s.readBattery()
	}

	if s.machine.State() == menu.RestartCountdown && !now.Before(s.nextTick) {
		s.nextTick = now.Add(time.Second)
		if s.machine.Tick() {
			s.restart()
		}
	}

	if !now.Before(s.nextRender) {
		s.nextRender = now.Add(renderInterval)
		if err := s.hw.Display.Render(s.frame()); err != nil {
			log.Debugf("Render: %s", err)
		}
	}

	s.publish(now)
}

func (s *Station) frame() screen.Frame {
	return screen.Frame{
		TempC:     s.temp,
		Valid:     s.valid,
		Status:    s.status,
		Battery:   s.battery,
		State:     s.machine.State(),
		Index:     s.machine.Index(),
		Countdown: s.machine.Countdown(),
		Rec:       s.rec,
	}
}

// applyEffects runs whatever one menu transition asked for
func (s *Station) applyEffects(fx menu.Effect) {
	if fx&menu.FxPersist != 0 {
		s.persist()
	}
	if fx&menu.FxWriteEmissivity != 0 {
		if err := s.hw.Sensor.SetEmissivity(s.rec.Emissivity); err != nil {
			log.Warnf("Sensor emissivity: %s", err)
		}
	}
	switch {
	case fx&menu.FxErrorTone != 0:
		s.play(tone.Error)
	case fx&menu.FxConfirmTone != 0:
		s.play(tone.Confirm)
	case fx&menu.FxNavTone != 0:
		s.play(tone.Nav)
	}
}

// persist batch-writes the full record and reapplies brightness, since a
// brightness change only reaches the panel when it is confirmed
func (s *Station) persist() {
	if err := s.hw.Store.Save(s.rec); err != nil {
		log.Errorf("Settings save: %s", err)
	}
	if err := s.hw.Display.SetBrightness(s.rec.Brightness()); err != nil {
		log.Warnf("Display brightness: %s", err)
	}
}

func (s *Station) play(k tone.Kind) {
	if s.hw.Tone == nil || !s.rec.SoundOn {
		return
	}
	s.hw.Tone.Play(k, s.rec.Volume)
}

// readSensor updates the reading. A failed read leaves the previous
// reading in place; the display shows no update rather than garbage.
func (s *Station) readSensor() {
	t, err := s.hw.Sensor.ObjectTemp()
	if err != nil {
		log.Debugf("Sensor read: %s", err)
		return
	}
	s.temp = t
	s.valid = true
	s.status = mlx90614.Classify(t)
	if s.hw.Indicator != nil {
		if err := s.hw.Indicator.Set(s.status.Color()); err != nil {
			log.Debugf("Indicator: %s", err)
		}
	}
}

func (s *Station) readBattery() {
	if s.hw.Battery == nil {
		return
	}
	pct, err := s.hw.Battery.Percent()
	if err != nil {
		log.Debugf("Battery read: %s", err)
		return
	}
	s.battery = pct
}

func (s *Station) restart() {
	s.Log().Warn("Restart countdown elapsed")
	if s.hw.Restarter == nil {
		return
	}
	if err := s.hw.Restarter.Restart(); err != nil {
		log.Errorf("Restart: %s", err)
	}
}

// applyExternal handles a settings record sent by an outer surface.
// Emissivity is menu-only, so only the record fields change here.
func (s *Station) applyExternal(r settings.Record) {
	r.Clamp()
	r.Emissivity = s.rec.Emissivity
	if r == s.rec {
		return
	}
	log.Infof("Settings update: %s", r)
	s.rec = r
	s.persist()
	s.publish(time.Now())
}

// publish refreshes the snapshot the outer surfaces read
func (s *Station) publish(now time.Time) {
	s.mu.Lock()
	s.snap = Snapshot{
		TempC:     s.temp,
		Valid:     s.valid,
		Status:    s.status.Label(),
		Battery:   s.battery,
		Screen:    s.machine.State().String(),
		Settings:  s.rec,
		UpdatedAt: now,
	}
	s.mu.Unlock()
}

// Snapshot is safe from any goroutine
func (s *Station) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Log some basic stats to the console
func (s *Station) Log() *log.Entry {
	sn := s.Snapshot()
	return log.WithFields(log.Fields{
		"temp":   sn.TempC,
		"status": sn.Status,
		"batt":   sn.Battery,
		"screen": sn.Screen,
	})
}

// SetFahrenheit flips the readout unit, for the HomeKit switch
func (s *Station) SetFahrenheit(on bool) {
	log.Warnf("SetFahrenheit: %v", on)
	r := s.Snapshot().Settings
	unit := settings.Celsius
	if on {
		unit = settings.Fahrenheit
	}
	if r.Unit != unit {
		r.Unit = unit
		s.settingsC <- r
	}
}

// SetSound flips audible feedback, for the HomeKit switch
func (s *Station) SetSound(on bool) {
	log.Warnf("SetSound: %v", on)
	r := s.Snapshot().Settings
	if r.SoundOn != on {
		r.SoundOn = on
		s.settingsC <- r
	}
}

// SetGauge flips the gauge overlay, for the HomeKit switch
func (s *Station) SetGauge(on bool) {
	log.Warnf("SetGauge: %v", on)
	r := s.Snapshot().Settings
	if r.GaugeVisible != on {
		r.GaugeVisible = on
		s.settingsC <- r
	}
}
