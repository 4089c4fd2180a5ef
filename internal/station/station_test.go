package station

import (
	"errors"
	"testing"
	"time"

	"github.com/pvollmer/irgauge/internal/screen"
	"github.com/pvollmer/irgauge/internal/tone"
	"github.com/pvollmer/irgauge/pkg/menu"
	"github.com/pvollmer/irgauge/pkg/settings"
)

type memStore struct {
	rec   settings.Record
	saves int
}

func (m *memStore) Load() (settings.Record, error) { return m.rec, nil }
func (m *memStore) Save(r settings.Record) error {
	m.rec = r
	m.saves++
	return nil
}

type scriptSensor struct {
	temp       float64
	err        error
	emissivity []float64
}

func (s *scriptSensor) ObjectTemp() (float64, error) { return s.temp, s.err }
func (s *scriptSensor) SetEmissivity(e float64) error {
	s.emissivity = append(s.emissivity, e)
	return nil
}

type nullDisplay struct {
	frames     []screen.Frame
	brightness int
}

func (d *nullDisplay) Render(f screen.Frame) error { d.frames = append(d.frames, f); return nil }
func (d *nullDisplay) SetBrightness(p int) error   { d.brightness = p; return nil }

type pressQueue struct {
	presses []menu.Button
}

func (q *pressQueue) Poll(time.Time) (menu.Button, bool) {
	if len(q.presses) == 0 {
		return 0, false
	}
	b := q.presses[0]
	q.presses = q.presses[1:]
	return b, true
}

type toneLog struct {
	kinds []tone.Kind
}

func (t *toneLog) Play(k tone.Kind, volume int) { t.kinds = append(t.kinds, k) }

type flagRestarter struct {
	fired int
}

func (r *flagRestarter) Restart() error { r.fired++; return nil }

func harness(rec settings.Record) (*Station, *memStore, *scriptSensor, *nullDisplay, *pressQueue, *toneLog, *flagRestarter) {
	st := &memStore{rec: rec}
	sens := &scriptSensor{temp: 36.4}
	disp := &nullDisplay{}
	q := &pressQueue{}
	tl := &toneLog{}
	rs := &flagRestarter{}
	s := New(Hardware{
		Sensor:    sens,
		Display:   disp,
		Buttons:   q,
		Store:     st,
		Tone:      tl,
		Restarter: rs,
	})
	return s, st, sens, disp, q, tl, rs
}

func TestStepPersistsOnUnitToggle(t *testing.T) {
	s, st, _, _, q, tl, _ := harness(settings.Default())
	q.presses = []menu.Button{menu.Prev}

	s.step(time.Now())

	if st.saves != 1 {
		t.Fatalf("Expected one batch save, got %d", st.saves)
	}
	if st.rec.Unit != settings.Fahrenheit {
		t.Fatalf("Stored record not updated: %v", st.rec)
	}
	if len(tl.kinds) == 0 {
		t.Fatal("Feedback tone not played")
	}
	if sn := s.Snapshot(); sn.Settings.Unit != settings.Fahrenheit {
		t.Fatalf("Snapshot not refreshed: %v", sn.Settings)
	}
}

func TestSensorFailureKeepsLastReading(t *testing.T) {
	s, _, sens, disp, _, _, _ := harness(settings.Default())

	now := time.Now()
	s.step(now)
	if sn := s.Snapshot(); !sn.Valid || sn.TempC != 36.4 {
		t.Fatalf("First reading not published: %+v", sn)
	}

	sens.err = errors.New("bus did not acknowledge")
	sens.temp = -1000
	s.step(now.Add(sensorInterval))

	sn := s.Snapshot()
	if !sn.Valid || sn.TempC != 36.4 {
		t.Fatalf("Failed read clobbered the snapshot: %+v", sn)
	}
	last := disp.frames[len(disp.frames)-1]
	if !last.Valid || last.TempC != 36.4 {
		t.Fatalf("Failed read reached the display: %+v", last)
	}
}

func TestRestartFiresAfterCountdownTicks(t *testing.T) {
	s, st, _, _, q, _, rs := harness(settings.Default())

	// walk the menu: open, emissivity, bump it, commit, exit, confirm
	q.presses = []menu.Button{menu.Select, menu.Next, menu.Next, menu.Select, menu.Prev, menu.Select}
	now := time.Now()
	for i := 0; i < 6; i++ {
		s.step(now)
		now = now.Add(pollInterval)
	}
	q.presses = []menu.Button{menu.Next, menu.Next, menu.Next, menu.Select, menu.Select}
	for i := 0; i < 5; i++ {
		s.step(now)
		now = now.Add(pollInterval)
	}
	if got := s.machine.State(); got != menu.RestartCountdown {
		t.Fatalf("Bad state %v", got)
	}
	if st.saves == 0 {
		t.Fatal("Confirm should persist before restarting")
	}

	for i := 0; i < menu.RestartTicks; i++ {
		if rs.fired != 0 {
			t.Fatalf("Restart fired early after %d seconds", i)
		}
		now = now.Add(time.Second)
		s.step(now)
	}
	if rs.fired != 1 {
		t.Fatalf("Restart fired %d times", rs.fired)
	}
}

func TestExternalSettingsKeepEmissivity(t *testing.T) {
	s, st, _, _, _, _, _ := harness(settings.Default())

	r := s.Snapshot().Settings
	r.SoundOn = false
	r.Emissivity = 0.70 // surfaces must not touch calibration
	s.applyExternal(r)

	if s.rec.SoundOn {
		t.Fatal("Sound setting not applied")
	}
	if s.rec.Emissivity != settings.Default().Emissivity {
		t.Fatalf("External update changed emissivity: %v", s.rec.Emissivity)
	}
	if st.saves != 1 {
		t.Fatalf("Expected one save, got %d", st.saves)
	}
}

func TestSoundOffSilencesTones(t *testing.T) {
	rec := settings.Default()
	rec.SoundOn = false
	s, _, _, _, q, tl, _ := harness(rec)

	q.presses = []menu.Button{menu.Select, menu.Next}
	now := time.Now()
	s.step(now)
	s.step(now.Add(pollInterval))

	if len(tl.kinds) != 0 {
		t.Fatalf("Tones played with sound off: %v", tl.kinds)
	}
}
