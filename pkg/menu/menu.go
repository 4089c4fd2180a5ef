// Package menu is the button-driven settings menu for the station. The
// machine owns which screen is live and the selection inside it; it mutates
// the settings record it is handed and reports side effects (persist the
// record, reprogram the sensor, play a tone) back to the caller instead of
// running them itself, so it can be driven entirely from tests.
package menu

import (
	"github.com/pvollmer/irgauge/pkg/settings"
)

// State is the screen the station is currently showing
type State int

const (
	Main State = iota
	TopMenu
	Brightness
	Sound
	Emissivity
	RestartConfirm
	RestartCountdown
)

func (s State) String() string {
	switch s {
	case Main:
		return "main"
	case TopMenu:
		return "menu"
	case Brightness:
		return "brightness"
	case Sound:
		return "sound"
	case Emissivity:
		return "emissivity"
	case RestartConfirm:
		return "restart-confirm"
	case RestartCountdown:
		return "restart-countdown"
	}
	return "unknown"
}

// Button is a logical debounced press
type Button int

const (
	Prev Button = iota
	Next
	Select
)

// Item indexes the top menu entries
type Item int

const (
	ItemUnit Item = iota
	ItemBrightness
	ItemEmissivity
	ItemSound
	ItemGauge
	ItemExit

	itemCount = int(ItemExit) + 1
)

// ItemLabels are the top menu entries in display order
var ItemLabels = [itemCount]string{
	"UNIT",
	"BRIGHTNESS",
	"EMISSIVITY",
	"SOUND",
	"GAUGE",
	"EXIT",
}

// Effect flags tell the caller what a transition asks for
type Effect uint8

const (
	FxPersist Effect = 1 << iota
	FxWriteEmissivity
	FxNavTone
	FxConfirmTone
	FxErrorTone
)

// RestartTicks is the confirm countdown length in seconds
const RestartTicks = 5

const emissivityStep = 0.01

// Machine tracks the live screen and selection. It is not safe for
// concurrent use; the station drives it from its single polling loop.
type Machine struct {
	rec *settings.Record

	state     State
	index     int
	countdown int

	// emissivity as it was when the top menu was entered, for restore
	// when the restart prompt is declined
	entryEmissivity float64
	emissivityDirty bool
}

// New makes a machine on the main screen owning rec
func New(rec *settings.Record) *Machine {
	return &Machine{rec: rec, state: Main}
}

// State is the live screen
func (m *Machine) State() State { return m.state }

// Index is the selection inside the live screen
func (m *Machine) Index() int { return m.index }

// Countdown is the remaining restart ticks
func (m *Machine) Countdown() int { return m.countdown }

// Press applies one debounced button press and returns the effects the
// caller should run. All selection cycling wraps at both ends.
func (m *Machine) Press(b Button) Effect {
	switch m.state {
	case Main:
		return m.pressMain(b)
	case TopMenu:
		return m.pressTopMenu(b)
	case Brightness:
		return m.pressBrightness(b)
	case Sound:
		return m.pressSound(b)
	case Emissivity:
		return m.pressEmissivity(b)
	case RestartConfirm:
		return m.pressRestartConfirm(b)
	case RestartCountdown:
		// not cancellable once entered
		return 0
	}
	return 0
}

func (m *Machine) pressMain(b Button) Effect {
	switch b {
	case Prev:
		m.toggleUnit()
		return FxPersist | FxNavTone
	case Select:
		m.state = TopMenu
		m.index = 0
		m.entryEmissivity = m.rec.Emissivity
		m.emissivityDirty = false
		return FxNavTone
	}
	return 0
}

func (m *Machine) pressTopMenu(b Button) Effect {
	switch b {
	case Prev:
		m.index = (m.index + itemCount - 1) % itemCount
		return FxNavTone
	case Next:
		m.index = (m.index + 1) % itemCount
		return FxNavTone
	case Select:
		return m.selectItem(Item(m.index))
	}
	return 0
}

func (m *Machine) selectItem(it Item) Effect {
	switch it {
	case ItemUnit:
		m.toggleUnit()
		m.state = Main
		return FxPersist | FxConfirmTone
	case ItemGauge:
		m.rec.GaugeVisible = !m.rec.GaugeVisible
		m.state = Main
		return FxPersist | FxConfirmTone
	case ItemBrightness:
		m.state = Brightness
		return FxNavTone
	case ItemSound:
		m.state = Sound
		return FxNavTone
	case ItemEmissivity:
		m.state = Emissivity
		return FxNavTone
	case ItemExit:
		if m.emissivityDirty {
			m.state = RestartConfirm
			m.index = 0
			return FxNavTone
		}
		m.state = Main
		return FxNavTone
	}
	return 0
}

func (m *Machine) pressBrightness(b Button) Effect {
	n := len(settings.BrightnessTable)
	switch b {
	case Prev:
		m.rec.BrightnessIndex = (m.rec.BrightnessIndex + n - 1) % n
		return FxNavTone
	case Next:
		m.rec.BrightnessIndex = (m.rec.BrightnessIndex + 1) % n
		return FxNavTone
	case Select:
		m.state = Main
		return FxPersist | FxConfirmTone
	}
	return 0
}

func (m *Machine) pressSound(b Button) Effect {
	switch b {
	case Prev:
		m.rec.SoundOn = !m.rec.SoundOn
		return FxNavTone
	case Next:
		m.rec.Volume += settings.VolumeStep
		if m.rec.Volume > settings.VolumeMax {
			m.rec.Volume = settings.VolumeMin
		}
		return FxNavTone
	case Select:
		m.state = Main
		return FxPersist | FxConfirmTone
	}
	return 0
}

func (m *Machine) pressEmissivity(b Button) Effect {
	switch b {
	case Prev:
		return m.stepEmissivity(-emissivityStep)
	case Next:
		return m.stepEmissivity(emissivityStep)
	case Select:
		// Commit reprograms the sensor register right away; whether a
		// restart is wanted is decided on Exit.
		m.state = TopMenu
		m.index = int(ItemEmissivity)
		return FxWriteEmissivity | FxConfirmTone
	}
	return 0
}

func (m *Machine) stepEmissivity(delta float64) Effect {
	was := m.rec.Emissivity
	m.rec.Emissivity = settings.ClampEmissivity(m.rec.Emissivity + delta)
	if m.rec.Emissivity == was {
		// already at the bound
		return FxErrorTone
	}
	m.emissivityDirty = m.rec.Emissivity != m.entryEmissivity
	return FxNavTone
}

func (m *Machine) pressRestartConfirm(b Button) Effect {
	switch b {
	case Prev, Next:
		m.index = 1 - m.index
		return FxNavTone
	case Select:
		if m.index == 0 {
			// restart selected
			m.state = RestartCountdown
			m.countdown = RestartTicks
			return FxPersist | FxConfirmTone
		}
		// declined: put the pre-change emissivity back everywhere
		m.rec.Emissivity = m.entryEmissivity
		m.emissivityDirty = false
		m.state = Main
		return FxWriteEmissivity | FxNavTone
	}
	return 0
}

// Tick advances the restart countdown by one second. It reports true when
// the count reaches zero and the device should restart now.
func (m *Machine) Tick() bool {
	if m.state != RestartCountdown {
		return false
	}
	m.countdown--
	return m.countdown <= 0
}

func (m *Machine) toggleUnit() {
	if m.rec.Unit == settings.Celsius {
		m.rec.Unit = settings.Fahrenheit
	} else {
		m.rec.Unit = settings.Celsius
	}
}
