package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-acme/lego/platform/config/env"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/pvollmer/irgauge/internal/battery"
	"github.com/pvollmer/irgauge/internal/input"
	"github.com/pvollmer/irgauge/internal/screen"
	"github.com/pvollmer/irgauge/internal/station"
	"github.com/pvollmer/irgauge/internal/statusled"
	"github.com/pvollmer/irgauge/internal/tone"
	"github.com/pvollmer/irgauge/internal/store"
	"github.com/pvollmer/irgauge/pkg/menu"
	"github.com/pvollmer/irgauge/pkg/mlx90614"
)

var (
	// Flags
	i2cBusF        = flag.String("i2cbus", "1", "i2c bus name the sensor and display sit on")
	settingsPathF  = flag.String("settingspath", "/var/lib/irgauge/settings.bin", "path of the persisted settings blob")
	timeoutF       = flag.Duration("timeout", 0, "overall program timeout, 0 runs forever")
	fakeF          = flag.Bool("fake", false, "run with a simulated sensor and no hardware")
	portF          = flag.String("port", "8080", "status page port")
	btnPrevF       = flag.String("btnprev", "GPIO17", "prev button pin")
	btnNextF       = flag.String("btnnext", "GPIO27", "next button pin")
	btnSelectF     = flag.String("btnselect", "GPIO22", "select button pin")
	ledRF          = flag.String("ledr", "GPIO5", "indicator red pin")
	ledGF          = flag.String("ledg", "GPIO6", "indicator green pin")
	ledBF          = flag.String("ledb", "GPIO13", "indicator blue pin")
	buzzerF        = flag.String("buzzer", "GPIO12", "buzzer pin")
	hkStoragePathF = flag.String("hkstoragepath", "./var/local/homekitdb", "path for sqlite storage of homekit data")
	hkPinF         = flag.String("hkpin", "80000000", "homekit pairing pin")
	mqttBrokerF    = flag.String("mqttbroker", "", "mqtt broker url, empty disables telemetry")
	mqttTopicF     = flag.String("mqtttopic", "irgauge", "mqtt topic prefix")

	// App settings
	timeout       time.Duration
	i2cBus        string
	settingsPath  string
	port          string
	hkStoragePath string
	hkPin         string
	mqttBroker    string
	mqttTopic     string
)

// logDisplay and nullButtons stand in for the panel and the buttons when
// running with -fake
type logDisplay struct{}

func (logDisplay) Render(f screen.Frame) error {
	log.Tracef("render screen=%v temp=%.1f valid=%t", f.State, f.TempC, f.Valid)
	return nil
}
func (logDisplay) SetBrightness(p int) error {
	log.Debugf("display brightness %d%%", p)
	return nil
}

type nullButtons struct{}

func (nullButtons) Poll(time.Time) (menu.Button, bool) { return 0, false }

func main() {
	flag.Parse()

	// Use env to override app settings
	timeout = env.GetOrDefaultSecond("TIMEOUT_SEC", *timeoutF)
	i2cBus = env.GetOrDefaultString("I2C_BUS", *i2cBusF)
	settingsPath = env.GetOrDefaultString("SETTINGS_PATH", *settingsPathF)
	port = env.GetOrDefaultString("PORT", *portF)
	hkStoragePath = env.GetOrDefaultString("HK_STORAGE_PATH", *hkStoragePathF)
	hkPin = env.GetOrDefaultString("HK_PIN", *hkPinF)
	mqttBroker = env.GetOrDefaultString("MQTT_BROKER", *mqttBrokerF)
	mqttTopic = env.GetOrDefaultString("MQTT_TOPIC", *mqttTopicF)

	// env vars
	LOGLEVEL := os.Getenv("LOGLEVEL")
	switch LOGLEVEL {
	case "panic":
		log.SetLevel(log.PanicLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "trace":
		log.SetLevel(log.TraceLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	// main context
	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	wg := sync.WaitGroup{}

	hw, err := buildHardware(*fakeF)
	if err != nil {
		log.Fatalf("Hardware setup: %s", err)
	}

	s := station.New(hw)

	// Listen for control-c subtask
	go func() {
		// We must use a buffered channel or risk missing the signal
		// if we're not ready to receive when the signal is sent.
		sig := make(chan os.Signal, 1)
		signal.Notify(
			sig,
			syscall.SIGTERM,
			syscall.SIGHUP,
			syscall.SIGINT,
			syscall.SIGQUIT,
		)
		log.Trace("Listening for signals")
		got := <-sig
		log.Debug("Got signal:", got)
		cancel()
	}()

	// Kick off the device loop
	go s.Run(ctx, &wg)

	// Kick off the outer surfaces
	go HKClient(ctx, &wg, hkStoragePath, hkPin, s)
	go JSONClient(ctx, &wg, port, s)
	if mqttBroker != "" {
		go MQTTClient(ctx, &wg, mqttBroker, mqttTopic, s)
	}

	log.Trace("Main waiting...")
	for {
		select {
		case <-ctx.Done():
			log.Debug("Main context canceled")

			// bail hard if this takes too long
			go func() {
				finalTO := 30 * time.Second
				log.Debugf("Waiting %v then exiting", finalTO)
				time.AfterFunc(finalTO, func() {
					panic("Took too long to exit\n")
				})
			}()

			log.Trace("Waiting for wait group...")
			wg.Wait()
			log.Trace("Wait group done waiting")
			return
		}
	}
}

func buildHardware(fake bool) (station.Hardware, error) {
	if fake {
		log.Info("Running with fake hardware")
		return station.Hardware{
			Sensor:    station.NewFakeSensor(),
			Display:   logDisplay{},
			Buttons:   nullButtons{},
			Store:     store.NewFile(settingsPath),
			Restarter: station.RebootRestarter{},
		}, nil
	}

	if _, err := host.Init(); err != nil {
		return station.Hardware{}, err
	}

	bus, err := i2creg.Open(i2cBus)
	if err != nil {
		return station.Hardware{}, err
	}

	oled, err := screen.New(bus)
	if err != nil {
		return station.Hardware{}, err
	}

	buttons, err := input.NewButtons(pin(*btnPrevF), pin(*btnNextF), pin(*btnSelectF))
	if err != nil {
		return station.Hardware{}, err
	}

	led, err := statusled.New(pin(*ledRF), pin(*ledGF), pin(*ledBF))
	if err != nil {
		return station.Hardware{}, err
	}

	buzzer, err := tone.NewBuzzer(pin(*buzzerF))
	if err != nil {
		return station.Hardware{}, err
	}

	hw := station.Hardware{
		Sensor:    mlx90614.New(bus),
		Display:   oled,
		Buttons:   buttons,
		Store:     store.NewFile(settingsPath),
		Indicator: led,
		Tone:      buzzer,
		Restarter: station.RebootRestarter{},
	}

	if gauge, err := battery.Find(); err == nil {
		hw.Battery = gauge
	} else {
		log.Debugf("No battery gauge: %s", err)
	}

	return hw, nil
}

func pin(name string) gpio.PinIO {
	p := gpioreg.ByName(name)
	if p == nil {
		log.Fatalf("No such pin %q", name)
	}
	return p
}
