package main

import (
	"context"
	"sync"
	"time"

	"github.com/brutella/hc"
	"github.com/brutella/hc/accessory"
	hclog "github.com/brutella/hc/log"
	log "github.com/sirupsen/logrus"

	"github.com/pvollmer/irgauge/internal/station"
	"github.com/pvollmer/irgauge/pkg/settings"
)

// HKClient exposes the station to HomeKit: the reading as a temperature
// sensor and the simple settings as switches
func HKClient(ctx context.Context, wg *sync.WaitGroup, storagePath, pin string, s *station.Station) {
	wg.Add(1)
	defer func() {
		log.Trace("HK client calling done on main wait group")
		wg.Done()
	}()
	log.Trace("HKClient start")

	hclog.Debug.SetOutput(log.StandardLogger().WriterLevel(log.TraceLevel))
	hclog.Info.SetOutput(log.StandardLogger().WriterLevel(log.DebugLevel))

	infoThermo := accessory.Info{
		Name:         "IR Gauge",
		Manufacturer: "pvollmer",
		Model:        "TG-2020",
		SerialNumber: "1",
	}
	// HomeKit always takes celsius; the unit toggle only affects the panel
	thermo := accessory.NewTemperatureSensor(infoThermo, 20, -70, 380, 0.1)

	infoSound := accessory.Info{
		Name:         "Sound TG-2020",
		Manufacturer: "pvollmer",
		Model:        "TG-2020",
		SerialNumber: "1",
	}
	soundSwitch := accessory.NewSwitch(infoSound)
	soundSwitch.Switch.On.OnValueRemoteUpdate(s.SetSound)

	infoGauge := accessory.Info{
		Name:         "Gauge TG-2020",
		Manufacturer: "pvollmer",
		Model:        "TG-2020",
		SerialNumber: "1",
	}
	gaugeSwitch := accessory.NewSwitch(infoGauge)
	gaugeSwitch.Switch.On.OnValueRemoteUpdate(s.SetGauge)

	infoUnit := accessory.Info{
		Name:         "Fahrenheit TG-2020",
		Manufacturer: "pvollmer",
		Model:        "TG-2020",
		SerialNumber: "1",
	}
	unitSwitch := accessory.NewSwitch(infoUnit)
	unitSwitch.Switch.On.OnValueRemoteUpdate(s.SetFahrenheit)

	config := hc.Config{Pin: pin, StoragePath: storagePath}
	t, err := hc.NewIPTransport(config,
		thermo.Accessory,
		soundSwitch.Accessory,
		gaugeSwitch.Accessory,
		unitSwitch.Accessory,
	)
	if err != nil {
		log.Error(err)
		return
	}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		log.Trace("HK client looping now")
		for {
			select {
			case <-ctx.Done():
				log.Trace("HKClient ctx canceled")
				<-t.Stop()
				log.Trace("HKClient stopped")
				return
			case <-ticker.C:
				sn := s.Snapshot()
				if sn.Valid {
					thermo.TempSensor.CurrentTemperature.SetValue(sn.TempC)
				}
				soundSwitch.Switch.On.SetValue(sn.Settings.SoundOn)
				gaugeSwitch.Switch.On.SetValue(sn.Settings.GaugeVisible)
				unitSwitch.Switch.On.SetValue(sn.Settings.Unit == settings.Fahrenheit)
			}
		}
	}()

	t.Start()
}
