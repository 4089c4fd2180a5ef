package main

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/pvollmer/irgauge/internal/station"
)

const mqttPublishInterval = 5 * time.Second

// MQTTClient publishes snapshots to topic/status while connected
func MQTTClient(ctx context.Context, wg *sync.WaitGroup, broker, topic string, s *station.Station) {
	wg.Add(1)
	defer func() {
		log.Trace("MQTT client calling done on main wait group")
		wg.Done()
	}()

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("irgauge").
		SetAutoReconnect(true).
		SetConnectRetry(true)
	client := mqtt.NewClient(opts)

	log.Debugf("MQTT connecting to %s", broker)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Errorf("MQTT connect: %s", token.Error())
		return
	}

	ticker := time.NewTicker(mqttPublishInterval)
	defer ticker.Stop()

	statusTopic := topic + "/status"
	for {
		select {
		case <-ctx.Done():
			log.Trace("MQTTClient ctx canceled")
			client.Disconnect(250)
			return
		case <-ticker.C:
			buf, err := json.Marshal(s.Snapshot())
			if err != nil {
				log.Errorf("MQTT marshal: %s", err)
				continue
			}
			if token := client.Publish(statusTopic, 0, false, buf); token.Wait() && token.Error() != nil {
				log.Debugf("MQTT publish: %s", token.Error())
			}
		}
	}
}
