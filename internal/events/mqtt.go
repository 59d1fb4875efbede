package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pet-adoption-marketplace/internal/config"
	"pet-adoption-marketplace/internal/logger"
	"pet-adoption-marketplace/pkg/mqtt"
)

const mqttPublishTimeout = 5 * time.Second

// MQTTPublisher publishes events as JSON on <prefix>/pets/<type>.
type MQTTPublisher struct {
	client *mqtt.Client
	prefix string
}

func NewMQTTPublisher(cfg config.EventsConfig) (*MQTTPublisher, error) {
	clientCfg := mqtt.DefaultConfig(cfg.MQTTBroker, cfg.MQTTClientID)
	clientCfg.Username = cfg.MQTTUsername
	clientCfg.Password = cfg.MQTTPassword
	clientCfg.Logger = logger.Named("mqtt")

	client := mqtt.NewClient(clientCfg)
	if err := client.Connect(); err != nil {
		return nil, err
	}

	return &MQTTPublisher{client: client, prefix: cfg.MQTTTopicPrefix}, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, mqttPublishTimeout)
	defer cancel()

	return p.client.Publish(ctx, MQTTTopic(p.prefix, event.Type), 1, false, payload)
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect()
	return nil
}

// MQTTTopic maps "pet.status_changed" to "<prefix>/pets/status_changed".
func MQTTTopic(prefix string, t Type) string {
	name := strings.TrimPrefix(string(t), "pet.")
	return strings.Trim(prefix, "/") + "/pets/" + name
}
