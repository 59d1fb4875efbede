package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pet-adoption-marketplace/internal/config"
	"pet-adoption-marketplace/internal/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher publishes events as JSON on <prefix>.<type>.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(cfg config.EventsConfig) (*NATSPublisher, error) {
	log := logger.Named("nats")

	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("pet-adoption-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("connected to nats", zap.String("url", conn.ConnectedUrl()))
	return &NATSPublisher{conn: conn, prefix: cfg.NATSSubjectPrefix}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, event Event) error {
	if !p.conn.IsConnected() {
		return nats.ErrConnectionClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return p.conn.Publish(NATSSubject(p.prefix, event.Type), payload)
}

func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

// NATSSubject maps "pet.created" to "<prefix>.pet.created".
func NATSSubject(prefix string, t Type) string {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return string(t)
	}
	return prefix + "." + string(t)
}
