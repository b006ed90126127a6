// internal/adapter/events/bus.go

package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"tweetmood/internal/config"
	"tweetmood/internal/domain/pipeline"
	"tweetmood/internal/logging"
)

// Publisher is the subset of a NATS connection the bus needs
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Bus publishes pipeline stage events to NATS
type Bus struct {
	conn Publisher
}

// NewBus creates a new event bus on an open connection
func NewBus(conn Publisher) *Bus {
	return &Bus{conn: conn}
}

// Connect opens a NATS connection with reconnect handling
func Connect(cfg config.NATSConfig, logger *logging.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("tweetmood"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Debug("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// PublishFile implements pipeline.Publisher
func (b *Bus) PublishFile(e pipeline.Event) error {
	return b.publish(pipeline.FileSubject(e.Stage), e)
}

// PublishCompleted implements pipeline.Publisher
func (b *Bus) PublishCompleted(e pipeline.Event) error {
	return b.publish(pipeline.CompletedSubject(e.Stage), e)
}

func (b *Bus) publish(subject string, e pipeline.Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("error publishing %s: %w", subject, err)
	}
	return nil
}

// Open connects to NATS when configured and returns a publisher with its
// close function. Without a URL, or when the connection fails, events are
// dropped and the stage still runs.
func Open(cfg config.NATSConfig, logger *logging.Logger) (pipeline.Publisher, func()) {
	if !cfg.Enabled() {
		return pipeline.NopPublisher{}, func() {}
	}

	nc, err := Connect(cfg, logger)
	if err != nil {
		logger.Warn("stage events disabled: %v", err)
		return pipeline.NopPublisher{}, func() {}
	}

	return NewBus(nc), func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
}
