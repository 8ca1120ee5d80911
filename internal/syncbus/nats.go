package syncbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// DefaultSubject is the broadcast topic shared by all views of one
// auction session.
const DefaultSubject = "auction.sync"

// NATSBus is a Bus over core NATS pub/sub. Core NATS gives exactly the
// contract the session needs: at-most-once, best-effort, no replay.
type NATSBus struct {
	nc      *nats.Conn
	subject string
}

// NewNATSBus connects to the NATS server at url and publishes on
// subject (DefaultSubject when empty).
func NewNATSBus(url, subject string) (*NATSBus, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("sync bus disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("sync bus reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("sync bus error")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSBus{nc: nc, subject: subject}, nil
}

// Publish marshals msg and sends it on the bus subject.
func (b *NATSBus) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal sync message: %w", err)
	}
	if err := b.nc.Publish(b.subject, data); err != nil {
		return fmt.Errorf("publish sync message: %w", err)
	}
	return nil
}

// Subscribe registers a handler for bus messages. Malformed payloads
// are logged and dropped.
func (b *NATSBus) Subscribe(handler func(Message)) (func(), error) {
	sub, err := b.nc.Subscribe(b.subject, func(m *nats.Msg) {
		var msg Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			log.Error().Err(err).Msg("drop malformed sync message")
			return
		}
		handler(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", b.subject, err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Error().Err(err).Msg("unsubscribe sync bus")
		}
	}, nil
}

// Close drains the connection so in-flight messages are delivered,
// then closes it.
func (b *NATSBus) Close() error {
	if b.nc == nil {
		return nil
	}
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
		return fmt.Errorf("drain sync bus: %w", err)
	}
	return nil
}
