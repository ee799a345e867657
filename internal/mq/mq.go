package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendico/apiserver/config"
)

// ErrDisabled is returned by Subscribe when no broker is configured.
var ErrDisabled = errors.New("message queue is disabled")

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ wraps a backend with a stable API.
type MQ struct {
	backend Backend
	name    string
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend, name: "custom"}
}

// Open connects to the broker named by cfg.Driver. The "none" driver
// returns a wrapper that drops published messages.
func Open(ctx context.Context, cfg config.MQConfig) (*MQ, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "none":
		return &MQ{backend: noopBackend{}, name: "none"}, nil
	case "rabbitmq":
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		return &MQ{backend: client, name: driver}, nil
	case "pubsub":
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("connect pubsub: %w", err)
		}
		return &MQ{backend: client, name: driver}, nil
	default:
		return nil, fmt.Errorf("unknown mq driver %q", cfg.Driver)
	}
}

// Name returns the broker driver name.
func (m *MQ) Name() string {
	return m.name
}

// Enabled reports whether published messages reach a broker.
func (m *MQ) Enabled() bool {
	_, noop := m.backend.(noopBackend)
	return !noop
}

// Publish sends a message to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe consumes messages from the named channel.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}

type noopBackend struct{}

func (noopBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return "", nil
}

func (noopBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return ErrDisabled
}

func (noopBackend) Close() error {
	return nil
}
