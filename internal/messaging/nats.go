package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectUserCreated         = "users.created"
	SubjectUserDeleted         = "users.deleted"
	SubjectUserPasswordChanged = "users.password_changed"
)

// UserEvent is the payload published for account changes.
type UserEvent struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

// EventPublisher announces account changes to other services.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event UserEvent) error
}

type NatsPublisher struct {
	nc *nats.Conn
}

// ConnectNats establishes the connection that a NatsPublisher publishes on.
func ConnectNats(url string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("account-service"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}

	slog.Info("connected to nats", "url", nc.ConnectedUrl())
	return &NatsPublisher{nc: nc}, nil
}

func (p *NatsPublisher) Publish(_ context.Context, subject string, event UserEvent) error {
	if p.nc == nil || !p.nc.IsConnected() {
		return nats.ErrConnectionClosed
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.nc.Publish(subject, data)
}

// Close drains pending messages before closing the connection.
func (p *NatsPublisher) Close() {
	if p.nc == nil || p.nc.IsClosed() {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

// NopPublisher discards events; it is used when NATS_URL is empty.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, UserEvent) error { return nil }
