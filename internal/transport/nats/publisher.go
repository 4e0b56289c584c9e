// Package nats publishes delegated sort intents for external query layers.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
)

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
	Close()
}

// Message is the payload published for every intent.
type Message struct {
	SessionID   string         `json:"session_id"`
	Sort        sorting.Intent `json:"sort"`
	PublishedAt time.Time      `json:"published_at"`
}

// Options tunes the connection.
type Options struct {
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
	Logger         *zap.Logger
}

// Publisher sends sort intents on <prefix>.<session>.sort.
type Publisher struct {
	conn   conn
	prefix string
	now    func() time.Time
}

// Connect dials the NATS server at url.
func Connect(url, prefix string, opts Options) (*Publisher, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 2 * time.Second
	}
	if opts.ReconnectWait <= 0 {
		opts.ReconnectWait = 2 * time.Second
	}
	if opts.MaxReconnects <= 0 {
		opts.MaxReconnects = 60
	}
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}

	nc, err := nats.Connect(
		url,
		nats.Name("resultgrid"),
		nats.Timeout(opts.ConnectTimeout),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.MaxReconnects(opts.MaxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			l.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			l.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return newPublisher(nc, prefix), nil
}

func newPublisher(c conn, prefix string) *Publisher {
	return &Publisher{conn: c, prefix: prefix, now: time.Now}
}

// Subject returns the subject intents of sessionID are published on.
func (p *Publisher) Subject(sessionID string) string {
	return p.prefix + "." + sessionID + ".sort"
}

// PublishIntent publishes intent for sessionID.
func (p *Publisher) PublishIntent(ctx context.Context, sessionID string, intent sorting.Intent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(Message{SessionID: sessionID, Sort: intent, PublishedAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	if err := p.conn.Publish(p.Subject(sessionID), data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// HealthCheck reports whether the connection is up.
func (p *Publisher) HealthCheck(_ context.Context) error {
	if !p.conn.IsConnected() {
		return errors.New("nats not connected")
	}
	return nil
}

// Close closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
