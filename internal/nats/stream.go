package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/cmdsage/linux-qa-platform/internal/model"
)

const (
	// StreamName is the name of the exchange events stream.
	StreamName = "EXCHANGES"

	// SubjectPrefix is the prefix for all exchange subjects.
	SubjectPrefix = "qa"
)

// Publisher publishes recorded exchanges to JetStream so downstream
// consumers (analytics, training-data collection) can follow along.
type Publisher struct {
	client *Client
}

// NewPublisher creates a new exchange event publisher.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// EnsureStream ensures the exchange stream exists with proper configuration.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	// Check if stream exists
	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Recorded question/answer exchanges",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// ExchangeSubject returns the subject for a user's exchange events.
func ExchangeSubject(userID string) string {
	return fmt.Sprintf("%s.exchange.%s", SubjectPrefix, userID)
}

// PublishExchange publishes an exchange event to JetStream.
func (p *Publisher) PublishExchange(ctx context.Context, event *model.ExchangeEvent) (uint64, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal exchange event: %w", err)
	}

	ack, err := p.client.JetStream().Publish(ctx, ExchangeSubject(event.UserID), data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish exchange event: %w", err)
	}

	return ack.Sequence, nil
}
