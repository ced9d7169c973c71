// Package cleanup implements the resume-blob cleanup pipeline: the API
// service publishes delete events for superseded or orphaned resume files,
// and the cleanup worker consumes them and unlinks the files. Blob deletion
// is best effort: a dangling file is an acceptable degraded state, so
// nothing here ever fails a user-facing request.
package cleanup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SETHUKUMAR1709/job-application-tracker/shared/rabbitmq"
)

// Event is one blob-deletion request on the wire.
type Event struct {
	Path        string    `json:"path"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// Publisher schedules blob deletions by publishing events to RabbitMQ.
type Publisher struct {
	rabbit *rabbitmq.Client
	logger *slog.Logger
}

func NewPublisher(rabbit *rabbitmq.Client, logger *slog.Logger) *Publisher {
	return &Publisher{
		rabbit: rabbit,
		logger: logger,
	}
}

// Schedule publishes a deletion event for urlPath. The publish uses the
// client's retry/backoff; an error here means the caller should fall back
// to deleting inline.
func (p *Publisher) Schedule(ctx context.Context, urlPath, reason string) error {
	event := Event{
		Path:        urlPath,
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cleanup event: %w", err)
	}

	if err := p.rabbit.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return err
	}

	p.logger.Debug("Scheduled blob cleanup",
		slog.String("path", urlPath),
		slog.String("reason", reason),
	)

	return nil
}
