package cleanup

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/blob"
)

// ErrBadEvent marks a delivery that can never succeed: malformed JSON, an
// empty path, or a path outside the uploads root. Such deliveries are
// dropped instead of requeued.
var ErrBadEvent = errors.New("bad cleanup event")

// BlobRemover removes a stored blob by its URL path.
type BlobRemover interface {
	Remove(urlPath string) error
}

// Processor executes a single cleanup event against the blob store.
type Processor struct {
	blobs  BlobRemover
	logger *slog.Logger
}

func NewProcessor(blobs BlobRemover, logger *slog.Logger) *Processor {
	return &Processor{
		blobs:  blobs,
		logger: logger,
	}
}

// Process parses and executes one delivery body. Removing a file that is
// already gone counts as success, so redeliveries are idempotent.
func (p *Processor) Process(body []byte) error {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrBadEvent, err)
	}

	if event.Path == "" {
		return fmt.Errorf("%w: empty path", ErrBadEvent)
	}

	if err := p.blobs.Remove(event.Path); err != nil {
		// A path outside the uploads root can never succeed; everything
		// else (filesystem trouble) is worth one redelivery.
		if errors.Is(err, blob.ErrInvalidPath) {
			return fmt.Errorf("%w: %v", ErrBadEvent, err)
		}
		return fmt.Errorf("failed to remove blob: %w", err)
	}

	p.logger.Info("Removed resume blob",
		slog.String("path", event.Path),
		slog.String("reason", event.Reason),
	)

	return nil
}
