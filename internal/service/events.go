package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/observability"
)

// Judging event names, appended to the configured subject prefix.
const (
	EventEvaluationSubmitted = "evaluation.submitted"
	EventEntryLevelLocked    = "entry.level_locked"
	EventWinnersChanged      = "winners.changed"
)

// Event is the envelope published for every judging event.
type Event struct {
	Name       string                 `json:"name"`
	ContestID  uint                   `json:"contest_id,omitempty"`
	EntryID    uint                   `json:"entry_id,omitempty"`
	ActorID    uint                   `json:"actor_id,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// EventPublisher fans judging events out to other consumers. Publishing is
// best effort; failures never fail the originating request.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewEventPublisher publishes on NATS under subject. A nil connection yields
// a publisher that only logs.
func NewEventPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	return &natsPublisher{
		conn:    conn,
		subject: strings.TrimSuffix(strings.TrimSpace(subject), "."),
		logger:  logger.With().Str("component", "event_publisher").Logger(),
		now:     time.Now,
	}
}

func (p *natsPublisher) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	if p.conn == nil || p.subject == "" {
		p.logger.Debug().Str("event", event.Name).Uint("entry_id", event.EntryID).Msg("event broker disabled")
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("event", event.Name).Msg("failed to encode event")
		return
	}

	if err := p.conn.Publish(p.subject+"."+event.Name, payload); err != nil {
		observability.EventPublishFailures().Inc()
		p.logger.Warn().Err(err).Str("event", event.Name).Msg("failed to publish event")
	}
}
