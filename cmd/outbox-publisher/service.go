package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/streetfood/rawmart/pkg/config"
	"github.com/streetfood/rawmart/pkg/db/models"
	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/logger"
	"github.com/streetfood/rawmart/pkg/metrics"
	"github.com/streetfood/rawmart/pkg/outbox"
)

const (
	publishOperation = "outbox.publish"

	fallbackBatchSize   = 50
	fallbackPoll        = 500 * time.Millisecond
	fallbackMaxAttempts = 10
	publishDeadline     = 15 * time.Second
	backoffCeiling      = 10 * time.Second
	jitterWindow        = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

// publishFunc sends one message and blocks until the broker acknowledges it.
type publishFunc func(ctx context.Context, msg *gcppubsub.Message) (string, error)

// topicRouter returns the sender for a topic, or nil when none is configured.
type topicRouter func(topic string) publishFunc

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         dbClient
	PubSub     pubSubClient
	Repository outboxRepository
	Metrics    *metrics.OperationMetrics
	Router     topicRouter
}

type Service struct {
	topics      config.PubSubConfig
	logg        *logger.Logger
	db          dbClient
	pubsub      pubSubClient
	repo        outboxRepository
	metrics     *metrics.OperationMetrics
	route       topicRouter
	batchSize   int
	maxAttempts int
	poll        time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	}

	svc := &Service{
		topics:      params.Config.PubSub,
		logg:        params.Logger,
		db:          params.DB,
		pubsub:      params.PubSub,
		repo:        params.Repository,
		metrics:     params.Metrics,
		route:       params.Router,
		batchSize:   positiveOr(params.Config.Outbox.BatchSize, fallbackBatchSize),
		maxAttempts: positiveOr(params.Config.Outbox.MaxAttempts, fallbackMaxAttempts),
		poll:        time.Duration(params.Config.Outbox.PollIntervalMS) * time.Millisecond,
	}
	if svc.poll <= 0 {
		svc.poll = fallbackPoll
	}
	if svc.route == nil {
		svc.route = clientRouter(params.PubSub)
	}
	return svc, nil
}

// Run drains the outbox until ctx ends. Full batches are followed immediately
// by the next fetch; empty ones wait a poll interval and failures back off.
func (s *Service) Run(ctx context.Context) error {
	for name, ping := range map[string]func(context.Context) error{
		"database": s.db.Ping,
		"pubsub":   s.pubsub.Ping,
	} {
		if err := ping(ctx); err != nil {
			s.logg.Error(ctx, name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}

	wait := newPollBackoff(s.poll, backoffCeiling)
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher context canceled")
			return err
		}

		drained, err := s.processBatch(ctx)
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox publisher batch error", err)
			err = sleepCtx(ctx, wait.grow())
		case drained:
			wait.reset()
			continue
		default:
			wait.reset()
			err = sleepCtx(ctx, wait.current())
		}
		if err != nil {
			return err
		}
	}
}

// processBatch claims up to batchSize rows in one transaction and reports
// whether any were found.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	var found bool
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		found = len(rows) > 0
		for _, row := range rows {
			if err := s.settle(ctx, tx, row, s.deliver(ctx, row)); err != nil {
				return err
			}
		}
		return nil
	})
	return found, err
}

type outcomeKind int

const (
	outcomeDelivered outcomeKind = iota
	outcomeRetry
	outcomePark
)

type outcome struct {
	kind   outcomeKind
	reason string
	topic  string
	env    outbox.PayloadEnvelope
	err    error
}

// deliver attempts one publish and classifies the result. It never touches
// the row; settle records the outcome.
func (s *Service) deliver(ctx context.Context, row models.OutboxEvent) outcome {
	env, err := outbox.DecodeEnvelope(row.Payload)
	if err != nil {
		return outcome{kind: outcomePark, reason: "invalid_payload", err: err}
	}
	topic, err := outbox.TopicFor(s.topics, row.EventType)
	if err != nil {
		return outcome{kind: outcomePark, reason: "unroutable", env: env, err: err}
	}
	send := s.route(topic)
	if send == nil {
		return outcome{kind: outcomePark, reason: "no_publisher", env: env, topic: topic,
			err: fmt.Errorf("publisher not configured for topic %s", topic)}
	}

	started := time.Now()
	sendCtx, cancel := context.WithTimeout(ctx, publishDeadline)
	_, err = send(sendCtx, message(row, env))
	cancel()
	s.metrics.Observe(publishOperation, started, err != nil, string(pkgerrors.CodeOf(err)))

	switch {
	case err == nil:
		return outcome{kind: outcomeDelivered, env: env, topic: topic}
	case row.AttemptCount+1 >= s.maxAttempts:
		return outcome{kind: outcomePark, reason: "max_attempts", env: env, topic: topic,
			err: fmt.Errorf("max publish attempts reached: %w", err)}
	default:
		return outcome{kind: outcomeRetry, env: env, topic: topic, err: err}
	}
}

// settle writes the outcome back to the row. Only bookkeeping failures are
// returned, and they abort the batch.
func (s *Service) settle(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, out outcome) error {
	logCtx := s.logg.WithFields(ctx, s.rowFields(row, out))
	if out.err != nil {
		logCtx = s.logg.WithField(logCtx, "error", out.err.Error())
	}

	switch out.kind {
	case outcomeDelivered:
		if err := s.repo.MarkPublishedTx(tx, row.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", row.ID, err)
		}
		s.logg.Info(logCtx, "outbox event published")
	case outcomeRetry:
		if err := s.repo.MarkFailedTx(tx, row.ID, out.err); err != nil {
			return fmt.Errorf("mark failure %s: %w", row.ID, err)
		}
		s.logg.Warn(logCtx, "outbox publish failed")
	case outcomePark:
		if err := s.repo.MarkTerminalTx(tx, row.ID, out.err, s.maxAttempts); err != nil {
			return fmt.Errorf("mark terminal %s: %w", row.ID, err)
		}
		s.logg.Warn(logCtx, "outbox event will not be retried")
	}
	return nil
}

func (s *Service) rowFields(row models.OutboxEvent, out outcome) map[string]any {
	attempts := row.AttemptCount
	if out.kind != outcomeDelivered {
		attempts++
	}
	fields := map[string]any{
		"outbox_id":      row.ID.String(),
		"event_type":     row.EventType,
		"aggregate_type": row.AggregateType,
		"aggregate_id":   row.AggregateID.String(),
		"attempt_count":  attempts,
	}
	if out.env.EventID != "" {
		fields["event_id"] = out.env.EventID
	}
	if out.topic != "" {
		fields["topic"] = out.topic
	}
	if out.reason != "" {
		fields["terminal_reason"] = out.reason
	}
	return fields
}

// message copies routing metadata into attributes so subscribers can filter
// without decoding the body.
func message(row models.OutboxEvent, env outbox.PayloadEnvelope) *gcppubsub.Message {
	attrs := map[string]string{
		"event_id":       env.EventID,
		"event_type":     string(row.EventType),
		"aggregate_type": string(row.AggregateType),
		"aggregate_id":   row.AggregateID.String(),
		"occurred_at":    env.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if env.Actor != nil && env.Actor.SessionID != "" {
		attrs["session_id"] = env.Actor.SessionID
	}
	return &gcppubsub.Message{Data: row.Payload, Attributes: attrs}
}

func clientRouter(client pubSubClient) topicRouter {
	return func(topic string) publishFunc {
		pub := client.Publisher(topic)
		if pub == nil {
			return nil
		}
		return func(ctx context.Context, msg *gcppubsub.Message) (string, error) {
			return pub.Publish(ctx, msg).Get(ctx)
		}
	}
}

// pollBackoff doubles the wait after each failed batch up to a ceiling and
// adds up to jitterWindow so replicas do not poll in lockstep.
type pollBackoff struct {
	base, ceiling, wait time.Duration
}

func newPollBackoff(base, ceiling time.Duration) *pollBackoff {
	return &pollBackoff{base: base, ceiling: ceiling, wait: base}
}

func (b *pollBackoff) reset() { b.wait = b.base }

func (b *pollBackoff) current() time.Duration { return jitter(b.wait) }

func (b *pollBackoff) grow() time.Duration {
	b.wait = min(b.wait*2, b.ceiling)
	return jitter(b.wait)
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
