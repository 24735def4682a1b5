package stream

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBlockTimeout = time.Second
	defaultErrorDelay   = time.Second
	claimBatchSize      = 10
	tracerName          = "github.com/jnst/cloudgames-library/internal/stream"
)

// Options tune a Consumer. Zero values select defaults; a zero ClaimMinIdle
// disables reclaiming of pending messages.
//
// A reclaimed message already delivered MaxDeliveries times is moved to the
// stream's dead-letter stream (DeadLetterSuffix appended to its name) and
// acknowledged. A zero MaxDeliveries redelivers forever.
type Options struct {
	BlockTimeout  time.Duration
	ClaimMinIdle  time.Duration
	ErrorDelay    time.Duration
	MaxDeliveries int64
}

// DeadLetterSuffix names the dead-letter stream of a stream.
const DeadLetterSuffix = ":dead"

// Fields added to a dead-lettered message.
const (
	FieldSourceID   = "source_id"
	FieldDeliveries = "deliveries"
)

// Consumer reads one stream as a member of a consumer group and feeds each
// message to a Handler, one at a time.
type Consumer struct {
	client   Client
	stream   string
	group    string
	name     string
	handler  Handler
	opts     Options
	tracer   trace.Tracer
	now      func() time.Time
	lastScan time.Time
}

// NewConsumer creates a consumer for stream within group.
func NewConsumer(client Client, stream, group, name string, handler Handler, opts Options) *Consumer {
	if opts.BlockTimeout <= 0 {
		opts.BlockTimeout = defaultBlockTimeout
	}

	if opts.ErrorDelay <= 0 {
		opts.ErrorDelay = defaultErrorDelay
	}

	return &Consumer{
		client:  client,
		stream:  stream,
		group:   group,
		name:    name,
		handler: handler,
		opts:    opts,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
}

// Run consumes until ctx is cancelled. Cancellation stops reading new
// messages; a message already being handled runs to completion.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.client.CreateGroup(ctx, c.stream, c.group); err != nil {
		return err
	}

	slog.Info("starting message consumer",
		slog.String("stream", c.stream),
		slog.String("group", c.group),
		slog.String("consumer", c.name),
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("consumer stopped", slog.String("stream", c.stream))
			return nil
		default:
			if err := c.poll(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}

				slog.Error("error consuming messages",
					slog.String("stream", c.stream),
					slog.String("error", err.Error()),
				)
				c.sleep(ctx, c.opts.ErrorDelay)
			}
		}
	}
}

// poll redelivers idle pending messages when due, then reads one new message.
func (c *Consumer) poll(ctx context.Context) error {
	if c.claimDue() {
		if err := c.claim(ctx); err != nil {
			return err
		}
	}

	messages, err := c.client.ReadGroup(ctx, c.stream, c.group, c.name, c.opts.BlockTimeout)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		c.process(ctx, msg)
	}

	return nil
}

// claim takes over idle pending messages and handles them again, or
// dead-letters those that ran out of deliveries.
func (c *Consumer) claim(ctx context.Context) error {
	var deliveries map[string]int64
	if c.opts.MaxDeliveries > 0 {
		counts, err := c.client.Pending(ctx, c.stream, c.group, c.opts.ClaimMinIdle, claimBatchSize)
		if err != nil {
			return err
		}

		deliveries = counts
	}

	claimed, err := c.client.AutoClaim(ctx, c.stream, c.group, c.name, c.opts.ClaimMinIdle, claimBatchSize)
	if err != nil {
		return err
	}

	if len(claimed) < claimBatchSize {
		c.lastScan = c.now()
	}

	for _, msg := range claimed {
		if ctx.Err() != nil {
			return nil
		}

		if n := deliveries[msg.ID]; c.opts.MaxDeliveries > 0 && n >= c.opts.MaxDeliveries {
			c.deadLetter(ctx, msg, n)
			continue
		}

		slog.Info("redelivering pending message",
			slog.String("stream", c.stream),
			slog.String("message_id", msg.ID),
		)
		c.process(ctx, msg)
	}

	return nil
}

// deadLetter copies msg to the dead-letter stream and acknowledges it. If
// the copy fails the message stays pending.
func (c *Consumer) deadLetter(ctx context.Context, msg Message, deliveries int64) {
	ctx = context.WithoutCancel(ctx)
	target := c.stream + DeadLetterSuffix

	fields := make(map[string]string, len(msg.Fields)+2)
	maps.Copy(fields, msg.Fields)
	fields[FieldSourceID] = msg.ID
	fields[FieldDeliveries] = strconv.FormatInt(deliveries, 10)

	if _, err := c.client.Publish(ctx, target, fields); err != nil {
		slog.Error("failed to dead-letter message",
			slog.String("stream", c.stream),
			slog.String("message_id", msg.ID),
			slog.String("error", err.Error()),
		)

		return
	}

	slog.Error("message exceeded max deliveries, moved to dead-letter stream",
		slog.String("stream", c.stream),
		slog.String("message_id", msg.ID),
		slog.Int64("deliveries", deliveries),
		slog.String("dead_letter_stream", target),
	)

	c.acknowledge(ctx, msg.ID)
}

func (c *Consumer) claimDue() bool {
	if c.opts.ClaimMinIdle <= 0 {
		return false
	}

	return c.now().Sub(c.lastScan) >= c.opts.ClaimMinIdle
}

// process runs the handler and acknowledges unless the failure is retryable.
func (c *Consumer) process(ctx context.Context, msg Message) {
	ctx, span := c.tracer.Start(context.WithoutCancel(ctx), c.stream+" process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "redis"),
			attribute.String("messaging.destination.name", c.stream),
			attribute.String("messaging.consumer.group.name", c.group),
			attribute.String("messaging.message.id", msg.ID),
		),
	)
	defer span.End()

	slog.Debug("received message",
		slog.String("stream", c.stream),
		slog.String("message_id", msg.ID),
	)

	err := c.handler(ctx, msg)

	switch {
	case err == nil:
	case errors.Is(err, ErrMalformed):
		span.RecordError(err)
		slog.Warn("dropping malformed message",
			slog.String("stream", c.stream),
			slog.String("message_id", msg.ID),
			slog.String("error", err.Error()),
		)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("failed to process message, leaving it pending",
			slog.String("stream", c.stream),
			slog.String("message_id", msg.ID),
			slog.String("error", err.Error()),
		)

		return
	}

	c.acknowledge(ctx, msg.ID)
}

func (c *Consumer) acknowledge(ctx context.Context, id string) {
	if err := c.client.Ack(ctx, c.stream, c.group, id); err != nil {
		slog.Error("failed to ACK message",
			slog.String("stream", c.stream),
			slog.String("message_id", id),
			slog.String("error", err.Error()),
		)

		return
	}

	slog.Debug("ACKed message", slog.String("stream", c.stream), slog.String("message_id", id))
}

func (*Consumer) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
