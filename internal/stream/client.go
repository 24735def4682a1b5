package stream

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"
)

// Client is the subset of Redis Streams commands used by Consumer and the
// outbox publisher.
type Client interface {
	CreateGroup(ctx context.Context, stream, group string) error
	ReadGroup(ctx context.Context, stream, group, consumer string, block time.Duration) ([]Message, error)
	AutoClaim(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int) ([]Message, error)
	Pending(ctx context.Context, stream, group string, minIdle time.Duration, count int) (map[string]int64, error)
	Ack(ctx context.Context, stream, group, id string) error
	Publish(ctx context.Context, stream string, fields map[string]string) (string, error)
}

// RedisClient implements Client with rueidis.
type RedisClient struct {
	redisClient rueidis.Client
}

// NewRedisClient wraps a rueidis client.
func NewRedisClient(redisClient rueidis.Client) *RedisClient {
	return &RedisClient{redisClient: redisClient}
}

// CreateGroup creates the consumer group, and the stream if needed.
// An existing group is not an error.
func (c *RedisClient) CreateGroup(ctx context.Context, stream, group string) error {
	cmd := c.redisClient.B().XgroupCreate().Key(stream).Group(group).Id("0").Mkstream().Build()
	if err := c.redisClient.Do(ctx, cmd).Error(); err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}

	return nil
}

// ReadGroup reads at most one new message for consumer, blocking up to block.
func (c *RedisClient) ReadGroup(
	ctx context.Context, stream, group, consumer string, block time.Duration,
) ([]Message, error) {
	cmd := c.redisClient.B().Xreadgroup().Group(group, consumer).
		Count(1).
		Block(block.Milliseconds()).
		Streams().
		Key(stream).
		Id(">").
		Build()

	result := c.redisClient.Do(ctx, cmd)
	if err := result.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil // block timeout
		}

		return nil, err
	}

	streams, err := result.AsXRead()
	if err != nil {
		return nil, err
	}

	var messages []Message
	for name, entries := range streams {
		messages = append(messages, toMessages(name, entries)...)
	}

	return messages, nil
}

// AutoClaim transfers up to count messages idle for at least minIdle to consumer.
func (c *RedisClient) AutoClaim(
	ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int,
) ([]Message, error) {
	cmd := c.redisClient.B().Xautoclaim().Key(stream).Group(group).Consumer(consumer).
		MinIdleTime(strconv.FormatInt(minIdle.Milliseconds(), 10)).
		Start("0-0").
		Count(int64(count)).
		Build()

	reply, err := c.redisClient.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, err
	}

	if len(reply) < 2 {
		return nil, nil
	}

	entries, err := reply[1].AsXRange()
	if err != nil {
		return nil, err
	}

	return toMessages(stream, entries), nil
}

// Pending returns the delivery counts of up to count pending messages idle
// for at least minIdle, keyed by message id.
func (c *RedisClient) Pending(
	ctx context.Context, stream, group string, minIdle time.Duration, count int,
) (map[string]int64, error) {
	cmd := c.redisClient.B().Xpending().Key(stream).Group(group).
		Idle(minIdle.Milliseconds()).
		Start("-").
		End("+").
		Count(int64(count)).
		Build()

	entries, err := c.redisClient.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, err
	}

	deliveries := make(map[string]int64, len(entries))
	for _, entry := range entries {
		fields, err := entry.ToArray()
		if err != nil || len(fields) < 4 {
			continue
		}

		id, err := fields[0].ToString()
		if err != nil {
			continue
		}

		n, err := fields[3].AsInt64()
		if err != nil {
			continue
		}

		deliveries[id] = n
	}

	return deliveries, nil
}

// Ack acknowledges a message.
func (c *RedisClient) Ack(ctx context.Context, stream, group, id string) error {
	cmd := c.redisClient.B().Xack().Key(stream).Group(group).Id(id).Build()
	return c.redisClient.Do(ctx, cmd).Error()
}

// Publish appends a message and returns its id.
func (c *RedisClient) Publish(ctx context.Context, stream string, fields map[string]string) (string, error) {
	fv := c.redisClient.B().Xadd().Key(stream).Id("*").FieldValue()
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		fv = fv.FieldValue(name, fields[name])
	}

	return c.redisClient.Do(ctx, fv.Build()).ToString()
}

func toMessages(stream string, entries []rueidis.XRangeEntry) []Message {
	messages := make([]Message, 0, len(entries))
	for _, entry := range entries {
		if entry.FieldValues == nil {
			continue // deleted while pending
		}

		messages = append(messages, Message{ID: entry.ID, Stream: stream, Fields: entry.FieldValues})
	}

	return messages
}
