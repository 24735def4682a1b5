package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/jnst/cloudgames-library/internal/model"
)

const (
	schemaVersion = "1"
	scoreFormat   = 'f'
)

// ErrUnknownField is returned when aggregating a field that is not counted.
var ErrUnknownField = errors.New("field is not aggregatable")

// indexScript stores the document and bumps its counters only the first
// time a purchase is seen, so redelivered purchases do not inflate counts.
//
// KEYS: doc, category per user, category global, game per user, game global
// ARGV: category member, game member, doc field/value pairs...
var indexScript = rueidis.NewLuaScript(`
local created = redis.call('EXISTS', KEYS[1]) == 0
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
if not created then
  return 0
end
redis.call('ZINCRBY', KEYS[2], 1, ARGV[1])
redis.call('ZINCRBY', KEYS[3], 1, ARGV[1])
redis.call('ZINCRBY', KEYS[4], 1, ARGV[2])
redis.call('ZINCRBY', KEYS[5], 1, ARGV[2])
return 1
`)

// RedisIndex keeps documents as hashes and term counts as sorted sets.
//
//	<prefix>:doc:<purchase id>           hash
//	<prefix>:agg:<field>                 zset over all documents
//	<prefix>:agg:<field>:user:<code>     zset over one user's documents
type RedisIndex struct {
	redisClient rueidis.Client
	prefix      string
}

// NewRedisIndex creates an index whose keys start with prefix.
func NewRedisIndex(redisClient rueidis.Client, prefix string) *RedisIndex {
	return &RedisIndex{redisClient: redisClient, prefix: prefix}
}

// EnsureIndex records the index schema the first time it is used.
func (ix *RedisIndex) EnsureIndex(ctx context.Context) (bool, error) {
	cmd := ix.redisClient.B().Hsetnx().Key(ix.prefix+":meta").Field("schema_version").Value(schemaVersion).Build()

	created, err := ix.redisClient.Do(ctx, cmd).AsBool()
	if err != nil {
		return false, fmt.Errorf("failed to ensure index %s: %w", ix.prefix, err)
	}

	return created, nil
}

// IndexDocument stores doc. Indexing the same purchase again overwrites the
// document without counting it twice.
func (ix *RedisIndex) IndexDocument(ctx context.Context, doc *model.PurchaseHistoryDocument) error {
	category := strconv.Itoa(int(doc.Category))
	gameCode := strconv.Itoa(doc.GameCode)

	keys := []string{
		ix.docKey(doc.PurchaseID.String()),
		ix.aggKey(FieldCategory, &doc.UserCode),
		ix.aggKey(FieldCategory, nil),
		ix.aggKey(FieldGameCode, &doc.UserCode),
		ix.aggKey(FieldGameCode, nil),
	}

	args := []string{
		category, gameCode,
		"purchase_id", doc.PurchaseID.String(),
		"user_code", strconv.Itoa(doc.UserCode),
		"user_id", doc.UserID.String(),
		"game_code", gameCode,
		"game_id", doc.GameID.String(),
		"processed_at", doc.ProcessedAt.UTC().Format(time.RFC3339Nano),
		"game_title", doc.GameTitle,
		"category", category,
	}

	if err := indexScript.Exec(ctx, ix.redisClient, keys, args).Error(); err != nil {
		return fmt.Errorf("failed to index purchase %s: %w", doc.PurchaseID, err)
	}

	return nil
}

// Aggregate returns the top query.Size terms of query.Field by count.
// Terms tied with the last returned bucket are resolved by key so the
// result does not depend on Redis ordering of equal scores.
func (ix *RedisIndex) Aggregate(ctx context.Context, query AggregateQuery) ([]Bucket, error) {
	if query.Field != FieldCategory && query.Field != FieldGameCode {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, query.Field)
	}

	if query.Size <= 0 {
		return nil, nil
	}

	key := ix.aggKey(query.Field, query.UserCode)

	topCmd := ix.redisClient.B().Zrange().Key(key).Min("0").Max(strconv.Itoa(query.Size - 1)).
		Rev().Withscores().Build()

	top, err := ix.scores(ctx, topCmd)
	if err != nil {
		return nil, err
	}

	if len(top) < query.Size {
		SortBuckets(top)
		return top, nil
	}

	boundary := strconv.FormatFloat(float64(top[len(top)-1].Count), scoreFormat, -1, 64)
	tiedCmd := ix.redisClient.B().Zrange().Key(key).Min(boundary).Max(boundary).Byscore().Withscores().Build()

	tied, err := ix.scores(ctx, tiedCmd)
	if err != nil {
		return nil, err
	}

	return mergeBoundary(top, tied, query.Size), nil
}

func (ix *RedisIndex) scores(ctx context.Context, cmd rueidis.Completed) ([]Bucket, error) {
	zs, err := ix.redisClient.Do(ctx, cmd).AsZScores()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate: %w", err)
	}

	buckets := make([]Bucket, len(zs))
	for i, z := range zs {
		buckets[i] = Bucket{Key: z.Member, Count: int64(z.Score)}
	}

	return buckets, nil
}

func (ix *RedisIndex) docKey(purchaseID string) string {
	return ix.prefix + ":doc:" + purchaseID
}

func (ix *RedisIndex) aggKey(field string, userCode *int) string {
	key := ix.prefix + ":agg:" + field
	if userCode != nil {
		key += ":user:" + strconv.Itoa(*userCode)
	}

	return key
}

// mergeBoundary replaces the buckets of top that share the lowest count with
// every bucket holding that count, orders the result and cuts it to size.
func mergeBoundary(top, tied []Bucket, size int) []Bucket {
	if len(top) == 0 {
		return top
	}

	boundary := top[len(top)-1].Count

	merged := make([]Bucket, 0, len(top)+len(tied))
	for _, b := range top {
		if b.Count > boundary {
			merged = append(merged, b)
		}
	}

	for _, b := range tied {
		if b.Count == boundary {
			merged = append(merged, b)
		}
	}

	SortBuckets(merged)

	if len(merged) > size {
		merged = merged[:size]
	}

	return merged
}
