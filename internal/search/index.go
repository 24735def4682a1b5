// Package search stores purchase history documents and answers term
// aggregations over them for the recommendation engine.
package search

import (
	"cmp"
	"context"
	"slices"
	"strconv"

	"github.com/jnst/cloudgames-library/internal/model"
)

// Aggregatable document fields.
const (
	FieldCategory = "category"
	FieldGameCode = "game_code"
)

// Bucket is one term of an aggregation and the number of documents holding it.
type Bucket struct {
	Key   string
	Count int64
}

// AggregateQuery selects documents and the field whose terms are counted.
// A nil UserCode aggregates over every document.
type AggregateQuery struct {
	Field    string
	UserCode *int
	Size     int
}

// Index is the purchase history search index.
type Index interface {
	IndexDocument(ctx context.Context, doc *model.PurchaseHistoryDocument) error
	Aggregate(ctx context.Context, query AggregateQuery) ([]Bucket, error)
}

// ForUser restricts q to one user's documents.
func (q AggregateQuery) ForUser(userCode int) AggregateQuery {
	q.UserCode = &userCode
	return q
}

// SortBuckets orders buckets by count descending, then by key ascending.
// Numeric keys compare numerically.
func SortBuckets(buckets []Bucket) {
	slices.SortStableFunc(buckets, func(a, b Bucket) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}

		return compareKeys(a.Key, b.Key)
	})
}

func compareKeys(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)

	switch {
	case aErr == nil && bErr == nil:
		return cmp.Compare(ai, bi)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}
