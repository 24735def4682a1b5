package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/repository"
	"github.com/jnst/cloudgames-library/internal/search"
)

const (
	categoryBucketSize     = 10
	popularGameBucketSize  = 50
	defaultMaxSuggestions  = 3
	defaultSuggestionLimit = 50
	recommendationTracerID = "github.com/jnst/cloudgames-library/internal/service"
)

// RecommendationEngineImpl implements RecommendationEngine on top of the
// purchase history index and the local catalog.
type RecommendationEngineImpl struct {
	index       search.Index
	gameRepo    repository.GameRepository
	libraryRepo repository.LibraryRepository
	defaultMax  int
	maxLimit    int
	tracer      trace.Tracer
}

// NewRecommendationEngineImpl creates a new RecommendationEngine implementation.
// defaultMax applies when Suggest is called with a non-positive limit, and
// larger limits are lowered to maxLimit.
func NewRecommendationEngineImpl(
	index search.Index,
	gameRepo repository.GameRepository,
	libraryRepo repository.LibraryRepository,
	defaultMax, maxLimit int,
) RecommendationEngine {
	if maxLimit <= 0 {
		maxLimit = defaultSuggestionLimit
	}

	if defaultMax <= 0 {
		defaultMax = defaultMaxSuggestions
	}

	return &RecommendationEngineImpl{
		index:       index,
		gameRepo:    gameRepo,
		libraryRepo: libraryRepo,
		defaultMax:  min(defaultMax, maxLimit),
		maxLimit:    maxLimit,
		tracer:      otel.Tracer(recommendationTracerID),
	}
}

// Suggest returns at most maxSuggestions games the user does not own.
//
// Games from the user's most purchased categories come first, followed by
// the most purchased games overall. A user without purchase history gets no
// suggestions. Backend failures are logged and yield an empty list.
func (e *RecommendationEngineImpl) Suggest(ctx context.Context, userCode, maxSuggestions int) []model.GameSuggestion {
	if maxSuggestions <= 0 {
		maxSuggestions = e.defaultMax
	}

	maxSuggestions = min(maxSuggestions, e.maxLimit)

	ctx, span := e.tracer.Start(ctx, "RecommendationEngine.Suggest", trace.WithAttributes(
		attribute.Int("user_code", userCode),
		attribute.Int("max_suggestions", maxSuggestions),
	))
	defer span.End()

	suggestions, err := e.suggest(ctx, userCode, maxSuggestions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("error building suggestions",
			slog.Int("user_code", userCode),
			slog.String("error", err.Error()),
		)

		return []model.GameSuggestion{}
	}

	span.SetAttributes(attribute.Int("suggestions", len(suggestions)))
	slog.Debug("suggestions built",
		slog.Int("user_code", userCode),
		slog.Int("count", len(suggestions)),
	)

	return suggestions
}

func (e *RecommendationEngineImpl) suggest(ctx context.Context, userCode, maxSuggestions int) ([]model.GameSuggestion, error) {
	categories, err := e.index.Aggregate(ctx, search.AggregateQuery{
		Field: search.FieldCategory,
		Size:  categoryBucketSize,
	}.ForUser(userCode))
	if err != nil {
		return nil, fmt.Errorf("category aggregation failed: %w", err)
	}

	if len(categories) == 0 {
		slog.Info("no purchase history for suggestions", slog.Int("user_code", userCode))
		return []model.GameSuggestion{}, nil
	}

	owned, err := e.ownedGameCodes(ctx, userCode)
	if err != nil {
		return nil, err
	}

	set := newSuggestionSet(maxSuggestions, owned)

	if err := e.addCategorySuggestions(ctx, categories, set); err != nil {
		return nil, err
	}

	if !set.full() {
		if err := e.addPopularSuggestions(ctx, set); err != nil {
			return nil, err
		}
	}

	return set.items, nil
}

func (e *RecommendationEngineImpl) ownedGameCodes(ctx context.Context, userCode int) ([]int, error) {
	items, err := e.libraryRepo.ListByUserCode(ctx, userCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list library of user %d: %w", userCode, err)
	}

	codes := make([]int, len(items))
	for i, item := range items {
		codes[i] = item.Game.Code
	}

	return codes, nil
}

func (e *RecommendationEngineImpl) addCategorySuggestions(
	ctx context.Context, buckets []search.Bucket, set *suggestionSet,
) error {
	for _, bucket := range buckets {
		if set.full() {
			return nil
		}

		category, err := model.ParseGameCategory(bucket.Key)
		if err != nil {
			slog.Warn("skipping unknown category bucket", slog.String("key", bucket.Key))
			continue
		}

		games, err := e.gameRepo.ListActiveByCategory(ctx, category, set.blockedCodes(), set.remaining())
		if err != nil {
			return fmt.Errorf("failed to list %s games: %w", category, err)
		}

		for _, game := range games {
			if set.full() {
				break
			}

			set.add(game)
		}
	}

	return nil
}

func (e *RecommendationEngineImpl) addPopularSuggestions(ctx context.Context, set *suggestionSet) error {
	buckets, err := e.index.Aggregate(ctx, search.AggregateQuery{
		Field: search.FieldGameCode,
		Size:  popularGameBucketSize,
	})
	if err != nil {
		return fmt.Errorf("popular games aggregation failed: %w", err)
	}

	for _, bucket := range buckets {
		if set.full() {
			return nil
		}

		code, err := strconv.Atoi(bucket.Key)
		if err != nil || set.blocked(code) {
			continue
		}

		game, err := e.gameRepo.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				continue
			}

			return fmt.Errorf("failed to get game %d: %w", code, err)
		}

		if !game.IsActive {
			continue
		}

		set.add(game)
	}

	return nil
}

// suggestionSet accumulates suggestions in insertion order, rejecting owned
// and repeated games and anything past the cap.
type suggestionSet struct {
	limit   int
	items   []model.GameSuggestion
	exclude map[int]struct{}
}

func newSuggestionSet(limit int, owned []int) *suggestionSet {
	size := min(limit, categoryBucketSize+popularGameBucketSize)

	exclude := make(map[int]struct{}, len(owned)+size)
	for _, code := range owned {
		exclude[code] = struct{}{}
	}

	return &suggestionSet{
		limit:   limit,
		items:   make([]model.GameSuggestion, 0, size),
		exclude: exclude,
	}
}

func (s *suggestionSet) full() bool {
	return len(s.items) >= s.limit
}

func (s *suggestionSet) remaining() int {
	return s.limit - len(s.items)
}

func (s *suggestionSet) blocked(code int) bool {
	_, ok := s.exclude[code]
	return ok
}

// blockedCodes returns the codes to exclude from catalog queries, sorted.
func (s *suggestionSet) blockedCodes() []int {
	codes := make([]int, 0, len(s.exclude))
	for code := range s.exclude {
		codes = append(codes, code)
	}

	slices.Sort(codes)

	return codes
}

func (s *suggestionSet) add(game *model.Game) bool {
	if s.full() || s.blocked(game.Code) {
		return false
	}

	s.items = append(s.items, model.NewGameSuggestion(game))
	s.exclude[game.Code] = struct{}{}

	return true
}
