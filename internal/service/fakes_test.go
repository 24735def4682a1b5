package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/search"
)

var errStorage = errors.New("storage unavailable")

// memDB is an in-memory stand-in for the relational store.
type memDB struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	games     map[int]model.Game
	users     map[int]model.User
	libraries []model.Library
	outbox    []model.OutboxEvent

	gameErr     error
	userErr     error
	libraryErr  error
	createCalls int
	updateCalls int
}

func newMemDB() *memDB {
	return &memDB{
		games: make(map[int]model.Game),
		users: make(map[int]model.User),
	}
}

func (m *memDB) putGame(code int, title string, category model.GameCategory, active bool) model.Game {
	g := model.Game{ID: uuid.New(), Code: code, Title: title, Category: category, IsActive: active}
	m.games[code] = g
	return g
}

func (m *memDB) putUser(code int) model.User {
	u := model.User{ID: uuid.New(), Code: code, Name: "player", Email: "player@example.com"}
	m.users[code] = u
	return u
}

func (m *memDB) own(userCode, gameCode int) {
	m.libraries = append(m.libraries, model.Library{
		ID:         uuid.New(),
		UserID:     m.users[userCode].ID,
		GameID:     m.games[gameCode].ID,
		PurchaseID: uuid.New(),
	})
}

type fakeGameRepo struct{ db *memDB }

func (r fakeGameRepo) GetByCode(_ context.Context, code int) (*model.Game, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.gameErr != nil {
		return nil, r.db.gameErr
	}

	g, ok := r.db.games[code]
	if !ok {
		return nil, model.ErrNotFound
	}

	return &g, nil
}

func (r fakeGameRepo) Create(_ context.Context, game *model.Game) (*model.Game, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.createCalls++
	if _, ok := r.db.games[game.Code]; ok {
		return nil, model.ErrDuplicate
	}

	g := *game
	g.ID = uuid.New()
	r.db.games[g.Code] = g

	return &g, nil
}

func (r fakeGameRepo) Update(_ context.Context, game *model.Game) (*model.Game, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.updateCalls++
	if r.db.gameErr != nil {
		return nil, r.db.gameErr
	}

	g := *game
	r.db.games[g.Code] = g

	return &g, nil
}

func (r fakeGameRepo) ListActiveByCategory(
	_ context.Context, category model.GameCategory, excludedCodes []int, limit int,
) ([]*model.Game, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.gameErr != nil {
		return nil, r.db.gameErr
	}

	var games []*model.Game
	for _, g := range r.db.games {
		if g.Category == category && g.IsActive && !slices.Contains(excludedCodes, g.Code) {
			games = append(games, &g)
		}
	}

	slices.SortFunc(games, func(a, b *model.Game) int { return a.Code - b.Code })

	if len(games) > limit {
		games = games[:limit]
	}

	return games, nil
}

type fakeUserRepo struct{ db *memDB }

func (r fakeUserRepo) Create(_ context.Context, params *model.CreateUserParams) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.userErr != nil {
		return nil, r.db.userErr
	}

	if _, ok := r.db.users[params.Code]; ok {
		return nil, model.ErrDuplicate
	}

	u := model.User{ID: uuid.New(), Code: params.Code, Name: params.Name, Email: params.Email}
	r.db.users[u.Code] = u

	return &u, nil
}

func (r fakeUserRepo) GetByCode(_ context.Context, code int) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.userErr != nil {
		return nil, r.db.userErr
	}

	u, ok := r.db.users[code]
	if !ok {
		return nil, model.ErrNotFound
	}

	return &u, nil
}

type fakeLibraryRepo struct{ db *memDB }

func (r fakeLibraryRepo) Get(_ context.Context, key model.LibraryKey) (*model.Library, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.libraryErr != nil {
		return nil, r.db.libraryErr
	}

	for _, l := range r.db.libraries {
		if l.PurchaseID == key.PurchaseID && l.GameID == key.GameID && l.UserID == key.UserID {
			return &l, nil
		}
	}

	return nil, model.ErrNotFound
}

func (r fakeLibraryRepo) Create(_ context.Context, params *model.CreateLibraryParams) (*model.Library, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, l := range r.db.libraries {
		if l.PurchaseID == params.PurchaseID && l.GameID == params.GameID && l.UserID == params.UserID {
			return nil, model.ErrDuplicate
		}
	}

	l := model.Library{
		ID:         uuid.New(),
		UserID:     params.UserID,
		GameID:     params.GameID,
		PurchaseID: params.PurchaseID,
		AcquiredAt: params.AcquiredAt,
	}
	r.db.libraries = append(r.db.libraries, l)

	return &l, nil
}

func (r fakeLibraryRepo) ListByUserCode(_ context.Context, userCode int) ([]*model.LibraryItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.libraryErr != nil {
		return nil, r.db.libraryErr
	}

	user, ok := r.db.users[userCode]
	if !ok {
		return nil, nil
	}

	var items []*model.LibraryItem
	for _, l := range r.db.libraries {
		if l.UserID != user.ID {
			continue
		}

		for _, g := range r.db.games {
			if g.ID == l.GameID {
				items = append(items, &model.LibraryItem{ID: l.ID, PurchaseID: l.PurchaseID, AcquiredAt: l.AcquiredAt, Game: g})
			}
		}
	}

	return items, nil
}

func (m *memDB) libraryCount(key model.LibraryKey) int {
	n := 0
	for _, l := range m.libraries {
		if l.PurchaseID == key.PurchaseID && l.GameID == key.GameID && l.UserID == key.UserID {
			n++
		}
	}

	return n
}

type fakeOutboxRepo struct {
	db        *memDB
	createErr error
	markErr   error
	published []int64
}

func (r *fakeOutboxRepo) CreateEvent(_ context.Context, params *model.CreateOutboxEventParams) (*model.OutboxEvent, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}

	e := model.OutboxEvent{
		ID:          int64(len(r.db.outbox) + 1),
		AggregateID: params.AggregateID,
		EventType:   params.EventType,
		Payload:     params.Payload,
	}
	r.db.outbox = append(r.db.outbox, e)

	return &e, nil
}

func (r *fakeOutboxRepo) GetUnpublishedEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var events []*model.OutboxEvent
	for i := range r.db.outbox {
		if r.db.outbox[i].PublishedAt == nil && len(events) < limit {
			e := r.db.outbox[i]
			events = append(events, &e)
		}
	}

	return events, nil
}

func (r *fakeOutboxRepo) MarkAsPublished(_ context.Context, id int64) error {
	if r.markErr != nil {
		return r.markErr
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	for i := range r.db.outbox {
		if r.db.outbox[i].ID == id {
			r.db.outbox[i].PublishedAt = &now
		}
	}

	r.published = append(r.published, id)

	return nil
}

// fakeTxManager runs transactions one at a time and restores the in-memory
// users, libraries and outbox when fn fails.
type fakeTxManager struct{ db *memDB }

func (m fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.db.txMu.Lock()
	defer m.db.txMu.Unlock()

	m.db.mu.Lock()
	libraries := slices.Clone(m.db.libraries)
	outbox := slices.Clone(m.db.outbox)
	users := make(map[int]model.User, len(m.db.users))
	for k, v := range m.db.users {
		users[k] = v
	}
	m.db.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.db.mu.Lock()
		m.db.libraries = libraries
		m.db.outbox = outbox
		m.db.users = users
		m.db.mu.Unlock()

		return err
	}

	return nil
}

// fakeIndex serves canned aggregation buckets.
type fakeIndex struct {
	userCategories map[int][]search.Bucket
	popular        []search.Bucket
	categoryErr    error
	popularErr     error
	indexErr       error

	docs    []*model.PurchaseHistoryDocument
	queries []search.AggregateQuery
}

func (f *fakeIndex) IndexDocument(_ context.Context, doc *model.PurchaseHistoryDocument) error {
	if f.indexErr != nil {
		return f.indexErr
	}

	f.docs = append(f.docs, doc)

	return nil
}

func (f *fakeIndex) Aggregate(_ context.Context, q search.AggregateQuery) ([]search.Bucket, error) {
	f.queries = append(f.queries, q)

	switch q.Field {
	case search.FieldCategory:
		if f.categoryErr != nil {
			return nil, f.categoryErr
		}
		if q.UserCode == nil {
			return nil, nil
		}
		return f.userCategories[*q.UserCode], nil
	case search.FieldGameCode:
		if f.popularErr != nil {
			return nil, f.popularErr
		}
		return f.popular, nil
	default:
		return nil, search.ErrUnknownField
	}
}

func (f *fakeIndex) queriedField(field string) bool {
	for _, q := range f.queries {
		if q.Field == field {
			return true
		}
	}

	return false
}
