package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/service"
	"github.com/jnst/cloudgames-library/internal/stream"
)

type fakeGameProjector struct {
	events []*model.GameEvent
	err    error
}

func (f *fakeGameProjector) Apply(_ context.Context, event *model.GameEvent) (service.Outcome, error) {
	f.events = append(f.events, event)
	return service.OutcomeCreated, f.err
}

type fakePurchaseProjector struct {
	events []*model.PurchaseCompletedEvent
	err    error
}

func (f *fakePurchaseProjector) Apply(_ context.Context, event *model.PurchaseCompletedEvent) (service.Outcome, error) {
	f.events = append(f.events, event)
	if f.err != nil {
		return "", f.err
	}

	return service.OutcomeCreated, nil
}

type fakeIndexer struct {
	purchases []*model.EnrichedPurchase
}

func (f *fakeIndexer) Index(_ context.Context, purchase *model.EnrichedPurchase) {
	f.purchases = append(f.purchases, purchase)
}

type handlerFixture struct {
	games     *fakeGameProjector
	purchases *fakePurchaseProjector
	indexer   *fakeIndexer
	handler   *MessageHandler
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		games:     &fakeGameProjector{},
		purchases: &fakePurchaseProjector{},
		indexer:   &fakeIndexer{},
	}
	f.handler = NewMessageHandler(f.games, f.purchases, f.indexer)

	return f
}

func message(eventType model.EventAction, payload string) stream.Message {
	return stream.Message{
		ID:     "1-0",
		Stream: "test",
		Fields: stream.Encode(string(eventType), "agg", []byte(payload)),
	}
}

const validGameEvent = `{"code":7,"title":"Quest","category":3,"updated_at":"2024-03-01T12:00:00Z"}`

func TestGameRouter(t *testing.T) {
	tests := []struct {
		name      string
		msg       stream.Message
		wantErr   error
		wantCalls int
	}{
		{
			name:      "game event",
			msg:       message(model.EventActionGameChanged, validGameEvent),
			wantCalls: 1,
		},
		{
			name:      "missing event type falls back to game event",
			msg:       stream.Message{ID: "1-0", Fields: map[string]string{stream.FieldPayload: validGameEvent}},
			wantCalls: 1,
		},
		{
			name:    "invalid json",
			msg:     message(model.EventActionGameChanged, `{"code":`),
			wantErr: stream.ErrMalformed,
		},
		{
			name:    "unknown category",
			msg:     message(model.EventActionGameChanged, `{"code":7,"title":"Quest","category":42,"updated_at":"2024-03-01T12:00:00Z"}`),
			wantErr: stream.ErrMalformed,
		},
		{
			name:    "missing payload",
			msg:     stream.Message{ID: "1-0", Fields: map[string]string{stream.FieldEventType: "game_changed"}},
			wantErr: stream.ErrMalformed,
		},
		{
			name: "unknown event type is skipped",
			msg:  message("game_rated", validGameEvent),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()

			err := f.handler.GameRouter().Handle(context.Background(), tt.msg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Len(t, f.games.events, tt.wantCalls)
		})
	}
}

func TestHandleGameEvent_DecodesPayload(t *testing.T) {
	f := newHandlerFixture()

	require.NoError(t, f.handler.HandleGameEvent(context.Background(), message(model.EventActionGameChanged, validGameEvent)))

	require.Len(t, f.games.events, 1)
	ev := f.games.events[0]
	assert.Equal(t, 7, ev.Code)
	assert.Equal(t, "Quest", ev.Title)
	assert.Equal(t, model.GameCategoryRPG, ev.Category)
	assert.Nil(t, ev.RemovedAt)
}

func TestHandleGameEvent_StorageErrorIsRetryable(t *testing.T) {
	f := newHandlerFixture()
	f.games.err = errors.New("db down")

	err := f.handler.HandleGameEvent(context.Background(), message(model.EventActionGameChanged, validGameEvent))
	require.Error(t, err)
	assert.NotErrorIs(t, err, stream.ErrMalformed)
}

func TestHandlePurchaseCompleted(t *testing.T) {
	purchaseID := uuid.New()
	valid := `{"purchase_id":"` + purchaseID.String() + `","user_code":1,"game_code":10,"processed_at":"2024-03-01T12:00:00Z","success":true}`

	t.Run("applies purchase", func(t *testing.T) {
		f := newHandlerFixture()

		require.NoError(t, f.handler.PurchaseRouter().Handle(context.Background(), message(model.EventActionPurchaseCompleted, valid)))
		require.Len(t, f.purchases.events, 1)
		assert.Equal(t, purchaseID, f.purchases.events[0].PurchaseID)
		assert.True(t, f.purchases.events[0].Success)
	})

	t.Run("missing game stays pending", func(t *testing.T) {
		f := newHandlerFixture()
		f.purchases.err = model.ErrGameNotProjected

		err := f.handler.HandlePurchaseCompleted(context.Background(), message(model.EventActionPurchaseCompleted, valid))
		assert.ErrorIs(t, err, model.ErrGameNotProjected)
		assert.NotErrorIs(t, err, stream.ErrMalformed)
	})

	t.Run("missing purchase id is malformed", func(t *testing.T) {
		f := newHandlerFixture()

		err := f.handler.HandlePurchaseCompleted(context.Background(),
			message(model.EventActionPurchaseCompleted, `{"user_code":1,"game_code":10,"processed_at":"2024-03-01T12:00:00Z","success":true}`))
		assert.ErrorIs(t, err, stream.ErrMalformed)
		assert.Empty(t, f.purchases.events)
	})
}

func TestHandlePurchaseHistory(t *testing.T) {
	f := newHandlerFixture()
	purchaseID := uuid.New()
	payload := `{"purchase_id":"` + purchaseID.String() + `","user_code":1,"game_code":10,"game_title":"Quest","category":3,"processed_at":"2024-03-01T12:00:00Z"}`

	require.NoError(t, f.handler.PurchaseHistoryRouter().Handle(context.Background(), message(model.EventActionPurchaseHistory, payload)))
	require.Len(t, f.indexer.purchases, 1)
	assert.Equal(t, purchaseID, f.indexer.purchases[0].PurchaseID)
	assert.Equal(t, model.GameCategoryRPG, f.indexer.purchases[0].Category)

	err := f.handler.PurchaseHistoryRouter().Handle(context.Background(), stream.Message{ID: "2-0", Fields: map[string]string{stream.FieldPayload: payload}})
	assert.ErrorIs(t, err, stream.ErrMalformed)
}

func TestHandleUserCreated(t *testing.T) {
	f := newHandlerFixture()

	err := f.handler.UserRouter().Handle(context.Background(),
		message(model.EventActionUserCreated, `{"user_id":"`+uuid.NewString()+`","code":1,"name":"A","email":"a@example.com","action":"user_created"}`))
	require.NoError(t, err)

	err = f.handler.UserRouter().Handle(context.Background(), message(model.EventActionUserCreated, `not json`))
	assert.ErrorIs(t, err, stream.ErrMalformed)
}
