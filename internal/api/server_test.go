package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnst/cloudgames-library/internal/model"
)

type fakeUserService struct {
	users     map[int]*model.User
	createErr error
}

func (f *fakeUserService) CreateUser(_ context.Context, params *model.CreateUserParams) (*model.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if f.createErr != nil {
		return nil, f.createErr
	}

	user := &model.User{ID: uuid.New(), Code: params.Code, Name: params.Name, Email: params.Email}
	f.users[user.Code] = user

	return user, nil
}

func (f *fakeUserService) GetUser(_ context.Context, code int) (*model.User, error) {
	user, ok := f.users[code]
	if !ok {
		return nil, model.ErrUserNotFound
	}

	return user, nil
}

type fakeLibraryService struct {
	items map[int][]*model.LibraryItem
	err   error
}

func (f *fakeLibraryService) GetUserLibrary(_ context.Context, userCode int) ([]*model.LibraryItem, error) {
	if f.err != nil {
		return nil, f.err
	}

	items, ok := f.items[userCode]
	if !ok {
		return nil, model.ErrUserNotFound
	}

	return items, nil
}

type fakeRecommender struct {
	suggestions []model.GameSuggestion
	gotMax      int
}

func (f *fakeRecommender) Suggest(_ context.Context, _, maxSuggestions int) []model.GameSuggestion {
	f.gotMax = maxSuggestions
	if len(f.suggestions) > 0 && maxSuggestions > 0 && len(f.suggestions) > maxSuggestions {
		return f.suggestions[:maxSuggestions]
	}

	return f.suggestions
}

type serverFixture struct {
	users       *fakeUserService
	library     *fakeLibraryService
	recommender *fakeRecommender
	handler     http.Handler
}

func newServerFixture() *serverFixture {
	f := &serverFixture{
		users:       &fakeUserService{users: map[int]*model.User{}},
		library:     &fakeLibraryService{items: map[int][]*model.LibraryItem{}},
		recommender: &fakeRecommender{},
	}
	f.handler = NewAPIServer(f.users, f.library, f.recommender, 20).Routes()

	return f
}

func (f *serverFixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	return rec
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		createErr  error
		wantStatus int
	}{
		{name: "created", method: http.MethodPost, body: `{"code":1,"name":"A","email":"a@example.com"}`, wantStatus: http.StatusCreated},
		{name: "wrong method", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
		{name: "invalid json", method: http.MethodPost, body: `{`, wantStatus: http.StatusBadRequest},
		{name: "validation error", method: http.MethodPost, body: `{"code":1,"name":"A"}`, wantStatus: http.StatusBadRequest},
		{
			name:       "duplicate",
			method:     http.MethodPost,
			body:       `{"code":1,"name":"A","email":"a@example.com"}`,
			createErr:  errors.Join(model.ErrDuplicate, errors.New("unique violation")),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "storage failure",
			method:     http.MethodPost,
			body:       `{"code":1,"name":"A","email":"a@example.com"}`,
			createErr:  errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServerFixture()
			f.users.createErr = tt.createErr

			rec := f.do(tt.method, "/users", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetUser(t *testing.T) {
	f := newServerFixture()
	f.users.users[7] = &model.User{ID: uuid.New(), Code: 7, Name: "A", Email: "a@example.com"}

	rec := f.do(http.MethodGet, "/users/get?code=7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, applicationJSON, rec.Header().Get(contentTypeJSON))

	var user model.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, 7, user.Code)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/users/get?code=8", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/users/get", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/users/get?code=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/users/get?code=-1", "").Code)
}

func TestGetUserLibrary(t *testing.T) {
	f := newServerFixture()
	f.library.items[1] = []*model.LibraryItem{
		{ID: uuid.New(), PurchaseID: uuid.New(), Game: model.Game{Code: 10, Title: "Quest", Category: model.GameCategoryRPG, IsActive: true}},
	}
	f.library.items[2] = nil

	rec := f.do(http.MethodGet, "/users/library?code=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []model.LibraryItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, 10, items[0].Game.Code)

	rec = f.do(http.MethodGet, "/users/library?code=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/users/library?code=3", "").Code)

	f.library.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodGet, "/users/library?code=1", "").Code)
}

func TestGetSuggestions(t *testing.T) {
	f := newServerFixture()

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/users/suggestions?code=1", "").Code)
	assert.Equal(t, 0, f.recommender.gotMax)

	f.recommender.suggestions = []model.GameSuggestion{
		{GameID: uuid.New(), GameCode: 3, Title: "C", Category: model.GameCategoryRPG},
		{GameID: uuid.New(), GameCode: 4, Title: "D", Category: model.GameCategoryRPG},
	}

	rec := f.do(http.MethodGet, "/users/suggestions?code=1&max=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.recommender.gotMax)

	var suggestions []model.GameSuggestion
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, 3, suggestions[0].GameCode)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/users/suggestions?code=1&max=x", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/users/suggestions?code=1&max=20", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodPost, "/users/suggestions?code=1", "").Code)
}

func TestHealthCheck(t *testing.T) {
	f := newServerFixture()

	rec := f.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetSuggestions_RejectsMaxAboveLimit(t *testing.T) {
	f := newServerFixture()
	f.recommender.suggestions = []model.GameSuggestion{{GameID: uuid.New(), GameCode: 3}}
	f.recommender.gotMax = -1

	for _, maxStr := range []string{"21", "1125899906842624", "99999999999999999999"} {
		rec := f.do(http.MethodGet, "/users/suggestions?code=1&max="+maxStr, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, maxStr)
	}

	assert.Equal(t, -1, f.recommender.gotMax)
}

func TestCodeParam_RejectsCodesBeyondStoreRange(t *testing.T) {
	f := newServerFixture()
	f.users.users[5] = &model.User{ID: uuid.New(), Code: 5}
	f.library.items[5] = []*model.LibraryItem{}

	// 4294967301 would wrap to 5 in the INTEGER column.
	for _, target := range []string{
		"/users/get?code=4294967301",
		"/users/library?code=4294967301",
		"/users/suggestions?code=4294967301",
		"/users/get?code=2147483648",
	} {
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, target, "").Code, target)
	}

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/users/get?code=5", "").Code)
}

func TestCreateUser_RejectsCodeBeyondStoreRange(t *testing.T) {
	f := newServerFixture()

	rec := f.do(http.MethodPost, "/users", `{"code":4294967301,"name":"A","email":"a@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.users.users)
}
