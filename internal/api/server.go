// Package api provides the HTTP handlers for users, libraries and suggestions.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jnst/cloudgames-library/internal/model"
	"github.com/jnst/cloudgames-library/internal/service"
)

const (
	contentTypeJSON        = "Content-Type"
	applicationJSON        = "application/json"
	failedToEncodeResponse = "failed to encode response"
)

// APIServer handles HTTP requests for users and their games.
type APIServer struct {
	userService    service.UserService
	libraryService service.LibraryService
	recommender    service.RecommendationEngine
	maxSuggestions int
}

// NewAPIServer creates a new API server instance. maxSuggestions is the
// largest max a suggestions request may ask for.
func NewAPIServer(
	userService service.UserService,
	libraryService service.LibraryService,
	recommender service.RecommendationEngine,
	maxSuggestions int,
) *APIServer {
	return &APIServer{
		userService:    userService,
		libraryService: libraryService,
		recommender:    recommender,
		maxSuggestions: maxSuggestions,
	}
}

// Routes returns the handler serving every endpoint.
func (s *APIServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", s.CreateUser)
	mux.HandleFunc("/users/get", s.GetUser)
	mux.HandleFunc("/users/library", s.GetUserLibrary)
	mux.HandleFunc("/users/suggestions", s.GetSuggestions)
	mux.HandleFunc("/health", s.HealthCheck)

	return mux
}

// CreateUser handles POST /users endpoint for user creation.
func (s *APIServer) CreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params model.CreateUserParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := s.userService.CreateUser(r.Context(), &params)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCode), errors.Is(err, model.ErrInvalidName), errors.Is(err, model.ErrInvalidEmail):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, model.ErrDuplicate):
			http.Error(w, "User already exists", http.StatusConflict)
		default:
			slog.Error("failed to create user", slog.String("error", err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /users/get endpoint for user retrieval.
func (s *APIServer) GetUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code, ok := codeParam(w, r)
	if !ok {
		return
	}

	user, err := s.userService.GetUser(r.Context(), code)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GetUserLibrary handles GET /users/library endpoint listing owned games.
func (s *APIServer) GetUserLibrary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code, ok := codeParam(w, r)
	if !ok {
		return
	}

	items, err := s.libraryService.GetUserLibrary(r.Context(), code)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	if items == nil {
		items = []*model.LibraryItem{}
	}

	writeJSON(w, http.StatusOK, items)
}

// GetSuggestions handles GET /users/suggestions endpoint. An empty result
// is reported as 404.
func (s *APIServer) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code, ok := codeParam(w, r)
	if !ok {
		return
	}

	maxSuggestions := 0
	if maxStr := r.URL.Query().Get("max"); maxStr != "" {
		n, err := strconv.Atoi(maxStr)
		if err != nil || n < 0 || n > s.maxSuggestions {
			http.Error(w, "Invalid max parameter", http.StatusBadRequest)
			return
		}

		maxSuggestions = n
	}

	suggestions := s.recommender.Suggest(r.Context(), code, maxSuggestions)
	if len(suggestions) == 0 {
		http.Error(w, "No suggestions found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, suggestions)
}

// HealthCheck handles GET /health endpoint for service health check.
func (*APIServer) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func codeParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	codeStr := r.URL.Query().Get("code")
	if codeStr == "" {
		http.Error(w, "Code parameter is required", http.StatusBadRequest)
		return 0, false
	}

	code, err := strconv.Atoi(codeStr)
	if err != nil || !model.ValidCode(code) {
		http.Error(w, "Invalid code parameter", http.StatusBadRequest)
		return 0, false
	}

	return code, true
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrUserNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	slog.Error("request failed", slog.String("error", err.Error()))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(contentTypeJSON, applicationJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(failedToEncodeResponse, slog.String("error", err.Error()))
	}
}
