package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/auth"
	"quiz-trainer/internal/domain"
)

// AuthHandler exposes registration, login and per-user statistics over HTTP.
type AuthHandler struct {
	profiles *app.ProfileService
	tokens   *auth.Tokens
	logger   *slog.Logger
}

func NewAuthHandler(profiles *app.ProfileService, tokens *auth.Tokens, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{profiles: profiles, tokens: tokens, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Age      int    `json:"age,omitempty"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type statsResponse struct {
	TotalAnswered int                 `json:"totalAnswered"`
	TotalCorrect  int                 `json:"totalCorrect"`
	Percentage    float64             `json:"percentage"`
	History       []domain.ScoreEntry `json:"history"`
}

// Routes registers the handler on r.
func (h *AuthHandler) Routes(r *mux.Router) {
	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/users/{username}/stats", h.Statistics).Methods(http.MethodGet)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile, err := h.profiles.Register(r.Context(), req.Username, req.Email, req.Password, req.Age)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respondWithToken(w, http.StatusCreated, profile)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile, err := h.profiles.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respondWithToken(w, http.StatusOK, profile)
}

// Statistics is only served to the owner of the token.
func (h *AuthHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	caller, err := h.tokens.Verify(bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if caller != username {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	stats, err := h.profiles.Statistics(r.Context(), username)
	if err != nil {
		h.fail(w, err)
		return
	}
	history := stats.History
	if history == nil {
		history = []domain.ScoreEntry{}
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalAnswered: stats.TotalAnswered,
		TotalCorrect:  stats.TotalCorrect,
		Percentage:    stats.Percentage(),
		History:       history,
	})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, profile *domain.Profile) {
	token, err := h.tokens.Issue(profile.Username)
	if err != nil {
		h.logger.Error("failed to issue token", "user", profile.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	writeJSON(w, status, authResponse{
		Token: token,
		User:  userResponse{Username: profile.Username, Email: profile.Email, Age: profile.Age},
	})
}

func (h *AuthHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrProfileExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidAge),
		errors.Is(err, domain.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("profile request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// bearerToken reads the Authorization header, falling back to the token
// query parameter for websocket clients that cannot set headers.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}
