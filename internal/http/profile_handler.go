package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
)

type ProfileService interface {
	Get(ctx context.Context, sessionID string) (*domain.UserProfile, error)
	Register(ctx context.Context, sessionID string, p domain.UserProfile) (*domain.UserProfile, error)
	Save(ctx context.Context, sessionID string, p domain.UserProfile) (*domain.UserProfile, error)
	Logout(ctx context.Context, sessionID string) error
}

type ProfileHandler struct {
	profiles ProfileService
	timeout  time.Duration
	log      *slog.Logger
}

func NewProfileHandler(profiles ProfileService, timeout time.Duration, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		timeout:  timeout,
		log:      log,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.profiles.Get(ctx, getSessionID(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusCreated, h.profiles.Register)
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusOK, h.profiles.Save)
}

func (h *ProfileHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.profiles.Logout(ctx, getSessionID(r.Context())); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"redirect": "/register"})
}

func (h *ProfileHandler) write(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	op func(context.Context, string, domain.UserProfile) (*domain.UserProfile, error),
) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := op(ctx, getSessionID(r.Context()), req)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, status, p)
}
