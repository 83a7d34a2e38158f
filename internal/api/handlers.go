// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/matchpulse/matchpulse/internal/demo"
	"github.com/matchpulse/matchpulse/internal/match"
	"github.com/matchpulse/matchpulse/internal/store"
)

// Handler carries the application dependencies for all endpoints.
type Handler struct {
	store    *store.Store
	engine   *match.Engine
	demo     *demo.Runner
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandler wires a handler to the store, engine, and demo runner.
func NewHandler(st *store.Store, engine *match.Engine, runner *demo.Runner, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    st,
		engine:   engine,
		demo:     runner,
		validate: validator.New(),
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Seed handles POST /seed: replace all state with the posted dataset.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	body, err := readAll(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Unreadable request body.", err)
		return
	}

	fixture, err := store.ParseFixture(body)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, err.Error(), nil)
		return
	}

	users, opps := h.store.Seed(fixture.Users, fixture.Opportunities, fixture.Interactions)
	respondJSON(w, http.StatusOK, map[string]int{
		"users_loaded":  users,
		"events_loaded": opps,
	})
}

// Reset handles POST /reset: drop all state.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.store.Reset()
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Solve handles POST /solve: run the full matching pipeline.
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	var req match.SolveRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Malformed solve request.", err)
		return
	}

	result, err := h.engine.Solve(r.Context(), req)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Rebalance handles POST /rebalance: refresh pulses and re-solve.
func (h *Handler) Rebalance(w http.ResponseWriter, r *http.Request) {
	var req match.SolveRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Malformed rebalance request.", err)
		return
	}

	result, err := h.engine.Rebalance(r.Context(), req)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// feedbackRequest is the POST /feedback payload.
type feedbackRequest struct {
	UserID string          `json:"user_id" validate:"required"`
	OppID  string          `json:"opp_id" validate:"required"`
	Event  match.EventType `json:"event" validate:"required"`
}

// Feedback handles POST /feedback: record one interaction.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Malformed feedback request.", err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, err.Error(), nil)
		return
	}
	if !req.Event.Valid() {
		respondError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, "Unknown event type.", nil)
		return
	}

	if err := h.store.RecordFeedback(req.UserID, req.OppID, req.Event); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// CreateUser handles POST /users: insert or replace a user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var u match.User
	if err := decodeBody(r, &u); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Malformed user.", err)
		return
	}
	// The id is assigned server-side when absent, so validate after.
	created := h.store.UpsertUser(u)
	if err := h.validate.Struct(&created); err != nil {
		respondError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, err.Error(), nil)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// CreateEvent handles POST /events: insert a new opportunity.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var o match.Opportunity
	if err := decodeBody(r, &o); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Malformed event.", err)
		return
	}
	created := h.store.CreateOpportunity(o)
	if err := h.validate.Struct(&created); err != nil {
		respondError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, err.Error(), nil)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// GetEvent handles GET /events/{id}. ?include_history=true adds the
// sampled pulse history.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	includeHistory := r.URL.Query().Get("include_history") == "true"

	detail, err := h.store.GetEvent(urlParam(r, "id"), includeHistory)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// PatchEvent handles PATCH /events/{id}: partial update.
func (h *Handler) PatchEvent(w http.ResponseWriter, r *http.Request) {
	var patch store.OpportunityPatch
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Malformed patch.", err)
		return
	}

	updated, err := h.store.UpdateOpportunity(urlParam(r, "id"), patch)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	if err := h.validate.Struct(&updated); err != nil {
		respondError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, err.Error(), nil)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// rsvpRequest is the RSVP payload.
type rsvpRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// rsvpResponse is the RSVP outcome. FULL is a structured outcome, not
// an HTTP error.
type rsvpResponse struct {
	Status    store.RSVPStatus `json:"status"`
	EventID   string           `json:"event_id"`
	UserID    string           `json:"user_id"`
	RSVPCount int              `json:"rsvp_count"`
	SpotsLeft int              `json:"spots_left"`
}

// RSVP handles POST /events/{id}/rsvp.
func (h *Handler) RSVP(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Malformed RSVP request.", err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, err.Error(), nil)
		return
	}

	eventID := urlParam(r, "id")
	out, err := h.store.RSVP(req.UserID, eventID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rsvpResponse{
		Status:    out.Status,
		EventID:   eventID,
		UserID:    req.UserID,
		RSVPCount: out.RSVPCount,
		SpotsLeft: out.SpotsLeft,
	})
}

// CancelRSVP handles DELETE /events/{id}/rsvp.
func (h *Handler) CancelRSVP(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Malformed RSVP request.", err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, err.Error(), nil)
		return
	}

	eventID := urlParam(r, "id")
	out, err := h.store.CancelRSVP(req.UserID, eventID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rsvpResponse{
		Status:    out.Status,
		EventID:   eventID,
		UserID:    req.UserID,
		RSVPCount: out.RSVPCount,
		SpotsLeft: out.SpotsLeft,
	})
}

// Explain handles GET /events/{id}/explain?user_id=...
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "user_id query parameter is required.", nil)
		return
	}

	expl, err := h.engine.Explain(r.Context(), userID, urlParam(r, "id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expl)
}

// Feed handles GET /feed?user_id=...&limit=...
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "user_id query parameter is required.", nil)
		return
	}
	limit := queryInt(r, "limit", 0)

	items, err := h.engine.Feed(r.Context(), userID, limit)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"items":   items,
	})
}

// Trending handles GET /trending?limit=...
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	items := h.engine.Trending(r.Context(), queryInt(r, "limit", 10))
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// MarketMetrics handles GET /metrics: marketplace health aggregates.
func (h *Handler) MarketMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.MarketplaceMetrics(r.Context()))
}

// State handles GET /state: a full snapshot dump for debugging and the
// demo frontend.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users":           snap.Users,
		"events":          snap.Opportunities,
		"interactions":    len(snap.Interactions),
		"last_assignment": snap.LastAssignment,
		"pulses":          snap.Pulses,
		"net_demand":      snap.NetDemand,
		"shown_window":    snap.ShownWindow,
		"rsvps":           snap.RSVPs,
	})
}

// DemoSetup handles POST /demo/setup.
func (h *Handler) DemoSetup(w http.ResponseWriter, r *http.Request) {
	var req demo.SetupRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Malformed demo setup request.", err)
		return
	}

	result, err := h.demo.Setup(r.Context(), req)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// DemoStep handles POST /demo/step.
func (h *Handler) DemoStep(w http.ResponseWriter, r *http.Request) {
	result, err := h.demo.Step(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// DemoSimulate handles POST /demo/simulate.
func (h *Handler) DemoSimulate(w http.ResponseWriter, r *http.Request) {
	var req demo.SimulateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Malformed simulate request.", err)
		return
	}

	result, err := h.demo.Simulate(r.Context(), req)
	if err != nil {
		if errors.Is(err, demo.ErrUnknownScenario) {
			respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
			return
		}
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readAll drains the request body.
func readAll(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	return io.ReadAll(r.Body)
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
