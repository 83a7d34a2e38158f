// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/matchpulse/matchpulse/internal/demo"
	"github.com/matchpulse/matchpulse/internal/logging"
	"github.com/matchpulse/matchpulse/internal/match"
)

// APIResponse is the envelope returned by every endpoint.
type APIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *APIError   `json:"error,omitempty"`
	Meta   Meta        `json:"meta"`
}

// APIError carries a machine-readable code and human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta is response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// Error codes.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeEmptyStore       = "EMPTY_STORE"
	ErrCodeInfeasible       = "INFEASIBLE_PAIR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// respondJSON writes the envelope with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	writeEnvelope(w, status, &APIResponse{
		Status: "ok",
		Data:   data,
		Meta:   Meta{Timestamp: time.Now().UTC()},
	})
}

// respondError writes an error envelope and logs the underlying cause.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Err(err).Msg("api error")
	}
	writeEnvelope(w, status, &APIResponse{
		Status: "error",
		Error:  &APIError{Code: code, Message: message},
		Meta:   Meta{Timestamp: time.Now().UTC()},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, resp *APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("marshaling response envelope")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("writing response")
	}
}

// respondEngineError maps engine sentinel errors onto HTTP statuses.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, match.ErrEmptyStore):
		respondError(w, http.StatusBadRequest, ErrCodeEmptyStore, "No users/opportunities loaded.", nil)
	case errors.Is(err, match.ErrUserNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "User not found.", nil)
	case errors.Is(err, match.ErrEventNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Event not found.", nil)
	case errors.Is(err, match.ErrInfeasiblePair):
		respondError(w, http.StatusBadRequest, ErrCodeInfeasible, "No feasible match (availability mismatch).", nil)
	case errors.Is(err, demo.ErrNotSetup):
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Demo not set up. Call /demo/setup first.", nil)
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error.", err)
	}
}

// decodeBody decodes a JSON request body into dst. An empty body is
// allowed and leaves dst at its zero value.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
