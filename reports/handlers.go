// Copyright 2025 Edgaze
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reports

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"edgaze/platform/shared/logger"
)

// Identity resolves the authenticated user from a request.
type Identity interface {
	Authenticate(r *http.Request) (string, error)
}

// Handler provides the HTTP surface for listing reports
type Handler struct {
	identity Identity
	service  *Service
	log      *logger.Logger
}

// NewHandler creates a new reports handler
func NewHandler(identity Identity, service *Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.New("reports-api")
	}
	return &Handler{identity: identity, service: service, log: log}
}

// RegisterRoutes registers all report routes with a gorilla/mux router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/reports/submit", h.Submit).Methods("POST")
}

// SubmitRequest is the request body for filing a report
type SubmitRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Reason     string `json:"reason"`
	Details    string `json:"details,omitempty"`
}

// Submit handles POST /api/reports/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	reporterID, err := h.identity.Authenticate(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TargetID == "" {
		h.writeError(w, "target_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Submit(r.Context(), reporterID, TargetType(req.TargetType), req.TargetID, req.Reason, req.Details)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"reportId": result.ReportID,
		})
	case errors.Is(err, ErrAlreadyReported):
		h.writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidTargetType), errors.Is(err, ErrReasonRequired):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.ErrorWithCode(reporterID, "Report submission failed", http.StatusInternalServerError, err, map[string]interface{}{
			"target_type": req.TargetType,
			"target_id":   req.TargetID,
		})
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
