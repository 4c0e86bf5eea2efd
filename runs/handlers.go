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

package runs

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

// Handler provides the HTTP surface for run accounting
type Handler struct {
	identity    Identity
	service     *Service
	diagnostics *Diagnostics
	log         *logger.Logger
}

// NewHandler creates a new run handler
func NewHandler(identity Identity, service *Service, diagnostics *Diagnostics, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.New("runs-api")
	}
	return &Handler{identity: identity, service: service, diagnostics: diagnostics, log: log}
}

// RegisterRoutes registers all run accounting routes with a gorilla/mux router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/flow/run/remaining", h.Remaining).Methods("GET")
	r.HandleFunc("/api/flow/run/diagnostic", h.Diagnostic).Methods("GET")
	r.HandleFunc("/api/flow/run/tracking-diagnostic", h.TrackingDiagnostic).Methods("GET")
	r.HandleFunc("/api/flow/run/start", h.StartRun).Methods("POST")
	r.HandleFunc("/api/flow/run/finish", h.FinishRun).Methods("POST")
}

// Remaining handles GET /api/flow/run/remaining
func (h *Handler) Remaining(w http.ResponseWriter, r *http.Request) {
	userID, err := h.identity.Authenticate(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	workflowID := r.URL.Query().Get("workflowId")
	if workflowID == "" {
		h.writeError(w, "workflowId is required", http.StatusBadRequest)
		return
	}
	isBuilderTest := boolParam(r, "isBuilderTest")

	target, err := h.service.Resolve(r.Context(), userID, workflowID)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entitlement, err := h.service.Remaining(r.Context(), userID, target, isBuilderTest)
	if err != nil {
		h.log.ErrorWithCode(userID, "Remaining-runs read failed", http.StatusInternalServerError, err, map[string]interface{}{
			"workflow_id": workflowID,
		})
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, entitlement)
}

// Diagnostic handles GET /api/flow/run/diagnostic. Same report as the
// tracking diagnostic, minus the write probe.
func (h *Handler) Diagnostic(w http.ResponseWriter, r *http.Request) {
	h.serveDiagnostic(w, r, false)
}

// TrackingDiagnostic handles GET /api/flow/run/tracking-diagnostic with an
// optional empirical write test (testInsert=1).
func (h *Handler) TrackingDiagnostic(w http.ResponseWriter, r *http.Request) {
	h.serveDiagnostic(w, r, boolParam(r, "testInsert"))
}

func (h *Handler) serveDiagnostic(w http.ResponseWriter, r *http.Request, testInsert bool) {
	userID, err := h.identity.Authenticate(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	workflowID := r.URL.Query().Get("workflowId")
	if workflowID == "" {
		h.writeError(w, "workflowId is required", http.StatusBadRequest)
		return
	}

	report := h.diagnostics.Run(r.Context(), userID, workflowID, testInsert)
	h.writeJSON(w, http.StatusOK, report)
}

// StartRunRequest is the request body for recording a run start
type StartRunRequest struct {
	WorkflowID string                 `json:"workflowId,omitempty"`
	DraftID    string                 `json:"draftId,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// StartRun handles POST /api/flow/run/start
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	userID, err := h.identity.Authenticate(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if (req.WorkflowID == "") == (req.DraftID == "") {
		h.writeError(w, ErrTargetRequired.Error(), http.StatusBadRequest)
		return
	}

	target := Target{Kind: TargetWorkflow, ID: req.WorkflowID}
	if req.DraftID != "" {
		target = Target{Kind: TargetDraft, ID: req.DraftID}
	}

	run, err := h.service.StartRun(r.Context(), userID, target, req.Metadata)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, run)
}

// FinishRunRequest is the request body for recording a run's terminal state
type FinishRunRequest struct {
	RunID        string `json:"runId"`
	Status       Status `json:"status"`
	ErrorDetails string `json:"errorDetails,omitempty"`
}

// FinishRun handles POST /api/flow/run/finish
func (h *Handler) FinishRun(w http.ResponseWriter, r *http.Request) {
	userID, err := h.identity.Authenticate(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req FinishRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RunID == "" {
		h.writeError(w, "runId is required", http.StatusBadRequest)
		return
	}

	err = h.service.FinishRun(r.Context(), userID, req.RunID, req.Status, req.ErrorDetails)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, ErrInvalidStatus):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrRunNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrRunAlreadyTerminal):
		h.writeError(w, err.Error(), http.StatusConflict)
	default:
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

// boolParam reads a query flag, accepting "1" and "true".
func boolParam(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return v == "1" || v == "true"
}
