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

package admin

import (
	"context"
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

// RoleChecker reports whether a user holds an operator role.
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Handler provides the HTTP surface for operator actions
type Handler struct {
	identity Identity
	admins   RoleChecker
	service  *Service
	log      *logger.Logger
}

// NewHandler creates a new admin handler
func NewHandler(identity Identity, admins RoleChecker, service *Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.New("admin-api")
	}
	return &Handler{identity: identity, admins: admins, service: service, log: log}
}

// RegisterRoutes registers all operator routes with a gorilla/mux router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/admin/replenish-demo", h.ReplenishDemo).Methods("POST")
	r.HandleFunc("/api/admin/token-limits", h.GetTokenLimits).Methods("GET")
	r.HandleFunc("/api/admin/token-limits", h.SetTokenLimits).Methods("POST")
	r.HandleFunc("/api/admin/settings", h.ListSettings).Methods("GET")
	r.HandleFunc("/api/admin/settings", h.SetSetting).Methods("POST")
	r.HandleFunc("/api/admin/moderation", h.GetModeration).Methods("GET")
	r.HandleFunc("/api/admin/moderation", h.Moderate).Methods("POST")
}

// requireAdmin authenticates the caller and verifies their operator role.
// Writes the error response itself; returns "" when the caller is rejected.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) string {
	userID, err := h.identity.Authenticate(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusUnauthorized)
		return ""
	}

	isAdmin, err := h.admins.IsAdmin(r.Context(), userID)
	if err != nil {
		h.log.ErrorWithCode(userID, "Admin role check failed", http.StatusInternalServerError, err, nil)
		h.writeError(w, "failed to verify admin role", http.StatusInternalServerError)
		return ""
	}
	if !isAdmin {
		h.writeError(w, "admin role required", http.StatusForbidden)
		return ""
	}
	return userID
}

// ReplenishDemoRequest is the request body for resetting a user's demo runs
type ReplenishDemoRequest struct {
	Username   string `json:"username"`
	WorkflowID string `json:"workflowId,omitempty"`
}

// ReplenishDemo handles POST /api/admin/replenish-demo
func (h *Handler) ReplenishDemo(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == "" {
		return
	}

	var req ReplenishDemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		h.writeError(w, "username is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.ReplenishDemoRuns(r.Context(), req.Username, req.WorkflowID)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"message":    "Demo runs replenished",
			"userId":     result.UserID,
			"workflowId": result.WorkflowID,
			"deleted":    result.Deleted,
		})
	case errors.Is(err, ErrProfileNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetTokenLimits handles GET /api/admin/token-limits?workflowId=...
func (h *Handler) GetTokenLimits(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == "" {
		return
	}

	limits, err := h.service.TokenLimits(r.Context(), r.URL.Query().Get("workflowId"))
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, limits)
	case errors.Is(err, ErrTokenLimitsNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetTokenLimitsRequest is the request body for updating token caps
type SetTokenLimitsRequest struct {
	WorkflowID           string `json:"workflowId,omitempty"`
	MaxTokensPerWorkflow int64  `json:"maxTokensPerWorkflow"`
	MaxTokensPerNode     int64  `json:"maxTokensPerNode"`
}

// SetTokenLimits handles POST /api/admin/token-limits
func (h *Handler) SetTokenLimits(w http.ResponseWriter, r *http.Request) {
	userID := h.requireAdmin(w, r)
	if userID == "" {
		return
	}

	var req SetTokenLimitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.service.SetTokenLimits(r.Context(), TokenLimits{
		WorkflowID:           req.WorkflowID,
		MaxTokensPerWorkflow: req.MaxTokensPerWorkflow,
		MaxTokensPerNode:     req.MaxTokensPerNode,
		UpdatedBy:            userID,
	})
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, ErrNegativeLimit):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListSettings handles GET /api/admin/settings. With ?key=... it returns one
// setting, otherwise the full list.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == "" {
		return
	}

	if key := r.URL.Query().Get("key"); key != "" {
		setting, err := h.service.Setting(r.Context(), key)
		switch {
		case err == nil:
			h.writeJSON(w, http.StatusOK, setting)
		case errors.Is(err, ErrSettingNotFound):
			h.writeError(w, err.Error(), http.StatusNotFound)
		default:
			h.writeError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	settings, err := h.service.Settings(r.Context())
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"settings": settings})
}

// SetSettingRequest is the request body for writing one application setting
type SetSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SetSetting handles POST /api/admin/settings
func (h *Handler) SetSetting(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == "" {
		return
	}

	var req SetSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		h.writeError(w, "key is required", http.StatusBadRequest)
		return
	}

	if err := h.service.SetSetting(r.Context(), Setting{Key: req.Key, Value: req.Value}); err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetModeration handles GET /api/admin/moderation?userId=...
func (h *Handler) GetModeration(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == "" {
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, "userId is required", http.StatusBadRequest)
		return
	}

	record, err := h.service.ModerationState(r.Context(), userID)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

// ModerateRequest is the request body for banning or unbanning a user
type ModerateRequest struct {
	UserID string `json:"userId"`
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// Moderate handles POST /api/admin/moderation
func (h *Handler) Moderate(w http.ResponseWriter, r *http.Request) {
	actor := h.requireAdmin(w, r)
	if actor == "" {
		return
	}

	var req ModerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		h.writeError(w, "userId is required", http.StatusBadRequest)
		return
	}

	record, err := h.service.Moderate(r.Context(), req.UserID, req.Action, req.Reason, actor)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, record)
	case errors.Is(err, ErrInvalidModerationAction):
		h.writeError(w, err.Error(), http.StatusBadRequest)
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
