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

package bugs

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"edgaze/platform/shared/logger"
)

// SessionIdentity resolves an optional user identity from a bearer token or
// session cookie. Failures are not fatal; bug reports may be anonymous.
type SessionIdentity interface {
	AuthenticateWithSession(r *http.Request) (string, error)
}

// Limiter gates submissions per client IP.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// maxFormMemory bounds in-memory multipart parsing; larger parts spill to
// temp files.
const maxFormMemory = 32 << 20

// Handler provides the HTTP surface for bug reports
type Handler struct {
	identity SessionIdentity
	limiter  Limiter
	service  *Service
	log      *logger.Logger
}

// NewHandler creates a new bugs handler
func NewHandler(identity SessionIdentity, limiter Limiter, service *Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.New("bugs-api")
	}
	return &Handler{identity: identity, limiter: limiter, service: service, log: log}
}

// RegisterRoutes registers all bug report routes with a gorilla/mux router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/bugs", h.Submit).Methods("POST")
}

// Submit handles POST /api/bugs
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow(r.Context(), clientIP(r)) {
		h.writeError(w, "too many bug reports, try again later", http.StatusTooManyRequests)
		return
	}

	// Identity is best-effort: a valid token or session cookie ties the
	// report to an account, anything else stays anonymous.
	var reporterID string
	if h.identity != nil {
		if userID, err := h.identity.AuthenticateWithSession(r); err == nil {
			reporterID = userID
		}
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		h.writeError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	params := SubmitParams{
		ReporterID:  reporterID,
		Email:       r.FormValue("email"),
		Category:    r.FormValue("category"),
		FeatureArea: r.FormValue("feature_area"),
		Device:      r.FormValue("device"),
		Browser:     r.FormValue("browser"),
		Severity:    r.FormValue("severity"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if params.Title == "" {
		h.writeError(w, "title is required", http.StatusBadRequest)
		return
	}

	var uploads []Upload
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["attachments"] {
			file, err := header.Open()
			if err != nil {
				h.writeError(w, "failed to read attachment", http.StatusBadRequest)
				return
			}
			defer file.Close()
			uploads = append(uploads, Upload{
				FileName:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Content:     file,
			})
		}
	}

	result, err := h.service.Submit(r.Context(), params, uploads)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"bugReportId": result.BugReportID,
			"attachments": result.Attachments,
			"warning":     result.Warning,
		})
	case errors.Is(err, ErrTooManyAttachments),
		errors.Is(err, ErrAttachmentTooLarge),
		errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrContentMismatch):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		var fieldErr *FieldError
		if errors.As(err, &fieldErr) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.ErrorWithCode(reporterID, "Bug report submission failed", http.StatusInternalServerError, err, nil)
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
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
