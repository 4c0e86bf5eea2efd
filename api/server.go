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

package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"edgaze/platform/shared/logger"
)

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}

// Server assembles the HTTP surface from explicitly injected dependencies.
// There is no package-level state; tests construct servers freely.
type Server struct {
	db             *sql.DB
	log            *logger.Logger
	metrics        *Metrics
	allowedOrigins []string
	features       []RouteRegistrar
}

// NewServer creates a server over the given feature handlers.
func NewServer(db *sql.DB, log *logger.Logger, allowedOrigins []string, features ...RouteRegistrar) *Server {
	if log == nil {
		log = logger.New("api")
	}
	return &Server{
		db:             db,
		log:            log,
		metrics:        NewMetrics(),
		allowedOrigins: allowedOrigins,
		features:       features,
	}
}

// Handler builds the full middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.Handle("/prometheus", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})).Methods("GET")

	for _, feature := range s.features {
		feature.RegisterRoutes(r)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(s.metrics.Middleware(r))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	dbHealthy := false
	if s.db != nil {
		dbHealthy = s.db.PingContext(r.Context()) == nil
	}

	status := "healthy"
	code := http.StatusOK
	if !dbHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"service":   "edgaze-api",
		"timestamp": time.Now().UTC(),
		"components": map[string]bool{
			"database": dbHealthy,
		},
	})
}
