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

// Package main is the entry point for the Edgaze platform API service.
//
// The API serves run-usage accounting and entitlement gating for the
// marketplace, the operator surface (demo-run replenishment, token limits,
// settings, moderation), listing reports, and bug report intake.
//
// Usage:
//
//	./api
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	DATABASE_URL - PostgreSQL connection string (or DATABASE_HOST et al.)
//	JWT_SECRET - HS256 signing secret for bearer tokens
//	REDIS_URL - rate limiter backend (optional)
//	MINIO_ENDPOINT - attachment object storage (optional)
package main

import (
	"errors"
	"log"
	"net/http"

	"edgaze/platform/api"
)

func main() {
	if err := api.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
