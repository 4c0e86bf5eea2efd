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

/*
Package logger provides structured JSON logging for Edgaze platform
components.

# Overview

The logger outputs single-line JSON to stdout, where the container runtime
captures it for the log aggregation pipeline.

Each log entry includes:
  - Timestamp (RFC3339Nano format)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (api, runs, admin, etc.)
  - User ID (for per-user attribution; empty entries omit it)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("api")

Log messages with user context:

	log.Info("user-123", "Processing request", map[string]interface{}{
	    "method": "POST",
	    "path":   "/api/reports/submit",
	})

Log errors with the HTTP status the handler responded with:

	log.ErrorWithCode("user-123", "Request failed", 500, err, map[string]interface{}{
	    "endpoint": "/api/flow/run/remaining",
	})

# Output Format

Log entries are output as single-line JSON:

	{"timestamp":"2025-01-15T10:30:00.123456789Z","level":"INFO",
	 "component":"api","user_id":"user-123",
	 "message":"Processing request","fields":{"method":"POST"}}

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
