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
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrRunNotFound is returned when a run ID does not exist
	ErrRunNotFound = errors.New("run not found")

	// ErrRunAlreadyTerminal is returned when updating a run that has
	// already reached a terminal state
	ErrRunAlreadyTerminal = errors.New("run already in a terminal state")

	// ErrInvalidStatus is returned when a run update carries a status
	// that is not a terminal state
	ErrInvalidStatus = errors.New("status must be completed or failed")

	// ErrTargetRequired is returned when a run names neither a workflow
	// nor a draft, or names both
	ErrTargetRequired = errors.New("exactly one of workflowId and draftId is required")
)

// UpstreamError carries the structured error shape returned by the managed
// database: message plus the optional code, details, and hint Postgres
// attaches. The storage layer returns it explicitly instead of leaving
// callers to inspect driver types.
type UpstreamError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return e.Message
}

// NewUpstreamError converts a database error into an UpstreamError,
// extracting code/details/hint when the driver provides them.
func NewUpstreamError(err error) *UpstreamError {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &UpstreamError{
			Message: pqErr.Message,
			Code:    string(pqErr.Code),
			Details: pqErr.Detail,
			Hint:    pqErr.Hint,
		}
	}

	return &UpstreamError{Message: err.Error()}
}
