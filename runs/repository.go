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

import "context"

// CreateRunParams are the inputs for recording a new run. Exactly one of
// WorkflowID and DraftID must be set.
type CreateRunParams struct {
	UserID     string
	WorkflowID string
	DraftID    string
	Metadata   map[string]interface{}
}

// RunUpdate transitions a run to a terminal state. UserID is the caller on
// whose behalf the transition happens; the write only matches runs that
// user owns.
type RunUpdate struct {
	UserID       string
	Status       Status
	ErrorDetails string
}

// Repository defines persistence for runs and usage counts.
type Repository interface {
	// ResolveTarget classifies a raw identifier as a user-scoped draft,
	// a published workflow, or a raw identifier, in that priority order.
	ResolveTarget(ctx context.Context, userID, rawID string) (Target, error)

	// CountUsage returns the authoritative usage count via the
	// count_completed_runs stored procedure. Failures are hard errors;
	// callers in the gating path must not fall back silently.
	CountUsage(ctx context.Context, userID string, target Target) (int, error)

	// CountUsageDirect recomputes the same count with a direct filtered
	// query. Diagnostics only; never overrides CountUsage.
	CountUsageDirect(ctx context.Context, userID string, target Target) (int, error)

	// CreateRun inserts a run in pending status and returns it with its
	// generated identifier.
	CreateRun(ctx context.Context, params CreateRunParams) (*Run, error)

	// UpdateRun transitions a run owned by update.UserID to a terminal
	// state. Returns ErrRunNotFound for unknown IDs and for runs owned
	// by someone else (the two are indistinguishable to the caller), and
	// ErrRunAlreadyTerminal when the run has already finished.
	UpdateRun(ctx context.Context, runID string, update RunUpdate) error

	// RecentRuns returns the user's most recent runs for a workflow,
	// newest first.
	RecentRuns(ctx context.Context, userID, workflowID string, limit int) ([]Run, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error
}
