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

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Run is one recorded execution attempt of a workflow or draft.
type Run struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"user_id"`
	WorkflowID   string                 `json:"workflow_id,omitempty"`
	DraftID      string                 `json:"draft_id,omitempty"`
	Status       Status                 `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	ErrorDetails string                 `json:"error_details,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// TargetKind distinguishes how a run identifier was resolved.
type TargetKind string

const (
	// TargetWorkflow names a persisted, published workflow.
	TargetWorkflow TargetKind = "workflow"

	// TargetDraft names an unsaved, user-scoped draft. Draft resolution
	// takes priority: a run tied to a draft is never conflated with the
	// same identifier later reused as a published workflow.
	TargetDraft TargetKind = "draft"

	// TargetRaw is an identifier that resolved to neither; usage is
	// computed against it as given.
	TargetRaw TargetKind = "raw"
)

// Target is the resolved identity of what a run executes against. It is
// resolved once at the request boundary and threaded through as a value,
// so downstream code never repeats existence checks.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// WorkflowID returns the identifier to use in workflow position, empty for
// draft targets. Raw identifiers count against the workflow column.
func (t Target) WorkflowID() string {
	if t.Kind == TargetDraft {
		return ""
	}
	return t.ID
}

// DraftID returns the identifier to use in draft position, empty unless the
// target resolved as a draft.
func (t Target) DraftID() string {
	if t.Kind == TargetDraft {
		return t.ID
	}
	return ""
}

// Free-run thresholds. The builder-test and normal limits are independent
// policies and may diverge; neither is related to the admin-configurable
// token limits, which gate a different resource dimension.
const (
	// BuilderTestRunLimit is the free-run allowance for runs triggered
	// from the editing environment.
	BuilderTestRunLimit = 10

	// FreeRunLimit is the free-run allowance for normal runs against a
	// published listing.
	FreeRunLimit = 5

	// UnlimitedRuns is the sentinel reported as limit/remaining for
	// operators. Admins are never blocked, but their true used count is
	// still surfaced for observability.
	UnlimitedRuns = 999999
)

// Entitlement is the result of a remaining-runs query.
type Entitlement struct {
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"freeRunsRemaining"`
	IsAdmin   bool `json:"isAdmin,omitempty"`
}
