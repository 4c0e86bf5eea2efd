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

import "context"

// Repository defines persistence for operator actions.
type Repository interface {
	// ResolveProfile maps a username/handle to a user ID. Returns
	// ErrProfileNotFound when no profile matches.
	ResolveProfile(ctx context.Context, username string) (string, error)

	// DeleteDemoRuns removes a user's demo-run rows, optionally scoped to
	// one workflow (empty workflowID deletes across all workflows).
	// Returns the number of rows removed.
	DeleteDemoRuns(ctx context.Context, userID, workflowID string) (int64, error)

	// UpsertTokenLimits writes a workflow-specific or global (empty
	// WorkflowID) token-limits row.
	UpsertTokenLimits(ctx context.Context, limits TokenLimits) error

	// GetTokenLimits reads the workflow-specific row, falling back to the
	// global row. Returns ErrTokenLimitsNotFound when neither exists.
	GetTokenLimits(ctx context.Context, workflowID string) (*TokenLimits, error)

	// Settings
	GetSetting(ctx context.Context, key string) (*Setting, error)
	UpsertSetting(ctx context.Context, setting Setting) error
	ListSettings(ctx context.Context) ([]Setting, error)

	// Moderation
	SetModeration(ctx context.Context, record ModerationRecord) error
	GetModeration(ctx context.Context, userID string) (*ModerationRecord, error)
}
