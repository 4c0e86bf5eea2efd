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

import "time"

// TokenLimits caps token consumption per workflow execution. A row with an
// empty WorkflowID is the global fallback.
type TokenLimits struct {
	WorkflowID           string    `json:"workflowId,omitempty"`
	MaxTokensPerWorkflow int64     `json:"maxTokensPerWorkflow"`
	MaxTokensPerNode     int64     `json:"maxTokensPerNode"`
	UpdatedBy            string    `json:"updatedBy,omitempty"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// Setting is one app_settings key/value flag, e.g. "applications_paused"
// or "maintenance_mode".
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ModerationRecord is a user's ban state.
type ModerationRecord struct {
	UserID    string    `json:"userId"`
	Banned    bool      `json:"banned"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReplenishResult reports what a demo-run reset affected.
type ReplenishResult struct {
	UserID     string `json:"userId"`
	WorkflowID string `json:"workflowId,omitempty"`
	Deleted    int64  `json:"deleted"`
}
