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

package reports

import "time"

// TargetType identifies what kind of entity a report is against.
type TargetType string

const (
	TargetPrompt   TargetType = "prompt"
	TargetWorkflow TargetType = "workflow"
	TargetUser     TargetType = "user"
)

// Valid returns true for a known target type.
func (t TargetType) Valid() bool {
	switch t {
	case TargetPrompt, TargetWorkflow, TargetUser:
		return true
	}
	return false
}

// Listing returns true when the target is a marketplace listing that can be
// demoted. User reports never affect visibility.
func (t TargetType) Listing() bool {
	return t == TargetPrompt || t == TargetWorkflow
}

// Report is one user report against a target.
type Report struct {
	ID         string     `json:"id"`
	ReporterID string     `json:"reporterId"`
	TargetType TargetType `json:"targetType"`
	TargetID   string     `json:"targetId"`
	Reason     string     `json:"reason"`
	Details    string     `json:"details,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Report statuses. Only open and triaged reports count toward demotion.
const (
	StatusOpen     = "open"
	StatusTriaged  = "triaged"
	StatusResolved = "resolved"
)

// demotionThreshold is the number of distinct reporters with active reports
// that demotes a public listing to unlisted.
const demotionThreshold = 3

// SubmitResult reports the outcome of filing a report.
type SubmitResult struct {
	ReportID string `json:"reportId"`
	Demoted  bool   `json:"demoted"`
}
