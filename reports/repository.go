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

import "context"

// Repository defines persistence for listing reports.
type Repository interface {
	// InsertReport stores a new report. Returns ErrAlreadyReported when the
	// same reporter already has a report against the same target.
	InsertReport(ctx context.Context, report Report) error

	// CountActiveReporters counts distinct reporters with open or triaged
	// reports against a target.
	CountActiveReporters(ctx context.Context, targetType TargetType, targetID string) (int, error)

	// DemoteListing flips a currently public listing to unlisted. Returns
	// true when a row changed, false when the listing was not public (or
	// does not exist).
	DemoteListing(ctx context.Context, targetType TargetType, targetID string) (bool, error)
}
