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

import "errors"

var (
	// ErrAlreadyReported is returned when a reporter files a second report
	// against the same target
	ErrAlreadyReported = errors.New("already reported")

	// ErrInvalidTargetType is returned for unknown target types
	ErrInvalidTargetType = errors.New("target_type must be prompt, workflow, or user")

	// ErrReasonRequired is returned when the reason field is empty
	ErrReasonRequired = errors.New("reason is required")
)
