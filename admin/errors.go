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

import "errors"

var (
	// ErrProfileNotFound is returned when a username resolves to no profile
	ErrProfileNotFound = errors.New("no profile found for that username")

	// ErrTokenLimitsNotFound is returned when neither a workflow-specific
	// nor a global token-limits row exists
	ErrTokenLimitsNotFound = errors.New("token limits not configured")

	// ErrNegativeLimit is returned when a token limit is negative
	ErrNegativeLimit = errors.New("token limits must be non-negative")

	// ErrSettingNotFound is returned when an app-settings key is absent
	ErrSettingNotFound = errors.New("setting not found")

	// ErrInvalidModerationAction is returned for actions other than ban/unban
	ErrInvalidModerationAction = errors.New("action must be ban or unban")
)
