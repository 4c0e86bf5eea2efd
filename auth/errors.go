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

package auth

import "errors"

var (
	// ErrMissingToken is returned when the Authorization header is absent
	ErrMissingToken = errors.New("Missing Authorization token")

	// ErrInvalidToken is returned when a credential fails validation and
	// the validator produced no more specific message
	ErrInvalidToken = errors.New("Invalid token")

	// ErrNotAdmin is returned when an authenticated user lacks the
	// operator role required by an admin endpoint
	ErrNotAdmin = errors.New("admin role required")
)
