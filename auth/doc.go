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

/*
Package auth resolves a verified user identity from inbound HTTP requests
and answers the admin-role question for privileged endpoints.

# Identity Resolution

Every authenticated endpoint extracts a bearer token from the Authorization
header and validates it as an HS256 JWT signed with the platform secret:

	resolver := auth.NewResolver([]byte(secret))
	userID, err := resolver.Authenticate(r)

A missing header fails with ErrMissingToken ("Missing Authorization token").
An invalid or expired token fails with the validation error from the token
library, or "Invalid token" when no more specific message is available.

Endpoints reachable from both a browser session and a bearer-token client
use the session-aware variant, which prefers the bearer path and falls back
to the edgaze_session cookie:

	userID, err := resolver.AuthenticateWithSession(r)

# Admin Role

AdminChecker answers whether a user holds an operator role, backed by the
admin_roles table:

	checker := auth.NewAdminChecker(db)
	isAdmin, err := checker.IsAdmin(ctx, userID)
*/
package auth
