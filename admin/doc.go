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
Package admin provides the operator-facing surface of the Edgaze platform:
demo-run replenishment, token limits, application settings, and user
moderation.

All endpoints require a bearer credential belonging to a user with an
operator role; other callers receive 401 or 403.

Replenishment is a destructive reset: it deletes a user's demo-run rows
(optionally scoped to one workflow) so their demo quota reads as zero usage
again. There is no confirmation step, no soft delete, and no audit trail
beyond the store's own logging.

Token limits gate a separate resource dimension from free-run quotas: the
maximum tokens a workflow (or a single node) may consume per execution.
They are configurable per workflow, with a global row as fallback.
*/
package admin
