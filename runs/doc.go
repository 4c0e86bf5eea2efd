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
Package runs implements run-usage accounting and entitlement gating for
workflow executions.

# Data Model

A Run records one execution attempt of a workflow or an unsaved draft. It
belongs to exactly one of the two, never both. Lifecycle:

	pending/running --(completed)--> completed [terminal]
	pending/running --(failed)-----> failed    [terminal]

There are no other transitions. A run in a terminal state cannot be
transitioned again; UpdateRun rejects such writes with ErrRunAlreadyTerminal.

# Usage Count

Usage is never stored; it is derived on read as the number of a user's runs
for a target whose status is terminal (completed or failed) AND whose
completed_at timestamp is non-null. Runs stuck in pending or running never
count, regardless of elapsed time, and neither does a terminal run missing
its completion timestamp.

The authoritative count comes from the count_completed_runs stored
procedure. A parallel direct query reproducing the same definition exists
for diagnostics only and never overrides the procedure's result.

# Entitlement

Remaining reports how many free runs a user has left against a target:
builder-test runs allow 10 per target, normal runs allow 5. The two limits
are independent constants. Operators are never blocked: an admin's
entitlement reports the UnlimitedRuns sentinel for limit and remaining
while still surfacing the true used count. The result is advisory display
for the UI; enforcement happens in the execution path.

# Diagnostics

The diagnostics aggregator cross-checks the procedure count against the
direct query, inspects recent raw rows, optionally performs a real
insert-then-mark-failed write probe, and derives a rule-based summary of
likely root causes for operators. It never repairs data.
*/
package runs
