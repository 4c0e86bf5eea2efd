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
Package reports handles user reports against marketplace listings.

A report targets a prompt, a workflow, or a user. Each reporter may file at
most one report per target; duplicates are rejected with a conflict. Once
three distinct reporters have open or triaged reports against a listing, the
listing is demoted from public to unlisted automatically. The demotion is a
conditional update keyed on the current visibility, so concurrent reports
cannot demote twice or resurrect a listing an operator already acted on.
*/
package reports
