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
Package api assembles the Edgaze platform HTTP server.

All dependencies are constructed in Run and injected explicitly; feature
handlers register their own routes on a shared gorilla/mux router. The
server carries CORS, Prometheus instrumentation, a health endpoint backed
by a database ping, and graceful shutdown.
*/
package api
