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
Package bugs accepts bug reports from anyone, signed in or not.

Reports arrive as multipart forms with up to three image or video
attachments. Image content is verified against the declared MIME type by
sniffing the magic bytes before anything touches object storage; a mislabeled
file is rejected outright. Attachment uploads that fail after the report row
is written degrade to a success response with a warning, because losing a
screenshot is better than losing the report.
*/
package bugs
