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

package bugs

import "errors"

var (
	// ErrTooManyAttachments is returned when more than MaxAttachments files
	// are submitted
	ErrTooManyAttachments = errors.New("at most 3 attachments are allowed")

	// ErrAttachmentTooLarge is returned when an attachment exceeds 20 MB
	ErrAttachmentTooLarge = errors.New("attachments must be 20MB or smaller")

	// ErrUnsupportedType is returned for declared MIME types outside the
	// accepted image and video sets
	ErrUnsupportedType = errors.New("attachment type must be an accepted image or video format")

	// ErrContentMismatch is returned when an image's magic bytes do not
	// match its declared MIME type
	ErrContentMismatch = errors.New("attachment content does not match its declared type")
)
