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

import (
	"fmt"
	"net/http"
)

// FieldError reports an enum form field with a value outside its allowed
// set.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// ValidateForm checks the enum form fields, returning a *FieldError for the
// first invalid one.
func ValidateForm(category, featureArea, device, browser, severity string) error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"category", category, Categories},
		{"feature_area", featureArea, FeatureAreas},
		{"device", device, Devices},
		{"browser", browser, Browsers},
		{"severity", severity, Severities},
	}
	for _, c := range checks {
		if !oneOf(c.value, c.allowed) {
			return &FieldError{Field: c.name, Value: c.value}
		}
	}
	return nil
}

// ValidateAttachment checks an attachment's declared type and, for images,
// verifies the declared type against the content's magic bytes. This runs
// before any storage write.
func ValidateAttachment(declaredType string, size int64, head []byte) error {
	if size > MaxAttachmentSize {
		return ErrAttachmentTooLarge
	}

	switch {
	case imageMIMETypes[declaredType]:
		// Sniffing covers every accepted image format, so a mismatch means
		// the bytes are not what the client claims.
		sniffed := http.DetectContentType(head)
		if sniffed != declaredType {
			return ErrContentMismatch
		}
		return nil
	case videoMIMETypes[declaredType]:
		return nil
	default:
		return ErrUnsupportedType
	}
}
