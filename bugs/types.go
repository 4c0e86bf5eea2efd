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

import "time"

// Attachment constraints.
const (
	MaxAttachments    = 3
	MaxAttachmentSize = 20 << 20 // 20 MB
)

// Allowed form enum values. Anything else is rejected with InvalidInput.
var (
	Categories   = []string{"ui", "functionality", "performance", "data", "billing", "other"}
	FeatureAreas = []string{"marketplace", "builder", "runs", "profile", "search", "checkout", "other"}
	Devices      = []string{"desktop", "tablet", "mobile"}
	Browsers     = []string{"chrome", "firefox", "safari", "edge", "other"}
	Severities   = []string{"low", "medium", "high", "critical"}
)

// Accepted attachment MIME types. Images are additionally verified against
// their magic bytes; videos are accepted on the declared type alone.
var (
	imageMIMETypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
	videoMIMETypes = map[string]bool{
		"video/mp4":       true,
		"video/webm":      true,
		"video/quicktime": true,
	}
)

// BugReport is one submitted bug report row.
type BugReport struct {
	ID          string    `json:"id"`
	ReporterID  string    `json:"reporterId,omitempty"` // empty for anonymous reports
	Email       string    `json:"email,omitempty"`
	Category    string    `json:"category"`
	FeatureArea string    `json:"featureArea"`
	Device      string    `json:"device"`
	Browser     string    `json:"browser"`
	Severity    string    `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Attachment is one stored bug-report attachment.
type Attachment struct {
	ID          string    `json:"id"`
	BugReportID string    `json:"bugReportId"`
	ObjectKey   string    `json:"objectKey"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SubmitResult reports the outcome of a submission. Warning is set when the
// report was stored but one or more attachments could not be uploaded.
type SubmitResult struct {
	BugReportID string `json:"bugReportId"`
	Attachments int    `json:"attachments"`
	Warning     string `json:"warning,omitempty"`
}

func oneOf(value string, allowed []string) bool {
	for _, v := range allowed {
		if value == v {
			return true
		}
	}
	return false
}
