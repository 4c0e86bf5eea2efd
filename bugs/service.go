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
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"edgaze/platform/shared/logger"
)

// Upload is one attachment as received from the client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}

// SubmitParams carries the validated-on-entry form fields.
type SubmitParams struct {
	ReporterID  string // empty for anonymous submissions
	Email       string
	Category    string
	FeatureArea string
	Device      string
	Browser     string
	Severity    string
	Title       string
	Description string
}

// Service implements bug report submission.
type Service struct {
	repo  Repository
	store ObjectStore
	log   *logger.Logger
}

// NewService creates a bugs service.
func NewService(repo Repository, store ObjectStore, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, log: log}
}

// Submit validates and stores a bug report with its attachments. All
// attachment validation happens before the report row or any object is
// written; upload failures after the row exists degrade to a warning.
func (s *Service) Submit(ctx context.Context, params SubmitParams, uploads []Upload) (*SubmitResult, error) {
	if err := ValidateForm(params.Category, params.FeatureArea, params.Device, params.Browser, params.Severity); err != nil {
		return nil, err
	}
	if len(uploads) > MaxAttachments {
		return nil, ErrTooManyAttachments
	}

	for i := range uploads {
		if err := s.validateUpload(&uploads[i]); err != nil {
			return nil, err
		}
	}

	report := BugReport{
		ID:          uuid.NewString(),
		ReporterID:  params.ReporterID,
		Email:       params.Email,
		Category:    params.Category,
		FeatureArea: params.FeatureArea,
		Device:      params.Device,
		Browser:     params.Browser,
		Severity:    params.Severity,
		Title:       params.Title,
		Description: params.Description,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.InsertBugReport(ctx, report); err != nil {
		return nil, err
	}

	result := &SubmitResult{BugReportID: report.ID}
	var failed int
	for _, upload := range uploads {
		if err := s.storeAttachment(ctx, report.ID, upload); err != nil {
			failed++
			s.log.Warn(params.ReporterID, "Attachment upload failed", map[string]interface{}{
				"bug_report_id": report.ID,
				"file_name":     upload.FileName,
				"error":         err.Error(),
			})
			continue
		}
		result.Attachments++
	}
	if failed > 0 {
		// The report row stays; a lost screenshot is recoverable, a lost
		// report is not.
		result.Warning = fmt.Sprintf("%d attachment(s) could not be uploaded", failed)
	}

	return result, nil
}

// validateUpload checks size and type, sniffing image content before any
// storage write. Leaves the reader positioned at the start.
func (s *Service) validateUpload(upload *Upload) error {
	head := make([]byte, 512)
	n, err := upload.Content.Read(head)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read attachment: %w", err)
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind attachment: %w", err)
	}
	return ValidateAttachment(upload.ContentType, upload.Size, head[:n])
}

func (s *Service) storeAttachment(ctx context.Context, reportID string, upload Upload) error {
	attachment := Attachment{
		ID:          uuid.NewString(),
		BugReportID: reportID,
		ObjectKey:   fmt.Sprintf("bug-reports/%s/%s", reportID, upload.FileName),
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		SizeBytes:   upload.Size,
		CreatedAt:   time.Now(),
	}
	if err := s.store.Upload(ctx, attachment.ObjectKey, upload.ContentType, upload.Size, upload.Content); err != nil {
		return err
	}
	return s.repo.InsertAttachment(ctx, attachment)
}
