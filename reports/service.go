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

package reports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"edgaze/platform/shared/logger"
)

// Service implements report submission and auto-demotion.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a reports service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Submit files a report and, when enough distinct reporters have active
// reports against a listing, demotes it from public to unlisted. A failure
// after the insert (counting or demoting) does not fail the submission; the
// report itself is already durable.
func (s *Service) Submit(ctx context.Context, reporterID string, targetType TargetType, targetID, reason, details string) (*SubmitResult, error) {
	if !targetType.Valid() {
		return nil, ErrInvalidTargetType
	}
	if reason == "" {
		return nil, ErrReasonRequired
	}

	report := Report{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		Details:    details,
		Status:     StatusOpen,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.InsertReport(ctx, report); err != nil {
		return nil, err
	}

	result := &SubmitResult{ReportID: report.ID}
	if !targetType.Listing() {
		return result, nil
	}

	count, err := s.repo.CountActiveReporters(ctx, targetType, targetID)
	if err != nil {
		s.log.Error(reporterID, "Reporter count failed after insert", map[string]interface{}{
			"target_type": string(targetType),
			"target_id":   targetID,
			"error":       err.Error(),
		})
		return result, nil
	}

	if count >= demotionThreshold {
		demoted, err := s.repo.DemoteListing(ctx, targetType, targetID)
		if err != nil {
			s.log.Error(reporterID, "Listing demotion failed", map[string]interface{}{
				"target_type": string(targetType),
				"target_id":   targetID,
				"error":       err.Error(),
			})
			return result, nil
		}
		result.Demoted = demoted
		if demoted {
			s.log.Warn("", "Listing demoted to unlisted", map[string]interface{}{
				"target_type": string(targetType),
				"target_id":   targetID,
				"reporters":   count,
			})
		}
	}

	return result, nil
}
