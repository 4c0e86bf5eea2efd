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

package runs

import (
	"context"

	"edgaze/platform/shared/logger"
)

// AdminChecker answers whether a user holds an operator role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Service implements the entitlement policy and the run lifecycle writer on
// top of a Repository.
type Service struct {
	repo   Repository
	admins AdminChecker
	log    *logger.Logger
}

// NewService creates a run service.
func NewService(repo Repository, admins AdminChecker, log *logger.Logger) *Service {
	if log == nil {
		log = logger.New("runs")
	}
	return &Service{repo: repo, admins: admins, log: log}
}

// Resolve classifies a raw identifier once at the request boundary.
func (s *Service) Resolve(ctx context.Context, userID, rawID string) (Target, error) {
	return s.repo.ResolveTarget(ctx, userID, rawID)
}

// Remaining computes the user's entitlement against a target. The count is
// read fresh on every call; a concurrent run may make the result stale,
// which is accepted because this informs UI display and does not itself
// gate execution.
func (s *Service) Remaining(ctx context.Context, userID string, target Target, isBuilderTest bool) (*Entitlement, error) {
	used, err := s.repo.CountUsage(ctx, userID, target)
	if err != nil {
		return nil, err
	}

	isAdmin := false
	if s.admins != nil {
		isAdmin, err = s.admins.IsAdmin(ctx, userID)
		if err != nil {
			// An admin-lookup failure downgrades to the normal policy
			// rather than blocking the read.
			s.log.Warn(userID, "Admin role lookup failed", map[string]interface{}{
				"error": err.Error(),
			})
			isAdmin = false
		}
	}

	if isAdmin {
		return &Entitlement{
			Used:      used,
			Limit:     UnlimitedRuns,
			Remaining: UnlimitedRuns,
			IsAdmin:   true,
		}, nil
	}

	limit := FreeRunLimit
	if isBuilderTest {
		limit = BuilderTestRunLimit
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	return &Entitlement{Used: used, Limit: limit, Remaining: remaining}, nil
}

// StartRun records a new run in pending status for the resolved target.
func (s *Service) StartRun(ctx context.Context, userID string, target Target, metadata map[string]interface{}) (*Run, error) {
	if target.ID == "" {
		return nil, ErrTargetRequired
	}

	run, err := s.repo.CreateRun(ctx, CreateRunParams{
		UserID:     userID,
		WorkflowID: target.WorkflowID(),
		DraftID:    target.DraftID(),
		Metadata:   metadata,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(userID, "Run started", map[string]interface{}{
		"run_id":      run.ID,
		"target_kind": target.Kind,
		"target_id":   target.ID,
	})

	return run, nil
}

// FinishRun transitions a run to a terminal state, stamping its completion
// time. Transitions out of a terminal state are rejected, and the write is
// scoped to the caller's own runs; another user's run reads as not found.
func (s *Service) FinishRun(ctx context.Context, userID, runID string, status Status, errorDetails string) error {
	if !status.Terminal() {
		return ErrInvalidStatus
	}

	err := s.repo.UpdateRun(ctx, runID, RunUpdate{
		UserID:       userID,
		Status:       status,
		ErrorDetails: errorDetails,
	})
	if err != nil {
		return err
	}

	s.log.Info(userID, "Run finished", map[string]interface{}{
		"run_id": runID,
		"status": status,
	})

	return nil
}
