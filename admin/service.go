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

package admin

import (
	"context"
	"fmt"

	"edgaze/platform/shared/logger"
)

// Service implements operator actions on top of a Repository.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates an admin service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ReplenishDemoRuns resolves a username to a user ID and deletes that user's
// demo-run rows, optionally scoped to one workflow. The deletion is
// unconditional and immediate.
func (s *Service) ReplenishDemoRuns(ctx context.Context, username, workflowID string) (*ReplenishResult, error) {
	userID, err := s.repo.ResolveProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteDemoRuns(ctx, userID, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to replenish demo runs: %w", err)
	}

	s.log.Info(userID, "Demo runs replenished", map[string]interface{}{
		"username":    username,
		"workflow_id": workflowID,
		"deleted":     deleted,
	})

	return &ReplenishResult{
		UserID:     userID,
		WorkflowID: workflowID,
		Deleted:    deleted,
	}, nil
}

// SetTokenLimits validates and stores token caps for a workflow (or globally
// when WorkflowID is empty).
func (s *Service) SetTokenLimits(ctx context.Context, limits TokenLimits) error {
	if limits.MaxTokensPerWorkflow < 0 || limits.MaxTokensPerNode < 0 {
		return ErrNegativeLimit
	}
	if err := s.repo.UpsertTokenLimits(ctx, limits); err != nil {
		return err
	}
	s.log.Info(limits.UpdatedBy, "Token limits updated", map[string]interface{}{
		"workflow_id":             limits.WorkflowID,
		"max_tokens_per_workflow": limits.MaxTokensPerWorkflow,
		"max_tokens_per_node":     limits.MaxTokensPerNode,
	})
	return nil
}

// TokenLimits returns the effective limits for a workflow, falling back to
// the global row.
func (s *Service) TokenLimits(ctx context.Context, workflowID string) (*TokenLimits, error) {
	return s.repo.GetTokenLimits(ctx, workflowID)
}

// Setting returns one application setting.
func (s *Service) Setting(ctx context.Context, key string) (*Setting, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting stores one application setting.
func (s *Service) SetSetting(ctx context.Context, setting Setting) error {
	return s.repo.UpsertSetting(ctx, setting)
}

// Settings returns all application settings.
func (s *Service) Settings(ctx context.Context) ([]Setting, error) {
	return s.repo.ListSettings(ctx)
}

// Moderate applies a ban or unban to a user.
func (s *Service) Moderate(ctx context.Context, userID, action, reason, actor string) (*ModerationRecord, error) {
	var banned bool
	switch action {
	case "ban":
		banned = true
	case "unban":
		banned = false
	default:
		return nil, ErrInvalidModerationAction
	}

	record := ModerationRecord{
		UserID:    userID,
		Banned:    banned,
		Reason:    reason,
		UpdatedBy: actor,
	}
	if err := s.repo.SetModeration(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info(userID, "Moderation state changed", map[string]interface{}{
		"action": action,
		"actor":  actor,
	})
	return &record, nil
}

// ModerationState reports a user's current ban state.
func (s *Service) ModerationState(ctx context.Context, userID string) (*ModerationRecord, error) {
	return s.repo.GetModeration(ctx, userID)
}
