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
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresRepository implements Repository against Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a Postgres-backed admin repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ResolveProfile(ctx context.Context, username string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM profiles WHERE username = $1`,
		username,
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrProfileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve profile: %w", err)
	}
	return userID, nil
}

func (r *PostgresRepository) DeleteDemoRuns(ctx context.Context, userID, workflowID string) (int64, error) {
	var (
		result sql.Result
		err    error
	)
	if workflowID == "" {
		result, err = r.db.ExecContext(ctx,
			`DELETE FROM demo_runs WHERE user_id = $1`,
			userID,
		)
	} else {
		result, err = r.db.ExecContext(ctx,
			`DELETE FROM demo_runs WHERE user_id = $1 AND workflow_id = $2`,
			userID, workflowID,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete demo runs: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return deleted, nil
}

func (r *PostgresRepository) UpsertTokenLimits(ctx context.Context, limits TokenLimits) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO token_limits (workflow_id, max_tokens_per_workflow, max_tokens_per_node, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workflow_id) DO UPDATE SET
			max_tokens_per_workflow = EXCLUDED.max_tokens_per_workflow,
			max_tokens_per_node = EXCLUDED.max_tokens_per_node,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`,
		limits.WorkflowID,
		limits.MaxTokensPerWorkflow,
		limits.MaxTokensPerNode,
		limits.UpdatedBy,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert token limits: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetTokenLimits(ctx context.Context, workflowID string) (*TokenLimits, error) {
	// Workflow-specific row wins; the global row ('' workflow_id) is the
	// fallback. A single ordered query covers both.
	rows, err := r.db.QueryContext(ctx, `
		SELECT workflow_id, max_tokens_per_workflow, max_tokens_per_node, updated_by, updated_at
		FROM token_limits
		WHERE workflow_id = $1 OR workflow_id = ''
		ORDER BY workflow_id DESC
		LIMIT 1`,
		workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query token limits: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read token limits: %w", err)
		}
		return nil, ErrTokenLimitsNotFound
	}

	var limits TokenLimits
	var updatedBy sql.NullString
	if err := rows.Scan(
		&limits.WorkflowID,
		&limits.MaxTokensPerWorkflow,
		&limits.MaxTokensPerNode,
		&updatedBy,
		&limits.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan token limits: %w", err)
	}
	limits.UpdatedBy = updatedBy.String
	return &limits, nil
}

func (r *PostgresRepository) GetSetting(ctx context.Context, key string) (*Setting, error) {
	var setting Setting
	err := r.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM app_settings WHERE key = $1`,
		key,
	).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return &setting, nil
}

func (r *PostgresRepository) UpsertSetting(ctx context.Context, setting Setting) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`,
		setting.Key,
		setting.Value,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM app_settings ORDER BY key`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var setting Setting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return settings, nil
}

func (r *PostgresRepository) SetModeration(ctx context.Context, record ModerationRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_moderation (user_id, banned, reason, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			banned = EXCLUDED.banned,
			reason = EXCLUDED.reason,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`,
		record.UserID,
		record.Banned,
		record.Reason,
		record.UpdatedBy,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set moderation state: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetModeration(ctx context.Context, userID string) (*ModerationRecord, error) {
	var record ModerationRecord
	var reason, updatedBy sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, banned, reason, updated_by, updated_at FROM user_moderation WHERE user_id = $1`,
		userID,
	).Scan(&record.UserID, &record.Banned, &reason, &updatedBy, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Never moderated: report the default state rather than an error.
		return &ModerationRecord{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get moderation state: %w", err)
	}
	record.Reason = reason.String
	record.UpdatedBy = updatedBy.String
	return &record, nil
}
