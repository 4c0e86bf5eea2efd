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
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresRepository implements Repository against Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a Postgres-backed reports repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertReport(ctx context.Context, report Report) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (id, reporter_id, target_type, target_id, reason, details, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		report.ID,
		report.ReporterID,
		string(report.TargetType),
		report.TargetID,
		report.Reason,
		report.Details,
		report.Status,
		report.CreatedAt,
	)
	if err != nil {
		// Unique constraint on (reporter_id, target_type, target_id).
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyReported
		}
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountActiveReporters(ctx context.Context, targetType TargetType, targetID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT reporter_id)
		FROM reports
		WHERE target_type = $1 AND target_id = $2 AND status IN ('open', 'triaged')`,
		string(targetType), targetID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reporters: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) DemoteListing(ctx context.Context, targetType TargetType, targetID string) (bool, error) {
	var table string
	switch targetType {
	case TargetPrompt:
		table = "prompts"
	case TargetWorkflow:
		table = "workflows"
	default:
		return false, nil
	}

	// Conditional on current visibility so concurrent demotions are
	// idempotent and operator overrides are never undone.
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET visibility = 'unlisted' WHERE id = $1 AND visibility = 'public'`, table),
		targetID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to demote listing: %w", err)
	}
	changed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return changed > 0, nil
}
