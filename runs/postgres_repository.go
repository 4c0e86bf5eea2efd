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
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ResolveTarget classifies a raw identifier. Drafts are checked first so a
// draft run is never conflated with the same identifier reused later as a
// published workflow.
func (r *PostgresRepository) ResolveTarget(ctx context.Context, userID, rawID string) (Target, error) {
	var isDraft bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM workflow_drafts WHERE id = $1 AND user_id = $2)`,
		rawID, userID,
	).Scan(&isDraft)
	if err != nil {
		return Target{}, NewUpstreamError(err)
	}
	if isDraft {
		return Target{Kind: TargetDraft, ID: rawID}, nil
	}

	var isWorkflow bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM workflows WHERE id = $1)`,
		rawID,
	).Scan(&isWorkflow)
	if err != nil {
		return Target{}, NewUpstreamError(err)
	}
	if isWorkflow {
		return Target{Kind: TargetWorkflow, ID: rawID}, nil
	}

	return Target{Kind: TargetRaw, ID: rawID}, nil
}

// CountUsage invokes the count_completed_runs stored procedure with the
// resolved (user, workflow, draft) triple.
func (r *PostgresRepository) CountUsage(ctx context.Context, userID string, target Target) (int, error) {
	query := `SELECT count_completed_runs($1, $2, $3)`

	var count int
	err := r.db.QueryRowContext(ctx, query,
		userID, nullString(target.WorkflowID()), nullString(target.DraftID()),
	).Scan(&count)
	if err != nil {
		return 0, NewUpstreamError(err)
	}

	return count, nil
}

// CountUsageDirect recomputes the usage count with a direct query: terminal
// status AND non-null completion timestamp, scoped to (user, target). A
// terminal run missing completed_at is a data anomaly and never counts.
func (r *PostgresRepository) CountUsageDirect(ctx context.Context, userID string, target Target) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM workflow_runs
		WHERE user_id = $1
		  AND workflow_id = $2
		  AND status IN ('completed', 'failed')
		  AND completed_at IS NOT NULL
	`
	if target.Kind == TargetDraft {
		query = `
			SELECT COUNT(*)
			FROM workflow_runs
			WHERE user_id = $1
			  AND draft_id = $2
			  AND status IN ('completed', 'failed')
			  AND completed_at IS NOT NULL
		`
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, target.ID).Scan(&count); err != nil {
		return 0, NewUpstreamError(err)
	}

	return count, nil
}

// CreateRun inserts a new run in pending status
func (r *PostgresRepository) CreateRun(ctx context.Context, params CreateRunParams) (*Run, error) {
	metadata, err := json.Marshal(params.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	run := &Run{
		ID:         uuid.NewString(),
		UserID:     params.UserID,
		WorkflowID: params.WorkflowID,
		DraftID:    params.DraftID,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
		Metadata:   params.Metadata,
	}

	query := `
		INSERT INTO workflow_runs (id, user_id, workflow_id, draft_id, status, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		run.ID, run.UserID, nullString(run.WorkflowID), nullString(run.DraftID),
		run.Status, run.CreatedAt, metadata,
	)
	if err != nil {
		return nil, NewUpstreamError(err)
	}

	return run, nil
}

// UpdateRun transitions a run to a terminal state. The status guard in the
// WHERE clause makes the terminal-state check atomic with the write, and
// the user_id guard keeps callers from finishing runs they do not own.
func (r *PostgresRepository) UpdateRun(ctx context.Context, runID string, update RunUpdate) error {
	query := `
		UPDATE workflow_runs
		SET status = $3, completed_at = $4, error_details = $5
		WHERE id = $1 AND user_id = $2 AND status IN ('pending', 'running')
	`

	result, err := r.db.ExecContext(ctx, query,
		runID, update.UserID, update.Status, time.Now().UTC(), nullString(update.ErrorDetails),
	)
	if err != nil {
		return NewUpstreamError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// Nothing matched: either the caller owns no such run or it already
	// reached a terminal state. The existence check carries the same
	// owner predicate, so another user's run reads as not found.
	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM workflow_runs WHERE id = $1 AND user_id = $2)`,
		runID, update.UserID,
	).Scan(&exists)
	if err != nil {
		return NewUpstreamError(err)
	}
	if exists {
		return ErrRunAlreadyTerminal
	}
	return ErrRunNotFound
}

// RecentRuns returns the user's most recent runs for a workflow, newest first
func (r *PostgresRepository) RecentRuns(ctx context.Context, userID, workflowID string, limit int) ([]Run, error) {
	query := `
		SELECT id, user_id, workflow_id, draft_id, status, created_at, completed_at, error_details, metadata
		FROM workflow_runs
		WHERE user_id = $1 AND workflow_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, workflowID, limit)
	if err != nil {
		return nil, NewUpstreamError(err)
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		var run Run
		var workflowID, draftID, errorDetails sql.NullString
		var completedAt sql.NullTime
		var metadata []byte

		err := rows.Scan(
			&run.ID, &run.UserID, &workflowID, &draftID, &run.Status,
			&run.CreatedAt, &completedAt, &errorDetails, &metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.WorkflowID = workflowID.String
		run.DraftID = draftID.String
		run.ErrorDetails = errorDetails.String
		if completedAt.Valid {
			t := completedAt.Time
			run.CompletedAt = &t
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &run.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal run metadata: %w", err)
			}
		}

		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, NewUpstreamError(err)
	}

	return result, nil
}

// Ping verifies database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// nullString converts an empty string to NULL for database insertion
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
