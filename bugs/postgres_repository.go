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
	"database/sql"
	"fmt"
)

// PostgresRepository implements Repository against Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a Postgres-backed bugs repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertBugReport(ctx context.Context, report BugReport) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bug_reports (id, reporter_id, email, category, feature_area, device, browser, severity, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		report.ID,
		nullString(report.ReporterID),
		nullString(report.Email),
		report.Category,
		report.FeatureArea,
		report.Device,
		report.Browser,
		report.Severity,
		report.Title,
		report.Description,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bug report: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertAttachment(ctx context.Context, attachment Attachment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bug_report_attachments (id, bug_report_id, object_key, file_name, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		attachment.ID,
		attachment.BugReportID,
		attachment.ObjectKey,
		attachment.FileName,
		attachment.ContentType,
		attachment.SizeBytes,
		attachment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attachment: %w", err)
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
