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
	"fmt"
	"time"

	"edgaze/platform/shared/logger"
)

// recentRunLimit is how many raw rows a diagnostic report includes.
const recentRunLimit = 10

// CountCheck holds one code path's usage count, or the structured error it
// produced. Exactly one of the two is set.
type CountCheck struct {
	Count *int           `json:"count,omitempty"`
	Error *UpstreamError `json:"error,omitempty"`
}

// ProbeStep records the outcome of one step of the write probe.
type ProbeStep struct {
	OK    bool           `json:"ok"`
	Error *UpstreamError `json:"error,omitempty"`
}

// WriteProbe is the result of an insert-then-mark-failed cycle that
// empirically verifies write permissions.
type WriteProbe struct {
	RunID      string    `json:"run_id,omitempty"`
	Insert     ProbeStep `json:"insert"`
	MarkFailed ProbeStep `json:"mark_failed"`
}

// Report is a structured diagnostic snapshot for one (user, workflow) pair.
type Report struct {
	UserID             string     `json:"user_id"`
	WorkflowID         string     `json:"workflow_id"`
	DatabaseConfigured bool       `json:"database_configured"`
	DatabaseReachable  bool       `json:"database_reachable"`
	ProcedureCount     CountCheck `json:"procedure_count"`
	DirectCount        CountCheck `json:"direct_count"`
	RecentRuns         []Run      `json:"recent_runs"`
	WriteProbe         *WriteProbe `json:"write_probe,omitempty"`
	Summary            []string   `json:"summary"`
	GeneratedAt        time.Time  `json:"generated_at"`
}

// Diagnostics cross-checks the two usage-count code paths against recent raw
// rows to explain discrepancies to an operator. It only reports; it never
// repairs data.
type Diagnostics struct {
	repo         Repository
	dbConfigured bool
	log          *logger.Logger
}

// NewDiagnostics creates a diagnostics aggregator. dbConfigured reflects
// whether the privileged database credential was present at startup.
func NewDiagnostics(repo Repository, dbConfigured bool, log *logger.Logger) *Diagnostics {
	if log == nil {
		log = logger.New("runs-diagnostics")
	}
	return &Diagnostics{repo: repo, dbConfigured: dbConfigured, log: log}
}

// Run produces a diagnostic report. Failures along the way are captured in
// the report rather than returned; this is operator tooling and partial
// answers are more useful than none.
func (d *Diagnostics) Run(ctx context.Context, userID, workflowID string, testInsert bool) *Report {
	report := &Report{
		UserID:             userID,
		WorkflowID:         workflowID,
		DatabaseConfigured: d.dbConfigured,
		GeneratedAt:        time.Now().UTC(),
	}

	report.DatabaseReachable = d.repo.Ping(ctx) == nil

	target, err := d.repo.ResolveTarget(ctx, userID, workflowID)
	if err != nil {
		target = Target{Kind: TargetRaw, ID: workflowID}
		report.Summary = append(report.Summary,
			fmt.Sprintf("target resolution failed: %v", err))
	}

	if count, err := d.repo.CountUsage(ctx, userID, target); err != nil {
		report.ProcedureCount.Error = NewUpstreamError(err)
	} else {
		report.ProcedureCount.Count = &count
	}

	if count, err := d.repo.CountUsageDirect(ctx, userID, target); err != nil {
		report.DirectCount.Error = NewUpstreamError(err)
	} else {
		report.DirectCount.Count = &count
	}

	recent, err := d.repo.RecentRuns(ctx, userID, workflowID, recentRunLimit)
	if err != nil {
		report.Summary = append(report.Summary,
			fmt.Sprintf("failed to read recent runs: %v", err))
	}
	report.RecentRuns = recent

	if testInsert {
		report.WriteProbe = d.writeProbe(ctx, userID, target)
	}

	report.Summary = append(report.Summary, summarize(report)...)
	if len(report.Summary) == 0 {
		report.Summary = []string{"no anomalies detected"}
	}

	return report
}

// writeProbe performs a real insert-then-mark-failed cycle to verify write
// permissions. The probe run is marked failed immediately, which stamps its
// completed_at, so a successful probe consumes one run from the user's
// allowance. It is flagged in metadata so operators can identify it.
func (d *Diagnostics) writeProbe(ctx context.Context, userID string, target Target) *WriteProbe {
	probe := &WriteProbe{}

	run, err := d.repo.CreateRun(ctx, CreateRunParams{
		UserID:     userID,
		WorkflowID: target.WorkflowID(),
		DraftID:    target.DraftID(),
		Metadata:   map[string]interface{}{"diagnostic": true},
	})
	if err != nil {
		probe.Insert.Error = NewUpstreamError(err)
		return probe
	}
	probe.Insert.OK = true
	probe.RunID = run.ID

	err = d.repo.UpdateRun(ctx, run.ID, RunUpdate{
		UserID:       userID,
		Status:       StatusFailed,
		ErrorDetails: "diagnostic write probe",
	})
	if err != nil {
		probe.MarkFailed.Error = NewUpstreamError(err)
		return probe
	}
	probe.MarkFailed.OK = true

	return probe
}

// summarize derives a short rule-based list of likely root causes from the
// collected evidence.
func summarize(report *Report) []string {
	var lines []string

	if !report.DatabaseConfigured {
		lines = append(lines, "database credentials are not configured")
	}
	if !report.DatabaseReachable {
		lines = append(lines, "database is unreachable")
	}

	if report.ProcedureCount.Error != nil {
		lines = append(lines, fmt.Sprintf(
			"usage procedure failed (%s) — gated reads are failing", report.ProcedureCount.Error.Message))
	}
	if report.DirectCount.Error != nil {
		lines = append(lines, fmt.Sprintf(
			"direct count query failed (%s)", report.DirectCount.Error.Message))
	}

	if report.ProcedureCount.Count != nil && report.DirectCount.Count != nil &&
		*report.ProcedureCount.Count != *report.DirectCount.Count {
		lines = append(lines, fmt.Sprintf(
			"procedure and direct counts disagree (%d vs %d)",
			*report.ProcedureCount.Count, *report.DirectCount.Count))
	}

	stuck := 0
	for _, run := range report.RecentRuns {
		if !run.Status.Terminal() {
			stuck++
		}
	}
	if stuck > 0 {
		lines = append(lines, fmt.Sprintf(
			"%d runs stuck in running/pending — status updates are probably failing", stuck))
	}

	if len(report.RecentRuns) == 0 &&
		report.ProcedureCount.Count != nil && *report.ProcedureCount.Count == 0 {
		lines = append(lines, "no runs recorded at all — inserts are probably failing")
	}

	if probe := report.WriteProbe; probe != nil {
		if probe.Insert.Error != nil {
			lines = append(lines, fmt.Sprintf("write probe insert failed (%s)", probe.Insert.Error.Message))
		} else if probe.MarkFailed.Error != nil {
			lines = append(lines, fmt.Sprintf("write probe status update failed (%s)", probe.MarkFailed.Error.Message))
		}
	}

	return lines
}
