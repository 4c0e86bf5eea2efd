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
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRepository implements Repository for testing. It reproduces the
// usage-count definition over an in-memory run store.
type MockRepository struct {
	mu sync.RWMutex

	runs      map[string]*Run
	workflows map[string]bool
	drafts    map[string]bool // key: draftID + ":" + userID

	// Error injection
	resolveErr error
	countErr   error
	directErr  error
	createErr  error
	updateErr  error
	pingErr    error

	// Optional override for CountUsage (simulates procedure drift)
	countOverride *int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:      make(map[string]*Run),
		workflows: make(map[string]bool),
		drafts:    make(map[string]bool),
	}
}

func (m *MockRepository) ResolveTarget(ctx context.Context, userID, rawID string) (Target, error) {
	if m.resolveErr != nil {
		return Target{}, m.resolveErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.drafts[rawID+":"+userID] {
		return Target{Kind: TargetDraft, ID: rawID}, nil
	}
	if m.workflows[rawID] {
		return Target{Kind: TargetWorkflow, ID: rawID}, nil
	}
	return Target{Kind: TargetRaw, ID: rawID}, nil
}

func (m *MockRepository) CountUsage(ctx context.Context, userID string, target Target) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	if m.countOverride != nil {
		return *m.countOverride, nil
	}
	return m.countTerminal(userID, target), nil
}

func (m *MockRepository) CountUsageDirect(ctx context.Context, userID string, target Target) (int, error) {
	if m.directErr != nil {
		return 0, m.directErr
	}
	return m.countTerminal(userID, target), nil
}

// countTerminal is the usage-count definition: terminal status AND non-null
// completion timestamp, scoped to (user, target).
func (m *MockRepository) countTerminal(userID string, target Target) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, run := range m.runs {
		if run.UserID != userID {
			continue
		}
		if target.Kind == TargetDraft {
			if run.DraftID != target.ID {
				continue
			}
		} else if run.WorkflowID != target.ID {
			continue
		}
		if run.Status.Terminal() && run.CompletedAt != nil {
			count++
		}
	}
	return count
}

func (m *MockRepository) CreateRun(ctx context.Context, params CreateRunParams) (*Run, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	run := &Run{
		ID:         uuid.NewString(),
		UserID:     params.UserID,
		WorkflowID: params.WorkflowID,
		DraftID:    params.DraftID,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
		Metadata:   params.Metadata,
	}
	m.runs[run.ID] = run
	return run, nil
}

func (m *MockRepository) UpdateRun(ctx context.Context, runID string, update RunUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok || run.UserID != update.UserID {
		return ErrRunNotFound
	}
	if run.Status.Terminal() {
		return ErrRunAlreadyTerminal
	}

	now := time.Now().UTC()
	run.Status = update.Status
	run.CompletedAt = &now
	run.ErrorDetails = update.ErrorDetails
	return nil
}

func (m *MockRepository) RecentRuns(ctx context.Context, userID, workflowID string, limit int) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Run
	for _, run := range m.runs {
		if run.UserID == userID && run.WorkflowID == workflowID {
			result = append(result, *run)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.pingErr
}

// fakeAdmin is an AdminChecker stub.
type fakeAdmin struct {
	isAdmin bool
	err     error
}

func (f fakeAdmin) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return f.isAdmin, f.err
}

func TestRemainingArithmetic(t *testing.T) {
	tests := []struct {
		name          string
		used          int
		isBuilderTest bool
		wantLimit     int
		wantRemaining int
	}{
		{"builder test fresh", 0, true, 10, 10},
		{"builder test partial", 3, true, 10, 7},
		{"builder test exhausted", 10, true, 10, 0},
		{"normal fresh", 0, false, 5, 5},
		{"normal over limit never negative", 9, false, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockRepository()
			repo.countOverride = &tt.used
			service := NewService(repo, fakeAdmin{}, nil)

			ent, err := service.Remaining(context.Background(), "user-1",
				Target{Kind: TargetWorkflow, ID: "wf-1"}, tt.isBuilderTest)
			require.NoError(t, err)

			assert.Equal(t, tt.used, ent.Used)
			assert.Equal(t, tt.wantLimit, ent.Limit)
			assert.Equal(t, tt.wantRemaining, ent.Remaining)
			assert.False(t, ent.IsAdmin)
		})
	}
}

func TestRemainingAdminSentinel(t *testing.T) {
	repo := NewMockRepository()
	used := 42
	repo.countOverride = &used
	service := NewService(repo, fakeAdmin{isAdmin: true}, nil)

	ent, err := service.Remaining(context.Background(), "admin-1",
		Target{Kind: TargetWorkflow, ID: "wf-1"}, false)
	require.NoError(t, err)

	// Admins are never blocked, but the true used count is surfaced.
	assert.Equal(t, 42, ent.Used)
	assert.Equal(t, UnlimitedRuns, ent.Limit)
	assert.Equal(t, UnlimitedRuns, ent.Remaining)
	assert.True(t, ent.IsAdmin)
}

func TestRemainingAdminLookupFailureDowngrades(t *testing.T) {
	repo := NewMockRepository()
	used := 2
	repo.countOverride = &used
	service := NewService(repo, fakeAdmin{err: assert.AnError}, nil)

	ent, err := service.Remaining(context.Background(), "user-1",
		Target{Kind: TargetWorkflow, ID: "wf-1"}, false)
	require.NoError(t, err)

	assert.Equal(t, FreeRunLimit, ent.Limit)
	assert.False(t, ent.IsAdmin)
}

func TestRemainingCountFailureIsHard(t *testing.T) {
	repo := NewMockRepository()
	repo.countErr = &UpstreamError{Message: "function count_completed_runs does not exist", Code: "42883"}
	service := NewService(repo, fakeAdmin{}, nil)

	_, err := service.Remaining(context.Background(), "user-1",
		Target{Kind: TargetWorkflow, ID: "wf-1"}, false)
	assert.Error(t, err)
}

func TestUsageCountDefinition(t *testing.T) {
	repo := NewMockRepository()
	service := NewService(repo, fakeAdmin{}, nil)
	ctx := context.Background()
	target := Target{Kind: TargetWorkflow, ID: "wf-1"}

	// A completed run counts.
	run1, err := service.StartRun(ctx, "user-1", target, nil)
	require.NoError(t, err)
	require.NoError(t, service.FinishRun(ctx, "user-1", run1.ID, StatusCompleted, ""))

	// A failed run counts too.
	run2, err := service.StartRun(ctx, "user-1", target, nil)
	require.NoError(t, err)
	require.NoError(t, service.FinishRun(ctx, "user-1", run2.ID, StatusFailed, "boom"))

	// A run stuck in pending never counts, regardless of age.
	_, err = service.StartRun(ctx, "user-1", target, nil)
	require.NoError(t, err)

	// A terminal run with no completion timestamp is a data anomaly and
	// never counts.
	anomaly, err := repo.CreateRun(ctx, CreateRunParams{UserID: "user-1", WorkflowID: "wf-1"})
	require.NoError(t, err)
	repo.runs[anomaly.ID].Status = StatusCompleted

	// Another user's runs are out of scope.
	other, err := service.StartRun(ctx, "user-2", target, nil)
	require.NoError(t, err)
	require.NoError(t, service.FinishRun(ctx, "user-2", other.ID, StatusCompleted, ""))

	ent, err := service.Remaining(ctx, "user-1", target, false)
	require.NoError(t, err)
	assert.Equal(t, 2, ent.Used)
	assert.Equal(t, 3, ent.Remaining)
}

func TestFinishRunValidation(t *testing.T) {
	repo := NewMockRepository()
	service := NewService(repo, fakeAdmin{}, nil)
	ctx := context.Background()

	run, err := service.StartRun(ctx, "user-1", Target{Kind: TargetWorkflow, ID: "wf-1"}, nil)
	require.NoError(t, err)

	// Non-terminal status is rejected before any write.
	err = service.FinishRun(ctx, "user-1", run.ID, StatusRunning, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// Unknown run.
	err = service.FinishRun(ctx, "user-1", "missing", StatusCompleted, "")
	assert.ErrorIs(t, err, ErrRunNotFound)

	// First transition succeeds, second is rejected.
	require.NoError(t, service.FinishRun(ctx, "user-1", run.ID, StatusCompleted, ""))
	err = service.FinishRun(ctx, "user-1", run.ID, StatusFailed, "late failure")
	assert.ErrorIs(t, err, ErrRunAlreadyTerminal)
}

func TestFinishRunScopedToOwner(t *testing.T) {
	repo := NewMockRepository()
	service := NewService(repo, fakeAdmin{}, nil)
	ctx := context.Background()
	target := Target{Kind: TargetWorkflow, ID: "wf-1"}

	run, err := service.StartRun(ctx, "user-1", target, nil)
	require.NoError(t, err)

	// Another authenticated user cannot finish the run; the attempt reads
	// as not found and leaves the run untouched.
	err = service.FinishRun(ctx, "user-2", run.ID, StatusFailed, "not yours")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.Equal(t, StatusPending, repo.runs[run.ID].Status)
	assert.Nil(t, repo.runs[run.ID].CompletedAt)

	// The failed attempt does not inflate the owner's usage count.
	ent, err := service.Remaining(ctx, "user-1", target, false)
	require.NoError(t, err)
	assert.Equal(t, 0, ent.Used)

	// The owner's own finish still goes through.
	require.NoError(t, service.FinishRun(ctx, "user-1", run.ID, StatusCompleted, ""))
	assert.Equal(t, StatusCompleted, repo.runs[run.ID].Status)
}

func TestStartRunRequiresTarget(t *testing.T) {
	service := NewService(NewMockRepository(), fakeAdmin{}, nil)

	_, err := service.StartRun(context.Background(), "user-1", Target{}, nil)
	assert.ErrorIs(t, err, ErrTargetRequired)
}

// TestBuilderTestScenario walks the end-to-end quota drain: ten completed
// builder-test runs exhaust the allowance, and remaining reports zero.
func TestBuilderTestScenario(t *testing.T) {
	repo := NewMockRepository()
	service := NewService(repo, fakeAdmin{}, nil)
	ctx := context.Background()
	target := Target{Kind: TargetWorkflow, ID: "wf-1"}

	ent, err := service.Remaining(ctx, "user-1", target, true)
	require.NoError(t, err)
	assert.Equal(t, 0, ent.Used)
	assert.Equal(t, 10, ent.Limit)
	assert.Equal(t, 10, ent.Remaining)

	for i := 1; i <= 10; i++ {
		run, err := service.StartRun(ctx, "user-1", target, nil)
		require.NoError(t, err)
		require.NoError(t, service.FinishRun(ctx, "user-1", run.ID, StatusCompleted, ""))

		ent, err = service.Remaining(ctx, "user-1", target, true)
		require.NoError(t, err)
		assert.Equal(t, i, ent.Used)
		assert.Equal(t, 10-i, ent.Remaining)
	}

	// The 11th attempt is not blocked here (enforcement lives in the
	// execution path), but remaining correctly reports zero.
	ent, err = service.Remaining(ctx, "user-1", target, true)
	require.NoError(t, err)
	assert.Equal(t, 0, ent.Remaining)
}

func TestDraftTargetScopesUsage(t *testing.T) {
	repo := NewMockRepository()
	repo.drafts["id-1:user-1"] = true
	repo.workflows["id-1"] = true
	service := NewService(repo, fakeAdmin{}, nil)
	ctx := context.Background()

	// Draft resolution wins over an identically named workflow.
	target, err := service.Resolve(ctx, "user-1", "id-1")
	require.NoError(t, err)
	assert.Equal(t, TargetDraft, target.Kind)

	run, err := service.StartRun(ctx, "user-1", target, nil)
	require.NoError(t, err)
	require.NoError(t, service.FinishRun(ctx, "user-1", run.ID, StatusCompleted, ""))

	// The draft run does not leak into the workflow scope.
	ent, err := service.Remaining(ctx, "user-1", Target{Kind: TargetWorkflow, ID: "id-1"}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, ent.Used)

	ent, err = service.Remaining(ctx, "user-1", target, false)
	require.NoError(t, err)
	assert.Equal(t, 1, ent.Used)
}
