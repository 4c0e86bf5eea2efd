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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgaze/platform/auth"
)

// fakeIdentity authenticates a fixed user, or fails when userID is empty.
type fakeIdentity struct {
	userID string
}

func (f fakeIdentity) Authenticate(r *http.Request) (string, error) {
	if f.userID == "" {
		return "", auth.ErrMissingToken
	}
	return f.userID, nil
}

func setupTestHandler(identity Identity) (*Handler, *MockRepository, *mux.Router) {
	repo := NewMockRepository()
	service := NewService(repo, fakeAdmin{}, nil)
	diagnostics := NewDiagnostics(repo, true, nil)
	handler := NewHandler(identity, service, diagnostics, nil)
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return handler, repo, r
}

func TestRegisterRoutes(t *testing.T) {
	_, _, r := setupTestHandler(fakeIdentity{userID: "user-1"})

	routes := []struct {
		path   string
		method string
	}{
		{"/api/flow/run/remaining", "GET"},
		{"/api/flow/run/diagnostic", "GET"},
		{"/api/flow/run/tracking-diagnostic", "GET"},
		{"/api/flow/run/start", "POST"},
		{"/api/flow/run/finish", "POST"},
	}

	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, nil)
		match := &mux.RouteMatch{}
		if !r.Match(req, match) {
			t.Errorf("route %s %s not registered", route.method, route.path)
		}
	}
}

func TestRemainingHandler(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		_, _, r := setupTestHandler(fakeIdentity{})

		req := httptest.NewRequest("GET", "/api/flow/run/remaining?workflowId=wf-1", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "Missing Authorization token", body["message"])
	})

	t.Run("missing workflowId", func(t *testing.T) {
		_, _, r := setupTestHandler(fakeIdentity{userID: "user-1"})

		req := httptest.NewRequest("GET", "/api/flow/run/remaining", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("builder test quota", func(t *testing.T) {
		_, _, r := setupTestHandler(fakeIdentity{userID: "user-1"})

		req := httptest.NewRequest("GET", "/api/flow/run/remaining?workflowId=wf-1&isBuilderTest=true", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var ent Entitlement
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ent))
		assert.Equal(t, 0, ent.Used)
		assert.Equal(t, 10, ent.Limit)
		assert.Equal(t, 10, ent.Remaining)
	})

	t.Run("upstream failure surfaces as 500", func(t *testing.T) {
		_, repo, r := setupTestHandler(fakeIdentity{userID: "user-1"})
		repo.countErr = &UpstreamError{Message: "function count_completed_runs does not exist"}

		req := httptest.NewRequest("GET", "/api/flow/run/remaining?workflowId=wf-1", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "count_completed_runs")
	})
}

func TestDiagnosticHandler(t *testing.T) {
	_, _, r := setupTestHandler(fakeIdentity{userID: "user-1"})

	req := httptest.NewRequest("GET", "/api/flow/run/diagnostic?workflowId=wf-1", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "user-1", report.UserID)
	assert.Nil(t, report.WriteProbe)
}

func TestTrackingDiagnosticHandlerWithProbe(t *testing.T) {
	_, repo, r := setupTestHandler(fakeIdentity{userID: "user-1"})

	req := httptest.NewRequest("GET", "/api/flow/run/tracking-diagnostic?workflowId=wf-1&testInsert=1", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	require.NotNil(t, report.WriteProbe)
	assert.True(t, report.WriteProbe.Insert.OK)

	// The probe really wrote a row.
	assert.Len(t, repo.runs, 1)
}

func TestStartFinishHandlers(t *testing.T) {
	_, _, r := setupTestHandler(fakeIdentity{userID: "user-1"})

	t.Run("both target ids rejected", func(t *testing.T) {
		body, _ := json.Marshal(StartRunRequest{WorkflowID: "wf-1", DraftID: "draft-1"})
		req := httptest.NewRequest("POST", "/api/flow/run/start", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	var runID string
	t.Run("start run", func(t *testing.T) {
		body, _ := json.Marshal(StartRunRequest{WorkflowID: "wf-1"})
		req := httptest.NewRequest("POST", "/api/flow/run/start", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var run Run
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &run))
		assert.Equal(t, StatusPending, run.Status)
		runID = run.ID
	})

	t.Run("finish run", func(t *testing.T) {
		body, _ := json.Marshal(FinishRunRequest{RunID: runID, Status: StatusCompleted})
		req := httptest.NewRequest("POST", "/api/flow/run/finish", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("double finish conflicts", func(t *testing.T) {
		body, _ := json.Marshal(FinishRunRequest{RunID: runID, Status: StatusFailed})
		req := httptest.NewRequest("POST", "/api/flow/run/finish", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("unknown run", func(t *testing.T) {
		body, _ := json.Marshal(FinishRunRequest{RunID: "missing", Status: StatusCompleted})
		req := httptest.NewRequest("POST", "/api/flow/run/finish", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("non-terminal status", func(t *testing.T) {
		body, _ := json.Marshal(FinishRunRequest{RunID: runID, Status: StatusRunning})
		req := httptest.NewRequest("POST", "/api/flow/run/finish", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
