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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgaze/platform/auth"
	"edgaze/platform/shared/logger"
)

type fakeIdentity struct {
	userID string
	err    error
}

func (f *fakeIdentity) Authenticate(_ *http.Request) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.userID, nil
}

type fakeRoleChecker struct {
	admins map[string]bool
	err    error
}

func (f *fakeRoleChecker) IsAdmin(_ context.Context, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.admins[userID], nil
}

func newTestHandler(identity Identity, admins RoleChecker, repo Repository) *Handler {
	log := logger.New("admin-test")
	return NewHandler(identity, admins, NewService(repo, log), log)
}

func doRequest(t *testing.T, h *Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutesRejectMissingToken(t *testing.T) {
	h := newTestHandler(
		&fakeIdentity{err: auth.ErrMissingToken},
		&fakeRoleChecker{},
		NewMockRepository(),
	)

	rec := doRequest(t, h, "POST", "/api/admin/replenish-demo", ReplenishDemoRequest{Username: "alice"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Missing Authorization token", resp["message"])
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	h := newTestHandler(
		&fakeIdentity{userID: "user-1"},
		&fakeRoleChecker{admins: map[string]bool{}},
		NewMockRepository(),
	)

	rec := doRequest(t, h, "POST", "/api/admin/replenish-demo", ReplenishDemoRequest{Username: "alice"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleCheckFailure(t *testing.T) {
	h := newTestHandler(
		&fakeIdentity{userID: "user-1"},
		&fakeRoleChecker{err: errors.New("db down")},
		NewMockRepository(),
	)

	rec := doRequest(t, h, "GET", "/api/admin/settings", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReplenishDemoEndpoint(t *testing.T) {
	repo := NewMockRepository()
	repo.profiles["alice"] = "user-9"
	repo.demoRuns["user-9:wf-1"] = 4
	h := newTestHandler(
		&fakeIdentity{userID: "admin-1"},
		&fakeRoleChecker{admins: map[string]bool{"admin-1": true}},
		repo,
	)

	rec := doRequest(t, h, "POST", "/api/admin/replenish-demo", ReplenishDemoRequest{Username: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "user-9", resp["userId"])
	assert.Equal(t, float64(4), resp["deleted"])
}

func TestReplenishDemoUnknownUsername(t *testing.T) {
	h := newTestHandler(
		&fakeIdentity{userID: "admin-1"},
		&fakeRoleChecker{admins: map[string]bool{"admin-1": true}},
		NewMockRepository(),
	)

	rec := doRequest(t, h, "POST", "/api/admin/replenish-demo", ReplenishDemoRequest{Username: "nobody"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no profile found for that username", resp["message"])
}

func TestReplenishDemoRequiresUsername(t *testing.T) {
	h := newTestHandler(
		&fakeIdentity{userID: "admin-1"},
		&fakeRoleChecker{admins: map[string]bool{"admin-1": true}},
		NewMockRepository(),
	)

	rec := doRequest(t, h, "POST", "/api/admin/replenish-demo", ReplenishDemoRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenLimitsEndpoints(t *testing.T) {
	h := newTestHandler(
		&fakeIdentity{userID: "admin-1"},
		&fakeRoleChecker{admins: map[string]bool{"admin-1": true}},
		NewMockRepository(),
	)

	rec := doRequest(t, h, "GET", "/api/admin/token-limits?workflowId=wf-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, "POST", "/api/admin/token-limits", SetTokenLimitsRequest{
		WorkflowID:           "wf-1",
		MaxTokensPerWorkflow: 100000,
		MaxTokensPerNode:     10000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, "GET", "/api/admin/token-limits?workflowId=wf-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var limits TokenLimits
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &limits))
	assert.Equal(t, int64(100000), limits.MaxTokensPerWorkflow)
	assert.Equal(t, "admin-1", limits.UpdatedBy)
}

func TestTokenLimitsRejectNegative(t *testing.T) {
	h := newTestHandler(
		&fakeIdentity{userID: "admin-1"},
		&fakeRoleChecker{admins: map[string]bool{"admin-1": true}},
		NewMockRepository(),
	)

	rec := doRequest(t, h, "POST", "/api/admin/token-limits", SetTokenLimitsRequest{
		MaxTokensPerWorkflow: -1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	h := newTestHandler(
		&fakeIdentity{userID: "admin-1"},
		&fakeRoleChecker{admins: map[string]bool{"admin-1": true}},
		NewMockRepository(),
	)

	rec := doRequest(t, h, "POST", "/api/admin/settings", SetSettingRequest{Key: "maintenance_mode", Value: "true"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, "GET", "/api/admin/settings?key=maintenance_mode", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var setting Setting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &setting))
	assert.Equal(t, "true", setting.Value)

	rec = doRequest(t, h, "GET", "/api/admin/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list map[string][]Setting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list["settings"], 1)

	rec = doRequest(t, h, "GET", "/api/admin/settings?key=missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModerationEndpoints(t *testing.T) {
	h := newTestHandler(
		&fakeIdentity{userID: "admin-1"},
		&fakeRoleChecker{admins: map[string]bool{"admin-1": true}},
		NewMockRepository(),
	)

	rec := doRequest(t, h, "POST", "/api/admin/moderation", ModerateRequest{
		UserID: "user-1",
		Action: "ban",
		Reason: "spam",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var record ModerationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.True(t, record.Banned)
	assert.Equal(t, "admin-1", record.UpdatedBy)

	rec = doRequest(t, h, "GET", "/api/admin/moderation?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.True(t, record.Banned)

	rec = doRequest(t, h, "POST", "/api/admin/moderation", ModerateRequest{
		UserID: "user-1",
		Action: "suspend",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
