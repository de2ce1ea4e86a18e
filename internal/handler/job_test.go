package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawangupta079/skill-hire/pkg/model"
)

func TestJobBrowsing(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "r1", model.UserTypeRecruiter)
	s.user(t, "c1", model.UserTypeCandidate)
	jobID := s.postJob(t, "r1")

	code, env := s.do(t, http.MethodGet, "/api/jobs/"+jobID, "", nil)
	require.Equal(t, http.StatusOK, code)
	detail := decode[model.JobDetail](t, env.Data)
	assert.Equal(t, 1, detail.Job.ViewCount)
	assert.False(t, detail.HasApplied)

	code, _ = s.do(t, http.MethodPost, "/api/applications", "c1", map[string]any{"job_id": jobID})
	require.Equal(t, http.StatusCreated, code)

	code, env = s.do(t, http.MethodGet, "/api/jobs/"+jobID, "c1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[model.JobDetail](t, env.Data).HasApplied)

	code, env = s.do(t, http.MethodGet, "/api/jobs?search=backend", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Job](t, env.Data), 1)

	code, env = s.do(t, http.MethodGet, "/api/jobs/search/suggestions?q=ac", "", nil)
	require.Equal(t, http.StatusOK, code)
	sugg := decode[model.JobSuggestions](t, env.Data)
	require.Len(t, sugg.Companies, 1)
	assert.Equal(t, "Acme", sugg.Companies[0].Value)
}

func TestCandidateCannotPostJob(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "c1", model.UserTypeCandidate)

	code, env := s.do(t, http.MethodPost, "/api/jobs", "c1", map[string]any{"title": "x", "description": "y", "company": map[string]any{"name": "z"}})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "only recruiters can post jobs", env.Error.Message)
}

func TestDeleteJobWithApplicationsConflicts(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "r1", model.UserTypeRecruiter)
	s.user(t, "c1", model.UserTypeCandidate)
	jobID := s.postJob(t, "r1")

	code, _ := s.do(t, http.MethodPost, "/api/applications", "c1", map[string]any{"job_id": jobID})
	require.Equal(t, http.StatusCreated, code)

	code, env := s.do(t, http.MethodDelete, "/api/jobs/"+jobID, "r1", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}
