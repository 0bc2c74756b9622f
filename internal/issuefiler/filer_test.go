package issuefiler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgoto/recipelog/internal/imagecheck"
)

func TestFileReport_EmptyFilesNothing(t *testing.T) {
	t.Parallel()
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New("mgoto/recipelog", "tok").WithAPIBase(srv.URL)
	url, err := c.FileReport(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.False(t, called)
}

func TestFileReport_CreatesIssue(t *testing.T) {
	t.Parallel()
	var got issueRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/mgoto/recipelog/issues", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"html_url": "https://github.com/mgoto/recipelog/issues/42",
		})
	}))
	defer srv.Close()

	c := New("mgoto/recipelog", "tok").WithAPIBase(srv.URL)
	url, err := c.FileReport(context.Background(), []imagecheck.Missing{
		{ID: 2, Path: "/media/dishes/2/cover.jpg"},
		{ID: 9, Path: "/media/users/1/dishes/9/cover.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/mgoto/recipelog/issues/42", url)

	assert.Contains(t, got.Title, "2 missing")
	assert.Contains(t, got.Body, "entry 2")
	assert.Contains(t, got.Body, "cover.png")
	assert.Equal(t, []string{"image-audit"}, got.Labels)
	assert.Empty(t, got.Assignees)
}

func TestFileReport_LabelsAndAssignees(t *testing.T) {
	t.Parallel()
	var got issueRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"html_url": "https://example.com/1"})
	}))
	defer srv.Close()

	c := New("mgoto/recipelog", "tok").
		WithAPIBase(srv.URL).
		WithLabels([]string{"bug", "media"}).
		WithAssignees([]string{"mgoto"})
	_, err := c.FileReport(context.Background(), []imagecheck.Missing{{ID: 1, Path: "x"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"bug", "media"}, got.Labels)
	assert.Equal(t, []string{"mgoto"}, got.Assignees)
}

func TestFileReport_APIError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("mgoto/recipelog", "bad").WithAPIBase(srv.URL)
	_, err := c.FileReport(context.Background(), []imagecheck.Missing{{ID: 1, Path: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
