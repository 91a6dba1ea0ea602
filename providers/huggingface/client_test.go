package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListModelRepos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/models", r.URL.Path)
		assert.Equal(t, "acme", r.URL.Query().Get("author"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":"acme/lena-2025-08-27-10-15-02","tags":["flux"]},{"id":"acme/geo-2025-05-24-22-10-01"}]`))
	}))
	defer server.Close()

	c := NewClientWithBaseURL("test-token", "acme", server.URL)
	repos, err := c.ListModelRepos(context.Background())

	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "acme/lena-2025-08-27-10-15-02", repos[0].ID)
	assert.Equal(t, []string{"flux"}, repos[0].Tags)
}

func TestDeleteRepoQualifiesBareNames(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/repos/delete", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClientWithBaseURL("t", "acme", server.URL)
	require.NoError(t, c.DeleteRepo(context.Background(), "geo-2025-05-24-22-10-01"))

	assert.Equal(t, "model", got["type"])
	assert.Equal(t, "geo-2025-05-24-22-10-01", got["name"])
	assert.Equal(t, "acme", got["organization"])
}

func TestDeleteRepoSplitsQualifiedNames(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClientWithBaseURL("t", "acme", server.URL)
	require.NoError(t, c.DeleteRepo(context.Background(), "other-org/geo"))

	assert.Equal(t, "geo", got["name"])
	assert.Equal(t, "other-org", got["organization"])
}

func TestDeleteRepoRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := NewClientWithBaseURL("t", "acme", server.URL).DeleteRepo(context.Background(), "acme/geo")

	assert.Error(t, err)
}
