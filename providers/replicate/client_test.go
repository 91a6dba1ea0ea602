package replicate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dreamlens/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTraining(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trainings/r1", r.URL.Path)
		assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"r1","status":"processing","logs":"step 10/2000"}`))
	}))
	defer server.Close()

	c := NewClientWithBaseURL("test-token", server.URL)
	run, err := c.GetTraining(context.Background(), "r1")

	require.NoError(t, err)
	assert.Equal(t, "r1", run.ID)
	assert.Equal(t, models.RunStatusProcessing, run.Status)
	assert.Equal(t, "step 10/2000", run.Logs)
}

func TestGetTrainingMapsStatuses(t *testing.T) {
	tests := []struct {
		wire string
		want models.RunStatus
	}{
		{"starting", models.RunStatusStarting},
		{"queued", models.RunStatusStarting},
		{"processing", models.RunStatusProcessing},
		{"succeeded", models.RunStatusSucceeded},
		{"failed", models.RunStatusFailed},
		{"canceled", models.RunStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id":"r1","status":"` + tt.wire + `"}`))
			}))
			defer server.Close()

			run, err := NewClientWithBaseURL("t", server.URL).GetTraining(context.Background(), "r1")

			require.NoError(t, err)
			assert.Equal(t, tt.want, run.Status)
		})
	}
}

func TestGetTrainingSurfacesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"r1","status":"failed","error":"CUDA out of memory"}`))
	}))
	defer server.Close()

	run, err := NewClientWithBaseURL("t", server.URL).GetTraining(context.Background(), "r1")

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Equal(t, "CUDA out of memory", run.Error)
}

func TestGetTrainingRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClientWithBaseURL("t", server.URL).GetTraining(context.Background(), "r1")

	assert.Error(t, err)
}

func TestGetTrainingHonorsContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"id":"r1","status":"processing"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClientWithBaseURL("t", server.URL).GetTraining(ctx, "r1")

	assert.Error(t, err)
}
