package replicate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"dreamlens/core/models"
)

const defaultBaseURL = "https://api.replicate.com/v1"

// Client is the training provider client. It reports the live state of a
// training run; callers bound each call with their own context deadline.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new provider client
func NewClient(token string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

// trainingResponse is the provider's wire format for one training run
type trainingResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
	Logs   string `json:"logs"`
}

// GetTraining fetches the current status of a training run. Cancellation
// and timeout are governed entirely by ctx.
func (c *Client) GetTraining(ctx context.Context, trainingID string) (*models.ProviderRun, error) {
	url := fmt.Sprintf("%s/trainings/%s", c.baseURL, trainingID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d for training %s", resp.StatusCode, trainingID)
	}

	var tr trainingResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode training response: %w", err)
	}

	return &models.ProviderRun{
		ID:     tr.ID,
		Status: mapStatus(tr.Status),
		Error:  tr.Error,
		Logs:   tr.Logs,
	}, nil
}

// mapStatus maps provider status strings onto the internal run statuses.
// Canceled runs are folded into failed: from the product's point of view
// the run will never produce weights.
func mapStatus(s string) models.RunStatus {
	switch s {
	case "starting", "queued":
		return models.RunStatusStarting
	case "processing":
		return models.RunStatusProcessing
	case "succeeded":
		return models.RunStatusSucceeded
	case "failed", "canceled":
		return models.RunStatusFailed
	default:
		return models.RunStatusStarting
	}
}
