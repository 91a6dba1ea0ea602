package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://huggingface.co"

// Client talks to the model hub's management API. It is used by the
// housekeeping sweep to list and delete model repositories; the upload
// pipeline itself lives outside this service.
type Client struct {
	baseURL    string
	token      string
	username   string
	httpClient *http.Client
}

// NewClient creates a new hub client
func NewClient(token, username string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		username:   username,
		httpClient: &http.Client{},
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint
func NewClientWithBaseURL(token, username, baseURL string) *Client {
	c := NewClient(token, username)
	c.baseURL = baseURL
	return c
}

// Repo is one model repository on the hub
type Repo struct {
	ID   string   `json:"id"` // "username/repo-name"
	Tags []string `json:"tags"`
}

// ListModelRepos lists all model repositories owned by the configured user
func (c *Client) ListModelRepos(ctx context.Context) ([]Repo, error) {
	url := fmt.Sprintf("%s/api/models?author=%s", c.baseURL, c.username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hub returned status %d listing repos", resp.StatusCode)
	}

	var repos []Repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("decode repo list: %w", err)
	}

	return repos, nil
}

// DeleteRepo deletes a model repository. Accepts either "user/name" or a
// bare name, which is qualified with the configured username.
func (c *Client) DeleteRepo(ctx context.Context, repoID string) error {
	name := repoID
	organization := c.username
	if i := strings.IndexByte(repoID, '/'); i >= 0 {
		organization = repoID[:i]
		name = repoID[i+1:]
	}

	body, err := json.Marshal(map[string]string{
		"type":         "model",
		"name":         name,
		"organization": organization,
	})
	if err != nil {
		return err
	}

	url := c.baseURL + "/api/repos/delete"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("hub returned status %d deleting %s", resp.StatusCode, repoID)
	}

	return nil
}
