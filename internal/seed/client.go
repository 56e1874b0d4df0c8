package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const adminTokenHeader = "X-Admin-Token"

// client wraps http.Client with the admin token and base URL applied.
type client struct {
	http     *http.Client
	baseURL  string
	password string
}

func newClient(cfg *Config) *client {
	return &client{
		http:     &http.Client{Timeout: cfg.Timeout},
		baseURL:  cfg.BaseURL,
		password: cfg.AdminPassword,
	}
}

// post submits a JSON body to an admin route and reports non-2xx as an error.
func (c *client) post(ctx context.Context, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(adminTokenHeader, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, string(data))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// leaderboardView mirrors the response of GET /leaderboard. Only the fields
// the verification step reads are declared.
type leaderboardView struct {
	State     string `json:"state"`
	Standings struct {
		Houses []struct {
			House       string  `json:"house"`
			TotalPoints float64 `json:"total_points"`
		} `json:"houses"`
		Events []string `json:"events"`
	} `json:"standings"`
}

// getLeaderboard fetches the current standings view, retrying briefly while
// the snapshot propagates.
func (c *client) getLeaderboard(ctx context.Context) (*leaderboardView, error) {
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(200 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/leaderboard", nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		var view leaderboardView
		err = json.NewDecoder(resp.Body).Decode(&view)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if view.State == "ready" {
			return &view, nil
		}
		lastErr = fmt.Errorf("leaderboard state %q, want ready", view.State)
	}
	return nil, lastErr
}
