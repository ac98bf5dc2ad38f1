// Package update checks whether a newer release has been published.
package update

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ReleasesURL is the GitHub endpoint for the latest release.
const ReleasesURL = "https://api.github.com/repos/matheuskafuri/techpulse/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
}

type ghRelease struct {
	TagName string `json:"tag_name"`
}

// Checker queries a releases endpoint.
type Checker struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
	Logger  *zap.Logger
}

// Check uses the default Checker.
func Check(ctx context.Context, currentVersion string) *Result {
	return (&Checker{}).Check(ctx, currentVersion)
}

// Check reports a newer release, or nil when up to date or on any error.
func (c *Checker) Check(ctx context.Context, currentVersion string) *Result {
	endpoint, client, timeout, log := c.URL, c.Client, c.Timeout, c.Logger
	if endpoint == "" {
		endpoint = ReleasesURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Debug("update check: bad request", zap.Error(err))
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		log.Debug("update check failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug("update check: unexpected status", zap.Int("status", resp.StatusCode))
		return nil
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		log.Debug("update check: bad body", zap.Error(err))
		return nil
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(currentVersion, "v")

	if latest == "" || latest == current || current == "dev" {
		return nil
	}

	return &Result{LatestVersion: latest}
}
