// Package directory implements the external directory port over HTTP.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	domaindirectory "github.com/custos-grc/custos/internal/domain/directory"
	"github.com/custos-grc/custos/internal/shared/config"
	"github.com/custos-grc/custos/internal/shared/logger"
)

// Maximum response body size for directory API responses (1MB)
const maxResponseSize = 1 << 20

// Client reads group memberships from the corporate directory service.
type Client struct {
	httpClient *http.Client
	cfg        config.DirectoryConfig
	logger     logger.Interface
}

// NewClient creates a directory client.
func NewClient(cfg config.DirectoryConfig, log logger.Interface) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		cfg:    cfg,
		logger: log,
	}
}

var _ domaindirectory.Directory = (*Client)(nil)

type groupsResponse struct {
	Groups []string `json:"groups"`
}

// GetGroupsForUser implements directory.Directory.
func (c *Client) GetGroupsForUser(ctx context.Context, userID string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/users/%s/groups", c.cfg.BaseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domaindirectory.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// A user the directory does not know has no groups.
		return nil, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", domaindirectory.ErrDirectoryUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("directory lookup failed with status %d", resp.StatusCode)
	}

	var payload groupsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}

	c.logger.Debugw("directory groups fetched",
		"user_id", userID,
		"count", len(payload.Groups),
	)
	return payload.Groups, nil
}
