// Package jira implements the ticket gateway against the Jira REST API.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custos-grc/custos/internal/domain/ticketing"
	"github.com/custos-grc/custos/internal/shared/config"
	"github.com/custos-grc/custos/internal/shared/logger"
)

const (
	searchPageSize = 50
	// Maximum response body size for Jira API responses (4MB)
	maxResponseSize = 4 << 20

	jiraTimeLayout = "2006-01-02T15:04:05.000-0700"
)

// Client talks to Jira. Logical queues are mapped onto deployment-specific
// status labels through configuration.
type Client struct {
	httpClient *http.Client
	cfg        config.JiraConfig
	logger     logger.Interface
}

// NewClient creates a Jira gateway client.
func NewClient(cfg config.JiraConfig, log logger.Interface) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		cfg:    cfg,
		logger: log,
	}
}

var _ ticketing.Gateway = (*Client)(nil)

type searchResponse struct {
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	Total      int           `json:"total"`
	Issues     []searchIssue `json:"issues"`
}

type searchIssue struct {
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type transitionsResponse struct {
	Transitions []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"transitions"`
}

// ListTickets implements ticketing.Gateway. It pages through the search API
// until the queue is exhausted.
func (c *Client) ListTickets(ctx context.Context, queue ticketing.Queue) ([]ticketing.Ticket, error) {
	statuses, err := c.statusesFor(queue)
	if err != nil {
		return nil, err
	}

	jql := fmt.Sprintf(`project = "%s" AND status in (%s) ORDER BY created ASC`,
		c.cfg.ProjectKey, quoteStatuses(statuses))
	fields := "summary,status,reporter,created," + c.cfg.RequestEmailField

	var tickets []ticketing.Ticket
	startAt := 0
	for {
		page, err := c.searchPage(ctx, jql, fields, startAt)
		if err != nil {
			return nil, err
		}

		for _, issue := range page.Issues {
			tickets = append(tickets, c.toTicket(issue))
		}

		startAt += len(page.Issues)
		if startAt >= page.Total || len(page.Issues) == 0 {
			break
		}
	}

	c.logger.Debugw("pulled ticket queue",
		"queue", queue,
		"count", len(tickets),
	)
	return tickets, nil
}

// ResolveTicket implements ticketing.Gateway. It looks up the configured
// transition on the issue and executes it with the closing comment.
func (c *Client) ResolveTicket(ctx context.Context, key, comment string) error {
	transitionID, err := c.findTransition(ctx, key)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"transition": map[string]string{"id": transitionID},
		"update": map[string]any{
			"comment": []map[string]any{
				{"add": map[string]string{"body": comment}},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal transition payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/api/2/issue/%s/transitions", c.cfg.BaseURL, url.PathEscape(key))
	resp, err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return c.statusError("transition", resp)
	}

	c.logger.Infow("ticket resolved", "ticket_key", key)
	return nil
}

func (c *Client) searchPage(ctx context.Context, jql, fields string, startAt int) (*searchResponse, error) {
	query := url.Values{}
	query.Set("jql", jql)
	query.Set("fields", fields)
	query.Set("startAt", fmt.Sprintf("%d", startAt))
	query.Set("maxResults", fmt.Sprintf("%d", searchPageSize))

	endpoint := fmt.Sprintf("%s/rest/api/2/search?%s", c.cfg.BaseURL, query.Encode())
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("search", resp)
	}

	var page searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &page, nil
}

func (c *Client) findTransition(ctx context.Context, key string) (string, error) {
	endpoint := fmt.Sprintf("%s/rest/api/2/issue/%s/transitions", c.cfg.BaseURL, url.PathEscape(key))
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError("transitions", resp)
	}

	var transitions transitionsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&transitions); err != nil {
		return "", fmt.Errorf("failed to decode transitions response: %w", err)
	}

	for _, t := range transitions.Transitions {
		if strings.EqualFold(t.Name, c.cfg.ResolveTransition) {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("transition %q not available on issue %s", c.cfg.ResolveTransition, key)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ticketing.ErrGatewayUnavailable, err)
	}
	return resp, nil
}

func (c *Client) statusError(operation string, resp *http.Response) error {
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s returned %d", ticketing.ErrGatewayUnavailable, operation, resp.StatusCode)
	}
	return fmt.Errorf("jira %s failed with status %d", operation, resp.StatusCode)
}

func (c *Client) statusesFor(queue ticketing.Queue) (string, error) {
	switch queue {
	case ticketing.QueuePending:
		return c.cfg.PendingStatuses, nil
	case ticketing.QueueApproved:
		return c.cfg.ApprovedStatuses, nil
	case ticketing.QueueDone:
		return c.cfg.DoneStatuses, nil
	default:
		return "", fmt.Errorf("unknown ticket queue: %s", queue)
	}
}

func (c *Client) toTicket(issue searchIssue) ticketing.Ticket {
	t := ticketing.Ticket{Key: issue.Key}

	var summary string
	if raw, ok := issue.Fields["summary"]; ok {
		_ = json.Unmarshal(raw, &summary)
	}
	t.Summary = summary

	if raw, ok := issue.Fields["status"]; ok {
		var status struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(raw, &status)
		t.Status = status.Name
	}

	if raw, ok := issue.Fields["reporter"]; ok {
		var reporter struct {
			DisplayName  string `json:"displayName"`
			EmailAddress string `json:"emailAddress"`
		}
		_ = json.Unmarshal(raw, &reporter)
		t.Reporter = reporter.DisplayName
		// Reporter email is the fallback when the request field is absent.
		t.RequestedUserEmail = strings.ToLower(reporter.EmailAddress)
	}

	if raw, ok := issue.Fields["created"]; ok {
		var created string
		_ = json.Unmarshal(raw, &created)
		if parsed, err := time.Parse(jiraTimeLayout, created); err == nil {
			t.Created = parsed.UTC()
		}
	}

	// The requested-user field is deployment specific; it overrides the
	// reporter email when present.
	if raw, ok := issue.Fields[c.cfg.RequestEmailField]; ok {
		var email string
		if err := json.Unmarshal(raw, &email); err == nil && email != "" {
			t.RequestedUserEmail = strings.ToLower(email)
		}
	}

	return t
}

func quoteStatuses(statuses string) string {
	parts := strings.Split(statuses, ",")
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		quoted = append(quoted, fmt.Sprintf("%q", p))
	}
	return strings.Join(quoted, ", ")
}
