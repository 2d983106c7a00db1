package issuesource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
	"github.com/KasumiMercury/primind-nudge-engine/internal/observability/tracing"
)

const candidateIssuesPath = "/api/v1/issues/candidates"

type issuesResponse struct {
	Issues []issueJSON `json:"issues"`
	Count  int         `json:"count"`
}

type issueJSON struct {
	Key         string     `json:"key"`
	Summary     string     `json:"summary"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Assignee    string     `json:"assignee"`
	LastUpdated time.Time  `json:"last_updated"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Project     string     `json:"project"`
}

// Client queries the issue tracker for a user's candidate issues. A
// client-side limiter keeps scan bursts from hammering the tracker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, ratePerSec, burst int) *Client {
	if ratePerSec <= 0 {
		ratePerSec = 10
	}
	if burst <= 0 {
		burst = ratePerSec
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

func (c *Client) ListCandidateIssues(ctx context.Context, userID string) ([]domain.IssueSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	u.Path = candidateIssuesPath
	q := u.Query()
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()

	slog.DebugContext(ctx, "fetching candidate issues",
		slog.String("url", u.String()),
		slog.String("user_id", userID),
	)

	ctx, span := tracing.StartExternalAPISpan(ctx, "list_candidate_issues", u.String())
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send request to issue tracker",
			slog.String("url", u.String()),
			slog.String("error", err.Error()),
		)
		tracing.RecordExternalAPIResult(span, 0, err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "unexpected status code from issue tracker",
			slog.String("url", u.String()),
			slog.Int("status_code", resp.StatusCode),
		)
		err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		tracing.RecordExternalAPIResult(span, resp.StatusCode, err)
		return nil, err
	}

	var body issuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		tracing.RecordExternalAPIResult(span, resp.StatusCode, err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	tracing.RecordExternalAPIResult(span, resp.StatusCode, nil)

	issues := make([]domain.IssueSnapshot, 0, len(body.Issues))
	for _, i := range body.Issues {
		issues = append(issues, domain.IssueSnapshot{
			Key:         i.Key,
			Summary:     i.Summary,
			Status:      i.Status,
			Priority:    i.Priority,
			Assignee:    i.Assignee,
			LastUpdated: i.LastUpdated,
			DueDate:     i.DueDate,
			Project:     i.Project,
		})
	}

	return issues, nil
}
