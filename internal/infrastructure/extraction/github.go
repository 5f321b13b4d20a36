// Package extraction produces raw entity batches from the GitHub REST
// API. It owns pagination and rate-limit back-off; the core only sees
// the finished snapshot.
package extraction

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"pr_compliance_service/internal/config"
	"pr_compliance_service/internal/domain"
	"pr_compliance_service/internal/domain/raw"
	"pr_compliance_service/pkg/contextx"
	"pr_compliance_service/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	owner        string
	repositories []string
	pageSize     int
}

func NewClient(cfg config.GitHub) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		token:        cfg.Token,
		owner:        cfg.Owner,
		repositories: cfg.Repositories,
		pageSize:     cfg.PageSize,
	}
}

// ExtractBatch walks every configured repository and returns one raw
// batch stamped with the extraction time.
func (c *Client) ExtractBatch(ctx context.Context) (raw.Batch, error) {
	extractedAt := time.Now().UTC()
	batch := raw.Batch{ExtractedAt: &extractedAt}

	for _, repository := range c.repositories {
		if err := c.extractRepository(ctx, repository, &batch); err != nil {
			return raw.Batch{}, domain.WrapError(err, errcodes.ExtractionFailed,
				fmt.Sprintf("failed to extract repository %q", repository))
		}
	}

	return batch, nil
}

func (c *Client) extractRepository(ctx context.Context, repository string, batch *raw.Batch) error {
	prs, err := c.listPullRequests(ctx, repository)
	if err != nil {
		return fmt.Errorf("listPullRequests: %w", err)
	}
	logger(ctx).Info("extracted pull requests",
		slog.String("repository", repository), slog.Int("count", len(prs)))

	for _, pr := range prs {
		prID := strconv.FormatInt(pr.ID, 10)
		batch.PullRequests = append(batch.PullRequests, pr.toRaw(repository))

		reviews, err := c.listReviews(ctx, repository, pr.Number)
		if err != nil {
			return fmt.Errorf("listReviews(#%d): %w", pr.Number, err)
		}
		for _, review := range reviews {
			batch.Reviews = append(batch.Reviews, review.toRaw(prID))
		}

		commits, err := c.listCommits(ctx, repository, pr.Number)
		if err != nil {
			return fmt.Errorf("listCommits(#%d): %w", pr.Number, err)
		}
		for _, commit := range commits {
			batch.Commits = append(batch.Commits, commit.toRaw(prID))
		}

		// Check runs hang off the last commit; fall back to the head sha
		// when the commit listing came back empty.
		sha := pr.Head.SHA
		if len(commits) > 0 {
			sha = commits[len(commits)-1].SHA
		}
		if sha == "" {
			continue
		}
		checkRuns, err := c.listCheckRuns(ctx, repository, sha)
		if err != nil {
			return fmt.Errorf("listCheckRuns(%s): %w", sha, err)
		}
		for _, check := range checkRuns {
			batch.CheckRuns = append(batch.CheckRuns, check.toRaw(prID))
		}
	}

	return nil
}

func (c *Client) listPullRequests(ctx context.Context, repository string) ([]apiPullRequest, error) {
	var all []apiPullRequest
	for page := 1; ; page++ {
		var prs []apiPullRequest
		params := url.Values{
			"state":    {"all"},
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.pageSize)},
		}
		if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/pulls", c.owner, repository), params, &prs); err != nil {
			return nil, err
		}
		all = append(all, prs...)
		if len(prs) < c.pageSize {
			return all, nil
		}
	}
}

func (c *Client) listReviews(ctx context.Context, repository string, number int) ([]apiReview, error) {
	var all []apiReview
	for page := 1; ; page++ {
		var reviews []apiReview
		params := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.pageSize)},
		}
		path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", c.owner, repository, number)
		if err := c.getJSON(ctx, path, params, &reviews); err != nil {
			return nil, err
		}
		all = append(all, reviews...)
		if len(reviews) < c.pageSize {
			return all, nil
		}
	}
}

func (c *Client) listCommits(ctx context.Context, repository string, number int) ([]apiCommit, error) {
	var all []apiCommit
	for page := 1; ; page++ {
		var commits []apiCommit
		params := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.pageSize)},
		}
		path := fmt.Sprintf("/repos/%s/%s/pulls/%d/commits", c.owner, repository, number)
		if err := c.getJSON(ctx, path, params, &commits); err != nil {
			return nil, err
		}
		all = append(all, commits...)
		if len(commits) < c.pageSize {
			return all, nil
		}
	}
}

func (c *Client) listCheckRuns(ctx context.Context, repository, sha string) ([]apiCheckRun, error) {
	var all []apiCheckRun
	for page := 1; ; page++ {
		var response struct {
			CheckRuns []apiCheckRun `json:"check_runs"`
		}
		params := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.pageSize)},
		}
		path := fmt.Sprintf("/repos/%s/%s/commits/%s/check-runs", c.owner, repository, sha)
		if err := c.getJSON(ctx, path, params, &response); err != nil {
			return nil, err
		}
		all = append(all, response.CheckRuns...)
		if len(response.CheckRuns) < c.pageSize {
			return all, nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, into any) error {
	for {
		resp, err := c.get(ctx, path, params)
		if err != nil {
			return err
		}

		if wait, limited := rateLimited(resp); limited {
			_ = resp.Body.Close()
			logger(ctx).Warn("rate limit exceeded",
				slog.String("path", path), slog.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("GET %s: unexpected status %d: %s", path, resp.StatusCode, body)
		}

		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do: %w", err)
	}
	return resp, nil
}

func rateLimited(resp *http.Response) (time.Duration, bool) {
	if resp.StatusCode != http.StatusForbidden || resp.Header.Get("X-RateLimit-Remaining") != "0" {
		return 0, false
	}

	reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return time.Minute, true
	}
	wait := time.Until(time.Unix(reset, 0)) + time.Second
	if wait < time.Second {
		wait = time.Second
	}
	return wait, true
}
