package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"jirascraper/pkg/config"
	errs "jirascraper/pkg/errors"
	"jirascraper/pkg/logger"
	"jirascraper/pkg/retry"
)

// fallbackRetryAfter is used when a 429 carries an unparseable Retry-After
const fallbackRetryAfter = 60 * time.Second

// Client is a Jira REST API client. One underlying http.Client (and thus one
// connection pool) is shared across all requests of a run.
type Client struct {
	httpClient  *http.Client
	headers     map[string]string
	baseURL     string
	maxAttempts int
	backoff     retry.BackoffStrategy
	logger      logger.Logger
}

// NewClient creates a new Jira API client with the default retry policy
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "jirascraper/1.0 (+https://github.com/yourname/jirascraper)",
		},
		baseURL:     baseURL,
		maxAttempts: 6,
		backoff:     retry.DefaultExponentialBackoff(),
		logger:      log,
	}
}

// NewClientWithConfig creates a client configured from the application config
func NewClientWithConfig(cfg *config.Config, log logger.Logger) *Client {
	client := NewClient(cfg.Jira.BaseURL, cfg.Jira.RequestTimeout, log)
	client.maxAttempts = cfg.Retry.MaxAttempts
	client.backoff = &retry.ExponentialBackoff{
		BaseDelay: cfg.Retry.BaseDelay,
		MaxDelay:  cfg.Retry.MaxDelay,
	}

	if cfg.Jira.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Jira.UserAgent)
	}
	if cfg.Jira.Email != "" && cfg.Jira.APIToken != "" {
		client.SetBasicAuth(cfg.Jira.Email, cfg.Jira.APIToken)
	}

	return client
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBasicAuth configures Basic auth credentials for instances that
// require them; anonymous access stays the default
func (c *Client) SetBasicAuth(email, token string) {
	credentials := base64.StdEncoding.EncodeToString([]byte(email + ":" + token))
	c.headers["Authorization"] = "Basic " + credentials
}

// SetBackoff replaces the backoff strategy, used by tests to avoid real sleeps
func (c *Client) SetBackoff(b retry.BackoffStrategy) {
	c.backoff = b
}

// SearchIssues fetches one page of search results for the given query
func (c *Client) SearchIssues(ctx context.Context, jql string, startAt, maxResults int) (*SearchResponse, error) {
	endpoint := SearchURL(c.baseURL, jql, startAt, maxResults)

	c.logger.DebugWithFields("fetching search page", map[string]interface{}{
		"jql":         jql,
		"start_at":    startAt,
		"max_results": maxResults,
	})

	var response SearchResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		c.logger.ErrorWithFields("failed to fetch search page", map[string]interface{}{
			"start_at": startAt,
			"error":    err.Error(),
		})
		return nil, err
	}

	c.logger.DebugWithFields("search page fetched", map[string]interface{}{
		"start_at": startAt,
		"issues":   len(response.Issues),
		"total":    response.Total,
	})

	return &response, nil
}

// FetchComments fetches all comments of one issue
func (c *Client) FetchComments(ctx context.Context, issueKey string) ([]Comment, error) {
	endpoint := CommentsURL(c.baseURL, issueKey)

	var response CommentsResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return response.Comments, nil
}

// getJSON performs one logical GET with the full retry policy. The attempt
// budget is scoped to this call; it does not carry over to later requests.
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	return retry.Do(func() error {
		return c.fetchOnce(ctx, url, target)
	}, &retry.Config{
		MaxAttempts: c.maxAttempts,
		Backoff:     c.backoff,
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      c.logger,
	})
}

// fetchOnce performs a single GET attempt and classifies any failure
func (c *Client) fetchOnce(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeClient,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.WarnWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		// A 200 with a garbage body is assumed to be a transient proxy or
		// server glitch, so it stays retryable
		return &errs.Error{
			Type:    errs.ErrorTypeMalformed,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus maps the HTTP response status onto the error taxonomy
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status":      resp.StatusCode,
			"url":         resp.Request.URL.String(),
			"retry_after": retryAfter,
		})
		return &errs.Error{
			Type:       errs.ErrorTypeRateLimit,
			Message:    "rate limit exceeded",
			Code:       resp.StatusCode,
			RetryAfter: retryAfter,
		}

	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		c.logger.WarnWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: fmt.Sprintf("server returned status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}

	case resp.StatusCode >= 400:
		// Any other 4xx is a caller or query defect; retrying cannot help
		c.logger.ErrorWithFields("client error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeClient,
			Message: fmt.Sprintf("client error: status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}

	default:
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}

// parseRetryAfter interprets a Retry-After header value in seconds. An
// unparseable value falls back to a conservative fixed wait.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return fallbackRetryAfter
	}
	return time.Duration(seconds) * time.Second
}
