// Package igov provides the client for the UN iGov JSON API.
package igov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"unigov/internal/config"
	"unigov/internal/logger"
	"unigov/internal/models"

	"github.com/go-resty/resty/v2"
)

// Client errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrFetchFailed          = errors.New("fetch failed after retries")
	ErrMalformedPage        = errors.New("malformed page payload")
)

// SessionRef carries the upstream request parameters for one (body, session)
// unit. Label and DecisionLabel come from the session config; BodyParam is
// the upstream body code (e.g. "GA"); Committee is the full committee name
// used by the proposals endpoint, empty for the plenary.
type SessionRef struct {
	Number        string
	Label         string
	DecisionLabel string
	BodyParam     string
	Committee     string
}

// Client fetches paginated category data from the iGov API with
// config-driven retry behavior.
type Client struct {
	http     *resty.Client
	retry    config.RetryPolicy
	pageSize int
	logger   *logger.Logger
}

// NewClient creates a client against the configured API base URL.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.API.BaseURL).
		SetTimeout(cfg.API.Retry.GetTimeout()).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "unigov/1.0")

	return &Client{
		http:     httpClient,
		retry:    cfg.API.Retry,
		pageSize: cfg.API.PageSize,
		logger:   log,
	}
}

// FetchCategory returns the complete raw item sequence for one category,
// following page/pageSize pagination until the upstream returns an empty
// page. Item order matches the upstream's page order.
func (c *Client) FetchCategory(ctx context.Context, category models.Category, ref SessionRef) ([]json.RawMessage, error) {
	path, query, err := categoryRequest(category, ref)
	if err != nil {
		return nil, err
	}

	var all []json.RawMessage

	for page := 1; ; page++ {
		items, err := c.fetchPage(ctx, path, query, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		if len(items) == 0 {
			break
		}

		all = append(all, items...)
		c.logger.Debug("fetched page", "category", category, "page", page, "items", len(items))
	}

	return all, nil
}

// fetchPage issues one paginated GET with bounded retries.
func (c *Client) fetchPage(ctx context.Context, path string, query map[string]string, page int) ([]json.RawMessage, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.retry.GetRetryDelay(attempt)); err != nil {
				return nil, err
			}
		}

		req := c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetQueryParam("page", fmt.Sprintf("%d", page)).
			SetQueryParam("pageSize", fmt.Sprintf("%d", c.pageSize))

		resp, err := req.Get(path)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, c.retry.MaxAttempts, err)

			continue
		}

		if resp.StatusCode() != http.StatusOK {
			lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode())

			if !isRetryableStatus(resp.StatusCode()) {
				return nil, lastErr
			}

			continue
		}

		items, err := decodePage(resp.Body())
		if err != nil {
			// A 200 with an undecodable body is not transient.
			return nil, err
		}

		return items, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrFetchFailed, lastErr)
}

// categoryRequest maps a category onto its iGov endpoint and fixed query.
func categoryRequest(category models.Category, ref SessionRef) (string, map[string]string, error) {
	switch category {
	case models.CategoryMeetings:
		return "meetings/getbysession/" + url.PathEscape(ref.Label),
			map[string]string{"body": ref.BodyParam}, nil
	case models.CategoryAgenda:
		return "getlookups/getAgendas/" + url.PathEscape(ref.Number), nil, nil
	case models.CategoryDocuments:
		return "meetings/getdocumentsbysession/" + url.PathEscape(ref.Label),
			map[string]string{"body": ref.BodyParam}, nil
	case models.CategoryDecisions:
		return "decision/getbysession/" + url.PathEscape(ref.DecisionLabel), nil, nil
	case models.CategoryProposals:
		committee := ref.Committee
		if committee == "" {
			committee = ref.BodyParam
		}

		return "proposals/" + url.PathEscape(ref.Label) + "/" + url.PathEscape(committee),
			map[string]string{"env": "prod"}, nil
	}

	return "", nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
}

// decodePage accepts either a top-level JSON array or the proposals-style
// {"result": [...]} envelope.
func decodePage(body []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	var envelope struct {
		Result []json.RawMessage `json:"result"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPage, err)
	}

	return envelope.Result, nil
}

// isRetryableStatus reports whether a fetch should be retried for the given
// HTTP status.
func isRetryableStatus(statusCode int) bool {
	if statusCode >= http.StatusInternalServerError {
		return true
	}

	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}

	return false
}

// sleepContext waits for the delay unless the context is canceled first.
func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
