// Package client is a small Go client for the MemberHub API. It resolves a
// member's lifecycle status the same way the web front end does.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"memberhub_backend/internal/membership"
	"memberhub_backend/pkg/apperrors"
)

const statusPath = "/api/v1/membership/status"

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer access token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       apperrors.ErrorCode
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("memberhub: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("memberhub: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type statusBody struct {
	Status membership.Status `json:"status"`
}

type errorBody struct {
	Error struct {
		Code    apperrors.ErrorCode `json:"code"`
		Message string              `json:"message"`
	} `json:"error"`
}

// MemberStatus asks the server for the caller's membership status.
//
// A 404 means the account is gone and yields unregistered with no error. Any
// other failure yields error together with the cause. A 2xx is active unless
// the body carries a more specific status.
func (c *Client) MemberStatus(ctx context.Context) (membership.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statusPath, nil)
	if err != nil {
		return membership.StatusError, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return membership.StatusError, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return membership.StatusError, err
	}

	status := membership.FromHTTP(resp.StatusCode)
	switch status {
	case membership.StatusUnregistered:
		return status, nil
	case membership.StatusError:
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body errorBody
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Code = body.Error.Code
			apiErr.Message = body.Error.Message
		}
		return status, apiErr
	}

	var body statusBody
	if json.Unmarshal(raw, &body) == nil && body.Status.Valid() && body.Status != membership.StatusLoading {
		return body.Status, nil
	}
	return status, nil
}
