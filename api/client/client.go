package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/ing-bank/zkflow-sub006/api"
	"github.com/ing-bank/zkflow-sub006/log"
)

const (
	// HTTPGET is the method string used for calling Request()
	HTTPGET = http.MethodGet
	// HTTPPOST is the method string used for calling Request()
	HTTPPOST = http.MethodPost

	// DefaultRetries is the number of attempts of a request failing at the
	// transport level or with a 502, 503 or 504 status.
	DefaultRetries = 3
	// DefaultTimeout is the default timeout for the HTTP client
	DefaultTimeout = 10 * time.Second
	// DefaultBackoff is the wait before the second attempt. It doubles on
	// every further attempt.
	DefaultBackoff = 250 * time.Millisecond

	maxLoggedBody = 512
)

// Error is a non 200 response. Code and Message are set when the body
// holds an API error.
type Error struct {
	Status  int
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("API error: %d (%s)", e.Status, e.Message)
	}
	return fmt.Sprintf("API error: %d (%d: %s)", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func newError(status int, body []byte) *Error {
	e := &Error{Status: status, Message: string(bytes.TrimSpace(body))}
	var decoded struct {
		Err  string `json:"error"`
		Code int    `json:"code"`
	}
	if json.Unmarshal(body, &decoded) == nil && decoded.Code != 0 {
		e.Code, e.Message = decoded.Code, decoded.Err
	}
	return e
}

// HTTPclient is the zkflow API HTTP client.
type HTTPclient struct {
	c       *http.Client
	host    *url.URL
	retries int
	backoff time.Duration
}

// New connects to the API host and returns the handle. The host must answer
// the ping endpoint.
func New(host string) (*HTTPclient, error) {
	hostURL, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	c := &HTTPclient{
		c: &http.Client{
			Transport: &http.Transport{IdleConnTimeout: DefaultTimeout},
			Timeout:   DefaultTimeout,
		},
		host:    hostURL,
		retries: DefaultRetries,
		backoff: DefaultBackoff,
	}
	log.Debugw("http client created", "host", hostURL.String())
	if err := c.Ping(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// Ping checks the API server is up.
func (c *HTTPclient) Ping(ctx context.Context) error {
	data, status, err := c.RequestContext(ctx, HTTPGET, nil, nil, api.PingEndpoint)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return newError(status, data)
	}
	return nil
}

// SetRetries configures the number of attempts of a request.
func (c *HTTPclient) SetRetries(n int) {
	c.retries = max(n, 1)
}

// SetTimeout configures the timeout for the HTTP client.
func (c *HTTPclient) SetTimeout(d time.Duration) {
	c.c.Timeout = d
	if tr, ok := c.c.Transport.(*http.Transport); ok {
		tr.ResponseHeaderTimeout = d
	}
}

// Request performs a request with a background context. See RequestContext.
func (c *HTTPclient) Request(method string, jsonBody any, params []string, urlPath ...string) ([]byte, int, error) {
	return c.RequestContext(context.Background(), method, jsonBody, params, urlPath...)
}

// RequestContext performs a `method` type raw request to the endpoint joined
// from urlPath, attaching jsonBody when not nil. It returns the response
// body and status code.
//
// params holds query parameters as key, value pairs. A trailing key without
// value is ignored.
func (c *HTTPclient) RequestContext(ctx context.Context, method string, jsonBody any, params []string, urlPath ...string) ([]byte, int, error) {
	var body []byte
	if jsonBody != nil {
		var err error
		if body, err = json.Marshal(jsonBody); err != nil {
			return nil, 0, fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}

	u := *c.host
	u.Path = path.Join(u.Path, path.Join(urlPath...))
	if len(params) > 1 {
		values := url.Values{}
		for i := 0; i+1 < len(params); i += 2 {
			values.Set(params[i], params[i+1])
		}
		u.RawQuery = values.Encode()
	}

	requestID := uuid.NewString()
	logged := body
	if len(logged) > maxLoggedBody {
		logged = append(logged[:maxLoggedBody:maxLoggedBody], "..."...)
	}
	log.Debugw("http client request", "type", method, "url", u.String(), "id", requestID, "body", string(logged))

	var lastErr error
	wait := c.backoff
	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
		data, status, err := c.do(ctx, method, u.String(), requestID, body)
		switch {
		case err != nil:
			lastErr = err
		case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
			lastErr = newError(status, data)
		default:
			return data, status, nil
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		log.Warnw("http request failed", "error", lastErr.Error(), "attempt", attempt, "retries", c.retries)
	}
	return nil, 0, fmt.Errorf("http request failed after %d attempts: %w", c.retries, lastErr)
}

func (c *HTTPclient) do(ctx context.Context, method, u, requestID string, body []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(api.RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
	}
	resp, err := c.c.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, resp.StatusCode, nil
}
