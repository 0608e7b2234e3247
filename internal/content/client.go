// Package content talks to the hosted content store that serves the product
// catalog and receives checkout documents. Reads are GROQ queries over HTTP;
// writes are mutation batches.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/go_storefront/pkg/circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrUnavailable = errors.New("content store unavailable")

// StatusError is a non-2xx answer from the content store.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content store returned %d: %s", e.StatusCode, e.Body)
}

type Options struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	BaseURL    string
	Timeout    time.Duration
}

type Client struct {
	http    *http.Client
	base    string
	dataset string
	token   string
	breaker *circuitbreaker.Breaker
	log     *slog.Logger
}

func NewClient(opts Options, log *slog.Logger) *Client {
	base := opts.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io", opts.ProjectID)
	}
	base = strings.TrimRight(base, "/") + "/v" + strings.TrimPrefix(opts.APIVersion, "v")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		base:    base,
		dataset: opts.Dataset,
		token:   opts.Token,
		breaker: circuitbreaker.New(circuitbreaker.DefaultSettings("content-store"), log),
		log:     log,
	}
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// Query runs a GROQ query and decodes its result into out. Params are sent
// as JSON-encoded $name arguments. A null result leaves out untouched and
// reports found=false.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) (found bool, err error) {
	q := url.Values{}
	q.Set("query", query)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return false, fmt.Errorf("failed to encode param %s: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	endpoint := fmt.Sprintf("%s/data/query/%s?%s", c.base, url.PathEscape(c.dataset), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build query request: %w", err)
	}

	var resp queryResponse
	if err := c.do(req, &resp); err != nil {
		return false, err
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return false, fmt.Errorf("failed to decode query result: %w", err)
	}
	return true, nil
}

type mutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

// Create stores doc as a new document and returns the id assigned to it.
// doc must carry a _type field.
func (c *Client) Create(ctx context.Context, doc any) (string, error) {
	body, err := json.Marshal(map[string]any{
		"mutations": []any{map[string]any{"create": doc}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode mutation: %w", err)
	}

	endpoint := fmt.Sprintf("%s/data/mutate/%s?returnIds=true", c.base, url.PathEscape(c.dataset))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build mutate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp mutateResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("content store returned no mutation results")
	}
	return resp.Results[0].ID, nil
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	// 4xx answers are the caller's problem and must not trip the breaker.
	var clientErr error
	err := c.breaker.Execute(func() error {
		res, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("content store request failed: %w", err)
		}
		defer res.Body.Close()

		if res.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
			statusErr := &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
			if res.StatusCode >= 500 {
				return statusErr
			}
			clientErr = statusErr
			return nil
		}

		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode content store response: %w", err)
		}
		return nil
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		c.log.WarnContext(req.Context(), "content store circuit open", "method", req.Method, "path", req.URL.Path)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}
	return clientErr
}

// Healthy reports ErrUnavailable while the breaker is open.
func (c *Client) Healthy(context.Context) error {
	if c.breaker.State() == "open" {
		return ErrUnavailable
	}
	return nil
}
