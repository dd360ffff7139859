// Package transport provides the single resilient HTTP client every live
// data-access call goes through.
//
// Each request runs two interceptor stages: an outbound stage that awaits the
// current credential from the auth coordinator and attaches it, and an inbound
// stage that normalizes every outcome through apierror before it leaves the
// transport. Transient failures (no response, or status >= 500) are retried
// with exponential backoff; 4xx client errors are assumed deterministic and
// are never retried.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/chimerakang/hotspot-go/apierror"
	"github.com/chimerakang/hotspot-go/metrics"
)

// CredentialFunc returns the current bearer token. Supplied by the auth
// coordinator; called before every request. A failure here is swallowed and
// the request proceeds without credentials, which keeps public endpoints
// reachable while signed out.
type CredentialFunc func(ctx context.Context) (string, error)

// Header schemes for the two credential issuance flows that coexist on the
// backend.
const (
	SchemeBearer = "Bearer"
	SchemeToken  = "Token"
)

// DefaultTimeout is the wall-clock limit for a single attempt, independent of
// the retry count.
const DefaultTimeout = 15 * time.Second

// DefaultMaxAttempts is the total attempt cap: one initial try plus three
// retries.
const DefaultMaxAttempts = 4

// Transport is the shared HTTP client. Construct one per process and pass it
// by reference.
type Transport struct {
	baseURL     string
	httpClient  *http.Client
	credential  CredentialFunc
	scheme      string
	maxAttempts uint
	initialWait time.Duration
	maxWait     time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures the Transport.
type Option func(*Transport)

// WithHTTPClient sets a custom HTTP client. Its Timeout bounds each attempt.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.httpClient = c }
}

// WithCredentialFunc sets the credential accessor used by the outbound stage.
func WithCredentialFunc(f CredentialFunc) Option {
	return func(t *Transport) { t.credential = f }
}

// WithScheme sets the Authorization header scheme. Default: Bearer.
func WithScheme(scheme string) Option {
	return func(t *Transport) { t.scheme = scheme }
}

// WithMaxAttempts caps the total attempts per request (first try included).
func WithMaxAttempts(n uint) Option {
	return func(t *Transport) { t.maxAttempts = n }
}

// WithBackoffWait sets the initial and maximum backoff intervals between
// attempts. Shrink these in tests.
func WithBackoffWait(initial, max time.Duration) Option {
	return func(t *Transport) {
		t.initialWait = initial
		t.maxWait = max
	}
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transport) { t.metrics = m }
}

// New creates a Transport for the given base URL.
func New(baseURL string, opts ...Option) *Transport {
	t := &Transport{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		scheme:      SchemeBearer,
		maxAttempts: DefaultMaxAttempts,
		initialWait: 500 * time.Millisecond,
		maxWait:     10 * time.Second,
		logger:      slog.Default(),
		metrics:     metrics.New(false),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// backendError is the structured error body the backend returns on failures.
type backendError struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Code    string `json:"code"`
}

// Do executes one logical request. body is JSON-encoded when non-nil; the
// response body is decoded into out when non-nil. Retries are transparent: a
// successful retried call is indistinguishable from a first-try success.
func (t *Transport) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return apierror.FromAny(fmt.Errorf("encode request body: %w", err))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.initialWait
	bo.MaxInterval = t.maxWait

	start := time.Now()
	attempts := 0

	raw, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempts++
		if attempts > 1 {
			t.metrics.RecordRetry()
		}
		return t.attempt(ctx, method, path, payload)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(t.maxAttempts))

	t.metrics.RecordRequest(method, statusClassOf(err), time.Since(start).Seconds())

	if err != nil {
		norm := apierror.FromAny(err)
		t.metrics.RecordFailure(string(norm.Kind))
		t.logger.Debug("request failed",
			"method", method, "path", path,
			"attempts", attempts, "kind", norm.Kind, "status", norm.Status)
		return norm
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return apierror.FromAny(fmt.Errorf("decode response body: %w", err))
		}
	}
	return nil
}

// attempt performs a single HTTP round trip and classifies the outcome.
func (t *Transport) attempt(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reqBody)
	if err != nil {
		return nil, backoff.Permanent(apierror.FromAny(err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Outbound stage: awaited credential injection. A credential fetch
	// failure is not escalated; the request proceeds unauthenticated.
	if t.credential != nil {
		token, err := t.credential(ctx)
		if err != nil {
			t.logger.Debug("credential fetch failed, proceeding without auth", "err", err)
		} else if token != "" {
			req.Header.Set("Authorization", t.scheme+" "+token)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// No response received: timeout, refused connection, DNS failure.
		// Retry-eligible.
		return nil, apierror.FromNetwork(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierror.FromNetwork(err)
	}

	if resp.StatusCode >= 400 {
		var be backendError
		_ = json.Unmarshal(raw, &be)
		msg := be.Message
		if msg == "" {
			msg = be.Detail
		}
		norm := apierror.FromResponse(resp.StatusCode, msg,
			fmt.Sprintf("request failed with status %d", resp.StatusCode))
		if be.Code != "" {
			norm.Code = be.Code
		}
		if resp.StatusCode < 500 {
			// Client errors are deterministic; retrying is unsafe.
			return nil, backoff.Permanent(norm)
		}
		return nil, norm
	}

	return raw, nil
}

// Get issues a GET request and decodes the response into out.
func (t *Transport) Get(ctx context.Context, path string, out any) error {
	return t.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (t *Transport) Post(ctx context.Context, path string, body, out any) error {
	return t.Do(ctx, http.MethodPost, path, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (t *Transport) Patch(ctx context.Context, path string, body, out any) error {
	return t.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (t *Transport) Delete(ctx context.Context, path string) error {
	return t.Do(ctx, http.MethodDelete, path, nil, nil)
}

func statusClassOf(err error) string {
	if err == nil {
		return "2xx"
	}
	e := apierror.FromAny(err)
	switch {
	case e.Network:
		return "network"
	case e.Status >= 500:
		return "5xx"
	case e.Status >= 400:
		return "4xx"
	default:
		return "error"
	}
}
