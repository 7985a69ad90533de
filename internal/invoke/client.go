package invoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	invokemetrics "conduit/internal/invoke/metrics"
	"conduit/internal/invoke/tracer"
	"conduit/internal/registry/models"
	"conduit/internal/secrets"
	"conduit/pkg/domain"
	dErrors "conduit/pkg/domain-errors"
	"conduit/pkg/platform/ssrf"
	"conduit/pkg/requestcontext"
)

// DefaultMaxResponseBytes caps upstream response bodies. Without a cap a
// misbehaving upstream could exhaust process memory; bodies over the limit
// are truncated and flagged on the normalized response.
const DefaultMaxResponseBytes int64 = 10 << 20

// defaultUserAgent identifies outbound calls made by the engine.
const defaultUserAgent = "conduit/1.0"

// AuthApplier mutates an outbound request with credentials.
type AuthApplier interface {
	Apply(ctx context.Context, req *Request) error
}

// AuthFactory creates the applier for a stored auth configuration.
type AuthFactory interface {
	Create(cfg models.AuthConfig, apiID domain.APIID, tc *secrets.TenantContext) (AuthApplier, error)
}

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the normalized result of an invocation. Any upstream HTTP
// status, including 4xx and 5xx, is a normal result; only transport failures
// surface as errors.
type Response struct {
	StatusCode   int                 `json:"status_code"`
	ReasonPhrase string              `json:"reason_phrase"`
	Headers      map[string][]string `json:"headers"`
	Body         string              `json:"body"`
	Truncated    bool                `json:"truncated,omitempty"`
}

// Success reports whether the upstream status was 2xx.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client orchestrates one outbound invocation: build, SSRF-gate, authenticate,
// dispatch, normalize.
type Client struct {
	auth      AuthFactory
	http      HTTPDoer
	logger    *slog.Logger
	metrics   *invokemetrics.Metrics
	tracer    tracer.Tracer
	maxBody   int64
	userAgent string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom transport (for testing).
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics attaches invocation metrics.
func WithMetrics(m *invokemetrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer attaches a tracer.
func WithTracer(t tracer.Tracer) ClientOption {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMaxResponseBytes overrides the response body cap.
func WithMaxResponseBytes(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// NewClient creates the invocation client.
func NewClient(authFactory AuthFactory, opts ...ClientOption) *Client {
	c := &Client{
		auth:      authFactory,
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    slog.Default(),
		tracer:    tracer.Noop{},
		maxBody:   DefaultMaxResponseBytes,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Execute invokes one operation of a registered API on behalf of a tenant.
func (c *Client) Execute(
	ctx context.Context,
	api *models.API,
	ep *models.Endpoint,
	params map[string]any,
	tc *secrets.TenantContext,
) (*Response, error) {
	start := time.Now()

	req, err := Build(api.BaseURL, ep, params)
	if err != nil {
		return nil, err
	}

	// The SSRF gate runs on every dispatch, never only at registration time,
	// so a registration edited to point inward is still caught here.
	if err := ssrf.Validate(req.URL.String()); err != nil {
		if dErrors.HasCode(err, dErrors.CodeURLNotAllowed) {
			c.metrics.IncrementBlockedURL()
			c.logger.WarnContext(ctx, "blocked outbound url",
				"api_id", api.ID.String(),
				"operation_id", ep.OperationID,
				"host", req.URL.Hostname(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil, err
	}

	applier, err := c.auth.Create(api.Auth, api.ID, tc)
	if err != nil {
		return nil, err
	}
	if err := applier.Apply(ctx, req); err != nil {
		return nil, err
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	httpReq, err := req.httpRequest(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "invoke.execute",
		tracer.String("api_id", api.ID.String()),
		tracer.String("operation_id", ep.OperationID),
		tracer.String("http.method", req.Method),
	)
	resp, err := c.http.Do(httpReq.WithContext(ctx))
	if err != nil {
		err = classifyTransportError(ctx, err)
		span.End(err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	span.SetAttributes(tracer.Int("http.status_code", resp.StatusCode))
	span.End(nil)

	normalized, err := c.normalize(resp)
	if err != nil {
		return nil, err
	}

	c.metrics.ObserveInvocation(start, normalized.StatusCode)
	c.logger.InfoContext(ctx, "api invocation",
		"api_id", api.ID.String(),
		"operation_id", ep.OperationID,
		"status", normalized.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return normalized, nil
}

// normalize flattens the upstream response into a value object. The body is
// read as text up to the configured cap.
func (c *Client) normalize(resp *http.Response) (*Response, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransport, "failed to read upstream response body")
	}
	truncated := int64(len(body)) > c.maxBody
	if truncated {
		body = body[:c.maxBody]
	}

	headers := make(map[string][]string, len(resp.Header))
	for name, values := range resp.Header {
		headers[name] = append([]string(nil), values...)
	}

	return &Response{
		StatusCode:   resp.StatusCode,
		ReasonPhrase: reasonPhrase(resp),
		Headers:      headers,
		Body:         string(body),
		Truncated:    truncated,
	}, nil
}

// reasonPhrase extracts the upstream reason phrase, falling back to the
// standard text for the status code.
func reasonPhrase(resp *http.Response) string {
	phrase := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if phrase == "" {
		return http.StatusText(resp.StatusCode)
	}
	return phrase
}

// classifyTransportError maps transport failures (DNS, TLS, refused
// connections, timeouts) onto the domain taxonomy.
func classifyTransportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "upstream call timed out")
	case errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "upstream call canceled")
	default:
		return dErrors.Wrap(err, dErrors.CodeTransport, fmt.Sprintf("upstream call failed: %v", sanitizeTransportError(err)))
	}
}

// sanitizeTransportError keeps the failure class without echoing full URLs,
// which may carry query-placed credentials.
func sanitizeTransportError(err error) string {
	var urlErr interface{ Unwrap() error }
	if errors.As(err, &urlErr) {
		if inner := urlErr.Unwrap(); inner != nil {
			return inner.Error()
		}
	}
	return "connection error"
}
