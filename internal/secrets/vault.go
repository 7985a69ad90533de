package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	dErrors "conduit/pkg/domain-errors"
	"conduit/pkg/platform/sentinel"
)

// VaultClient implements Store by calling an external KV secret service over
// HTTP. The backend contract is GET {base}/v1/secrets/{name} returning
// {"value": "..."} on 200 and a JSON error on other statuses.
type VaultClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Ensure VaultClient implements Store.
var _ Store = (*VaultClient)(nil)

// VaultOption configures the VaultClient.
type VaultOption func(*VaultClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) VaultOption {
	return func(c *VaultClient) {
		c.httpClient = client
	}
}

// NewVaultClient creates an HTTP-based secret store client.
func NewVaultClient(baseURL, token string, timeout time.Duration, opts ...VaultOption) *VaultClient {
	c := &VaultClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// secretResponse is the KV service's success payload.
type secretResponse struct {
	Value string `json:"value"`
}

// Get retrieves a plaintext secret by name from the KV service.
func (c *VaultClient) Get(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/secrets/%s", c.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create secret store request")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-Vault-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeTransport, "secret store unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", sentinel.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		// The error body is not surfaced: it could echo secret names or
		// backend internals into logs.
		return "", dErrors.New(dErrors.CodeTransport, fmt.Sprintf("secret store returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeTransport, "failed to read secret store response")
	}

	var parsed secretResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", dErrors.New(dErrors.CodeTransport, "secret store returned malformed response")
	}
	if parsed.Value == "" {
		return "", sentinel.ErrNotFound
	}
	return parsed.Value, nil
}
