// Package invoke builds, authenticates, gates, and dispatches outbound calls
// to registered third-party APIs, and normalizes their responses.
package invoke

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	dErrors "conduit/pkg/domain-errors"
)

// Request is an outbound request under construction. Auth handlers mutate
// headers and query parameters; once dispatched it is never modified again.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte
}

// SetQueryParam sets (or overwrites) a single query parameter, preserving all
// other existing parameters.
func (r *Request) SetQueryParam(name, value string) {
	q := r.URL.Query()
	q.Set(name, value)
	r.URL.RawQuery = q.Encode()
}

// AddCookie appends a cookie to the Cookie header without disturbing cookies
// that are already present.
func (r *Request) AddCookie(name, value string) {
	cookie := name + "=" + value
	if existing := r.Header.Get("Cookie"); existing != "" {
		cookie = existing + "; " + cookie
	}
	r.Header.Set("Cookie", cookie)
}

// httpRequest converts the built request into an *http.Request bound to ctx.
func (r *Request) httpRequest(ctx context.Context) (*http.Request, error) {
	var body *bytes.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL.String(), body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "failed to construct outbound request")
	}
	for name, values := range r.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	return req, nil
}
