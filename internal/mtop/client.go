// internal/mtop/client.go
package mtop

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"

const requestTimeout = 10 * time.Second

// Credentials are the two session cookies attached to every signed call.
// They are acquired at bootstrap and replaced wholesale on reconnect.
type Credentials struct {
	Token    string // _m_h5_tk
	TokenEnc string // _m_h5_tk_enc
}

// Valid reports whether both cookies are present.
func (c Credentials) Valid() bool {
	return c.Token != "" && c.TokenEnc != ""
}

// Client performs signed GET calls and decodes the response envelope.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a Client with the default 10s timeout.
func NewClient() *Client {
	return &Client{
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}
}

// Do issues the request with session cookies attached and returns the parsed
// envelope. Errors are classified per the taxonomy in errors.go:
// TransportError for network failures, UpstreamRejected for HTTP-level
// errors and non-success envelopes, MalformedResponse for unparseable
// bodies.
func (c *Client) Do(ctx context.Context, req *Request, creds Credentials) (*Envelope, error) {
	if !creds.Valid() {
		return nil, &UpstreamRejected{Code: "STALE_CREDENTIALS"}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL+"?"+req.Query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.AddCookie(&http.Cookie{Name: "_m_h5_tk", Value: creds.Token})
	httpReq.AddCookie(&http.Cookie{Name: "_m_h5_tk_enc", Value: creds.TokenEnc})

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamRejected{Code: fmt.Sprintf("HTTP_%d", resp.StatusCode)}
	}

	env, err := ParseEnvelope(string(body))
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	return env, nil
}
