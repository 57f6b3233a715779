// internal/mtop/errors.go
package mtop

import (
	"fmt"
	"strings"
)

// TransportError wraps a network-level failure: dial, timeout, or a broken
// read. Always recoverable by the supervisor's reconnect path.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamRejected reports a response envelope without the expected success
// marker, e.g. a signature mismatch or rate limiting.
type UpstreamRejected struct {
	Code string
}

func (e *UpstreamRejected) Error() string { return fmt.Sprintf("upstream rejected: %s", e.Code) }

// SignatureRejected reports whether the rejection code indicates a signature
// or token failure rather than some other upstream condition.
func (e *UpstreamRejected) SignatureRejected() bool {
	return strings.Contains(e.Code, "SIGN") ||
		strings.Contains(e.Code, "TOKEN") ||
		strings.Contains(e.Code, "ILLEGAL_ACCESS")
}

// MalformedResponse reports a response body that could not be parsed as a
// JSONP-wrapped envelope or whose data section is structurally invalid.
// Treated like a transport failure: transient, recoverable.
type MalformedResponse struct {
	Reason string
}

func (e *MalformedResponse) Error() string { return fmt.Sprintf("malformed response: %s", e.Reason) }
