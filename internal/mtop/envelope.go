// internal/mtop/envelope.go
package mtop

import (
	"encoding/json"
	"strings"
)

// Envelope is the common response shape of both endpoints once the JSONP
// callback wrapper has been stripped.
type Envelope struct {
	Ret  []string        `json:"ret"`
	Data json.RawMessage `json:"data"`
}

// ParseEnvelope strips the JSONP wrapper (everything before the first '('
// and after the last ')') and decodes the envelope inside it.
func ParseEnvelope(body string) (*Envelope, error) {
	open := strings.IndexByte(body, '(')
	closing := strings.LastIndexByte(body, ')')
	if open < 0 || closing <= open {
		return nil, &MalformedResponse{Reason: "missing jsonp wrapper"}
	}
	var env Envelope
	if err := json.Unmarshal([]byte(body[open+1:closing]), &env); err != nil {
		return nil, &MalformedResponse{Reason: "invalid envelope json: " + err.Error()}
	}
	return &env, nil
}

// Success reports whether the envelope carries the upstream success marker.
func (e *Envelope) Success() bool {
	return len(e.Ret) > 0 && strings.HasPrefix(e.Ret[0], "SUCCESS")
}

// Err returns an *UpstreamRejected describing the failure, or nil when the
// envelope is successful.
func (e *Envelope) Err() error {
	if e.Success() {
		return nil
	}
	code := "EMPTY_RET"
	if len(e.Ret) > 0 {
		code = e.Ret[0]
	}
	return &UpstreamRejected{Code: code}
}

// CommentRecord is one entry of the comment feed.
type CommentRecord struct {
	PublisherNick string `json:"publisherNick"`
	PublisherID   string `json:"publisherId"`
	Content       string `json:"content"`
}

// CommentData is the data section of a comment-fetch response.
type CommentData struct {
	Comments          []CommentRecord `json:"comments"`
	PaginationContext string          `json:"paginationContext"`
	Delay             int64           `json:"delay"`
}

// TimestampEntry is one element of a heartbeat response's timestampList.
// Data is a base64-encoded frame of packed JSON objects.
type TimestampEntry struct {
	Offset string `json:"offset"`
	Data   string `json:"data"`
}

// HeartbeatData is the data section of a heartbeat-pull response.
type HeartbeatData struct {
	TimestampList []TimestampEntry `json:"timestampList"`
}

// CommentData decodes the envelope's data section as a comment-fetch payload.
func (e *Envelope) CommentData() (*CommentData, error) {
	var data CommentData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, &MalformedResponse{Reason: "invalid comment data: " + err.Error()}
	}
	return &data, nil
}

// HeartbeatData decodes the envelope's data section as a heartbeat payload.
func (e *Envelope) HeartbeatData() (*HeartbeatData, error) {
	var data HeartbeatData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, &MalformedResponse{Reason: "invalid heartbeat data: " + err.Error()}
	}
	return &data, nil
}
