// internal/mtop/request.go
package mtop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	commentAPI      = "mtop.taobao.iliad.comment.query.latest"
	commentAppKey   = "34675810"
	commentURL      = "https://h5api.m.taobao.com/h5/mtop.taobao.iliad.comment.query.latest/1.0/"
	heartbeatAPI    = "mtop.taobao.powermsg.h5.msg.pullnativemsg"
	heartbeatAppKey = "12574478"
	heartbeatURL    = "https://h5api.m.taobao.com/h5/mtop.taobao.powermsg.h5.msg.pullnativemsg/1.0/"

	jsVersion  = "2.7.2"
	sdkVersion = "h5_3.4.2"
)

// Request is one fully-assembled upstream call. All payload data rides in
// the query string; the body is empty (JSONP-era API).
type Request struct {
	URL    string
	Query  url.Values
	Header http.Header
}

// Builder assembles signed requests for the two upstream operations. The
// clock and the callback nonce are injectable so tests can pin them.
type Builder struct {
	// CommentURL and HeartbeatURL default to the production endpoints and
	// are overridable for tests.
	CommentURL   string
	HeartbeatURL string

	token    string // full _m_h5_tk cookie value
	now      func() time.Time
	callback func() string
}

// NewBuilder creates a Builder signing with the given _m_h5_tk cookie value.
func NewBuilder(mH5Tk string) *Builder {
	return &Builder{
		CommentURL:   commentURL,
		HeartbeatURL: heartbeatURL,
		token:        mH5Tk,
		now:          time.Now,
		callback: func() string {
			return fmt.Sprintf("mtopjsonp%d", rand.IntN(100)+1)
		},
	}
}

// SetClock overrides the timestamp source. Tests only.
func (b *Builder) SetClock(now func() time.Time) { b.now = now }

// SetCallback overrides the JSONP callback-name generator. Tests only.
func (b *Builder) SetCallback(fn func() string) { b.callback = fn }

// Field order matters: the canonical body is signed, so it must serialize
// identically on every build.
type commentBody struct {
	Topic             string `json:"topic"`
	Limit             int    `json:"limit"`
	Tab               int    `json:"tab"`
	Order             string `json:"order"`
	PaginationContext string `json:"paginationContext,omitempty"`
}

type heartbeatBody struct {
	Topic      string `json:"topic"`
	Offset     string `json:"offset"`
	PageSize   int    `json:"pagesize"`
	Tag        string `json:"tag"`
	BizCode    int    `json:"bizcode"`
	SDKVersion string `json:"sdkversion"`
	Role       int    `json:"role"`
}

// CommentFetch builds a signed comment-feed request. The pagination cursor
// is included only when one exists from a prior fetch.
func (b *Builder) CommentFetch(topic, cursor string) (*Request, error) {
	body := commentBody{
		Topic: topic,
		Limit: 20,
		Tab:   2,
		Order: "asc",

		PaginationContext: cursor,
	}
	data, err := marshalCanonical(body)
	if err != nil {
		return nil, fmt.Errorf("marshal comment body: %w", err)
	}
	return b.build(b.CommentURL, commentAPI, commentAppKey, data, nil), nil
}

// HeartbeatPull builds a signed powermsg notification request. The roomID is
// only used for the referer header; it may be empty.
func (b *Builder) HeartbeatPull(topic, offset, roomID string) (*Request, error) {
	body := heartbeatBody{
		Topic:      topic,
		Offset:     offset,
		PageSize:   10,
		Tag:        "",
		BizCode:    1,
		SDKVersion: sdkVersion,
		Role:       3,
	}
	data, err := marshalCanonical(body)
	if err != nil {
		return nil, fmt.Errorf("marshal heartbeat body: %w", err)
	}

	header := http.Header{}
	header.Set("x-biz-type", "powermsg")
	header.Set("x-biz-info", "namespace=1")
	if roomID != "" {
		header.Set("referer", "https://tbzb.taobao.com/live?liveId="+roomID)
	} else {
		header.Set("referer", "https://tbzb.taobao.com/")
	}
	return b.build(b.HeartbeatURL, heartbeatAPI, heartbeatAppKey, data, header), nil
}

func (b *Builder) build(endpoint, api, appKey, data string, header http.Header) *Request {
	t := strconv.FormatInt(b.now().UnixMilli(), 10)

	q := url.Values{}
	q.Set("jsv", jsVersion)
	q.Set("appKey", appKey)
	q.Set("t", t)
	q.Set("sign", Sign(TokenFromCookie(b.token), t, appKey, data))
	q.Set("api", api)
	q.Set("v", "1.0")
	q.Set("preventFallback", "true")
	q.Set("type", "jsonp")
	q.Set("dataType", "jsonp")
	q.Set("callback", b.callback())
	q.Set("data", data)

	return &Request{URL: endpoint, Query: q, Header: header}
}

// marshalCanonical serializes a body with stable field order, no extra
// whitespace and no HTML escaping, matching what the upstream verifies the
// signature against.
func marshalCanonical(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
