package mtop

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testCreds() Credentials {
	return Credentials{Token: "abcdef1234_5678", TokenEnc: "enc"}
}

func TestClientDoSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("api"); got != "mtop.taobao.iliad.comment.query.latest" {
			t.Errorf("api param = %s", got)
		}
		cookie, err := r.Cookie("_m_h5_tk")
		if err != nil || cookie.Value != "abcdef1234_5678" {
			t.Error("missing _m_h5_tk cookie")
		}
		if _, err := r.Cookie("_m_h5_tk_enc"); err != nil {
			t.Error("missing _m_h5_tk_enc cookie")
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing user agent")
		}
		w.Write([]byte(`cb({"ret":["SUCCESS::ok"],"data":{"comments":[],"delay":6000}})`))
	}))
	defer server.Close()

	builder := testBuilder()
	builder.CommentURL = server.URL
	req, err := builder.CommentFetch("topic-1", "")
	if err != nil {
		t.Fatal(err)
	}

	env, err := NewClient().Do(context.Background(), req, testCreds())
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if !env.Success() {
		t.Error("expected success envelope")
	}
}

func TestClientDoTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	builder := testBuilder()
	builder.CommentURL = server.URL
	req, _ := builder.CommentFetch("topic-1", "")

	_, err := NewClient().Do(context.Background(), req, testCreds())
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Errorf("expected TransportError, got %v", err)
	}
}

func TestClientDoHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	builder := testBuilder()
	builder.CommentURL = server.URL
	req, _ := builder.CommentFetch("topic-1", "")

	_, err := NewClient().Do(context.Background(), req, testCreds())
	var rejected *UpstreamRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected UpstreamRejected, got %v", err)
	}
	if rejected.Code != "HTTP_429" {
		t.Errorf("code = %s, want HTTP_429", rejected.Code)
	}
}

func TestClientDoRejectedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`cb({"ret":["FAIL_SYS_ILLEGAL_ACCESS::非法请求"],"data":{}})`))
	}))
	defer server.Close()

	builder := testBuilder()
	builder.CommentURL = server.URL
	req, _ := builder.CommentFetch("topic-1", "")

	_, err := NewClient().Do(context.Background(), req, testCreds())
	var rejected *UpstreamRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected UpstreamRejected, got %v", err)
	}
	if !rejected.SignatureRejected() {
		t.Error("expected signature rejection")
	}
}

func TestClientDoMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer server.Close()

	builder := testBuilder()
	builder.CommentURL = server.URL
	req, _ := builder.CommentFetch("topic-1", "")

	_, err := NewClient().Do(context.Background(), req, testCreds())
	var malformed *MalformedResponse
	if !errors.As(err, &malformed) {
		t.Errorf("expected MalformedResponse, got %v", err)
	}
}

func TestClientDoStaleCredentials(t *testing.T) {
	builder := testBuilder()
	req, _ := builder.CommentFetch("topic-1", "")

	_, err := NewClient().Do(context.Background(), req, Credentials{})
	var rejected *UpstreamRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected UpstreamRejected, got %v", err)
	}
	if rejected.Code != "STALE_CREDENTIALS" {
		t.Errorf("code = %s", rejected.Code)
	}
}
