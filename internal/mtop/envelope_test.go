package mtop

import (
	"errors"
	"testing"
)

func TestParseEnvelopeStripsJSONPWrapper(t *testing.T) {
	body := `mtopjsonp42({"ret":["SUCCESS::调用成功"],"data":{"delay":4000}})`
	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if !env.Success() {
		t.Error("expected success envelope")
	}
	data, err := env.CommentData()
	if err != nil {
		t.Fatalf("CommentData failed: %v", err)
	}
	if data.Delay != 4000 {
		t.Errorf("expected delay 4000, got %d", data.Delay)
	}
}

func TestParseEnvelopeNestedParens(t *testing.T) {
	// The wrapper strips to the LAST ')', so parens inside string values
	// must survive.
	body := `cb({"ret":["SUCCESS"],"data":{"comments":[{"content":"hi :)"}]}})`
	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	data, err := env.CommentData()
	if err != nil {
		t.Fatalf("CommentData failed: %v", err)
	}
	if len(data.Comments) != 1 || data.Comments[0].Content != "hi :)" {
		t.Errorf("unexpected comments: %+v", data.Comments)
	}
}

func TestParseEnvelopeMissingWrapper(t *testing.T) {
	for _, body := range []string{"", "no wrapper here", ")(", "("} {
		_, err := ParseEnvelope(body)
		var malformed *MalformedResponse
		if !errors.As(err, &malformed) {
			t.Errorf("ParseEnvelope(%q): expected MalformedResponse, got %v", body, err)
		}
	}
}

func TestParseEnvelopeInvalidJSON(t *testing.T) {
	_, err := ParseEnvelope(`cb({"ret":[)`)
	var malformed *MalformedResponse
	if !errors.As(err, &malformed) {
		t.Errorf("expected MalformedResponse, got %v", err)
	}
}

func TestEnvelopeErr(t *testing.T) {
	tests := []struct {
		name     string
		ret      []string
		wantCode string
	}{
		{"rate limited", []string{"FAIL_SYS_TRAFFIC_LIMIT::被限流"}, "FAIL_SYS_TRAFFIC_LIMIT::被限流"},
		{"empty ret", nil, "EMPTY_RET"},
	}
	for _, tt := range tests {
		env := &Envelope{Ret: tt.ret}
		err := env.Err()
		var rejected *UpstreamRejected
		if !errors.As(err, &rejected) {
			t.Fatalf("%s: expected UpstreamRejected, got %v", tt.name, err)
		}
		if rejected.Code != tt.wantCode {
			t.Errorf("%s: code = %q, want %q", tt.name, rejected.Code, tt.wantCode)
		}
	}

	success := &Envelope{Ret: []string{"SUCCESS::调用成功"}}
	if err := success.Err(); err != nil {
		t.Errorf("success envelope returned error: %v", err)
	}
}

func TestSignatureRejected(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"FAIL_SYS_ILLEGAL_ACCESS::非法请求", true},
		{"FAIL_SYS_TOKEN_EXPIRED::令牌过期", true},
		{"FAIL_SYS_TRAFFIC_LIMIT::被限流", false},
	}
	for _, tt := range tests {
		rejected := &UpstreamRejected{Code: tt.code}
		if rejected.SignatureRejected() != tt.want {
			t.Errorf("SignatureRejected(%q) = %v, want %v", tt.code, !tt.want, tt.want)
		}
	}
}

func TestHeartbeatData(t *testing.T) {
	body := `cb({"ret":["SUCCESS"],"data":{"timestampList":[{"offset":"100","data":"aGk="},{"offset":"200","data":""}]}})`
	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	data, err := env.HeartbeatData()
	if err != nil {
		t.Fatalf("HeartbeatData failed: %v", err)
	}
	if len(data.TimestampList) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(data.TimestampList))
	}
	if data.TimestampList[1].Offset != "200" {
		t.Errorf("expected last offset 200, got %s", data.TimestampList[1].Offset)
	}
}
