// Package mtop implements the signed JSONP-style polling API used by the
// live comment and powermsg notification feeds: request signing, parameter
// assembly, envelope decoding, and the transport client.
package mtop

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// TokenFromCookie extracts the signing token from an _m_h5_tk cookie value,
// which is the substring before the first underscore.
func TokenFromCookie(mH5Tk string) string {
	if i := strings.IndexByte(mH5Tk, '_'); i >= 0 {
		return mH5Tk[:i]
	}
	return mH5Tk
}

// Sign computes the request signature: the MD5 hex digest of
// "token&timestamp&appKey&body". MD5 is what the upstream verifies against;
// this is wire compatibility, not a security boundary.
func Sign(token, timestamp, appKey, body string) string {
	sum := md5.Sum([]byte(token + "&" + timestamp + "&" + appKey + "&" + body))
	return hex.EncodeToString(sum[:])
}
