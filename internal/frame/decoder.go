// Package frame extracts the JSON objects packed inside a heartbeat frame.
//
// A frame is a base64 blob holding zero or more JSON objects back to back
// with no length prefix, count, or delimiter, usually surrounded by binary
// garbage. Object boundaries are recovered by brace-depth scanning with
// JSON string and escape awareness, so a '{' inside a string literal never
// opens a new object. Damaged candidates are skipped, never fatal: one
// malformed embedded object must not block extraction of the valid ones
// after it.
package frame

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"
)

// lexer state while scanning a candidate object
type scanState int

const (
	stateOutside scanState = iota
	stateInString
	stateEscaped
)

// Decode base64-decodes the frame and returns the embedded JSON objects in
// order. The only error condition is undecodable base64; everything inside
// the decoded buffer degrades gracefully.
func Decode(b64 string) ([]json.RawMessage, error) {
	buf, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		// Some producers omit padding.
		buf, err = base64.RawStdEncoding.DecodeString(b64)
		if err != nil {
			return nil, err
		}
	}
	return Extract(buf), nil
}

// Extract scans a decoded byte buffer for balanced JSON objects. Candidates
// that are not valid UTF-8 or fail to parse are skipped and scanning resumes
// after them. An unterminated trailing fragment is discarded.
func Extract(buf []byte) []json.RawMessage {
	var objects []json.RawMessage

	pos := 0
	for pos < len(buf) {
		next := bytes.IndexByte(buf[pos:], '{')
		if next < 0 {
			break
		}
		start := pos + next

		end, ok := scanBalanced(buf, start)
		if !ok {
			// Unterminated fragment: nothing after it can be recovered.
			break
		}

		candidate := buf[start : end+1]
		if obj, ok := parseCandidate(candidate); ok {
			objects = append(objects, obj)
		}
		pos = end + 1
	}
	return objects
}

// scanBalanced walks from the '{' at start until brace depth returns to
// zero, honoring string regions and backslash escapes. Returns the index of
// the closing '}' and whether the object was terminated.
func scanBalanced(buf []byte, start int) (int, bool) {
	depth := 0
	state := stateOutside
	for i := start; i < len(buf); i++ {
		c := buf[i]
		switch state {
		case stateEscaped:
			state = stateInString
		case stateInString:
			switch c {
			case '\\':
				state = stateEscaped
			case '"':
				state = stateOutside
			}
		default:
			switch c {
			case '"':
				state = stateInString
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
	}
	return 0, false
}

func parseCandidate(candidate []byte) (json.RawMessage, bool) {
	if !utf8.Valid(candidate) {
		return nil, false
	}
	if !json.Valid(candidate) {
		return nil, false
	}
	obj := make(json.RawMessage, len(candidate))
	copy(obj, candidate)
	return obj, true
}
