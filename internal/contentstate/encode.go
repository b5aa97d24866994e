package contentstate

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// Encode turns a content state into a URL-safe token. Identical states always
// yield identical tokens.
func Encode(state ContentState) (string, error) {
	text, err := Marshal(state)
	if err != nil {
		return "", err
	}
	return EncodeJSON(text), nil
}

// EncodeReference builds and encodes ref in one call.
func EncodeReference(ref CanvasReference) (string, error) {
	state, err := BuildReference(ref)
	if err != nil {
		return "", err
	}
	return Encode(state)
}

// Marshal renders state as compact JSON in the fixed key order. HTML
// characters are left unescaped so the text matches what browsers produce.
func Marshal(state ContentState) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// EncodeJSON percent-encodes already serialized JSON text and wraps the
// result in unpadded base64url. The escaped text is pure ASCII, so its bytes
// are its UTF-8 encoding.
func EncodeJSON(text []byte) string {
	return base64.RawURLEncoding.EncodeToString([]byte(escapeComponent(text)))
}

// escapeComponent percent-encodes every byte outside the URI component
// unreserved set.
func escapeComponent(text []byte) string {
	var b strings.Builder
	b.Grow(len(text) * 3)
	for _, c := range text {
		if unreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func unreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
