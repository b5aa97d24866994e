package contentstate

import "errors"

var (
	// ErrInvalidInput reports a missing canvas or manifest URL.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEncode reports a content state that could not be serialized.
	ErrEncode = errors.New("encode content state")
	// ErrDecode reports a token that is not valid base64url.
	ErrDecode = errors.New("invalid base64 token")
	// ErrMalformedText reports a token whose bytes are not UTF-8.
	ErrMalformedText = errors.New("token payload is not valid UTF-8")
	// ErrMalformedPercentEncoding reports an invalid %XX escape, or escapes
	// that decode to invalid UTF-8.
	ErrMalformedPercentEncoding = errors.New("malformed percent-encoding")
	// ErrInvalidJSON reports a payload that does not parse as JSON.
	ErrInvalidJSON = errors.New("invalid JSON")
)

// Error kinds returned by Kind.
const (
	KindInvalidInput             = "invalid_input"
	KindEncode                   = "encode_error"
	KindDecode                   = "decode_error"
	KindMalformedText            = "malformed_text"
	KindMalformedPercentEncoding = "malformed_percent_encoding"
	KindInvalidJSON              = "invalid_json"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidInput, KindInvalidInput},
	{ErrEncode, KindEncode},
	{ErrDecode, KindDecode},
	{ErrMalformedText, KindMalformedText},
	{ErrMalformedPercentEncoding, KindMalformedPercentEncoding},
	{ErrInvalidJSON, KindInvalidJSON},
}

// Kind returns the stable kind string for a codec error, or "" when err did
// not originate in this package.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

// IsTokenError reports whether err means the input was not a valid
// content-state token.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrDecode) ||
		errors.Is(err, ErrMalformedText) ||
		errors.Is(err, ErrMalformedPercentEncoding) ||
		errors.Is(err, ErrInvalidJSON)
}
