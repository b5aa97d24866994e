package contentstate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

var alphabetRestorer = strings.NewReplacer("-", "+", "_", "/")

// Decode reverses Encode. JSON that parses but does not look like either
// content state variant still decodes; unknown or mistyped fields are left
// at their zero values.
func Decode(token string) (ContentState, error) {
	tree, err := DecodeRaw(token)
	if err != nil {
		return ContentState{}, err
	}
	return fromTree(tree), nil
}

// DecodeRaw decodes token into the generic tree produced by encoding/json.
func DecodeRaw(token string) (any, error) {
	text, err := decodeText(token)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal([]byte(text), &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return tree, nil
}

// DecodeJSON returns the JSON text carried by token, byte for byte.
func DecodeJSON(token string) ([]byte, error) {
	text, err := decodeText(token)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("%w: payload is not a JSON document", ErrInvalidJSON)
	}
	return []byte(text), nil
}

func decodeText(token string) (string, error) {
	std := alphabetRestorer.Replace(token)
	if pad := (4 - len(std)%4) % 4; pad > 0 {
		std += strings.Repeat("=", pad)
	}
	raw, err := base64.StdEncoding.DecodeString(std)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !utf8.Valid(raw) {
		return "", ErrMalformedText
	}
	text, err := url.PathUnescape(string(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedPercentEncoding, err)
	}
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: escapes do not form UTF-8", ErrMalformedPercentEncoding)
	}
	return text, nil
}

func fromTree(tree any) ContentState {
	obj, ok := firstObject(tree)
	if !ok {
		return ContentState{}
	}
	state := ContentState{
		Context:    firstString(obj["@context"]),
		ID:         firstString(obj["id"]),
		Type:       firstString(obj["type"]),
		Motivation: stringList(obj["motivation"]),
		PartOf:     resources(obj["partOf"]),
	}
	if target, ok := firstObject(obj["target"]); ok {
		state.Target = &Target{
			ID:     firstString(target["id"]),
			Type:   firstString(target["type"]),
			PartOf: resources(target["partOf"]),
		}
	}
	return state
}

// firstObject accepts an object or a list whose first object is used.
func firstObject(v any) (map[string]any, bool) {
	switch value := v.(type) {
	case map[string]any:
		return value, true
	case []any:
		for _, item := range value {
			if obj, ok := item.(map[string]any); ok {
				return obj, true
			}
		}
	}
	return nil, false
}

func firstString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case []any:
		for _, item := range value {
			if s, ok := item.(string); ok {
				return s
			}
		}
	}
	return ""
}

func stringList(v any) []string {
	switch value := v.(type) {
	case string:
		return []string{value}
	case []any:
		var out []string
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func resources(v any) []Resource {
	list, ok := v.([]any)
	if !ok {
		if obj, isObj := v.(map[string]any); isObj {
			list = []any{obj}
		}
	}
	var out []Resource
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Resource{
			ID:   firstString(obj["id"]),
			Type: firstString(obj["type"]),
		})
	}
	return out
}
