// Package viewer turns content-state tokens into links for IIIF viewers that
// accept them through a query parameter.
package viewer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/config"
)

// DefaultParam is the query parameter viewers read tokens from.
const DefaultParam = "iiif-content"

// Viewer is a viewer application reachable at BaseURL.
type Viewer struct {
	Name    string
	Label   string
	BaseURL string
	Param   string
}

// Link is a ready-to-open viewer URL.
type Link struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

var titleCaser = cases.Title(language.Und)

// FromConfig converts configured viewers, filling in labels and parameters
// left blank.
func FromConfig(entries []config.Viewer) []Viewer {
	viewers := make([]Viewer, 0, len(entries))
	for _, entry := range entries {
		viewers = append(viewers, New(entry.Name, entry.Label, entry.BaseURL, entry.Param))
	}
	return viewers
}

// New returns a viewer with defaults applied.
func New(name, label, baseURL, param string) Viewer {
	name = strings.TrimSpace(name)
	label = strings.TrimSpace(label)
	if label == "" {
		label = titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
	}
	param = strings.TrimSpace(param)
	if param == "" {
		param = DefaultParam
	}
	return Viewer{Name: name, Label: label, BaseURL: strings.TrimSpace(baseURL), Param: param}
}

// Link appends token to the viewer's base URL. Existing query parameters are
// kept; an existing value for the token parameter is replaced.
func (v Viewer) Link(token string) (string, error) {
	if token == "" {
		return "", errors.New("token is empty")
	}
	u, err := url.Parse(v.BaseURL)
	if err != nil {
		return "", fmt.Errorf("viewer %s: parse base url: %w", v.Name, err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("viewer %s: base url %q is not absolute", v.Name, v.BaseURL)
	}
	query := u.Query()
	query.Set(v.Param, token)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// Links builds a link for every viewer, in order. The first failure aborts.
func Links(viewers []Viewer, token string) ([]Link, error) {
	links := make([]Link, 0, len(viewers))
	for _, v := range viewers {
		target, err := v.Link(token)
		if err != nil {
			return nil, err
		}
		links = append(links, Link{Name: v.Name, Label: v.Label, URL: target})
	}
	return links, nil
}

// Find returns the viewer named name, ignoring case.
func Find(viewers []Viewer, name string) (Viewer, bool) {
	name = strings.TrimSpace(name)
	for _, v := range viewers {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return Viewer{}, false
}
