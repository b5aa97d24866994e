package api

import (
	"encoding/json"
	"time"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/batch"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/history"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/viewer"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// EncodeRequest carries the three user fields.
type EncodeRequest struct {
	Canvas    string `json:"canvas"`
	Manifest  string `json:"manifest"`
	Target    string `json:"target,omitempty"`
	NoHistory bool   `json:"noHistory,omitempty"`
}

// Reference converts the request to the codec's input form.
func (r EncodeRequest) Reference() contentstate.CanvasReference {
	return contentstate.CanvasReference{CanvasURL: r.Canvas, ManifestURL: r.Manifest, Target: r.Target}
}

// EncodeResponse describes a freshly built token.
type EncodeResponse struct {
	Token     string                    `json:"token"`
	Variant   contentstate.Variant      `json:"variant"`
	State     contentstate.ContentState `json:"state"`
	Links     []viewer.Link             `json:"links"`
	HistoryID string                    `json:"historyId,omitempty"`
}

// DecodeRequest carries a token to unpack.
type DecodeRequest struct {
	Token string `json:"token"`
}

// DecodeResponse describes a decoded token. JSON is the document exactly as
// carried; State is the lenient structured reading of it. Reference is nil
// when the state has neither known shape.
type DecodeResponse struct {
	Variant   contentstate.Variant          `json:"variant"`
	State     contentstate.ContentState     `json:"state"`
	Reference *contentstate.CanvasReference `json:"reference,omitempty"`
	JSON      json.RawMessage               `json:"json"`
	Links     []viewer.Link                 `json:"links"`
}

// BatchRequest carries references to encode together.
type BatchRequest struct {
	References []contentstate.CanvasReference `json:"references"`
	Workers    int                            `json:"workers,omitempty"`
}

// BatchResponse reports per-item outcomes in input order.
type BatchResponse struct {
	Summary batch.Summary  `json:"summary"`
	Results []batch.Record `json:"results"`
}

// HistoryItem describes a recorded token in a transport-friendly format.
type HistoryItem struct {
	ID         string        `json:"id"`
	Token      string        `json:"token"`
	Variant    string        `json:"variant"`
	Canvas     string        `json:"canvas"`
	Manifest   string        `json:"manifest"`
	Target     string        `json:"target,omitempty"`
	CreatedAt  string        `json:"createdAt,omitempty"`
	LastUsedAt string        `json:"lastUsedAt,omitempty"`
	UseCount   int           `json:"useCount"`
	Links      []viewer.Link `json:"links,omitempty"`
}

// ClearResponse reports how many history entries were deleted.
type ClearResponse struct {
	Removed int64 `json:"removed"`
}

// ErrorResponse is the body of every failed HTTP request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// CheckResult mirrors a preflight check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// StatusResponse summarizes a running service.
type StatusResponse struct {
	Running        bool          `json:"running"`
	PID            int           `json:"pid,omitempty"`
	StartedAt      string        `json:"startedAt,omitempty"`
	HistoryEnabled bool          `json:"historyEnabled"`
	HistoryEntries int           `json:"historyEntries"`
	HistoryPath    string        `json:"historyPath,omitempty"`
	Viewers        []string      `json:"viewers"`
	Checks         []CheckResult `json:"checks,omitempty"`
}

// FromHistoryEntry converts a stored entry.
func FromHistoryEntry(entry *history.Entry, viewers []viewer.Viewer) HistoryItem {
	if entry == nil {
		return HistoryItem{}
	}
	item := HistoryItem{
		ID:         entry.ID,
		Token:      entry.Token,
		Variant:    string(entry.Variant),
		Canvas:     entry.CanvasURL,
		Manifest:   entry.ManifestURL,
		Target:     entry.Target,
		CreatedAt:  formatTime(entry.CreatedAt),
		LastUsedAt: formatTime(entry.LastUsedAt),
		UseCount:   entry.UseCount,
	}
	if links, err := viewer.Links(viewers, entry.Token); err == nil {
		item.Links = links
	}
	return item
}

// FromHistoryEntries converts a slice of stored entries.
func FromHistoryEntries(entries []*history.Entry, viewers []viewer.Viewer) []HistoryItem {
	items := make([]HistoryItem, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		items = append(items, FromHistoryEntry(entry, viewers))
	}
	return items
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
