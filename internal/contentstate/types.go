package contentstate

import "strings"

const (
	// ContextURI is the JSON-LD context attached to Annotation content states.
	ContextURI = "http://iiif.io/api/presentation/3/context.json"
	// AnnotationID is the fixed identifier carried by every Annotation
	// content state. Consumers treat it as opaque.
	AnnotationID = "https://example.org/import/1"
	// MotivationContentState is the sole motivation of an Annotation content state.
	MotivationContentState = "contentState"

	TypeCanvas     = "Canvas"
	TypeManifest   = "Manifest"
	TypeAnnotation = "Annotation"
)

// Variant names the shape of a ContentState.
type Variant string

const (
	VariantCanvas     Variant = "canvas"
	VariantAnnotation Variant = "annotation"
	VariantUnknown    Variant = "unknown"
)

// CanvasReference is the three-field description a user supplies.
type CanvasReference struct {
	CanvasURL   string `json:"canvas" toml:"canvas" yaml:"canvas"`
	ManifestURL string `json:"manifest" toml:"manifest" yaml:"manifest"`
	Target      string `json:"target,omitempty" toml:"target" yaml:"target"`
}

// HasTarget reports whether the reference narrows the Canvas to a region.
func (r CanvasReference) HasTarget() bool {
	return strings.TrimSpace(r.Target) != ""
}

// Resource is an {id, type} pair used for partOf entries.
type Resource struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type,omitempty"`
}

// Target is the Canvas an Annotation content state points at.
type Target struct {
	ID     string     `json:"id,omitempty"`
	Type   string     `json:"type,omitempty"`
	PartOf []Resource `json:"partOf,omitempty"`
}

// ContentState is the object carried inside a token. Field order matches the
// serialized key order and must not change: tokens are computed over the
// literal JSON text.
type ContentState struct {
	Context    string     `json:"@context,omitempty"`
	ID         string     `json:"id,omitempty"`
	Type       string     `json:"type,omitempty"`
	Motivation []string   `json:"motivation,omitempty"`
	Target     *Target    `json:"target,omitempty"`
	PartOf     []Resource `json:"partOf,omitempty"`
}

// Variant reports which of the two known shapes s has.
func (s ContentState) Variant() Variant {
	switch {
	case s.Type == TypeAnnotation && s.Target != nil:
		return VariantAnnotation
	case s.Type == TypeCanvas:
		return VariantCanvas
	default:
		return VariantUnknown
	}
}

// Reference recovers the three-field form of s so it can be edited and
// rebuilt. The canvas and target are split at the first '#' of the
// Annotation target id. ok is false when s has neither known shape.
func (s ContentState) Reference() (ref CanvasReference, ok bool) {
	switch s.Variant() {
	case VariantCanvas:
		return CanvasReference{
			CanvasURL:   s.ID,
			ManifestURL: firstManifest(s.PartOf),
		}, true
	case VariantAnnotation:
		canvas, fragment, _ := strings.Cut(s.Target.ID, "#")
		return CanvasReference{
			CanvasURL:   canvas,
			ManifestURL: firstManifest(s.Target.PartOf),
			Target:      fragment,
		}, true
	default:
		return CanvasReference{}, false
	}
}

func firstManifest(parts []Resource) string {
	for _, part := range parts {
		if part.Type == TypeManifest {
			return part.ID
		}
	}
	if len(parts) > 0 {
		return parts[0].ID
	}
	return ""
}
