package contentstate

import (
	"fmt"
	"strings"
)

// Build assembles the content state for a Canvas inside a Manifest. A target
// that is empty or only whitespace selects the Canvas variant; anything else
// selects the Annotation variant with the target appended to the canvas URL
// after a single '#'.
func Build(canvasURL, manifestURL, target string) (ContentState, error) {
	if strings.TrimSpace(canvasURL) == "" {
		return ContentState{}, fmt.Errorf("%w: canvas url is required", ErrInvalidInput)
	}
	if strings.TrimSpace(manifestURL) == "" {
		return ContentState{}, fmt.Errorf("%w: manifest url is required", ErrInvalidInput)
	}

	partOf := []Resource{{ID: manifestURL, Type: TypeManifest}}

	if strings.TrimSpace(target) == "" {
		return ContentState{
			ID:     canvasURL,
			Type:   TypeCanvas,
			PartOf: partOf,
		}, nil
	}

	return ContentState{
		Context:    ContextURI,
		ID:         AnnotationID,
		Type:       TypeAnnotation,
		Motivation: []string{MotivationContentState},
		Target: &Target{
			ID:     TargetID(canvasURL, target),
			Type:   TypeCanvas,
			PartOf: partOf,
		},
	}, nil
}

// BuildReference is Build for a CanvasReference.
func BuildReference(ref CanvasReference) (ContentState, error) {
	return Build(ref.CanvasURL, ref.ManifestURL, ref.Target)
}

// TargetID joins a canvas URL and a fragment with exactly one '#'. Only one
// leading '#' is removed from target; a '#' later in the string is kept.
func TargetID(canvasURL, target string) string {
	return canvasURL + "#" + strings.TrimPrefix(target, "#")
}
