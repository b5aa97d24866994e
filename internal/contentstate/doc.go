// Package contentstate builds, encodes, and decodes IIIF Content State
// tokens.
//
// A token describes a viewing intent: a Canvas inside a Manifest, optionally
// narrowed to a region through an Annotation target. Build selects the
// Canvas or Annotation shape from a CanvasReference, Encode renders that
// shape as compact JSON, percent-encodes it the way URI components are
// escaped, and finishes with unpadded base64url. Decode reverses each step
// and reports which step rejected the input through the sentinel errors in
// errors.go.
//
// Every function here is pure. Callers may share them across goroutines
// without coordination.
package contentstate
