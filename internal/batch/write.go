package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fxamacker/cbor/v2"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
)

// OutputFormat names a result rendering.
type OutputFormat string

const (
	OutputTSV  OutputFormat = "tsv"
	OutputJSON OutputFormat = "json"
	OutputCBOR OutputFormat = "cbor"
)

// ParseOutputFormat validates a user-supplied format name.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch OutputFormat(name) {
	case OutputTSV, OutputJSON, OutputCBOR:
		return OutputFormat(name), nil
	default:
		return "", fmt.Errorf("%w: %q (want tsv, json, or cbor)", ErrUnsupportedFormat, name)
	}
}

// Record is the serialized form of a Result. CBOR reuses the json tags.
type Record struct {
	Index    int    `json:"index"`
	Canvas   string `json:"canvas"`
	Manifest string `json:"manifest"`
	Target   string `json:"target,omitempty"`
	Token    string `json:"token,omitempty"`
	Variant  string `json:"variant,omitempty"`
	Error    string `json:"error,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

// Records converts results for serialization.
func Records(results []Result) []Record {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		rec := Record{
			Index:    r.Index,
			Canvas:   r.Reference.CanvasURL,
			Manifest: r.Reference.ManifestURL,
			Target:   r.Reference.Target,
			Token:    r.Token,
			Variant:  string(r.Variant),
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
			rec.Kind = contentstate.Kind(r.Err)
		}
		records = append(records, rec)
	}
	return records
}

type document struct {
	Summary Summary  `json:"summary"`
	Results []Record `json:"results"`
}

var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("batch: CBOR encoder initialization failed: " + err.Error())
	}
}

// Write renders results to w.
func Write(w io.Writer, results []Result, format OutputFormat) error {
	switch format {
	case OutputTSV:
		return writeTSV(w, results)
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(document{Summary: Summarize(results), Results: Records(results)})
	case OutputCBOR:
		return cborEncMode.NewEncoder(w).Encode(document{Summary: Summarize(results), Results: Records(results)})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func writeTSV(w io.Writer, results []Result) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write([]string{"index", "canvas", "manifest", "target", "token", "error"}); err != nil {
		return err
	}
	for _, rec := range Records(results) {
		row := []string{strconv.Itoa(rec.Index), rec.Canvas, rec.Manifest, rec.Target, rec.Token, rec.Error}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
