package batch

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
)

// InputFormat names a reference file syntax.
type InputFormat string

const (
	InputTOML InputFormat = "toml"
	InputYAML InputFormat = "yaml"
	InputTSV  InputFormat = "tsv"
)

// ErrUnsupportedFormat indicates an unknown input or output format.
var ErrUnsupportedFormat = errors.New("unsupported batch format")

type tomlFile struct {
	References []contentstate.CanvasReference `toml:"reference"`
}

type yamlFile struct {
	References []contentstate.CanvasReference `yaml:"references"`
}

// InputFormatFromPath picks the syntax from the file extension.
func InputFormatFromPath(path string) (InputFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return InputTOML, nil
	case ".yaml", ".yml":
		return InputYAML, nil
	case ".tsv", ".txt":
		return InputTSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads references from path, choosing the parser by extension.
func Load(path string) ([]contentstate.CanvasReference, error) {
	format, err := InputFormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	refs, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return refs, nil
}

// Parse decodes references from data in the given format.
func Parse(data []byte, format InputFormat) ([]contentstate.CanvasReference, error) {
	switch format {
	case InputTOML:
		var file tomlFile
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
		return file.References, nil
	case InputYAML:
		var file yamlFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return file.References, nil
	case InputTSV:
		return parseTSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func parseTSV(r io.Reader) ([]contentstate.CanvasReference, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var refs []contentstate.CanvasReference
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse tsv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) < 2 || len(record) > 3 {
			return nil, fmt.Errorf("parse tsv: line %d: expected 2 or 3 columns, got %d", line, len(record))
		}
		ref := contentstate.CanvasReference{CanvasURL: record[0], ManifestURL: record[1]}
		if len(record) == 3 {
			ref.Target = record[2]
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
