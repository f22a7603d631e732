package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a transcript encoding.
type Format string

const (
	// FormatJSONL is one JSON record per line.
	FormatJSONL Format = "jsonl"
	// FormatYAML is a YAML sequence of records.
	FormatYAML Format = "yaml"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 * 1024 * 1024

// ParseFormat accepts a format name as given on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "jsonl", "json", "ndjson":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown transcript format %q", s)
}

// FormatFromPath picks the format from a file extension, defaulting to
// JSONL.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSONL
}

// Decode reads all records from r.
func Decode(r io.Reader, format Format) ([]Record, error) {
	switch format {
	case FormatJSONL:
		return decodeJSONL(r)
	case FormatYAML:
		return decodeYAML(r)
	}
	return nil, fmt.Errorf("unknown transcript format %q", format)
}

func decodeJSONL(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return records, nil
}

func decodeYAML(r io.Reader) ([]Record, error) {
	var records []Record
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing yaml transcript: %w", err)
	}
	return records, nil
}
