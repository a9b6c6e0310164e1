package world

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// errWrongShape is returned by JSONText when the text parses but is not the
// expected JSON container type.
var errWrongShape = errors.New("unexpected JSON shape")

var errTrailingData = errors.New("trailing data after JSON value")

// JSONText is a free-form JSON field edited as text. Raw is the source of
// truth for the input control; Parsed and Err are only filled by Parse,
// which callers run at save time.
type JSONText struct {
	Raw    string
	Parsed any
	Err    error
}

// NewJSONText wraps raw editor text without parsing it.
func NewJSONText(raw string) JSONText {
	return JSONText{Raw: raw}
}

// JSONTextOf renders v as indented JSON for editing. A nil value renders as
// fallback ("[]" or "{}").
func JSONTextOf(v any, fallback string) JSONText {
	if isNil(v) {
		return JSONText{Raw: fallback}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return JSONText{Raw: fallback}
	}
	return JSONText{Raw: string(b)}
}

// Parse decodes Raw and returns a copy with Parsed or Err set.
func (t JSONText) Parse() JSONText {
	var v any
	dec := json.NewDecoder(strings.NewReader(t.Raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return JSONText{Raw: t.Raw, Err: err}
	}
	// More() misses a stray closing bracket, so demand a clean EOF.
	if _, err := dec.Token(); err != io.EOF {
		return JSONText{Raw: t.Raw, Err: errTrailingData}
	}
	return JSONText{Raw: t.Raw, Parsed: v}
}

// List parses the text as a JSON array. Anything else, including invalid
// JSON and null, yields an empty list; the error is available for display
// but never blocks a save.
func (t JSONText) List() ([]any, error) {
	p := t.Parse()
	if p.Err != nil {
		return []any{}, p.Err
	}
	list, ok := p.Parsed.([]any)
	if !ok {
		return []any{}, errWrongShape
	}
	return list, nil
}

// Object parses the text as a JSON object with the same fallback rules as
// List, defaulting to an empty map.
func (t JSONText) Object() (map[string]any, error) {
	p := t.Parse()
	if p.Err != nil {
		return map[string]any{}, p.Err
	}
	obj, ok := p.Parsed.(map[string]any)
	if !ok {
		return map[string]any{}, errWrongShape
	}
	return obj, nil
}

func isNil(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case []any:
		return x == nil
	case map[string]any:
		return x == nil
	}
	return false
}
