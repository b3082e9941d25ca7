// Package canonical provides the deterministic JSON form used to compare and
// identify config values.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Marshal encodes v as compact JSON. Object keys are sorted at every depth, so two
// structurally equal values always encode to the same bytes.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// String is Marshal for comparisons. Values that cannot be encoded fall back to
// their Go syntax representation so that they still compare deterministically.
func String(v any) string {
	b, err := Marshal(v)
	if err != nil {
		return fmt.Sprintf("!%#v", v)
	}

	return string(b)
}

// Equal reports whether a and b have the same canonical form.
func Equal(a, b any) bool {
	return String(a) == String(b)
}

// Decode parses s as any JSON value.
func Decode(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}

	return v, nil
}

// DecodeContainer parses s only when it holds a JSON object or array.
func DecodeContainer(s string) (any, bool) {
	t := strings.TrimSpace(s)
	if t == "" || (t[0] != '{' && t[0] != '[') {
		return nil, false
	}

	v, err := Decode(t)
	if err != nil {
		return nil, false
	}

	return v, true
}

// IsContainer reports whether v encodes to a JSON object or array.
func IsContainer(v any) bool {
	if _, ok := v.([]byte); ok || v == nil {
		return false
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}
