package fetcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

type shape int

const (
	shapePending shape = iota
	shapeArray
	shapeWrapped
	shapeSingle
)

func (s shape) String() string {
	switch s {
	case shapePending:
		return "pending"
	case shapeArray:
		return "array"
	case shapeWrapped:
		return "data-wrapper"
	case shapeSingle:
		return "single-object"
	}
	return "unknown"
}

type payload struct {
	shape    shape
	encoded  bool
	elements []any
}

// decodeJSON parses exactly one JSON value, keeping numbers as json.Number.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

// normalize matches v against the known response shapes in order. The first
// match wins: pending sentinel, bare array, {"data": [...]}, single object,
// then a JSON document encoded as a string, re-parsed under the same rules.
func normalize(v any, sentinel string) (payload, error) {
	switch t := v.(type) {
	case []any:
		return payload{shape: shapeArray, elements: t}, nil
	case map[string]any:
		if isPending(t, sentinel) {
			return payload{shape: shapePending}, nil
		}
		if data, ok := t["data"].([]any); ok {
			return payload{shape: shapeWrapped, elements: data}, nil
		}
		return payload{shape: shapeSingle, elements: []any{t}}, nil
	case string:
		inner, err := decodeJSON([]byte(t))
		if err != nil {
			return payload{}, malformedError("response string is not valid JSON", err)
		}
		p, err := normalize(inner, sentinel)
		if err != nil {
			return payload{}, err
		}
		p.encoded = true
		return p, nil
	}
	return payload{}, malformedError("response shape is not recognized", nil)
}

func isPending(obj map[string]any, sentinel string) bool {
	msg, ok := obj["message"].(string)
	return ok && msg == sentinel
}
