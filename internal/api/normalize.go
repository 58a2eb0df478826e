package api

import (
	"encoding/json"
	"fmt"
)

// decodeList normalizes a loosely shaped upstream response into a slice.
// Accepted shapes, in order of precedence:
//
//	[ {...}, ... ]                 bare array
//	{ "<key>": [ {...}, ... ] }    envelope with a list
//	{ "<key>": {...} }             envelope with a single object
//	{ ...entity fields... }        bare single object
//	{}                             empty -> empty list
//
// Any of the given keys may carry the envelope (typically the plural and
// singular resource names). Malformed or absent payloads normalize to an
// empty list rather than failing.
func decodeList[T any](raw json.RawMessage, keys ...string) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}

	var asList []T
	if err := json.Unmarshal(raw, &asList); err == nil {
		return asList, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}

	for _, key := range keys {
		inner, ok := envelope[key]
		if !ok {
			continue
		}

		if err := json.Unmarshal(inner, &asList); err == nil {
			return asList, nil
		}

		var single T
		if err := json.Unmarshal(inner, &single); err == nil {
			return []T{single}, nil
		}

		return []T{}, nil
	}

	if len(envelope) == 0 {
		return []T{}, nil
	}

	// No envelope key matched: treat the object itself as a single entity.
	var single T
	if err := json.Unmarshal(raw, &single); err != nil {
		return []T{}, nil
	}
	return []T{single}, nil
}

// decodeOne is decodeList for operations that must yield exactly one entity.
func decodeOne[T any](raw json.RawMessage, keys ...string) (*T, error) {
	list, err := decodeList[T](raw, keys...)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	return &list[0], nil
}
