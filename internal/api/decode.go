package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is one decoded page of a collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}

type envelope struct {
	Items      json.RawMessage `json:"items"`
	TotalCount *int            `json:"totalCount"`
}

// DecodePage decodes a collection response. Accepted shapes are an object with an
// "items" array and optional "totalCount", or a bare array. A missing totalCount
// defaults to the number of items. Anything else is an ErrDecode.
func DecodePage[T any](data []byte) (Page[T], error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Page[T]{}, fmt.Errorf("%w: empty body", ErrDecode)
	}

	switch trimmed[0] {
	case '[':
		items, err := decodeItems[T](trimmed)
		if err != nil {
			return Page[T]{}, err
		}
		return Page[T]{Items: items, TotalCount: len(items)}, nil

	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return Page[T]{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		raw := bytes.TrimSpace(env.Items)
		if len(raw) == 0 || raw[0] != '[' {
			return Page[T]{}, fmt.Errorf("%w: \"items\" must be an array", ErrDecode)
		}
		items, err := decodeItems[T](raw)
		if err != nil {
			return Page[T]{}, err
		}
		total := len(items)
		if env.TotalCount != nil {
			if *env.TotalCount < 0 {
				return Page[T]{}, fmt.Errorf("%w: negative totalCount %d", ErrDecode, *env.TotalCount)
			}
			total = *env.TotalCount
		}
		return Page[T]{Items: items, TotalCount: total}, nil

	default:
		return Page[T]{}, fmt.Errorf("%w: expected object or array", ErrDecode)
	}
}

func decodeItems[T any](raw []byte) ([]T, error) {
	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return items, nil
}
