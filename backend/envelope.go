package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrRejected marks a 2xx body whose envelope carries success:false.
var ErrRejected = errors.New("rejected by backend")

// Envelope is a list response with its outer shape removed.
type Envelope struct {
	Items []any
	// TotalPages is zero when the backend did not report one.
	TotalPages int
	Message    string
}

// Normalize unwraps the list envelopes the backend is known to send:
//
//	[...]
//	{"data": [...], "totalPages": n}
//	{"projects": [...]}
//	{"success": bool, "data": [...]}
//
// A success:false envelope yields an error wrapping ErrRejected. An object
// without a list field is an empty list.
func Normalize(raw []byte) (Envelope, error) {
	value, err := decodeBody(raw)
	if err != nil {
		return Envelope{}, err
	}

	switch body := value.(type) {
	case []any:
		return Envelope{Items: body}, nil
	case map[string]any:
		env := Envelope{Message: stringField(body, "message")}
		if success, ok := body["success"].(bool); ok && !success {
			if env.Message == "" {
				return env, ErrRejected
			}
			return env, fmt.Errorf("%w: %s", ErrRejected, env.Message)
		}
		items, err := listField(body, "data", "projects")
		if err != nil {
			return env, err
		}
		env.Items = items
		if pages, ok := intValue(body["totalPages"]); ok && pages > 0 {
			env.TotalPages = pages
		}
		return env, nil
	default:
		return Envelope{}, ErrUnexpectedEnvelope
	}
}

// DecodeRecords converts normalized items into typed records. Numbers sent
// as strings and similar loose typing are accepted.
func DecodeRecords[T any](items []any) ([]T, error) {
	records := make([]T, 0, len(items))
	for i, item := range items {
		var record T
		if err := decodeRecord(item, &record); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeRecord(input any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func decodeBody(raw []byte) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedEnvelope)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedEnvelope, err)
	}
	return value, nil
}

func listField(body map[string]any, keys ...string) ([]any, error) {
	for _, key := range keys {
		value, ok := body[key]
		if !ok || value == nil {
			continue
		}
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a list", ErrUnexpectedEnvelope, key)
		}
		return items, nil
	}
	return []any{}, nil
}

func stringField(body map[string]any, key string) string {
	value, _ := body[key].(string)
	return value
}

// intValue reads numbers, numeric strings and json.Number.
func intValue(value any) (int, bool) {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil {
			return int(f), true
		}
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

// intOrZero mirrors the dashboard's tolerant counters: anything that is not
// a number counts as zero.
func intOrZero(value any) int {
	n, _ := intValue(value)
	return n
}
