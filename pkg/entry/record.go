package entry

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errMissingValue = errors.New("entry: record has no value")

// outRecord is the wire shape written by Set.
type outRecord struct {
	Value      any   `json:"value"`
	Expiration int64 `json:"expiration,omitempty"`
}

// inRecord is the wire shape read by Get. Value is kept raw so it can be
// decoded into the caller's type after the expiration check.
type inRecord struct {
	Value      json.RawMessage `json:"value"`
	Expiration int64           `json:"expiration,omitempty"`
}

// marshalRecord serializes value with an optional absolute expiry in Unix
// milliseconds. expiresAt == 0 omits the field.
func marshalRecord(value any, expiresAt int64) (string, error) {
	data, err := json.Marshal(outRecord{Value: value, Expiration: expiresAt})
	if err != nil {
		return "", fmt.Errorf("entry: marshal record: %w", err)
	}
	return string(data), nil
}

func unmarshalRecord(text string) (*inRecord, error) {
	var r inRecord
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("entry: unmarshal record: %w", err)
	}
	if len(r.Value) == 0 {
		return nil, errMissingValue
	}
	return &r, nil
}

// expired reports whether the record's expiry lies strictly before nowMs.
func (r *inRecord) expired(nowMs int64) bool {
	return r.Expiration != 0 && nowMs > r.Expiration
}
