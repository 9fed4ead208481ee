package entry

import (
	"errors"
	"testing"
)

func TestMarshalRecord(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		expiresAt int64
		want      string
	}{
		{"string", "testValue", 0, `{"value":"testValue"}`},
		{"with expiry", 1, 1700000000000, `{"value":1,"expiration":1700000000000}`},
		{"nil", nil, 0, `{"value":null}`},
		{"object", map[string]int{"a": 1}, 0, `{"value":{"a":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalRecord(tt.value, tt.expiresAt)
			if err != nil {
				t.Fatalf("marshalRecord() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("marshalRecord() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnmarshalRecord(t *testing.T) {
	r, err := unmarshalRecord(`{"value":{"a":[1,2]},"expiration":5}`)
	if err != nil {
		t.Fatalf("unmarshalRecord() error = %v", err)
	}
	if string(r.Value) != `{"a":[1,2]}` || r.Expiration != 5 {
		t.Errorf("unmarshalRecord() = %s, %d", r.Value, r.Expiration)
	}

	if _, err := unmarshalRecord(`{"expiration":5}`); !errors.Is(err, errMissingValue) {
		t.Errorf("missing value error = %v, want errMissingValue", err)
	}
	if _, err := unmarshalRecord(`{"value":`); err == nil {
		t.Error("truncated json should fail")
	}
}

func TestRecordExpired(t *testing.T) {
	tests := []struct {
		expiration int64
		now        int64
		want       bool
	}{
		{0, 1 << 50, false},
		{100, 99, false},
		{100, 100, false},
		{100, 101, true},
	}
	for _, tt := range tests {
		r := &inRecord{Expiration: tt.expiration}
		if got := r.expired(tt.now); got != tt.want {
			t.Errorf("expired(exp=%d, now=%d) = %v, want %v", tt.expiration, tt.now, got, tt.want)
		}
	}
}
