package entry

// Outcome labels one result of Set or Get.
type Outcome string

// Set outcomes.
const (
	SetStored           Outcome = "stored"
	SetUnsupported      Outcome = "unsupported"
	SetSerializeFailed  Outcome = "serialize_failed"
	SetEncodeFailed     Outcome = "encode_failed"
	SetEncryptFailed    Outcome = "encrypt_failed"
	SetCapacityExceeded Outcome = "capacity_exceeded"
	SetQuotaExceeded    Outcome = "quota_exceeded"
	SetStoreError       Outcome = "store_error"
)

// Get outcomes.
const (
	GetHit           Outcome = "hit"
	GetMiss          Outcome = "miss"
	GetExpired       Outcome = "expired"
	GetDecryptFailed Outcome = "decrypt_failed"
	GetDecodeFailed  Outcome = "decode_failed"
	GetParseFailed   Outcome = "parse_failed"
	GetStoreError    Outcome = "store_error"
)

// Recorder receives operation outcomes, typically for metrics.
type Recorder interface {
	RecordSet(outcome Outcome)
	RecordGet(outcome Outcome)
	RecordUsage(scope Scope, usedBytes int64)
}

type nopRecorder struct{}

func (nopRecorder) RecordSet(Outcome)        {}
func (nopRecorder) RecordGet(Outcome)        {}
func (nopRecorder) RecordUsage(Scope, int64) {}
