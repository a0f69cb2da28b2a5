package domain

import "time"

// OTPRecord is one issued passcode. PK: identity, SK: record_id (ULID, so newest sorts last).
// Records are append-only; the only mutations are a failed-attempt counter and the single
// consumed false->true transition.
type OTPRecord struct {
	RecordID   string     `json:"id" dynamodbav:"record_id"`
	Identity   string     `json:"identity" dynamodbav:"identity"`
	CodeDigest string     `json:"-" dynamodbav:"code_digest"` // "<salt>:<hmac>"
	CreatedAt  time.Time  `json:"created" dynamodbav:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" dynamodbav:"expires_at"`
	Consumed   bool       `json:"consumed" dynamodbav:"consumed"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty" dynamodbav:"consumed_at,omitempty"`
	Attempts   int        `json:"attempts" dynamodbav:"attempts"`
	PurgeAt    int64      `json:"-" dynamodbav:"purge_at,omitempty"` // DynamoDB TTL (Unix seconds)
}

// Expired reports whether the record can no longer be verified at now.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Pending reports whether the record is unconsumed and unexpired at now.
func (r *OTPRecord) Pending(now time.Time) bool {
	return !r.Consumed && !r.Expired(now)
}
