package dynamo

// DynamoDB attribute names used in key and condition expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldIdentity    = "identity"
	fieldRecordID    = "record_id"
	fieldConsumed    = "consumed"
	fieldConsumedAt  = "consumed_at"
	fieldAttempts    = "attempts"
	fieldPurgeAt     = "purge_at"
	fieldEmail       = "email"
	fieldLastLoginAt = "last_login_at"
)
