package domain

// InviteRecord is an audit row for an accepted invite.
// Corresponds to invite_records table in PostgreSQL.
type InviteRecord struct {
	RecordID   string // SHA256(wallet|fid|channel|issued_at)
	Wallet     string // normalized wallet address
	InviteeFID uint64
	InviterFID uint64
	ChannelID  string
	Role       string
	IssuedAt   int64 // unix ms
	CreatedAt  int64 // record creation timestamp (ms)
}

// EligibilityCheck is an analytics row for one completed check.
// Corresponds to eligibility_checks table in ClickHouse.
type EligibilityCheck struct {
	CheckID   string
	Wallet    string // normalized; empty for invalid input
	Outcome   OutcomeCode
	Balance   *string // decimal string, only for INELIGIBLE
	CheckedAt int64   // unix ms
	LatencyMs int64
}
