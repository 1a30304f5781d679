package reporting

import (
	"time"

	"token-gate/internal/domain"
)

// Report summarizes audit activity over a time window.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	WindowStart int64 // Unix ms
	WindowEnd   int64 // Unix ms

	Summary Summary

	// Outcome breakdown in domain.AllOutcomeCodes order
	Outcomes []OutcomeRow

	// Invites issued in the window, ordered by issued_at
	Invites []InviteRow

	// Wallet is the full history of one wallet, when requested
	Wallet *WalletHistory
}

// WalletHistory lists every recorded check and invite for one wallet.
type WalletHistory struct {
	Wallet  string
	Checks  []CheckRow
	Invites []InviteRow
}

// CheckRow lists one recorded check.
type CheckRow struct {
	CheckID   string
	Outcome   domain.OutcomeCode
	Balance   string // empty unless INELIGIBLE
	CheckedAt int64
	LatencyMs int64
}

// Summary contains headline numbers.
type Summary struct {
	TotalChecks   uint64
	InvitesIssued int
	UniqueWallets int

	// EligibleRate is the share of decided checks that passed the threshold.
	// Decided checks exclude INVALID_INPUT and TRANSIENT_ERROR.
	EligibleRate float64

	// InviteRate is INVITE_SENT / TotalChecks.
	InviteRate float64
}

// OutcomeRow represents one row in the outcome table.
type OutcomeRow struct {
	Outcome   domain.OutcomeCode
	Count     uint64
	Share     float64 // Count / TotalChecks, 0 when there are no checks
	Retryable bool
}

// InviteRow lists one issued invite.
type InviteRow struct {
	RecordID   string
	Wallet     string
	InviteeFID uint64
	ChannelID  string
	Role       string
	IssuedAt   int64
}
