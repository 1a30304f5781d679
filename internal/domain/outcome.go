package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OutcomeCode is the closed set of results an eligibility check can produce.
type OutcomeCode string

const (
	OutcomeInvalidInput            OutcomeCode = "INVALID_INPUT"
	OutcomeTransientError          OutcomeCode = "TRANSIENT_ERROR"
	OutcomeIneligible              OutcomeCode = "INELIGIBLE"
	OutcomeNoLinkedIdentity        OutcomeCode = "NO_LINKED_IDENTITY"
	OutcomeAlreadyMemberOrRejected OutcomeCode = "ALREADY_MEMBER_OR_REJECTED"
	OutcomeInviteSent              OutcomeCode = "INVITE_SENT"
)

// AllOutcomeCodes lists every outcome code.
var AllOutcomeCodes = []OutcomeCode{
	OutcomeInvalidInput,
	OutcomeTransientError,
	OutcomeIneligible,
	OutcomeNoLinkedIdentity,
	OutcomeAlreadyMemberOrRejected,
	OutcomeInviteSent,
}

// String returns the string representation of OutcomeCode.
func (c OutcomeCode) String() string {
	return string(c)
}

// IsValid checks if the code is one of the known values.
func (c OutcomeCode) IsValid() bool {
	for _, known := range AllOutcomeCodes {
		if c == known {
			return true
		}
	}
	return false
}

// Retryable reports whether resubmitting the same request may succeed.
func (c OutcomeCode) Retryable() bool {
	return c == OutcomeTransientError
}

// Outcome is the single artifact an eligibility check returns.
type Outcome struct {
	Code    OutcomeCode
	Message string

	// Balance is set only for OutcomeIneligible.
	Balance *decimal.Decimal

	// Receipt is set only for OutcomeInviteSent.
	Receipt *InviteReceipt
}

// Messages renders outcome codes to user-facing text.
type Messages struct {
	TokenSymbol string
	Threshold   decimal.Decimal
}

// Render returns the display message for code. balance is used for OutcomeIneligible.
func (m Messages) Render(code OutcomeCode, balance *decimal.Decimal) string {
	switch code {
	case OutcomeInvalidInput:
		return "No valid wallet address provided."
	case OutcomeTransientError:
		return "Error processing request. Please try again."
	case OutcomeIneligible:
		current := decimal.Zero
		if balance != nil {
			current = *balance
		}
		return fmt.Sprintf("You need %s+ %s to join. Current balance: %s %s",
			m.Threshold.String(), m.TokenSymbol, current.String(), m.TokenSymbol)
	case OutcomeNoLinkedIdentity:
		return "No Farcaster account is linked to this wallet. Verify the address in Warpcast and try again."
	case OutcomeAlreadyMemberOrRejected:
		return "Invite could not be sent. You may already be a member of the channel."
	case OutcomeInviteSent:
		return "Invite sent! Check your Warpcast."
	default:
		return "Unknown result."
	}
}
