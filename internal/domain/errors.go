package domain

import "errors"

// Failure kinds reported by the external collaborators of the gate.
var (
	// ErrInvalidAddress is returned when a wallet address fails format validation.
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrChainUnavailable is returned when the ledger endpoint cannot serve a balance read.
	ErrChainUnavailable = errors.New("chain unavailable")

	// ErrIdentityNotFound is returned when no social identity is linked to a wallet.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrResolverUnavailable is returned when the identity directory cannot be reached.
	ErrResolverUnavailable = errors.New("identity resolver unavailable")

	// ErrResolverRejected is returned when the identity directory refuses the
	// lookup itself. Repeating the same request will not help.
	ErrResolverRejected = errors.New("identity lookup rejected")

	// ErrInviteRejected is returned when the platform refuses the invite
	// (already a member, inviter lacks permission, unknown channel).
	ErrInviteRejected = errors.New("invite rejected")

	// ErrPlatformUnavailable is returned when the social platform cannot be reached.
	ErrPlatformUnavailable = errors.New("platform unavailable")
)
