package domain

// SocialIdentity is a Farcaster account identifier (FID).
// The wallet binding can change, so it is resolved fresh on every attempt.
type SocialIdentity struct {
	FID uint64
}

// IsZero reports whether the identity is unset.
func (i SocialIdentity) IsZero() bool {
	return i.FID == 0
}

// Default channel role for invites.
const RoleMember = "member"

// InviteRequest asks the platform to add Invitee to ChannelID with Role.
type InviteRequest struct {
	ChannelID  string
	InviterFID uint64
	InviteeFID uint64
	Role       string
}

// InviteReceipt is returned when the platform accepted an invite.
type InviteReceipt struct {
	ChannelID  string
	InviteeFID uint64
	Role       string
	IssuedAt   int64 // unix ms
}
