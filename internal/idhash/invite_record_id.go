// Package idhash computes deterministic record identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeInviteRecordID computes a deterministic record_id using SHA256.
// Formula: SHA256(wallet|invitee_fid|channel_id|issued_at)
// Returns hex-encoded hash (64 characters).
func ComputeInviteRecordID(
	wallet string,
	inviteeFID uint64,
	channelID string,
	issuedAt int64,
) string {
	data := fmt.Sprintf("%s|%d|%s|%d",
		wallet,
		inviteeFID,
		channelID,
		issuedAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
