package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the outcome breakdown as CSV string.
func RenderCSV(outcomes []OutcomeRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("outcome,count,share,retryable\n")

	// Rows
	for _, o := range outcomes {
		sb.WriteString(fmt.Sprintf("%s,%d,%.6f,%t\n", o.Outcome, o.Count, o.Share, o.Retryable))
	}

	return sb.String()
}

// RenderInvitesCSV renders issued invites as CSV string.
func RenderInvitesCSV(invites []InviteRow) string {
	var sb strings.Builder

	sb.WriteString("record_id,wallet,invitee_fid,channel_id,role,issued_at\n")
	for _, inv := range invites {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%s,%s,%d\n",
			inv.RecordID, inv.Wallet, inv.InviteeFID, inv.ChannelID, inv.Role, inv.IssuedAt))
	}

	return sb.String()
}
