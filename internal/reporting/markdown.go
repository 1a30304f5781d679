package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Token Gate Audit Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Window: %s to %s\n\n", formatMs(r.WindowStart), formatMs(r.WindowEnd)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Checks | %d |\n", r.Summary.TotalChecks))
	sb.WriteString(fmt.Sprintf("| Invites Issued | %d |\n", r.Summary.InvitesIssued))
	sb.WriteString(fmt.Sprintf("| Unique Invited Wallets | %d |\n", r.Summary.UniqueWallets))
	sb.WriteString(fmt.Sprintf("| Eligible Rate | %.4f |\n", r.Summary.EligibleRate))
	sb.WriteString(fmt.Sprintf("| Invite Rate | %.4f |\n", r.Summary.InviteRate))
	sb.WriteString("\n")

	// Outcomes
	sb.WriteString("## Outcomes\n\n")
	if r.Summary.TotalChecks > 0 {
		sb.WriteString("| Outcome | Count | Share | Retryable |\n")
		sb.WriteString("|---------|-------|-------|-----------|\n")
		for _, o := range r.Outcomes {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.4f | %t |\n",
				o.Outcome, o.Count, o.Share, o.Retryable))
		}
	} else {
		sb.WriteString("No checks recorded in this window.\n")
	}
	sb.WriteString("\n")

	// Invites
	sb.WriteString("## Invites\n\n")
	if len(r.Invites) > 0 {
		sb.WriteString("| Issued At | Wallet | FID | Channel | Role | Record |\n")
		sb.WriteString("|-----------|--------|-----|---------|------|--------|\n")
		for _, inv := range r.Invites {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s |\n",
				formatMs(inv.IssuedAt), inv.Wallet, inv.InviteeFID,
				inv.ChannelID, inv.Role, shortID(inv.RecordID)))
		}
	} else {
		sb.WriteString("No invites issued in this window.\n")
	}
	sb.WriteString("\n")

	if r.Wallet != nil {
		renderWalletHistory(&sb, r.Wallet)
	}

	return sb.String()
}

func renderWalletHistory(sb *strings.Builder, h *WalletHistory) {
	sb.WriteString(fmt.Sprintf("## Wallet %s\n\n", h.Wallet))
	sb.WriteString(fmt.Sprintf("Checks: %d | Invites: %d\n\n", len(h.Checks), len(h.Invites)))

	if len(h.Checks) > 0 {
		sb.WriteString("| Checked At | Outcome | Balance | Latency (ms) |\n")
		sb.WriteString("|------------|---------|---------|--------------|\n")
		for _, c := range h.Checks {
			balance := c.Balance
			if balance == "" {
				balance = "-"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d |\n",
				formatMs(c.CheckedAt), c.Outcome, balance, c.LatencyMs))
		}
		sb.WriteString("\n")
	}

	for _, inv := range h.Invites {
		sb.WriteString(fmt.Sprintf("- Invited fid %d to %s as %s at %s\n",
			inv.InviteeFID, inv.ChannelID, inv.Role, formatMs(inv.IssuedAt)))
	}
	if len(h.Invites) > 0 {
		sb.WriteString("\n")
	}
}

func formatMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
