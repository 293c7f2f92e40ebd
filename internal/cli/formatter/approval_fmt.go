package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/domain"
)

// FormatApprovalList renders ledger records as a table.
func FormatApprovalList(views []contract.ApprovalView, now time.Time) string {
	if len(views) == 0 {
		return Dim("No approvals found.") + "\n"
	}
	headers := []string{"ID", "PLAN", "STATUS", "SUBMITTED", "REMARK"}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		remark := v.Remark
		if len(remark) > 40 {
			remark = remark[:37] + "..."
		}
		rows = append(rows, []string{
			TruncID(v.ID),
			v.Key.String(),
			ApprovalStatusPill(v.Status),
			HumanTimestampFrom(v.SubmittedAt, now),
			remark,
		})
	}
	return RenderTable(headers, rows)
}

// FormatApproval renders one record in full.
func FormatApproval(v *contract.ApprovalView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Dim("Plan     "), v.Key.String())
	fmt.Fprintf(&b, "%s  %s\n", Dim("Status   "), ApprovalStatusPill(v.Status))
	fmt.Fprintf(&b, "%s  %s\n", Dim("Submitted"), v.SubmittedAt.Format(time.RFC3339))
	if v.ApprovedAt != nil {
		fmt.Fprintf(&b, "%s  %s\n", Dim("Approved "), v.ApprovedAt.Format(time.RFC3339))
	}
	if v.Remark != "" {
		fmt.Fprintf(&b, "%s  %s\n", Dim("Remark   "), v.Remark)
	}
	fmt.Fprintf(&b, "%s  %d bytes", Dim("Payload  "), v.PayloadSize)
	return RenderBox("Approval "+v.ID, b.String())
}

// FormatSubmitResult reports an accepted or rejected submission.
func FormatSubmitResult(res *contract.SubmitResult) string {
	if res.Rejected {
		return StyleRed.Render("✖ Submission rejected: "+res.Reason) + "\n"
	}
	return fmt.Sprintf("%s %s %s\n",
		StyleGreen.Render("✔ Submitted"),
		res.Record.Key.String(),
		Dim("("+res.Record.ID+")"))
}

// FormatApproveResult reports the outcome of an approval.
func FormatApproveResult(res *contract.ApproveResult) string {
	if !res.Changed {
		return Dim(fmt.Sprintf("%s was already approved.", res.Record.Key.String())) + "\n"
	}
	return fmt.Sprintf("%s %s  %s\n",
		StyleGreen.Render("✔ Approved"),
		res.Record.Key.String(),
		LockIndicator(true))
}

// FormatImportResult summarizes a legacy import.
func FormatImportResult(res *contract.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d records, %d approved\n",
		StyleGreen.Render("✔ Imported"), res.Imported, res.Approved)
	for _, k := range res.Locked {
		fmt.Fprintf(&b, "  %s %s\n", LockIndicator(true), k.String())
	}
	return b.String()
}

// FormatLockStatus renders whether a plan key is locked.
func FormatLockStatus(key domain.ApprovalKey, locked bool) string {
	return fmt.Sprintf("%s  %s\n", LockIndicator(locked), key.String())
}
