// Package render prints dashboard tables as aligned text.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/reconciler"
)

var statusLabels = map[models.EffectiveStatus]string{
	models.StatusUnpaid:              "UNPAID",
	models.StatusPendingVerification: "PENDING VERIFICATION",
	models.StatusPaid:                "PAID",
}

func label(s models.EffectiveStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return strings.ToUpper(string(s))
}

// BillViews writes one row per derived bill view.
func BillViews(w io.Writer, views []models.DerivedBillView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BILL\tITEM\tAMOUNT\tDUE\tTO\tSTATUS\tPAYMENT")
	for _, v := range views {
		payment := "-"
		if v.PaymentID != nil {
			payment = *v.PaymentID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.ItemName, v.Amount.StringFixed(2), v.DueDate, v.Recipient, label(v.Status), payment)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render bills: %w", err)
	}
	for _, v := range views {
		for _, violation := range v.Violations {
			if _, err := fmt.Fprintf(w, "! %s\n", violation); err != nil {
				return err
			}
		}
	}
	return nil
}

// Settlements writes the admin view of every bill.
func Settlements(w io.Writer, settlements []reconciler.BillSettlement) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BILL\tITEM\tAMOUNT\tCOLLECTED\tSTATUS\tPENDING\tOUTSTANDING")
	for _, s := range settlements {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			s.Bill.ID,
			s.Bill.ItemName,
			s.Bill.Amount.StringFixed(2),
			s.Collected.StringFixed(2),
			label(s.Status),
			len(s.PendingPaymentIDs),
			joinOrDash(s.Outstanding),
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render settlements: %w", err)
	}
	return nil
}

func joinOrDash(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ",")
}
