package receipt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
)

const ruleWidth = 44

// Text writes a plain-text receipt.
func Text(w io.Writer, b Bill) error {
	var sb strings.Builder
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", ruleWidth)

	fmt.Fprintln(&sb, heavy)
	fmt.Fprintf(&sb, "  %s\n", b.Header.Name)
	if b.Header.Tagline != "" {
		fmt.Fprintf(&sb, "  %s\n", b.Header.Tagline)
	}
	fmt.Fprintln(&sb, heavy)
	fmt.Fprintln(&sb)
	fmt.Fprintf(&sb, "Bill No: %s\n", b.BillNumber)
	fmt.Fprintf(&sb, "Date: %s\n", b.Date.Format(dateLayout))
	fmt.Fprintf(&sb, "Customer: %s\n", b.CustomerName)
	fmt.Fprintf(&sb, "Phone: %s\n", b.CustomerPhone)
	fmt.Fprintln(&sb, light)

	table := tablewriter.NewWriter(&sb)
	table.SetHeader([]string{"Item", "Qty", "Price", "Total"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})
	for _, l := range b.Lines {
		table.Append([]string{
			l.Name,
			strconv.Itoa(l.Quantity),
			l.UnitPrice.StringFixed(2),
			l.Total.StringFixed(2),
		})
	}
	table.Render()

	fmt.Fprintln(&sb, light)
	fmt.Fprintf(&sb, "%-22s %s\n", "Subtotal:", b.money(b.Totals.Subtotal))
	fmt.Fprintf(&sb, "%-22s %s\n", "Tax (18%):", b.money(b.Totals.TaxAmount))
	fmt.Fprintf(&sb, "%-22s %s\n", "Service Charge (5%):", b.money(b.Totals.ServiceCharge))
	fmt.Fprintln(&sb, heavy)
	fmt.Fprintf(&sb, "%-22s %s\n", "TOTAL:", b.money(b.Totals.Total))
	fmt.Fprintln(&sb, heavy)
	fmt.Fprintln(&sb)
	fmt.Fprintln(&sb, "Thank you for visiting!")
	fmt.Fprintln(&sb, "Come again soon!")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Wrap(err, "write text receipt")
	}
	return nil
}
