package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"restaurant-billing/internal/logger"
	"restaurant-billing/internal/menu"
	"restaurant-billing/internal/models"
	"restaurant-billing/internal/pricing"
	"restaurant-billing/internal/receipt"
)

var billFlags struct {
	items   []string
	name    string
	phone   string
	prefill bool
	format  string
	dryRun  bool
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "list the menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("billing-cli", os.Stderr)
		if err != nil {
			return err
		}
		printMenu(cmd.OutOrStdout(), a.catalog, a.cfg.Restaurant.Currency)
		return nil
	},
}

var quoteCmd = &cobra.Command{
	Use:     "quote",
	Short:   "price items without saving a bill",
	Example: `  billing quote --item "Chicken Biryani=2" --item "Fresh Lime=1"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("billing-cli", os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		lines, err := parseItems(billFlags.items)
		if err != nil {
			return err
		}

		// pricing only; nothing is stored or published
		a.cfg.Billing.Storage = "memory"
		a.cfg.RabbitMQ.Enabled = false
		service, err := a.newService(cmd.Context(), nil)
		if err != nil {
			return err
		}
		totals, priced, err := service.Quote(lines)
		if err != nil {
			return err
		}
		printQuote(cmd.OutOrStdout(), priced, totals, a.cfg.Restaurant.Currency)
		return nil
	},
}

var billCmd = &cobra.Command{
	Use:   "bill",
	Short: "save a bill and print its receipt",
	Example: `  billing bill --name "Ali Khan" --phone 03001234567 --item "Chicken Biryani=2"
  billing bill --phone 03001234567 --prefill --format pdf`,
	Args: cobra.NoArgs,
	RunE: runBill,
}

func init() {
	for _, c := range []*cobra.Command{quoteCmd, billCmd} {
		c.Flags().StringArrayVarP(&billFlags.items, "item", "i", nil, `menu item and quantity as "name=qty" (repeatable)`)
	}
	f := billCmd.Flags()
	f.StringVar(&billFlags.name, "name", "", "customer name")
	f.StringVar(&billFlags.phone, "phone", "", "customer phone")
	f.BoolVar(&billFlags.prefill, "prefill", false, "start from the customer's most recent order")
	f.StringVar(&billFlags.format, "format", "", "also write the receipt file: text or pdf")
	f.BoolVar(&billFlags.dryRun, "dry-run", false, "print the receipt without saving")
}

func runBill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp("billing-cli", os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	lines, err := parseItems(billFlags.items)
	if err != nil {
		return err
	}

	service, err := a.newService(ctx, nil)
	if err != nil {
		return err
	}

	o := service.NewOrder()
	if billFlags.prefill {
		found, err := service.Prefill(ctx, o, billFlags.phone)
		if err != nil {
			return errors.Wrap(err, "prefill")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Customer found: %s (last bill %s)\n", found.Customer.Name, found.LastBill)
	}
	if billFlags.name != "" || billFlags.phone != "" {
		name, phone := o.CustomerName(), o.CustomerPhone()
		if billFlags.name != "" {
			name = billFlags.name
		}
		if billFlags.phone != "" {
			phone = billFlags.phone
		}
		o.SetCustomer(strings.TrimSpace(name), strings.TrimSpace(phone))
	}
	for item, qty := range lines {
		if err := o.SetQuantity(item, qty); err != nil {
			return err
		}
	}

	bill, err := service.PreviewReceipt(o)
	if err != nil {
		return err
	}
	if !billFlags.dryRun {
		saved, err := service.SaveOrder(ctx, o, logger.GenerateRequestID())
		if err != nil {
			return err
		}
		bill.Date = saved.OrderDate
	}

	if err := receipt.Text(cmd.OutOrStdout(), bill); err != nil {
		return err
	}

	if billFlags.format != "" {
		format, err := receipt.ParseFormat(billFlags.format)
		if err != nil {
			return err
		}
		path, err := receipt.WriteFile(a.cfg.Billing.ReceiptsDir, bill, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Receipt saved as: %s\n", path)
	}
	return nil
}

// parseItems reads "name=qty" pairs. A bare name means one unit; repeats add up.
func parseItems(pairs []string) (models.Lines, error) {
	lines := models.Lines{}
	for _, pair := range pairs {
		name, qtyText, hasQty := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.Newf("item %q: missing name", pair)
		}
		qty := 1
		if hasQty {
			n, err := strconv.Atoi(strings.TrimSpace(qtyText))
			if err != nil {
				return nil, errors.Wrapf(err, "item %q: quantity", pair)
			}
			qty = n
		}
		lines[name] += qty
	}
	return lines, nil
}

func printMenu(w io.Writer, catalog *menu.Catalog, currency string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Item", "Price"})
	table.SetAutoMergeCells(true)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, item := range catalog.All() {
		table.Append([]string{item.Category, item.Name, currency + " " + item.UnitPrice.StringFixed(2)})
	}
	table.Render()
}

func printQuote(w io.Writer, lines []pricing.Line, totals models.Totals, currency string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Item", "Qty", "Price", "Total"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})
	for _, l := range lines {
		table.Append([]string{l.Name, strconv.Itoa(l.Quantity), l.UnitPrice.StringFixed(2), l.Total.StringFixed(2)})
	}
	table.Render()

	fmt.Fprintf(w, "%-22s %s %s\n", "Subtotal:", currency, totals.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "%-22s %s %s\n", "Tax (18%):", currency, totals.TaxAmount.StringFixed(2))
	fmt.Fprintf(w, "%-22s %s %s\n", "Service Charge (5%):", currency, totals.ServiceCharge.StringFixed(2))
	fmt.Fprintf(w, "%-22s %s %s\n", "TOTAL:", currency, totals.Total.StringFixed(2))
}
