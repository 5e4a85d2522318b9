package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"restaurant-billing/internal/models"
)

var customersCmd = &cobra.Command{
	Use:   "customers [query]",
	Short: "search customers by name or phone",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("billing-cli", os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		service, err := a.newService(cmd.Context(), nil)
		if err != nil {
			return err
		}
		customers, err := service.SearchCustomers(cmd.Context(), strings.Join(args, ""))
		if err != nil {
			return err
		}
		printCustomers(cmd.OutOrStdout(), customers)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders [query]",
	Short: "search bills by customer name, phone or bill number",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("billing-cli", os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		service, err := a.newService(cmd.Context(), nil)
		if err != nil {
			return err
		}
		orders, err := service.SearchOrders(cmd.Context(), strings.Join(args, ""))
		if err != nil {
			return err
		}
		printOrders(cmd.OutOrStdout(), orders)
		return nil
	},
}

func printCustomers(w io.Writer, customers []models.Customer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Phone", "Created"})
	for _, c := range customers {
		table.Append([]string{fmt.Sprint(c.ID), c.Name, c.Phone, c.CreatedDate.Format("2006-01-02")})
	}
	table.Render()
}

func printOrders(w io.Writer, orders []models.OrderRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Bill No", "Customer", "Phone", "Subtotal", "Tax", "Service Charge", "Total", "Date"})
	table.SetAutoWrapText(false)
	for _, o := range orders {
		table.Append([]string{
			o.BillNumber,
			o.CustomerName,
			o.CustomerPhone,
			o.Subtotal.StringFixed(2),
			o.TaxAmount.StringFixed(2),
			o.ServiceCharge.StringFixed(2),
			o.Total.StringFixed(2),
			o.OrderDate.Local().Format("2006-01-02 15:04"),
		})
	}
	table.Render()
}
