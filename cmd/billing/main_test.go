package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"restaurant-billing/internal/menu"
	"restaurant-billing/internal/models"
)

func TestParseItems(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    models.Lines
		wantErr bool
	}{
		{name: "none", pairs: nil, want: models.Lines{}},
		{name: "pairs", pairs: []string{"Chicken Biryani=2", " Fresh Lime = 1 "}, want: models.Lines{"Chicken Biryani": 2, "Fresh Lime": 1}},
		{name: "bare name", pairs: []string{"Kulfi"}, want: models.Lines{"Kulfi": 1}},
		{name: "repeats add", pairs: []string{"Kulfi", "Kulfi=2"}, want: models.Lines{"Kulfi": 3}},
		{name: "bad quantity", pairs: []string{"Kulfi=two"}, wantErr: true},
		{name: "missing name", pairs: []string{"=2"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseItems(tt.pairs)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPrintMenu(t *testing.T) {
	var buf bytes.Buffer
	printMenu(&buf, menu.Default(), "Rs.")
	out := buf.String()
	require.Contains(t, out, "Chicken Karahi")
	require.Contains(t, out, "Rs. 450.00")
}

func TestPrintOrders(t *testing.T) {
	var buf bytes.Buffer
	printOrders(&buf, []models.OrderRecord{{
		StoredOrder: models.StoredOrder{
			BillNumber: "BILL20240101120000",
			Totals: models.Totals{
				Subtotal:      decimal.RequireFromString("720"),
				TaxAmount:     decimal.RequireFromString("129.6"),
				ServiceCharge: decimal.RequireFromString("36"),
				Total:         decimal.RequireFromString("885.6"),
			},
			OrderDate: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		CustomerName:  "Ali Khan",
		CustomerPhone: "0300",
	}})
	out := buf.String()
	require.Contains(t, out, "BILL20240101120000")
	require.Contains(t, out, "885.60")
	require.Contains(t, out, "129.60")
}

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := "billing:\n  storage: memory\n  receipts_dir: " + dir + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		billFlags.items = nil
		billFlags.name, billFlags.phone, billFlags.format = "", "", ""
		billFlags.prefill, billFlags.dryRun = false, false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQuoteCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)

	out, err := runCLI(t, "--config", cfg, "--env-file", filepath.Join(dir, "none.env"),
		"quote", "--item", "Chicken Biryani=2", "--item", "Fresh Lime=1")
	require.NoError(t, err)
	require.Contains(t, out, "Rs. 885.60")
}

func TestBillCommandWritesReceipt(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)

	out, err := runCLI(t, "--config", cfg, "--env-file", filepath.Join(dir, "none.env"),
		"bill", "--name", "Ali Khan", "--phone", "0300", "-i", "Chicken Biryani=2", "-i", "Fresh Lime", "--format", "txt")
	require.NoError(t, err)
	require.Contains(t, out, "Customer: Ali Khan")
	require.Contains(t, out, "Rs. 885.60")

	matches, err := filepath.Glob(filepath.Join(dir, "Bill_BILL*.txt"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.True(t, strings.HasPrefix(filepath.Base(matches[0]), "Bill_BILL"))
}

func TestBillCommandRejectsEmptyOrder(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)

	_, err := runCLI(t, "--config", cfg, "--env-file", filepath.Join(dir, "none.env"),
		"bill", "--name", "Ali Khan", "--phone", "0300")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no items in order")
}
