package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("billing-migrate", os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.Billing.Storage == "memory" {
			return errors.New("migrate needs billing.storage=postgres")
		}
		_, err = a.openDB(cmd.Context())
		return err
	},
}
