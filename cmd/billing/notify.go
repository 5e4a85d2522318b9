package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"restaurant-billing/internal/logger"
	"restaurant-billing/internal/messaging"
	"restaurant-billing/internal/services/notification"
)

var notifyPrefetch int

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "print a line for every saved bill",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("notification-subscriber", os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.cfg.RabbitMQ.Enabled {
			return errors.New("notify needs rabbitmq.enabled=true")
		}
		if err := a.openMessaging(cmd.Context()); err != nil {
			return err
		}

		consumer := messaging.NewConsumer(a.conn, a.log, messaging.NotificationsQueue,
			"billing-notify-"+logger.GenerateRequestID()[:8], notifyPrefetch)
		return notification.NewSubscriber(consumer, a.log, cmd.OutOrStdout(), a.cfg.Restaurant.Currency).Start(cmd.Context())
	},
}

func init() {
	notifyCmd.Flags().IntVar(&notifyPrefetch, "prefetch", 1, "RabbitMQ prefetch count")
}
