package notification

import (
	"context"
	"fmt"
	"io"
	"strings"

	"restaurant-billing/internal/logger"
	"restaurant-billing/internal/messaging"
	"restaurant-billing/internal/models"
)

// Consumer delivers raw message bodies until ctx is done
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints a line for every saved bill
type Subscriber struct {
	consumer Consumer
	logger   *logger.Logger
	out      io.Writer
	currency string
}

// NewSubscriber creates a new notification subscriber writing to out,
// labelling totals with currency
func NewSubscriber(consumer Consumer, log *logger.Logger, out io.Writer, currency string) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      out,
		currency: currency,
	}
}

// Start consumes bill events until ctx is canceled, then closes the consumer
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.HandleBillSaved)

	s.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)
	if cerr := s.consumer.Close(); cerr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, cerr, nil)
	}

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// HandleBillSaved processes one bill.saved event
func (s *Subscriber) HandleBillSaved(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var msg models.BillSavedMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return err
	}

	s.logger.Debug("notification_received", "Received bill saved notification", requestID, map[string]interface{}{
		"bill_number": msg.BillNumber,
		"total":       msg.Total,
	})

	if _, err := fmt.Fprintln(s.out, FormatBillSaved(&msg, s.currency)); err != nil {
		return err
	}
	return nil
}

// FormatBillSaved creates a human-readable notification line
func FormatBillSaved(msg *models.BillSavedMessage, currency string) string {
	var items []string
	for _, name := range msg.Lines.Names() {
		items = append(items, fmt.Sprintf("%s x%d", name, msg.Lines[name]))
	}

	return fmt.Sprintf(
		"[%s] Bill %s saved for %s (%s): %d item(s), total %s %s [%s]",
		msg.Timestamp.Format("2006-01-02 15:04:05"),
		msg.BillNumber,
		msg.CustomerName,
		msg.CustomerPhone,
		msg.ItemCount,
		currency,
		msg.Total,
		strings.Join(items, ", "),
	)
}
