package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"restaurant-billing/internal/logger"
	"restaurant-billing/internal/messaging"
	"restaurant-billing/internal/models"
)

type fakeConsumer struct {
	bodies [][]byte
	errs   []error
	closed bool
}

func (c *fakeConsumer) StartConsuming(ctx context.Context, handler messaging.MessageHandler) error {
	for _, b := range c.bodies {
		c.errs = append(c.errs, handler(ctx, b))
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *fakeConsumer) Close() error {
	c.closed = true
	return nil
}

func sampleMessage() *models.BillSavedMessage {
	return &models.BillSavedMessage{
		BillNumber:    "BILL20240101120000",
		CustomerName:  "Ali Khan",
		CustomerPhone: "0300",
		Lines:         models.Lines{"Fresh Lime": 1, "Chicken Biryani": 2},
		ItemCount:     3,
		Total:         "885.60",
		Timestamp:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFormatBillSaved(t *testing.T) {
	tests := []struct {
		currency string
		want     string
	}{
		{"Rs.", "[2024-01-01 12:00:00] Bill BILL20240101120000 saved for Ali Khan (0300): 3 item(s), total Rs. 885.60 [Chicken Biryani x2, Fresh Lime x1]"},
		{"PKR", "[2024-01-01 12:00:00] Bill BILL20240101120000 saved for Ali Khan (0300): 3 item(s), total PKR 885.60 [Chicken Biryani x2, Fresh Lime x1]"},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			require.Equal(t, tt.want, FormatBillSaved(sampleMessage(), tt.currency))
		})
	}
}

func TestSubscriberPrintsEvents(t *testing.T) {
	body, err := json.Marshal(sampleMessage())
	require.NoError(t, err)

	consumer := &fakeConsumer{bodies: [][]byte{body, []byte("not json")}}
	var out bytes.Buffer
	sub := NewSubscriber(consumer, logger.NewWithWriter("notify-test", "error", io.Discard), &out, "PKR")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, sub.Start(ctx))

	require.True(t, consumer.closed)
	require.Contains(t, out.String(), "Bill BILL20240101120000 saved for Ali Khan")
	require.Contains(t, out.String(), "total PKR 885.60")
	require.Len(t, consumer.errs, 2)
	require.NoError(t, consumer.errs[0])
	require.True(t, errors.Is(consumer.errs[1], messaging.ErrMalformedMessage))
}
