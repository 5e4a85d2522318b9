package models

import (
	"fmt"
	"time"
)

// BillSavedMessage is broadcast after a bill has been written to the ledger
type BillSavedMessage struct {
	BillNumber    string    `json:"bill_number"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	Lines         Lines     `json:"lines"`
	ItemCount     int       `json:"item_count"`
	Subtotal      string    `json:"subtotal"`
	TaxAmount     string    `json:"tax_amount"`
	ServiceCharge string    `json:"service_charge"`
	Total         string    `json:"total"`
	Timestamp     time.Time `json:"timestamp"`
}

// CreateBillSavedMessage builds the broadcast payload for a freshly stored order
func CreateBillSavedMessage(order StoredOrder, customer Customer) *BillSavedMessage {
	return &BillSavedMessage{
		BillNumber:    order.BillNumber,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		Lines:         order.Lines.Clone(),
		ItemCount:     order.Lines.ItemCount(),
		Subtotal:      order.Subtotal.StringFixed(2),
		TaxAmount:     order.TaxAmount.StringFixed(2),
		ServiceCharge: order.ServiceCharge.StringFixed(2),
		Total:         order.Total.StringFixed(2),
		Timestamp:     order.OrderDate.UTC(),
	}
}

// GenerateRoutingKey generates the routing key for bill events
func GenerateRoutingKey(event string) string {
	return fmt.Sprintf("bill.%s", event)
}
