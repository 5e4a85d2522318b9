package models

import "time"

// Customer is a diner known to the ledger, keyed naturally by phone
type Customer struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Phone       string    `json:"phone" db:"phone"`
	CreatedDate time.Time `json:"created_date" db:"created_date"`
}
