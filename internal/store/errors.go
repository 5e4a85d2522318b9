package store

import "github.com/cockroachdb/errors"

var (
	// ErrNotFound is returned when a customer or order does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicatePhone is returned when a customer with the phone already exists.
	ErrDuplicatePhone = errors.New("customer phone already exists")
	// ErrDuplicateBillNumber is returned when an order with the bill number already exists.
	ErrDuplicateBillNumber = errors.New("bill number already exists")
	// ErrStorageFailure marks errors raised by the underlying storage engine.
	ErrStorageFailure = errors.New("storage failure")
)

// IsDuplicate reports whether err is one of the uniqueness violations.
func IsDuplicate(err error) bool {
	return errors.IsAny(err, ErrDuplicatePhone, ErrDuplicateBillNumber)
}
