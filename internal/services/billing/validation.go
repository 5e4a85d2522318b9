package billing

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	maxNameLength  = 100
	maxPhoneLength = 20
)

// ValidationError names the request field that failed a check
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func validateCustomer(name, phone string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	return validatePhone(phone)
}

func validateCustomerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Mark(ValidationError{
			Field:   "customer_name",
			Message: "customer name is required",
		}, ErrMissingCustomerInfo)
	}

	if len(name) > maxNameLength {
		return ValidationError{
			Field:   "customer_name",
			Message: fmt.Sprintf("customer name must be at most %d characters", maxNameLength),
		}
	}
	return nil
}

func validatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return errors.Mark(ValidationError{
			Field:   "customer_phone",
			Message: "customer phone is required",
		}, ErrMissingCustomerInfo)
	}

	if len(phone) > maxPhoneLength {
		return ValidationError{
			Field:   "customer_phone",
			Message: fmt.Sprintf("customer phone must be at most %d characters", maxPhoneLength),
		}
	}

	for _, r := range phone {
		if !strings.ContainsRune("0123456789+-() ", r) {
			return ValidationError{
				Field:   "customer_phone",
				Message: "customer phone may only contain digits, spaces and + - ( )",
			}
		}
	}
	return nil
}
