package billing

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestValidateCustomer(t *testing.T) {
	tests := []struct {
		name        string
		cname       string
		phone       string
		wantErr     bool
		wantMissing bool
	}{
		{name: "valid", cname: "Ali Khan", phone: "0300-1234567"},
		{name: "international", cname: "Ali Khan", phone: "+92 (300) 1234567"},
		{name: "missing name", cname: " ", phone: "0300", wantErr: true, wantMissing: true},
		{name: "missing phone", cname: "Ali", phone: "", wantErr: true, wantMissing: true},
		{name: "long name", cname: strings.Repeat("a", 101), phone: "0300", wantErr: true},
		{name: "long phone", cname: "Ali", phone: strings.Repeat("1", 21), wantErr: true},
		{name: "letters in phone", cname: "Ali", phone: "call me", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCustomer(tt.cname, tt.phone)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, IsValidationError(err), "got %v", err)
			require.Equal(t, tt.wantMissing, errors.Is(err, ErrMissingCustomerInfo))
		})
	}
}
