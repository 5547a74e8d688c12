package metrics

import (
	"errors"
	"fmt"
	"testing"

	"centesimi/internal/core"
)

func TestErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "none"},
		{"not found", core.ErrNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("category: %w", core.ErrNotFound), "not_found"},
		{"invalid amount", core.ErrInvalidAmount, "invalid_amount"},
		{"invalid category", core.ErrInvalidCategory, "invalid_category"},
		{"store unavailable", core.ErrStoreUnavailable, "store_unavailable"},
		{"overflow", core.ErrAggregationOverflow, "overflow"},
		{"empty alias", core.ErrEmptyAlias, "invalid_input"},
		{"anything else", errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorType(tt.err); got != tt.want {
				t.Errorf("ErrorType(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
