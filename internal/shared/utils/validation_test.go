package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
)

type lineRequest struct {
	Slot     string   `json:"slot" validate:"required,oneof=breakfast lunch dinner"`
	Weekdays []string `json:"weekdays" validate:"required,min=1,dive,weekday"`
	Start    string   `json:"start_date" validate:"omitempty,civildate"`
	Price    int64    `json:"unit_price" validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	biztime.MustInit(biztime.DefaultTimezone)

	tests := []struct {
		name    string
		req     lineRequest
		wantErr string
	}{
		{"valid", lineRequest{Slot: "lunch", Weekdays: []string{"mon", "FRI"}, Start: "2024-06-10", Price: 100}, ""},
		{"unknown weekday", lineRequest{Slot: "lunch", Weekdays: []string{"mon", "xyz"}, Price: 100}, "weekdays[1] must be one of"},
		{"bad slot", lineRequest{Slot: "brunch", Weekdays: []string{"mon"}, Price: 100}, "slot must be one of"},
		{"no weekdays", lineRequest{Slot: "lunch", Weekdays: []string{}, Price: 100}, "weekdays must contain at least 1 items"},
		{"bad date", lineRequest{Slot: "lunch", Weekdays: []string{"mon"}, Start: "10/06/2024", Price: 100}, "start_date must be a date"},
		{"zero price", lineRequest{Slot: "lunch", Weekdays: []string{"mon"}, Price: 0}, "unit_price must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsValidationError(err))
			appErr := apperrors.GetAppError(err)
			if assert.NotNil(t, appErr) {
				assert.Contains(t, appErr.Details, tt.wantErr)
			}
		})
	}
}
