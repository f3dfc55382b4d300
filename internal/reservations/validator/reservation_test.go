package validator

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"rentals/pkg/logger"
	"rentals/pkg/model"
)

func newTestValidator() *ReservationValidator {
	return NewReservationValidator(logger.New(logger.Config{
		Level:  logger.ERROR,
		Format: logger.JSON,
		Output: io.Discard,
	}))
}

var (
	checkIn  = time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	checkOut = time.Date(2026, 6, 5, 11, 0, 0, 0, time.UTC)
)

func TestValidateHold(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		req       model.HoldRequest
		wantField string
	}{
		{
			name: "valid",
			req:  model.HoldRequest{ResourceID: "h1", GuestID: "g1", CheckIn: checkIn, CheckOut: checkOut},
		},
		{
			name:      "missing resource",
			req:       model.HoldRequest{GuestID: "g1", CheckIn: checkIn, CheckOut: checkOut},
			wantField: "ResourceID",
		},
		{
			name:      "missing guest",
			req:       model.HoldRequest{ResourceID: "h1", CheckIn: checkIn, CheckOut: checkOut},
			wantField: "GuestID",
		},
		{
			name:      "missing check-out",
			req:       model.HoldRequest{ResourceID: "h1", GuestID: "g1", CheckIn: checkIn},
			wantField: "CheckOut",
		},
		{
			name:      "resource id too long",
			req:       model.HoldRequest{ResourceID: strings.Repeat("x", 65), GuestID: "g1", CheckIn: checkIn, CheckOut: checkOut},
			wantField: "ResourceID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateHold(&tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, verrs[0].Field)
			}
		})
	}
}

func TestValidateHold_InvertedIntervalPasses(t *testing.T) {
	v := newTestValidator()
	req := model.HoldRequest{ResourceID: "h1", GuestID: "g1", CheckIn: checkOut, CheckOut: checkIn}
	if err := v.ValidateHold(&req); err != nil {
		t.Fatalf("inverted interval should be left to the workflow, got %v", err)
	}
}

func TestValidateCommit(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateCommit(&model.CommitRequest{Amount: 250}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := v.ValidateCommit(&model.CommitRequest{Amount: 0})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if !strings.Contains(verrs.Error(), "Amount must be greater than 0") {
		t.Errorf("unexpected message: %s", verrs.Error())
	}
}

func TestValidateSearch(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		ids     []string
		wantErr bool
	}{
		{name: "two resources", ids: []string{"h1", "c1"}},
		{name: "empty list", ids: []string{}, wantErr: true},
		{name: "duplicates", ids: []string{"h1", "h1"}, wantErr: true},
		{name: "blank id", ids: []string{"h1", ""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSearch(&model.AvailabilitySearch{ResourceIDs: tt.ids, CheckIn: checkIn, CheckOut: checkOut})
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSearch() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
