package model

import "time"

// HoldRequest asks to hold a resource for [CheckIn, CheckOut) while payment proceeds.
type HoldRequest struct {
	ResourceID string    `json:"resource_id" validate:"required,max=64"`
	GuestID    string    `json:"guest_id" validate:"required,max=64"`
	CheckIn    time.Time `json:"check_in" validate:"required"`
	CheckOut   time.Time `json:"check_out" validate:"required"`
}

type CommitRequest struct {
	Amount           float64 `json:"amount" validate:"gt=0"`
	PaymentReference string  `json:"payment_reference,omitempty" validate:"omitempty,max=128"`
}

// AvailabilitySearch checks several resources for the same interval.
type AvailabilitySearch struct {
	ResourceIDs []string  `json:"resource_ids" validate:"required,min=1,max=100,unique,dive,required"`
	CheckIn     time.Time `json:"check_in" validate:"required"`
	CheckOut    time.Time `json:"check_out" validate:"required"`
}

// Hold is the client view of a pending reservation.
type Hold struct {
	Token      string    `json:"token"`
	ResourceID string    `json:"resource_id"`
	GuestID    string    `json:"guest_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	ExpiresAt  time.Time `json:"expires_at"`
	State      string    `json:"state"`
}
