package model

import (
	"errors"
	"fmt"
	"time"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

var (
	ErrInvalidRange      = errors.New("check-out must be after check-in")
	ErrStayTooLong       = errors.New("stay exceeds the maximum length")
	ErrInvalidTransition = errors.New("invalid reservation status transition")
)

var statusTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

// Reservation is a guest's claim on a resource for [CheckIn, CheckOut).
// Only Status may change after construction.
type Reservation struct {
	ID         string            `json:"id" bson:"_id" validate:"required"`
	GuestID    string            `json:"guest_id" bson:"guest_id" validate:"required"`
	ResourceID string            `json:"resource_id" bson:"resource_id" validate:"required"`
	CheckIn    time.Time         `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut   time.Time         `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	Status     ReservationStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
}

func NewReservation(id, guestID, resourceID string, checkIn, checkOut time.Time, status ReservationStatus) (*Reservation, error) {
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("%w: check_in=%s check_out=%s", ErrInvalidRange, checkIn.Format(time.RFC3339), checkOut.Format(time.RFC3339))
	}
	if status == "" {
		status = StatusConfirmed
	}
	return &Reservation{
		ID:         id,
		GuestID:    guestID,
		ResourceID: resourceID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     status,
	}, nil
}

// Counts reports whether the reservation takes part in conflict checks.
func (r *Reservation) Counts() bool {
	return r.Status == StatusConfirmed
}

func (r *Reservation) Transition(to ReservationStatus) error {
	for _, allowed := range statusTransitions[r.Status] {
		if allowed == to {
			r.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
}
