package model

import (
	"errors"
	"testing"
	"time"
)

func TestNewReservation_Range(t *testing.T) {
	checkIn := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		checkOut  time.Time
		wantError bool
	}{
		{name: "four nights", checkOut: checkIn.AddDate(0, 0, 4)},
		{name: "one nanosecond", checkOut: checkIn.Add(time.Nanosecond)},
		{name: "equal instants", checkOut: checkIn, wantError: true},
		{name: "check-out before check-in", checkOut: checkIn.Add(-time.Hour), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewReservation("R1", "G1", "H1", checkIn, tt.checkOut, "")
			if tt.wantError {
				if !errors.Is(err, ErrInvalidRange) {
					t.Fatalf("expected ErrInvalidRange, got %v", err)
				}
				if res != nil {
					t.Errorf("expected no reservation on invalid range")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Status != StatusConfirmed {
				t.Errorf("expected default status %s, got %s", StatusConfirmed, res.Status)
			}
			if !res.CheckOut.Equal(tt.checkOut) {
				t.Errorf("check-out was altered: got %s", res.CheckOut)
			}
		})
	}
}

func TestReservation_Counts(t *testing.T) {
	for _, status := range []ReservationStatus{StatusPending, StatusConfirmed, StatusCancelled} {
		r := Reservation{Status: status}
		if got, want := r.Counts(), status == StatusConfirmed; got != want {
			t.Errorf("status %s: Counts() = %v, want %v", status, got, want)
		}
	}
}

func TestReservation_Transition(t *testing.T) {
	tests := []struct {
		from      ReservationStatus
		to        ReservationStatus
		wantError bool
	}{
		{from: StatusPending, to: StatusConfirmed},
		{from: StatusPending, to: StatusCancelled},
		{from: StatusConfirmed, to: StatusCancelled},
		{from: StatusConfirmed, to: StatusPending, wantError: true},
		{from: StatusCancelled, to: StatusConfirmed, wantError: true},
		{from: StatusCancelled, to: StatusCancelled, wantError: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			r := Reservation{Status: tt.from}
			err := r.Transition(tt.to)
			if tt.wantError {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				if r.Status != tt.from {
					t.Errorf("status changed on rejected transition: %s", r.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Status != tt.to {
				t.Errorf("expected status %s, got %s", tt.to, r.Status)
			}
		})
	}
}
