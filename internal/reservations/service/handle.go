package service

import (
	"fmt"
	"time"

	"rentals/internal/locking"
	reservationserrors "rentals/internal/reservations/errors"
	"rentals/pkg/model"
	"rentals/pkg/sealer"
)

// PendingHandle represents a LOCKED window awaiting commit. It carries the
// resource as it was checked and the lease that commit re-validates.
type PendingHandle struct {
	Resource model.Resource `json:"resource"`
	GuestID  string         `json:"guest_id"`
	CheckIn  time.Time      `json:"check_in"`
	CheckOut time.Time      `json:"check_out"`
	Lease    locking.Lease  `json:"lease"`
	State    State          `json:"state"`
}

func (h *PendingHandle) ExpiresAt() time.Time {
	return h.Lease.ExpiresAt
}

// matchesLease reports whether the lease guards exactly this handle's window.
func (h *PendingHandle) matchesLease() bool {
	return h.Lease.ResourceID == h.Resource.ID &&
		h.Lease.Start.Equal(h.CheckIn) &&
		h.Lease.End.Equal(h.CheckOut)
}

// HandleCodec turns handles into opaque tokens for clients and back.
type HandleCodec struct {
	sealer *sealer.Sealer
}

func NewHandleCodec(key []byte) (*HandleCodec, error) {
	s, err := sealer.New(key)
	if err != nil {
		return nil, err
	}
	return &HandleCodec{sealer: s}, nil
}

func (c *HandleCodec) Encode(h *PendingHandle) (string, error) {
	token, err := c.sealer.SealJSON(h)
	if err != nil {
		return "", fmt.Errorf("failed to seal handle: %w", err)
	}
	return token, nil
}

// Decode rejects tokens that were tampered with, sealed under another key, or
// do not describe a consistent LOCKED hold.
func (c *HandleCodec) Decode(token string) (*PendingHandle, error) {
	var h PendingHandle
	if err := c.sealer.OpenJSON(token, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", reservationserrors.ErrInvalidHandle, err)
	}
	if h.State != StateLocked || !h.matchesLease() {
		return nil, reservationserrors.ErrInvalidHandle
	}
	return &h, nil
}

// View is the client representation of a handle under token.
func (h *PendingHandle) View(token string) *model.Hold {
	return &model.Hold{
		Token:      token,
		ResourceID: h.Resource.ID,
		GuestID:    h.GuestID,
		CheckIn:    h.CheckIn,
		CheckOut:   h.CheckOut,
		ExpiresAt:  h.ExpiresAt(),
		State:      string(h.State),
	}
}
