package model

import "time"

// ReservationLock is the stored form of a conflict-avoidance lock entry.
// ID is the normalized (resource, interval) key; Owner is the lease token of
// the holder. An entry past ExpiresAt is treated as absent.
type ReservationLock struct {
	ID         string    `bson:"_id" json:"id"`
	Owner      string    `bson:"owner" json:"owner"`
	ResourceID string    `bson:"resource_id" json:"resource_id"`
	CheckIn    time.Time `bson:"check_in" json:"check_in"`
	CheckOut   time.Time `bson:"check_out" json:"check_out"`
	ExpiresAt  time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
