package testutil

import (
	"time"

	"github.com/google/uuid"

	"rentals/pkg/model"
)

type ResourceBuilder struct {
	req model.ResourceRequest
}

func NewHouseBuilder() *ResourceBuilder {
	return &ResourceBuilder{
		req: model.ResourceRequest{
			ID:             "house-" + uuid.NewString(),
			Kind:           model.KindUniqueHouse,
			Name:           "Sea View Cottage",
			Location:       "Haifa",
			BasePrice:      420,
			CleaningBuffer: "24h",
		},
	}
}

func NewCenterBuilder() *ResourceBuilder {
	return &ResourceBuilder{
		req: model.ResourceRequest{
			ID:             "center-" + uuid.NewString(),
			Kind:           model.KindPropertyCenter,
			Name:           "Harbor Suites",
			Location:       "Eilat",
			BasePrice:      180,
			TotalInventory: 2,
		},
	}
}

func (b *ResourceBuilder) WithBuffer(buffer string) *ResourceBuilder {
	b.req.CleaningBuffer = buffer
	return b
}

func (b *ResourceBuilder) WithInventory(n int) *ResourceBuilder {
	b.req.TotalInventory = n
	return b
}

func (b *ResourceBuilder) Build() model.ResourceRequest {
	return b.req
}

// Stay returns an interval starting days from a fixed future date at 14:00
// and ending nights later at 11:00.
func Stay(days, nights int) (time.Time, time.Time) {
	base := time.Date(2030, time.June, 1, 14, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return base, base.AddDate(0, 0, nights).Add(-3 * time.Hour)
}

func HoldRequest(resourceID, guestID string, checkIn, checkOut time.Time) model.HoldRequest {
	return model.HoldRequest{
		ResourceID: resourceID,
		GuestID:    guestID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	}
}

func ValidCommit() model.CommitRequest {
	return model.CommitRequest{Amount: 840, PaymentReference: "pay-" + uuid.NewString()}
}
