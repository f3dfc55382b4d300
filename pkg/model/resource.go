package model

import (
	"errors"
	"fmt"
	"time"
)

// ResourceKind is the closed set of bookable resource variants.
type ResourceKind string

const (
	KindUniqueHouse    ResourceKind = "unique_house"
	KindPropertyCenter ResourceKind = "property_center"
)

// DefaultCleaningBuffer is applied to a UniqueHouse when no buffer is given.
const DefaultCleaningBuffer = 24 * time.Hour

var ErrInvalidCapacity = errors.New("invalid capacity parameter")

// Resource is a rental unit. Only the capacity parameter matching Kind is
// meaningful: CleaningBuffer for houses, TotalInventory for centers.
// Values are treated as immutable once constructed.
type Resource struct {
	ID             string        `json:"id" bson:"_id" validate:"required"`
	Kind           ResourceKind  `json:"kind" bson:"kind" validate:"required,oneof=unique_house property_center"`
	Name           string        `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Location       string        `json:"location" bson:"location" validate:"required,min=2,max=200"`
	BasePrice      float64       `json:"base_price" bson:"base_price" validate:"gte=0"`
	CleaningBuffer time.Duration `json:"cleaning_buffer,omitempty" bson:"cleaning_buffer,omitempty" validate:"gte=0"`
	TotalInventory int           `json:"total_inventory,omitempty" bson:"total_inventory,omitempty" validate:"gte=0"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
}

func NewUniqueHouse(id, name, location string, basePrice float64, cleaningBuffer time.Duration) (*Resource, error) {
	if cleaningBuffer < 0 {
		return nil, fmt.Errorf("%w: cleaning buffer cannot be negative, got %s", ErrInvalidCapacity, cleaningBuffer)
	}
	return &Resource{
		ID:             id,
		Kind:           KindUniqueHouse,
		Name:           name,
		Location:       location,
		BasePrice:      basePrice,
		CleaningBuffer: cleaningBuffer,
	}, nil
}

func NewPropertyCenter(id, name, location string, basePrice float64, totalInventory int) (*Resource, error) {
	if totalInventory <= 0 {
		return nil, fmt.Errorf("%w: total inventory must be positive, got %d", ErrInvalidCapacity, totalInventory)
	}
	return &Resource{
		ID:             id,
		Kind:           KindPropertyCenter,
		Name:           name,
		Location:       location,
		BasePrice:      basePrice,
		TotalInventory: totalInventory,
	}, nil
}

// CheckCapacity re-applies the constructor rules, for resources decoded from storage.
func (r *Resource) CheckCapacity() error {
	switch r.Kind {
	case KindUniqueHouse:
		if r.CleaningBuffer < 0 {
			return fmt.Errorf("%w: cleaning buffer cannot be negative, got %s", ErrInvalidCapacity, r.CleaningBuffer)
		}
	case KindPropertyCenter:
		if r.TotalInventory <= 0 {
			return fmt.Errorf("%w: total inventory must be positive, got %d", ErrInvalidCapacity, r.TotalInventory)
		}
	default:
		return fmt.Errorf("%w: unknown resource kind %q", ErrInvalidCapacity, r.Kind)
	}
	return nil
}
