package model

// ResourceRequest is the wire form of a new resource. CleaningBuffer is a Go
// duration string such as "24h"; empty means the configured default.
type ResourceRequest struct {
	ID             string       `json:"id,omitempty" validate:"omitempty,max=64"`
	Kind           ResourceKind `json:"kind" validate:"required,oneof=unique_house property_center"`
	Name           string       `json:"name" validate:"required"`
	Location       string       `json:"location" validate:"required"`
	BasePrice      float64      `json:"base_price" validate:"gte=0"`
	CleaningBuffer string       `json:"cleaning_buffer,omitempty"`
	TotalInventory int          `json:"total_inventory,omitempty"`
}
