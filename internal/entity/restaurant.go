package entity

import "time"

// Restaurant is a directory entry; its prices override stored record prices when publishing.
type Restaurant struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	PriceLunch  string    `json:"price_lunch"`
	PriceDinner string    `json:"price_dinner"`
	HasDinner   bool      `json:"has_dinner"`
	WebhookURL  string    `json:"webhook_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SortOrder assigns a display position to a restaurant.
type SortOrder struct {
	ID        int64 `json:"id" validate:"required,gt=0"`
	SortOrder int   `json:"sort_order" validate:"gte=0"`
}

// RestaurantInput is the body of a create request.
type RestaurantInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	PriceLunch  string `json:"price_lunch" validate:"max=50"`
	PriceDinner string `json:"price_dinner" validate:"max=50"`
	HasDinner   bool   `json:"has_dinner"`
	WebhookURL  string `json:"webhook_url" validate:"omitempty,url"`
}

// RestaurantPatch carries the fields of an update request; nil means unchanged.
type RestaurantPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	PriceLunch  *string `json:"price_lunch" validate:"omitempty,max=50"`
	PriceDinner *string `json:"price_dinner" validate:"omitempty,max=50"`
	HasDinner   *bool   `json:"has_dinner"`
	WebhookURL  *string `json:"webhook_url" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,gte=0"`
}

// Empty reports whether the patch changes nothing.
func (p RestaurantPatch) Empty() bool {
	return p.Name == nil && p.PriceLunch == nil && p.PriceDinner == nil && p.HasDinner == nil &&
		p.WebhookURL == nil && p.IsActive == nil && p.SortOrder == nil
}
