package entity

import "time"

// MenuRecord is a stored weekly menu for one restaurant and date range.
type MenuRecord struct {
	ID             int64      `json:"id"`
	RestaurantName string     `json:"restaurantName"`
	DateRange      string     `json:"dateRange"`
	PriceLunch     string     `json:"priceLunch"`
	PriceDinner    string     `json:"priceDinner"`
	Menus          WeeklyMenu `json:"menus"`
	ImagePath      string     `json:"imagePath,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// MenuSummary is the list view of a stored record.
type MenuSummary struct {
	ID             int64     `json:"id"`
	RestaurantName string    `json:"restaurantName"`
	DateRange      string    `json:"dateRange"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// MenuSaveRequest is the JSON document submitted when saving a reviewed extraction.
type MenuSaveRequest struct {
	RestaurantName string     `json:"restaurantName" validate:"required,max=100"`
	DateRange      string     `json:"dateRange" validate:"required,max=100"`
	Price          Price      `json:"price"`
	Menus          WeeklyMenu `json:"menus"`
}
