package entity

import (
	"time"

	"github.com/google/uuid"
)

// Complaint is a ticket raised from the public viewer.
type Complaint struct {
	ID             uuid.UUID `json:"id"`
	RestaurantName string    `json:"restaurant_name"`
	DateRange      string    `json:"date_range,omitempty"`
	Category       string    `json:"category"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	UserName       string    `json:"user_name"`
	UserEmail      string    `json:"user_email"`
	Status         string    `json:"status"`
	AdminResponse  string    `json:"admin_response,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ComplaintFilter narrows a complaint listing. Empty fields are ignored.
type ComplaintFilter struct {
	Status         string
	RestaurantName string
	UserEmail      string
	Limit          int
	Offset         int
}

// ComplaintInput is the body of a complaint submission.
type ComplaintInput struct {
	RestaurantName string `json:"restaurant_name" validate:"required,max=100"`
	DateRange      string `json:"date_range" validate:"max=100"`
	Category       string `json:"category" validate:"required,oneof=메뉴 가격 품질 기타"`
	Title          string `json:"title" validate:"required,max=200"`
	Content        string `json:"content" validate:"required,max=5000"`
	UserName       string `json:"user_name" validate:"required,max=100"`
	UserEmail      string `json:"user_email" validate:"required,email"`
}

// ComplaintUpdate changes the status and/or the admin response of a ticket.
type ComplaintUpdate struct {
	Status        *string `json:"status" validate:"omitempty,oneof=pending processing resolved closed"`
	AdminResponse *string `json:"admin_response" validate:"omitempty,max=5000"`
}

// Empty reports whether the update changes nothing.
func (u ComplaintUpdate) Empty() bool { return u.Status == nil && u.AdminResponse == nil }
