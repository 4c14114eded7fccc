package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus follows the payment verify/update contract: a booking is
// created pending and moves to paid or cancelled when the gateway reports.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking ties a customer to a bookable post.
type Booking struct {
	ID       string        `gorm:"primaryKey" json:"id"`
	UserID   string        `gorm:"type:uuid;not null;index" json:"userId"`
	PostID   string        `gorm:"type:text;not null;index:idx_post_booking" json:"postId"`
	PostType PostType      `gorm:"type:text;not null;index:idx_post_booking" json:"postType"`
	Status   BookingStatus `gorm:"type:text;not null;default:pending" json:"status"`
	Amount   int64         `gorm:"not null" json:"amount"`

	// PaymentRef is the gateway's reference, set when payment is initiated.
	PaymentRef string `gorm:"type:text;index" json:"paymentRef,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}
