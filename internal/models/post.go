package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostType identifies the kind of bookable listing a conversation or
// booking is scoped to.
type PostType string

const (
	PostTrip  PostType = "trip"
	PostCar   PostType = "car"
	PostHotel PostType = "hotel"
	PostRoom  PostType = "room"
)

// Valid reports whether the post type is one of the known listing kinds.
func (p PostType) Valid() bool {
	switch p {
	case PostTrip, PostCar, PostHotel, PostRoom:
		return true
	}
	return false
}

// Trip is an agency-published tour listing.
type Trip struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	AgencyID    string         `gorm:"type:uuid;not null;index" json:"agencyId"`
	Title       string         `gorm:"type:text;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Destination string         `gorm:"type:text;not null" json:"destination"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Price       int64          `gorm:"not null" json:"price"` // minor currency units
	Seats       int            `gorm:"not null" json:"seats"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     time.Time      `json:"endDate"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Car is a rental car listing.
type Car struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	AgencyID    string         `gorm:"type:uuid;not null;index" json:"agencyId"`
	Model       string         `gorm:"type:text;not null" json:"model"`
	City        string         `gorm:"type:text;not null" json:"city"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	PricePerDay int64          `gorm:"not null" json:"pricePerDay"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Hotel groups rooms under one property.
type Hotel struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	AgencyID  string         `gorm:"type:uuid;not null;index" json:"agencyId"`
	Name      string         `gorm:"type:text;not null" json:"name"`
	City      string         `gorm:"type:text;not null" json:"city"`
	Amenities pq.StringArray `gorm:"type:text[]" json:"amenities"`
	CreatedAt time.Time      `json:"createdAt"`
}

// HotelRoom is an individually bookable room; it carries its own AgencyID
// so ownership lookups do not need a join through Hotel.
type HotelRoom struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	HotelID       string    `gorm:"type:uuid;not null;index" json:"hotelId"`
	AgencyID      string    `gorm:"type:uuid;not null;index" json:"agencyId"`
	Name          string    `gorm:"type:text;not null" json:"name"`
	Capacity      int       `gorm:"not null" json:"capacity"`
	PricePerNight int64     `gorm:"not null" json:"pricePerNight"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

func (c *Car) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

func (h *Hotel) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return
}

func (r *HotelRoom) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
