package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	RoleCustomer    = "customer"
	RoleAgencyOwner = "agency-owner"
)

// User represents an account in the marketplace. Customers book listings
// and chat with agencies; agency owners manage listings through their Agency.
type User struct {
	ID       string  `gorm:"primaryKey" json:"id"`
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Password string  `gorm:"type:text;not null" json:"-"`
	Name     string  `gorm:"type:text" json:"name"`
	Role     string  `gorm:"type:text;not null;default:customer" json:"role"`
	AgencyID *string `gorm:"type:uuid;index" json:"agencyId,omitempty"`

	// TelegramChatID, when linked, receives a notification for messages
	// that arrive while the user is offline.
	TelegramChatID *int64 `gorm:"index" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate is a GORM hook that assigns a UUID if none is set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// Agency is a tenant publishing listings on the marketplace.
type Agency struct {
	ID       string         `gorm:"primaryKey" json:"id"`
	OwnerID  string         `gorm:"type:uuid;not null;uniqueIndex" json:"ownerId"`
	Name     string         `gorm:"type:text;not null" json:"name"`
	City     string         `gorm:"type:text" json:"city"`
	Services pq.StringArray `gorm:"type:text[]" json:"services"`

	CreatedAt time.Time `json:"createdAt"`
}

func (a *Agency) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
