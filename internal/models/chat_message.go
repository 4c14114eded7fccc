package models

import "time"

// MessageKind classifies the payload of a chat message.
type MessageKind string

const (
	KindText         MessageKind = "text"
	KindImage        MessageKind = "image"
	KindNotification MessageKind = "notification"
)

// Valid reports whether the kind is one of the known message kinds.
func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindNotification:
		return true
	}
	return false
}

// ChatMessage is a persisted message in a post-scoped conversation.
// A message is immutable once saved, except for IsRead, which may only
// transition from false to true.
type ChatMessage struct {
	// ID is assigned by the database on insert. Together with CreatedAt
	// it defines the conversation ordering (created_at asc, id asc).
	ID uint `gorm:"primaryKey" json:"id"`

	// PostID and PostType scope the conversation to one listing.
	PostID   string   `gorm:"type:text;not null;index:idx_post_msg" json:"postId"`
	PostType PostType `gorm:"type:text;not null;index:idx_post_msg" json:"postType"`

	SenderID   string `gorm:"type:uuid;not null;index" json:"senderId"`
	ReceiverID string `gorm:"type:uuid;not null;index" json:"receiverId"`

	Content string      `gorm:"type:text;not null" json:"content"`
	Kind    MessageKind `gorm:"type:text;not null;default:text" json:"kind"`

	IsRead    bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
