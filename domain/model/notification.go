package model

import "time"

type NotificationType string

const (
	NotificationFittingRoom NotificationType = "fitting_room"
	NotificationWishlist    NotificationType = "wishlist"
	NotificationSystem      NotificationType = "system"
)

// Notification is a persisted message for staff or customers. It may
// reference at most one of item / fitting room request. AdminResponse is
// single-valued: responding again overwrites, no history is kept.
type Notification struct {
	Base
	Type                 NotificationType `gorm:"size:30;not null" json:"type"`
	Title                string           `gorm:"size:255;not null" json:"title"`
	Message              string           `gorm:"size:1000;not null" json:"message"`
	UserID               *uint            `gorm:"index" json:"user_id,omitempty"`
	ItemID               *uint            `json:"item_id,omitempty"`
	FittingRoomRequestID *uint            `gorm:"index" json:"fitting_room_request_id,omitempty"`
	AdminResponse        *string          `gorm:"size:1000" json:"admin_response,omitempty"`
	IsRead               bool             `gorm:"not null;default:false;index" json:"is_read"`
	RespondedAt          *time.Time       `json:"responded_at,omitempty"`
	ReadAt               *time.Time       `json:"read_at,omitempty"`
}

func (Notification) TableName() string { return "notifications" }
