package model

import "time"

// WishlistEntry records a saved item. At most one non-deleted entry may
// exist per (user, item) pair; the wishlist service keeps Add idempotent.
type WishlistEntry struct {
	Base
	UserID  uint      `gorm:"not null;index:idx_wishlist_user_item" json:"user_id"`
	ItemID  uint      `gorm:"not null;index:idx_wishlist_user_item" json:"item_id"`
	AddedAt time.Time `gorm:"not null" json:"added_at"`
}

func (WishlistEntry) TableName() string { return "wishlist_entries" }
