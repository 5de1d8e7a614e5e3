package model

// Item is a sellable article. Only active items are eligible for new
// wishlist entries and fitting room requests.
type Item struct {
	Base
	Name   string `gorm:"size:255;not null" json:"name"`
	Active bool   `gorm:"not null;index" json:"active"`
}

func (Item) TableName() string { return "items" }
