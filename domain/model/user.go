package model

// Role classifies an account for audience addressing. Membership of
// realtime groups is managed by the transport edge, not here.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

type User struct {
	Base
	DisplayName string `gorm:"size:100;not null" json:"display_name"`
	Phone       string `gorm:"size:32" json:"phone"`
	Role        Role   `gorm:"size:20;not null;default:customer" json:"role"`
}

func (User) TableName() string { return "users" }
