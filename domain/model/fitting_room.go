package model

import "time"

// RequestStatus is the fitting room request lifecycle. NewRequest is
// the only initial state; Completed and Cancelled are terminal, no
// transition leads out of either.
type RequestStatus string

const (
	StatusNewRequest RequestStatus = "NEW_REQUEST"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusCancelled  RequestStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// FittingRoomRequest is a customer-initiated, staff-handled assistance
// request. It is unrelated to FittingRoom booth reservations.
type FittingRoomRequest struct {
	Base
	UserID           uint          `gorm:"not null;index" json:"user_id"`
	ItemID           uint          `gorm:"not null;index" json:"item_id"`
	Status           RequestStatus `gorm:"size:20;not null;default:NEW_REQUEST;index" json:"status"`
	CustomerNote     *string       `gorm:"size:500" json:"customer_note,omitempty"`
	StaffMessage     *string       `gorm:"size:500" json:"staff_message,omitempty"`
	HandledByStaffID *uint         `json:"handled_by_staff_id,omitempty"`
	HandledAt        *time.Time    `json:"handled_at,omitempty"`
}

func (FittingRoomRequest) TableName() string { return "fitting_room_requests" }

// FittingRoom is a physical booth. Reservation state lives entirely in
// this subsystem and is never consulted by the request workflow.
type FittingRoom struct {
	Base
	RoomNumber        int        `gorm:"not null;uniqueIndex" json:"room_number"`
	Available         bool       `gorm:"not null" json:"available"`
	ReservedUntil     *time.Time `json:"reserved_until,omitempty"`
	ReservedForUserID *uint      `json:"reserved_for_user_id,omitempty"`
}

func (FittingRoom) TableName() string { return "fitting_rooms" }
