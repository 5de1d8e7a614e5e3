/*
Package realtime addresses events to logical audiences. It knows nothing
about business semantics and nothing about connection membership; the
transport edge decides who is subscribed to which group or user channel.
Delivery is best effort: an audience with nobody listening is a silent
no-op, and no ordering is guaranteed across concurrent producers.
*/
package realtime

import "context"

// Group names used by convention across the system. Nothing enforces
// them; membership is managed entirely by the transport layer.
const (
	GroupStaff     = "staff"
	GroupCustomers = "customers"
	GroupGuests    = "guests"
	GroupAdmin     = "admin"
)

// Event names with their caller-convention argument schemas.
const (
	// EventNewFittingRoomRequest carries (requestId, message, userName, itemName).
	EventNewFittingRoomRequest = "NewFittingRoomRequest"

	// EventAdminResponse carries (responseText).
	EventAdminResponse = "AdminResponse"
)

// Dispatcher sends a named event with an ordered argument list to a
// group or a single user. Implementations report only the send attempt;
// callers must treat failures as non-fatal and never unwind committed
// business state over them.
type Dispatcher interface {
	GroupCast(ctx context.Context, group, event string, args ...any) error
	UserCast(ctx context.Context, userID uint, event string, args ...any) error
}
