package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Audience kinds for outbound realtime events.
const (
	AudienceGroup = "group"
	AudienceUser  = "user"
)

// Outbound event delivery states.
const (
	EventStatusPending    = "PENDING"
	EventStatusProcessing = "PROCESSING"
	EventStatusPublished  = "PUBLISHED"
	EventStatusFailed     = "FAILED"
)

// OutboundEvent is a queued, addressed realtime event. Business
// operations enqueue events inside their transaction; the outbox worker
// drains committed rows and hands them to the dispatcher, so nothing is
// ever dispatched for a transaction that failed to commit.
type OutboundEvent struct {
	Base
	Audience   string `gorm:"size:10;not null" json:"audience"`
	Target     string `gorm:"size:64;not null" json:"target"`
	EventName  string `gorm:"size:100;not null;index" json:"event_name"`
	Payload    string `gorm:"type:json;not null" json:"payload"`
	Status     string `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	RetryCount int    `gorm:"not null;default:0" json:"retry_count"`
}

func (OutboundEvent) TableName() string { return "outbound_events" }

// Args decodes the ordered argument list carried by the event.
func (e *OutboundEvent) Args() ([]any, error) {
	var args []any
	if err := json.Unmarshal([]byte(e.Payload), &args); err != nil {
		return nil, fmt.Errorf("decode outbound event payload: %w", err)
	}
	return args, nil
}

// NewGroupEvent builds a pending event addressed to a named group.
func NewGroupEvent(group, eventName string, args ...any) (*OutboundEvent, error) {
	return newOutboundEvent(AudienceGroup, group, eventName, args)
}

// NewUserEvent builds a pending event addressed to a single user.
func NewUserEvent(userID uint, eventName string, args ...any) (*OutboundEvent, error) {
	return newOutboundEvent(AudienceUser, strconv.FormatUint(uint64(userID), 10), eventName, args)
}

func newOutboundEvent(audience, target, eventName string, args []any) (*OutboundEvent, error) {
	if eventName == "" {
		return nil, fmt.Errorf("event name cannot be empty")
	}
	if target == "" {
		return nil, fmt.Errorf("event target cannot be empty")
	}
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode outbound event payload: %w", err)
	}
	return &OutboundEvent{
		Audience:  audience,
		Target:    target,
		EventName: eventName,
		Payload:   string(payload),
		Status:    EventStatusPending,
	}, nil
}
