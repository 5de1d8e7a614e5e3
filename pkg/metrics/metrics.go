package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FittingRoomRequestsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitting_room_requests_created_total",
			Help: "Total number of fitting room requests created",
		},
	)

	WishlistEscalations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wishlist_escalations_total",
			Help: "Total number of wishlist to fitting room escalations",
		},
	)

	OutboundEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_events_published_total",
			Help: "Total number of outbound realtime events published",
		},
		[]string{"audience"},
	)

	OutboundEventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_events_failed_total",
			Help: "Total number of outbound realtime event dispatch failures",
		},
		[]string{"audience"},
	)
)
