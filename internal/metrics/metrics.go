package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"centesimi/internal/core"
)

var (
	// Counter of handled chat commands by command name
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centesimi_commands_total",
			Help: "Total number of handled chat commands by command",
		},
		[]string{"command"}, // start, help, lc, nc, uc, cost, rm, stm, sp, text
	)

	// Counter of failed commands by command name and error kind
	CommandErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centesimi_command_errors_total",
			Help: "Total number of failed chat commands by command and error type",
		},
		[]string{"command", "error_type"},
	)

	// Histogram of command handling time
	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "centesimi_command_duration_seconds",
			Help:    "Duration of command handling in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"command"},
	)

	// Counter of published ledger events by type
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centesimi_events_published_total",
			Help: "Total number of published ledger events by type",
		},
		[]string{"type"}, // entry.recorded, entry.deleted
	)

	// Counter of failed event publications by type
	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centesimi_event_publish_failures_total",
			Help: "Total number of failed ledger event publications by type",
		},
		[]string{"type"},
	)
)

// ErrorType translates an error into its metrics label value.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, core.ErrNotFound):
		return "not_found"
	case errors.Is(err, core.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, core.ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, core.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, core.ErrAggregationOverflow):
		return "overflow"
	case errors.Is(err, core.ErrEmptyAlias), errors.Is(err, core.ErrEmptyName):
		return "invalid_input"
	default:
		return "internal"
	}
}
