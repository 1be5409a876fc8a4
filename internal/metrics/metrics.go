package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DonationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodlink_donations_created_total",
		Help: "Total number of donations successfully listed.",
	})

	AcceptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodlink_accepts_total",
		Help: "Total number of successful donation claims.",
	})

	AcceptConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodlink_accept_conflicts_total",
		Help: "Total number of claim attempts that lost the race or targeted a non-available donation.",
	})

	CompletionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodlink_completions_total",
		Help: "Total number of donations marked completed.",
	})

	CancellationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodlink_cancellations_total",
		Help: "Total number of donations cancelled by their donor.",
	})

	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodlink_store_errors_total",
		Help: "Total number of persistence-layer failures per operation.",
	},
		[]string{"operation"},
	)
)
