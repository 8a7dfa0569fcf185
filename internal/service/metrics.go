package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	discoveryFilterResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_filter_results",
			Help:    "Number of products left after local filtering, by display mode.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"mode"},
	)

	ratingSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_submissions_total",
			Help: "Rating submissions by target kind and outcome.",
		},
		[]string{"target_kind", "outcome"},
	)
)
