// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rsvp"

var (
	GuestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guests_created_total",
		Help:      "Number of guest records created.",
	})

	GuestsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guests_deleted_total",
		Help:      "Number of guest delete requests that were persisted.",
	})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "OAuth callbacks by result.",
	}, []string{"result"})

	StorageReadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_read_failures_total",
		Help:      "Collection reads that failed and were served as empty.",
	}, []string{"collection"})
)

const (
	LoginSucceeded = "success"
	LoginFailed    = "failure"
)
