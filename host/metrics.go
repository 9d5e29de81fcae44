// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "countervm"

type metrics struct {
	accepted prometheus.Counter
	rejected prometheus.Counter
	failed   prometheus.Counter

	liveApps prometheus.Gauge

	executeLatency prometheus.Histogram
	stateChanges   prometheus.Counter
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_accepted",
			Help:      "number of invocations accepted by the program",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_rejected",
			Help:      "number of invocations rejected by the program or host",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_failed",
			Help:      "number of transactions that could not be processed",
		}),
		liveApps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_apps",
			Help:      "number of applications created and not deleted since start",
		}),
		executeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execute_latency",
			Help:      "time spent executing and committing a transaction (seconds)",
			Buckets:   prometheus.DefBuckets,
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_changes",
			Help:      "number of keys written or removed",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.accepted),
		r.Register(m.rejected),
		r.Register(m.failed),
		r.Register(m.liveApps),
		r.Register(m.executeLatency),
		r.Register(m.stateChanges),
	)
	return m, errs.Err
}
