// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsInterval = 10 * time.Second

	levelLabel = "level"
	l0Level    = "l0"
	otherLevel = "other"
)

// metrics are registered without a namespace. Callers prefix them when they
// register the returned registry with a gatherer.
type metrics struct {
	reads       prometheus.Counter
	misses      prometheus.Counter
	readLatency metric.Averager

	batches     prometheus.Counter
	keysWritten prometheus.Counter
	keysDeleted prometheus.Counter

	stallStart time.Time
	stalls     prometheus.Counter
	stallTime  metric.Averager

	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge

	tombstones    prometheus.Gauge
	walSize       prometheus.Gauge
	obsoleteBytes prometheus.Gauge
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	readLatency, err := metric.NewAverager(
		"read_latency",
		"time spent in database reads (ns)",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	stallTime, err := metric.NewAverager(
		"write_stall",
		"time writes spent stalled on compaction (ns)",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	m := &metrics{
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reads",
			Help: "number of point reads",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "read_misses",
			Help: "number of point reads of missing keys",
		}),
		readLatency: readLatency,
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "batches",
			Help: "number of committed batches",
		}),
		keysWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keys_written",
			Help: "number of keys set, directly or in a batch",
		}),
		keysDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keys_deleted",
			Help: "number of keys deleted, directly or in a batch",
		}),
		stalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "write_stalls",
			Help: "number of write stalls",
		}),
		stallTime: stallTime,
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compactions",
			Help: "number of compactions started, by input level",
		}, []string{levelLabel}),
		activeCompactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "active_compactions",
			Help: "number of running compactions",
		}),
		tombstones: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tombstones",
			Help: "approximate count of internal tombstones",
		}),
		walSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wal_size",
			Help: "live bytes in the write-ahead log",
		}),
		obsoleteBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wal_obsolete_size",
			Help: "bytes of write-ahead log no longer needed",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.reads),
		r.Register(m.misses),
		r.Register(m.batches),
		r.Register(m.keysWritten),
		r.Register(m.keysDeleted),
		r.Register(m.stalls),
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
		r.Register(m.tombstones),
		r.Register(m.walSize),
		r.Register(m.obsoleteBytes),
	)
	return r, m, errs.Err
}

func (m *metrics) observeRead(start time.Time, found bool) {
	m.reads.Inc()
	if !found {
		m.misses.Inc()
	}
	m.readLatency.Observe(float64(time.Since(start)))
}

func (m *metrics) observeBatch(puts, deletes int) {
	m.batches.Inc()
	m.keysWritten.Add(float64(puts))
	m.keysDeleted.Add(float64(deletes))
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	level := otherLevel
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		level = l0Level
	}
	db.metrics.compactions.WithLabelValues(level).Inc()
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.stalls.Inc()
	db.metrics.stallStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.stallTime.Observe(float64(time.Since(db.metrics.stallStart)))
}

func (db *Database) sampleMetrics() {
	m := db.db.Metrics()
	db.metrics.tombstones.Set(float64(m.Keys.TombstoneCount))
	db.metrics.walSize.Set(float64(m.WAL.Size))
	db.metrics.obsoleteBytes.Set(float64(m.WAL.ObsoletePhysicalSize))
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			db.sampleMetrics()
		case <-db.closing:
			return
		}
	}
}
