// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"errors"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/countervm/state"
)

var (
	_ state.Database = (*Database)(nil)
	_ database.Batch = (*batch)(nil)
)

type Config struct {
	CacheSize                   int  `json:"cacheSize"                   yaml:"cacheSize"`
	BytesPerSync                int  `json:"bytesPerSync"                yaml:"bytesPerSync"`
	WALBytesPerSync             int  `json:"walBytesPerSync"             yaml:"walBytesPerSync"`
	MemTableStopWritesThreshold int  `json:"memTableStopWritesThreshold" yaml:"memTableStopWritesThreshold"`
	MemTableSize                int  `json:"memTableSize"                yaml:"memTableSize"`
	MaxOpenFiles                int  `json:"maxOpenFiles"                yaml:"maxOpenFiles"`
	ConcurrentCompactions       int  `json:"concurrentCompactions"       yaml:"concurrentCompactions"`
	Sync                        bool `json:"sync"                        yaml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   32 * units.MiB,
		BytesPerSync:                512 * units.KiB,
		WALBytesPerSync:             0, // pebble default
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * units.MiB,
		MaxOpenFiles:                4_096,
		ConcurrentCompactions:       1,
		Sync:                        true,
	}
}

// Database is a pebble-backed [state.Database].
type Database struct {
	db      *pebble.DB
	metrics *metrics

	writeOptions *pebble.WriteOptions

	closing chan struct{}
	closed  chan struct{}
}

func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d := &Database{
		metrics:      metrics,
		writeOptions: &pebble.WriteOptions{Sync: cfg.Sync},
		closing:      make(chan struct{}),
		closed:       make(chan struct{}),
	}
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:                cfg.BytesPerSync,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                uint64(cfg.MemTableSize),
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions: func() int {
			return cfg.ConcurrentCompactions
		},
	}
	opts.Experimental.ReadSamplingMultiplier = -1 // explicitly disable seek compaction
	opts.EventListener = &pebble.EventListener{
		CompactionBegin: d.onCompactionBegin,
		CompactionEnd:   d.onCompactionEnd,
		WriteStallBegin: d.onWriteStallBegin,
		WriteStallEnd:   d.onWriteStallEnd,
	}
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db
	go func() {
		defer close(d.closed)
		d.collectMetrics()
	}()
	return d, registry, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	_, err := db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (db *Database) Get(key []byte) ([]byte, error) {
	start := time.Now()
	data, closer, err := db.db.Get(key)
	db.metrics.observeRead(start, !errors.Is(err, pebble.ErrNotFound))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ret := make([]byte, len(data))
	copy(ret, data)
	return ret, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	if err := db.db.Set(key, value, db.writeOptions); err != nil {
		return err
	}
	db.metrics.keysWritten.Inc()
	return nil
}

func (db *Database) Delete(key []byte) error {
	if err := db.db.Delete(key, db.writeOptions); err != nil {
		return err
	}
	db.metrics.keysDeleted.Inc()
	return nil
}

func (db *Database) NewBatch() database.Batch {
	return &batch{db: db}
}

func (db *Database) Close() error {
	close(db.closing)
	<-db.closed
	return db.db.Close()
}

// batch buffers operations in memory and applies them atomically with a
// single pebble batch on [Write].
type batch struct {
	database.BatchOps

	db *Database
}

func (b *batch) Write() error {
	var (
		pb      = b.db.db.NewBatch()
		deletes int
	)
	defer pb.Close()

	for _, op := range b.Ops {
		var err error
		if op.Delete {
			deletes++
			err = pb.Delete(op.Key, nil)
		} else {
			err = pb.Set(op.Key, op.Value, nil)
		}
		if err != nil {
			return err
		}
	}
	if err := pb.Commit(b.db.writeOptions); err != nil {
		return err
	}
	b.db.metrics.observeBatch(len(b.Ops)-deletes, deletes)
	return nil
}

func (b *batch) Inner() database.Batch {
	return b
}
