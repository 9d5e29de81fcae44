// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	cfg := NewDefaultConfig()
	cfg.Sync = false
	db, registry, err := New(t.TempDir(), cfg)
	require.NoError(t, err)
	require.NotNil(t, registry)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func TestGetPutDelete(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)

	_, err := db.Get([]byte("missing"))
	require.ErrorIs(err, database.ErrNotFound)
	has, err := db.Has([]byte("missing"))
	require.NoError(err)
	require.False(has)

	require.NoError(db.Put([]byte("k"), []byte("v")))
	v, err := db.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)

	require.NoError(db.Delete([]byte("k")))
	has, err = db.Has([]byte("k"))
	require.NoError(err)
	require.False(has)
}

func TestBatch(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)
	require.NoError(db.Put([]byte("old"), []byte("v")))

	b := db.NewBatch()
	require.NoError(b.Put([]byte("a"), []byte("1")))
	require.NoError(b.Put([]byte("b"), []byte("2")))
	require.NoError(b.Delete([]byte("old")))
	require.Positive(b.Size())

	// Nothing is applied before Write
	has, err := db.Has([]byte("a"))
	require.NoError(err)
	require.False(has)

	require.NoError(b.Write())
	v, err := db.Get([]byte("b"))
	require.NoError(err)
	require.Equal([]byte("2"), v)
	has, err = db.Has([]byte("old"))
	require.NoError(err)
	require.False(has)

	b.Reset()
	require.Zero(b.Size())
}

func TestMetrics(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)

	require.NoError(db.Put([]byte("a"), []byte("1")))
	_, err := db.Get([]byte("a"))
	require.NoError(err)
	_, err = db.Get([]byte("missing"))
	require.ErrorIs(err, database.ErrNotFound)

	b := db.NewBatch()
	require.NoError(b.Put([]byte("b"), []byte("2")))
	require.NoError(b.Put([]byte("c"), []byte("3")))
	require.NoError(b.Delete([]byte("a")))
	require.NoError(b.Write())

	require.Equal(float64(2), testutil.ToFloat64(db.metrics.reads))
	require.Equal(float64(1), testutil.ToFloat64(db.metrics.misses))
	require.Equal(float64(1), testutil.ToFloat64(db.metrics.batches))
	require.Equal(float64(3), testutil.ToFloat64(db.metrics.keysWritten))
	require.Equal(float64(1), testutil.ToFloat64(db.metrics.keysDeleted))

	db.sampleMetrics()
	require.Equal(1, testutil.CollectAndCount(db.metrics.walSize))
}
