// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lockmap

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockRelease(t *testing.T) {
	require := require.New(t)
	l := New[uint64](2)

	unlockA := l.Lock(1)
	runlockB1 := l.RLock(2)
	runlockB2 := l.RLock(2)
	require.Equal(2, l.Len())

	unlockA()
	require.Equal(1, l.Len())
	runlockB1()
	require.Equal(1, l.Len())
	runlockB2()
	require.Zero(l.Len())
}

func TestLockSerializesKey(t *testing.T) {
	require := require.New(t)
	l := New[string](1)

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer l.Lock("app")()
			counter++
		}()
	}
	wg.Wait()
	require.Equal(64, counter)
	require.Zero(l.Len())
}

func TestWriterWaitsForReaders(t *testing.T) {
	require := require.New(t)
	l := New[uint64](1)

	runlock := l.RLock(7)
	acquired := make(chan struct{})
	go func() {
		defer l.Lock(7)()
		close(acquired)
	}()

	select {
	case <-acquired:
		require.FailNow("writer acquired a key held by a reader")
	case <-time.After(50 * time.Millisecond):
	}
	// Other keys are independent.
	l.Lock(8)()

	runlock()
	<-acquired
	require.Eventually(func() bool { return l.Len() == 0 }, time.Second, time.Millisecond)
}
