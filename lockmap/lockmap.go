// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package lockmap provides reader/writer locks keyed by value.
package lockmap

import "sync"

type entry struct {
	refs int
	mu   sync.RWMutex
}

// Lockmap holds one RW lock per key. An entry exists only while some
// goroutine holds or waits on it.
type Lockmap[K comparable] struct {
	l       sync.Mutex
	entries map[K]*entry
}

func New[K comparable](initSize int) *Lockmap[K] {
	return &Lockmap[K]{
		entries: make(map[K]*entry, initSize),
	}
}

// Lock acquires [key] exclusively and returns the function that releases it.
func (l *Lockmap[K]) Lock(key K) func() {
	e := l.acquire(key)
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.release(key)
	}
}

// RLock acquires [key] shared and returns the function that releases it.
func (l *Lockmap[K]) RLock(key K) func() {
	e := l.acquire(key)
	e.mu.RLock()
	return func() {
		e.mu.RUnlock()
		l.release(key)
	}
}

func (l *Lockmap[K]) acquire(key K) *entry {
	l.l.Lock()
	defer l.l.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Lockmap[K]) release(key K) {
	l.l.Lock()
	defer l.l.Unlock()

	e := l.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Len returns the number of keys currently held or waited on.
func (l *Lockmap[K]) Len() int {
	l.l.Lock()
	defer l.l.Unlock()

	return len(l.entries)
}
