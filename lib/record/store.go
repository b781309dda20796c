// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"log/slog"
	"slices"
	"sync"
)

// Origin says where a replacement came from, so subscribers can tell a
// committed grid edit from an external reload.
type Origin string

const (
	// OriginGrid marks values produced by grid mutations.
	OriginGrid Origin = "grid"
	// OriginExternal marks values loaded from outside the grid, such as
	// a data file rewritten by another tool.
	OriginExternal Origin = "external"
)

// Change is delivered to subscribers whenever the store's value is
// replaced. Value is the complete new sequence.
type Change struct {
	Value  Sequence
	Origin Origin
}

// Persister receives every new value accepted by a [Store]. The data
// file writer in recordfile implements this.
type Persister interface {
	Persist(sequence Sequence) error
}

// Store owns a sequence on behalf of a grid. The grid never mutates
// the sequence it is given; it hands each new sequence to
// [Store.Replace] (its onChange callback) and the store re-supplies it
// to subscribers.
//
// Subscriber channels hold at most one pending change. Each change
// carries the whole sequence, so when a subscriber falls behind the
// pending change is superseded by the newer one rather than queued.
type Store struct {
	mutex       sync.Mutex
	value       Sequence
	subscribers []chan Change
	persister   Persister
	logger      *slog.Logger
}

// NewStore creates a store holding a copy of initial. The persister may
// be nil; the logger may be nil to discard persistence errors.
func NewStore(initial Sequence, persister Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		value:     initial.Clone(),
		persister: persister,
		logger:    logger,
	}
}

// Value returns a copy of the current sequence.
func (store *Store) Value() Sequence {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return store.value.Clone()
}

// Replace is the grid's onChange callback: it accepts next as the new
// value, persists it, and notifies subscribers.
func (store *Store) Replace(next Sequence) {
	store.replace(next, OriginGrid)
}

// Load replaces the value with one read from outside the grid. A
// value equal to the current one is dropped, so the file watcher
// seeing the store's own writes does not re-supply the grid. Load
// reports whether the value changed.
func (store *Store) Load(next Sequence) bool {
	store.mutex.Lock()
	unchanged := slices.Equal(store.value, next)
	store.mutex.Unlock()
	if unchanged {
		return false
	}
	store.replace(next, OriginExternal)
	return true
}

func (store *Store) replace(next Sequence, origin Origin) {
	value := next.Clone()

	store.mutex.Lock()
	store.value = value
	subscribers := store.subscribers
	persister := store.persister
	// Dispatch under the lock so two concurrent replacements cannot
	// deliver out of order to the same subscriber.
	for _, subscriber := range subscribers {
		offer(subscriber, Change{Value: value.Clone(), Origin: origin})
	}
	store.mutex.Unlock()

	if persister != nil && origin == OriginGrid {
		if err := persister.Persist(value); err != nil {
			store.logger.Error("persisting records failed",
				"records", len(value),
				"error", err,
			)
		}
	}
}

// Subscribe returns a channel that receives a [Change] for every
// replacement after the call.
func (store *Store) Subscribe() <-chan Change {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	channel := make(chan Change, 1)
	store.subscribers = append(store.subscribers, channel)
	return channel
}

// offer delivers change, displacing an undelivered older change.
// Callers hold the store mutex, so offer is the only sender.
func offer(channel chan Change, change Change) {
	select {
	case channel <- change:
		return
	default:
	}
	select {
	case <-channel:
	default:
	}
	select {
	case channel <- change:
	default:
	}
}
