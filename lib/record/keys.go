// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"crypto/rand"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// KeyGenerator produces candidate keys for new records. A generator
// never returns the same key twice over its lifetime. Callers that
// operate on externally supplied sequences still check candidates
// against the sequence, since the sequence may carry keys the generator
// did not mint.
type KeyGenerator interface {
	NextKey() Key
}

// CounterKeys hands out "0", "1", "2", ... in order. It is the default
// policy: cheap, readable in the data file, and independent of the
// sequence length.
type CounterKeys struct {
	mutex sync.Mutex
	next  uint64
}

// NewCounterKeys returns a counter starting at start.
func NewCounterKeys(start uint64) *CounterKeys {
	return &CounterKeys{next: start}
}

// NextKey returns the current counter value and advances it.
func (counter *CounterKeys) NextKey() Key {
	counter.mutex.Lock()
	defer counter.mutex.Unlock()
	key := Key(strconv.FormatUint(counter.next, 10))
	counter.next++
	return key
}

// ULIDKeys hands out monotonic ULIDs. Keys from one generator sort in
// creation order even within the same millisecond.
type ULIDKeys struct {
	mutex   sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewULIDKeys returns a ULID generator reading time from now. Pass nil
// to use the wall clock.
func NewULIDKeys(now func() time.Time) *ULIDKeys {
	if now == nil {
		now = time.Now
	}
	return &ULIDKeys{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     now,
	}
}

// NextKey returns a new ULID in its canonical 26-character form.
func (generator *ULIDKeys) NextKey() Key {
	generator.mutex.Lock()
	defer generator.mutex.Unlock()
	return Key(ulid.MustNew(ulid.Timestamp(generator.now()), generator.entropy).String())
}

// KeyPolicy names a key generator in configuration and on the command
// line.
type KeyPolicy string

const (
	KeyPolicyCounter KeyPolicy = "counter"
	KeyPolicyULID    KeyPolicy = "ulid"
)

// NewKeyGenerator returns the generator for a policy. The counter
// policy starts at start; the ULID policy ignores it. The second result
// is false for unknown policies.
func NewKeyGenerator(policy KeyPolicy, start uint64) (KeyGenerator, bool) {
	switch policy {
	case KeyPolicyCounter, "":
		return NewCounterKeys(start), true
	case KeyPolicyULID:
		return NewULIDKeys(nil), true
	default:
		return nil, false
	}
}

// NextCounterStart returns one past the largest decimal key in the
// sequence, or zero when no key is decimal. A key of math.MaxUint64
// is ignored rather than wrapping the start to zero. Seeding a counter
// with it keeps freshly minted keys away from loaded ones without a
// retry.
func NextCounterStart(sequence Sequence) uint64 {
	var next uint64
	for _, record := range sequence {
		value, err := strconv.ParseUint(string(record.Key), 10, 64)
		// The largest key has no successor; the counter steps around it.
		if err != nil || value == math.MaxUint64 {
			continue
		}
		if value+1 > next {
			next = value + 1
		}
	}
	return next
}
