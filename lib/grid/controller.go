// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"log/slog"

	"github.com/bureau-foundation/recordgrid/lib/record"
)

// OnChange receives every new sequence the controller produces. It is
// the owner side of the controlled-component boundary.
type OnChange func(next record.Sequence)

// Controller applies add, delete and save to a caller-supplied
// sequence and hands the result to the owner. It keeps no copy of the
// sequence between calls, so what it transforms is always what the
// caller currently displays.
type Controller struct {
	onChange OnChange
	keys     record.KeyGenerator
	logger   *slog.Logger
}

// ControllerOption configures a [Controller].
type ControllerOption func(*Controller)

// WithKeyGenerator sets the generator for keys of added records. The
// default is a counter starting at zero.
func WithKeyGenerator(generator record.KeyGenerator) ControllerOption {
	return func(controller *Controller) {
		controller.keys = generator
	}
}

// WithLogger sets the logger for no-op diagnostics. The default
// discards.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(controller *Controller) {
		controller.logger = logger
	}
}

// NewController creates a controller that reports new sequences to
// onChange. A nil onChange is allowed; every mutation is then a
// documented no-op (see [ErrNoOwner]).
func NewController(onChange OnChange, options ...ControllerOption) *Controller {
	controller := &Controller{
		onChange: onChange,
		keys:     record.NewCounterKeys(0),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(controller)
	}
	return controller
}

// Add appends a blank record with a fresh key to current and delivers
// the result. The returned record is the one appended; the bool is
// false when there was no owner to deliver to.
//
// The key is drawn from the controller's generator, skipping any
// candidate current already holds. It is never derived from the
// sequence length.
func (controller *Controller) Add(current record.Sequence) (record.Record, bool) {
	key := controller.freshKey(current)
	added := record.Blank(key)

	next := make(record.Sequence, len(current), len(current)+1)
	copy(next, current)
	next = append(next, added)

	return added, controller.deliver("add", key, next)
}

// Delete removes the record with key from current and delivers the
// result. An unknown key is a no-op and returns false.
func (controller *Controller) Delete(current record.Sequence, key record.Key) bool {
	index := current.IndexOf(key)
	if index < 0 {
		controller.logger.Debug("delete ignored",
			"key", key,
			"reason", ErrKeyNotFound,
		)
		return false
	}

	next := make(record.Sequence, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)

	return controller.deliver("delete", key, next)
}

// Save replaces the record whose key matches updated, at the same
// index, and delivers the result. An unknown key is a no-op and
// returns false: Save never inserts.
func (controller *Controller) Save(current record.Sequence, updated record.Record) bool {
	index := current.IndexOf(updated.Key)
	if index < 0 {
		controller.logger.Debug("save ignored",
			"key", updated.Key,
			"reason", ErrKeyNotFound,
		)
		return false
	}

	next := current.Clone()
	next[index] = updated

	return controller.deliver("save", updated.Key, next)
}

// deliver hands next to the owner. With no owner the sequence is
// dropped and deliver reports false.
func (controller *Controller) deliver(operation string, key record.Key, next record.Sequence) bool {
	if controller.onChange == nil {
		controller.logger.Debug(operation+" ignored",
			"key", key,
			"reason", ErrNoOwner,
		)
		return false
	}
	controller.onChange(next)
	return true
}

func (controller *Controller) freshKey(current record.Sequence) record.Key {
	for {
		key := controller.keys.NextKey()
		if !current.Contains(key) {
			return key
		}
		controller.logger.Debug("skipping generated key already in sequence", "key", key)
	}
}
