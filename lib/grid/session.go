// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/bureau-foundation/recordgrid/lib/record"
)

// Values maps record fields to text values.
type Values map[record.Field]string

// Validator checks a row's pending values. On success it returns the
// validated (possibly canonicalized) values; on failure it returns a
// *ValidationError. Validate may block and is called off the event
// loop by interactive callers.
type Validator interface {
	Validate(ctx context.Context, key record.Key, values Values) (Values, error)
}

// ValidatorFunc adapts a function to [Validator].
type ValidatorFunc func(ctx context.Context, key record.Key, values Values) (Values, error)

func (function ValidatorFunc) Validate(ctx context.Context, key record.Key, values Values) (Values, error) {
	return function(ctx, key, values)
}

// Session is the edit context of one row. Cells of the row declare
// their field when they start editing and write input into the
// session; [Session.Validate] checks every declared field together.
//
// A session exists from the moment its row is displayed until the row
// leaves the sequence, and is reset after each successful commit.
//
// Session methods lock, because Validate runs on a worker goroutine
// while the event loop keeps accepting input.
type Session struct {
	key       record.Key
	validator Validator

	mutex    sync.Mutex
	declared []record.Field
	pending  Values
	working  Values
}

// NewSession creates the session for the row with key. A nil validator
// accepts every value unchanged.
func NewSession(key record.Key, validator Validator) *Session {
	return &Session{
		key:       key,
		validator: validator,
		pending:   make(Values),
		working:   make(Values),
	}
}

// Key returns the key of the session's row.
func (session *Session) Key() record.Key {
	return session.key
}

// Seed declares the fields of partial and sets their pending values.
func (session *Session) Seed(partial Values) {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	for field, value := range partial {
		session.declareLocked(field)
		session.pending[field] = value
	}
}

// Set writes the pending value of a field, declaring it if needed.
func (session *Session) Set(field record.Field, value string) {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	session.declareLocked(field)
	session.pending[field] = value
}

// Value returns the pending value of a declared field.
func (session *Session) Value(field record.Field) (string, bool) {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	value, ok := session.pending[field]
	return value, ok
}

// Declared returns the declared fields in declaration order.
func (session *Session) Declared() []record.Field {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return slices.Clone(session.declared)
}

// Working returns the values committed by the last successful
// validation.
func (session *Session) Working() Values {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return maps.Clone(session.working)
}

// Validate checks all declared fields. On success the validated values
// are copied into the working copy and returned. On failure the error
// is returned and the session is exactly as it was before the call.
//
// Values are snapshotted before the validator runs, so input typed
// while validation is in flight is neither validated nor lost.
func (session *Session) Validate(ctx context.Context) (Values, error) {
	session.mutex.Lock()
	snapshot := make(Values, len(session.declared))
	for _, field := range session.declared {
		snapshot[field] = session.pending[field]
	}
	session.mutex.Unlock()

	validated := snapshot
	if session.validator != nil {
		result, err := session.validator.Validate(ctx, session.key, maps.Clone(snapshot))
		if err != nil {
			var validationError *ValidationError
			if errors.As(err, &validationError) && validationError.Key == "" {
				validationError.Key = session.key
			}
			return nil, err
		}
		validated = make(Values, len(snapshot))
		for field := range snapshot {
			if value, ok := result[field]; ok {
				validated[field] = value
			} else {
				validated[field] = snapshot[field]
			}
		}
	}

	session.mutex.Lock()
	for field, value := range validated {
		session.working[field] = value
	}
	session.mutex.Unlock()

	return maps.Clone(validated), nil
}

// Reset clears declarations, pending values and the working copy.
func (session *Session) Reset() {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	session.declared = nil
	session.pending = make(Values)
	session.working = make(Values)
}

func (session *Session) declareLocked(field record.Field) {
	if !slices.Contains(session.declared, field) {
		session.declared = append(session.declared, field)
	}
}
