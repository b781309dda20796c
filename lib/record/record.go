// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

// Key identifies a record within a sequence. Keys are opaque, assigned
// once at creation, and never reassigned.
type Key string

// Field names one of the text fields of a [Record].
type Field string

const (
	FieldName    Field = "name"
	FieldAge     Field = "age"
	FieldAddress Field = "address"
)

// Fields lists the editable data fields in display order.
var Fields = []Field{FieldName, FieldAge, FieldAddress}

// Record is a single row of the grid. All data fields are text; typed
// interpretation (for example, age as a number) is the job of the
// column kind that renders and parses the field.
//
// The struct uses json tags so the same definition serves both the
// JSONL data file and CBOR snapshots.
type Record struct {
	Key     Key    `json:"key"`
	Name    string `json:"name"`
	Age     string `json:"age"`
	Address string `json:"address"`
}

// Blank returns a record with the given key and empty text fields.
func Blank(key Key) Record {
	return Record{Key: key}
}

// Get returns the value of a data field. The second result is false
// for unknown fields.
func (record Record) Get(field Field) (string, bool) {
	switch field {
	case FieldName:
		return record.Name, true
	case FieldAge:
		return record.Age, true
	case FieldAddress:
		return record.Address, true
	default:
		return "", false
	}
}

// With returns a copy of the record with one field replaced. Unknown
// fields leave the copy unchanged. The key is never touched.
func (record Record) With(field Field, value string) Record {
	switch field {
	case FieldName:
		record.Name = value
	case FieldAge:
		record.Age = value
	case FieldAddress:
		record.Address = value
	}
	return record
}

// Sequence is the ordered collection of records. Order is display
// order. No two records in a valid sequence share a key.
type Sequence []Record

// IndexOf returns the position of the record with the given key, or -1.
func (sequence Sequence) IndexOf(key Key) int {
	for index, record := range sequence {
		if record.Key == key {
			return index
		}
	}
	return -1
}

// Find returns the record with the given key.
func (sequence Sequence) Find(key Key) (Record, bool) {
	index := sequence.IndexOf(key)
	if index < 0 {
		return Record{}, false
	}
	return sequence[index], true
}

// Contains reports whether any record carries the given key.
func (sequence Sequence) Contains(key Key) bool {
	return sequence.IndexOf(key) >= 0
}

// Keys returns the keys in display order.
func (sequence Sequence) Keys() []Key {
	keys := make([]Key, len(sequence))
	for index, record := range sequence {
		keys[index] = record.Key
	}
	return keys
}

// Clone returns a copy with its own backing array. Records are values,
// so the copy shares nothing with the original.
func (sequence Sequence) Clone() Sequence {
	if sequence == nil {
		return nil
	}
	clone := make(Sequence, len(sequence))
	copy(clone, sequence)
	return clone
}

// DuplicateKey returns the first key that appears more than once, if
// any. Sequences loaded from outside the grid are checked with this
// before use.
func (sequence Sequence) DuplicateKey() (Key, bool) {
	seen := make(map[Key]struct{}, len(sequence))
	for _, record := range sequence {
		if _, exists := seen[record.Key]; exists {
			return record.Key, true
		}
		seen[record.Key] = struct{}{}
	}
	return "", false
}
