// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package record defines the data the grid edits: [Record] values
// addressed by an opaque [Key], and the ordered [Sequence] that holds
// them.
//
// Records are immutable snapshots. Editing a record means producing a
// new Record with the same Key via [Record.With] and substituting it at
// the same index. Sequences are likewise never mutated in place by
// grid code: every transformation yields a fresh slice.
//
// Keys come from a [KeyGenerator]. [NewCounterKeys] hands out
// monotonically increasing decimal keys; [NewULIDKeys] hands out
// lexically sortable ULIDs. Neither derives keys from sequence length,
// so a delete followed by an add never reuses a key.
//
// [Store] is the reference owner of a sequence. It accepts wholesale
// replacements and publishes each new value to subscribers, which is
// how the terminal UI learns about committed mutations.
package record
