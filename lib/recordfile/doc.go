// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package recordfile stores record sequences on disk and watches them
// for changes made by other processes.
//
// Two formats are supported. JSON Lines (.jsonl) holds one record per
// line in sequence order and is meant for files people read and diff.
// CBOR (.cbor) holds a versioned snapshot encoded with lib/codec's
// deterministic mode.
//
// [File] implements record.Persister: a record.Store built with one
// saves every committed grid change atomically. [File.Watch] feeds
// external rewrites back into the store via inotify.
package recordfile
