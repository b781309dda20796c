// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration used
// for binary record snapshots.
//
// Record files come in two formats: JSON Lines for files people edit
// and diff, and CBOR for compact snapshots. This package keeps every
// CBOR reader and writer on the same modes. The encoder uses Core
// Deterministic Encoding, so a snapshot of the same sequence is
// byte-identical across runs.
//
//	data, err := codec.Marshal(sequence)
//	err = codec.Unmarshal(data, &sequence)
//
// Types serialized in both formats carry `json` struct tags only;
// fxamacker/cbor reads `json` tags when `cbor` tags are absent.
package codec
