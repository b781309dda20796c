// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The terminal UI reads Now for heat and status fades, and the file
// watcher sleeps through its debounce window. In production both get
// Real(); tests get Fake() and move time explicitly:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go watcher.run()
//	c.WaitForTimers(1)
//	c.Advance(50 * time.Millisecond)
package clock
