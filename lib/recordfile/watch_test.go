// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordfile

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/recordgrid/lib/clock"
	"github.com/bureau-foundation/recordgrid/lib/record"
	"github.com/bureau-foundation/recordgrid/lib/testutil"
)

func startWatch(t *testing.T, path string, initial record.Sequence) (*clock.FakeClock, <-chan record.Sequence) {
	t.Helper()
	file := &File{Path: path, Format: FormatJSONL}
	fakeClock := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	updates := make(chan record.Sequence, 4)

	stop, err := file.Watch(initial, func(sequence record.Sequence) {
		updates <- sequence
	}, WatchOptions{Clock: fakeClock})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	t.Cleanup(stop)
	return fakeClock, updates
}

// awaitReload advances the fake clock through whatever debounce
// windows the watcher opens until it delivers a sequence.
func awaitReload(t *testing.T, fakeClock *clock.FakeClock, updates <-chan record.Sequence) record.Sequence {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if fakeClock.PendingCount() > 0 {
			fakeClock.Advance(DefaultDebounce)
		}
		select {
		case sequence := <-updates:
			return sequence
		case <-time.After(10 * time.Millisecond):
		}
	}
	t.Fatal("timed out waiting for reload")
	return nil
}

func TestWatchDeliversAtomicRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	if err := SaveFile(path, FormatJSONL, sampleSequence()); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	fakeClock, updates := startWatch(t, path, sampleSequence())

	next := append(sampleSequence(), record.Record{Key: "3", Name: "Cid"})
	if err := SaveFile(path, FormatJSONL, next); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	got := awaitReload(t, fakeClock, updates)
	if len(got) != 4 || got[3].Name != "Cid" {
		t.Errorf("reloaded %+v", got)
	}
}

func TestWatchIgnoresUnchangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	if err := SaveFile(path, FormatJSONL, sampleSequence()); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	fakeClock, updates := startWatch(t, path, sampleSequence())

	// Rewriting identical content fires inotify but is not a change.
	if err := SaveFile(path, FormatJSONL, sampleSequence()); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	fakeClock.WaitForTimers(1)
	fakeClock.Advance(DefaultDebounce)

	// A real change afterwards is the first thing delivered.
	changed := record.Sequence{{Key: "9"}}
	if err := SaveFile(path, FormatJSONL, changed); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	got := awaitReload(t, fakeClock, updates)
	if len(got) != 1 || got[0].Key != "9" {
		t.Errorf("first delivery = %+v, want the changed sequence", got)
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "records.jsonl")
	if err := SaveFile(path, FormatJSONL, nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	fakeClock, updates := startWatch(t, path, nil)

	if err := os.WriteFile(filepath.Join(directory, "other.jsonl"), []byte(`{"key":"x"}`+"\n"), 0644); err != nil {
		t.Fatalf("write other file: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	if fakeClock.PendingCount() != 0 {
		t.Error("watcher reacted to an unrelated file")
	}
	testutil.RequireNoReceive(t, updates, "unrelated file delivered")
}

func TestInotifyMatchesFile(t *testing.T) {
	event := func(name string) []byte {
		padded := len(name) + 1
		if remainder := padded % 4; remainder != 0 {
			padded += 4 - remainder
		}
		buffer := make([]byte, unix.SizeofInotifyEvent+padded)
		binary.NativeEndian.PutUint32(buffer[12:16], uint32(padded))
		copy(buffer[unix.SizeofInotifyEvent:], name)
		return buffer
	}

	buffer := append(event("other.jsonl"), event("records.jsonl")...)
	if !inotifyMatchesFile(buffer, "records.jsonl") {
		t.Error("second event not matched")
	}
	if inotifyMatchesFile(event("records.jsonl.tmp"), "records.jsonl") {
		t.Error("temporary file matched")
	}
	if inotifyMatchesFile(buffer[:10], "records.jsonl") {
		t.Error("truncated buffer matched")
	}
}
