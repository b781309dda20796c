// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordfile

import (
	"encoding/binary"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/recordgrid/lib/clock"
	"github.com/bureau-foundation/recordgrid/lib/record"
)

// DefaultDebounce is how long the watcher waits after a change event
// before re-reading, so a burst of writes produces one reload.
const DefaultDebounce = 50 * time.Millisecond

// WatchOptions configures [Watch]. The zero value uses the real clock,
// [DefaultDebounce], and discards logs.
type WatchOptions struct {
	Clock    clock.Clock
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watch starts an inotify watcher on the record file and calls sink
// with each new sequence another process writes. The returned function
// stops the watcher and closes the inotify fd; it is safe to call more
// than once.
//
// The watcher monitors the parent directory for IN_CLOSE_WRITE and
// IN_MOVED_TO events on the target filename, which covers both
// in-place writes and atomic renames. Re-reads equal to the previous
// sequence are not passed on, nor are files that fail to parse (a
// later complete write will).
func (file *File) Watch(initial record.Sequence, sink func(record.Sequence), options WatchOptions) (func(), error) {
	absolutePath, err := filepath.Abs(file.Path)
	if err != nil {
		return nil, err
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	// Watch the directory, not the file: atomic renames replace the
	// inode, so a file-level watch would miss them.
	directory := filepath.Dir(absolutePath)

	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, err
	}
	if _, err := unix.InotifyAddWatch(fd, directory, unix.IN_CLOSE_WRITE|unix.IN_MOVED_TO); err != nil {
		unix.Close(fd)
		return nil, err
	}

	loop := &watchLoop{
		fd:       fd,
		file:     &File{Path: absolutePath, Format: file.Format},
		filename: filepath.Base(absolutePath),
		sink:     sink,
		previous: initial.Clone(),
		options:  options,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go loop.run()

	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(loop.stop)
		<-loop.done
	}, nil
}

type watchLoop struct {
	fd       int
	file     *File
	filename string
	sink     func(record.Sequence)
	previous record.Sequence
	options  WatchOptions
	stop     chan struct{}
	done     chan struct{}
}

// run polls the inotify fd with a 100ms timeout so the stop channel is
// checked regularly.
func (loop *watchLoop) run() {
	defer close(loop.done)
	defer unix.Close(loop.fd)

	buffer := make([]byte, 4096)
	for {
		select {
		case <-loop.stop:
			return
		default:
		}

		pollDescriptors := []unix.PollFd{{Fd: int32(loop.fd), Events: unix.POLLIN}}
		count, err := unix.Poll(pollDescriptors, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			// The grid keeps working without live reload.
			loop.options.Logger.Warn("record file watcher stopped", "error", err)
			return
		}
		if count == 0 {
			continue
		}

		bytesRead, err := unix.Read(loop.fd, buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			loop.options.Logger.Warn("record file watcher stopped", "error", err)
			return
		}
		if !inotifyMatchesFile(buffer[:bytesRead], loop.filename) {
			continue
		}

		loop.options.Clock.Sleep(loop.options.Debounce)
		drainInotifyEvents(loop.fd, buffer)

		current, err := loop.file.Load()
		if err != nil {
			loop.options.Logger.Debug("record file reload skipped", "error", err)
			continue
		}
		if slices.Equal(current, loop.previous) {
			continue
		}
		loop.previous = current.Clone()
		loop.options.Logger.Info("record file changed on disk",
			"path", loop.file.Path,
			"records", len(current),
		)
		loop.sink(current)
	}
}

// inotifyMatchesFile checks whether any inotify event in the buffer
// names the target file. Layout from inotify(7):
//
//	struct inotify_event {
//	    int32_t  wd;     // offset 0
//	    uint32_t mask;   // offset 4
//	    uint32_t cookie; // offset 8
//	    uint32_t len;    // offset 12
//	    char     name[]; // offset 16, null-padded to alignment
//	};
func inotifyMatchesFile(buffer []byte, targetFilename string) bool {
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		nameLength := int(binary.NativeEndian.Uint32(buffer[offset+12 : offset+16]))
		eventSize := unix.SizeofInotifyEvent + nameLength
		if offset+eventSize > len(buffer) {
			break
		}
		if nameLength > 0 {
			name := nullTerminatedString(buffer[offset+unix.SizeofInotifyEvent : offset+eventSize])
			if name == targetFilename {
				return true
			}
		}
		offset += eventSize
	}
	return false
}

func nullTerminatedString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}

// drainInotifyEvents discards pending events so a burst of writes
// collapses into one reload.
func drainInotifyEvents(fd int, buffer []byte) {
	for {
		if _, err := unix.Read(fd, buffer); err != nil {
			return
		}
	}
}
