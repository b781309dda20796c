// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordfile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/recordgrid/lib/codec"
	"github.com/bureau-foundation/recordgrid/lib/record"
)

// snapshotVersion is written into CBOR snapshots.
const snapshotVersion = 1

// snapshot is the CBOR file layout.
type snapshot struct {
	Version int             `json:"version"`
	Records record.Sequence `json:"records"`
}

// Read decodes a sequence. Every record must carry a key and keys must
// be unique.
func Read(reader io.Reader, format Format) (record.Sequence, error) {
	var sequence record.Sequence
	switch format {
	case FormatJSONL:
		scanner := bufio.NewScanner(reader)
		// Long addresses should not trip the default 64KB line limit.
		const maxLineSize = 1024 * 1024
		scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var entry record.Record
			if err := json.Unmarshal(line, &entry); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNumber, err)
			}
			if entry.Key == "" {
				return nil, fmt.Errorf("line %d: missing key field", lineNumber)
			}
			sequence = append(sequence, entry)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read records: %w", err)
		}

	case FormatCBOR:
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("read records: %w", err)
		}
		if len(data) == 0 {
			return nil, nil
		}
		var decoded snapshot
		if err := codec.Unmarshal(data, &decoded); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		if decoded.Version != snapshotVersion {
			return nil, fmt.Errorf("snapshot version %d not supported", decoded.Version)
		}
		for index, entry := range decoded.Records {
			if entry.Key == "" {
				return nil, fmt.Errorf("record %d: missing key field", index)
			}
		}
		sequence = decoded.Records

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if key, duplicated := sequence.DuplicateKey(); duplicated {
		return nil, fmt.Errorf("duplicate key %q", key)
	}
	return sequence, nil
}

// Write encodes sequence.
func Write(writer io.Writer, format Format, sequence record.Sequence) error {
	switch format {
	case FormatJSONL:
		buffered := bufio.NewWriter(writer)
		encoder := json.NewEncoder(buffered)
		encoder.SetEscapeHTML(false)
		for _, entry := range sequence {
			if err := encoder.Encode(entry); err != nil {
				return fmt.Errorf("encode record %q: %w", entry.Key, err)
			}
		}
		return buffered.Flush()

	case FormatCBOR:
		records := sequence
		if records == nil {
			records = record.Sequence{}
		}
		data, err := codec.Marshal(snapshot{Version: snapshotVersion, Records: records})
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		_, err = writer.Write(data)
		return err

	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// LoadFile reads the record file at path. A missing file is an error
// wrapping fs.ErrNotExist; callers that start from an empty grid check
// for it.
func LoadFile(path string, format Format) (record.Sequence, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	defer file.Close()

	sequence, err := Read(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sequence, nil
}

// SaveFile atomically replaces the record file at path. The sequence
// is written to a temporary file in the same directory, fsynced, and
// renamed into place, so readers (including the watcher) never see a
// partial write.
func SaveFile(path string, format Format, sequence record.Sequence) error {
	var buffer bytes.Buffer
	if err := Write(&buffer, format, sequence); err != nil {
		return err
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating temporary record file: %w", err)
	}

	// Write, sync, close. If any step fails, remove the temporary
	// file and report the first error.
	if _, err := file.Write(buffer.Bytes()); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary record file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary record file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary record file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming record file into place: %w", err)
	}

	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}
	return nil
}

// File is a record file bound to its format. It implements
// [record.Persister], so a [record.Store] writes every grid change
// through it.
type File struct {
	Path   string
	Format Format
	Logger *slog.Logger
}

// Open resolves the format for path and returns the file with its
// current contents. A missing file yields an empty sequence.
func Open(path string, formatName string, logger *slog.Logger) (*File, record.Sequence, error) {
	format, err := ResolveFormat(formatName, path)
	if err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	file := &File{Path: path, Format: format, Logger: logger}

	sequence, err := LoadFile(path, format)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("record file does not exist yet; starting empty", "path", path)
		return file, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return file, sequence, nil
}

// Persist implements [record.Persister].
func (file *File) Persist(sequence record.Sequence) error {
	if err := SaveFile(file.Path, file.Format, sequence); err != nil {
		return err
	}
	if file.Logger != nil {
		file.Logger.Debug("records saved",
			"path", file.Path,
			"records", len(sequence),
		)
	}
	return nil
}

// Load re-reads the file.
func (file *File) Load() (record.Sequence, error) {
	return LoadFile(file.Path, file.Format)
}
