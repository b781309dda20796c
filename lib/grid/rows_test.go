// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"context"
	"slices"
	"testing"

	"github.com/bureau-foundation/recordgrid/lib/column"
	"github.com/bureau-foundation/recordgrid/lib/record"
)

func TestRowsSyncMountsAndUnmounts(t *testing.T) {
	rows := NewRows(column.DefaultSchema(), NewController(nil), nil, nil)

	mounted, unmounted := rows.Sync(record.Sequence{{Key: "a"}, {Key: "b"}})
	if !slices.Equal(mounted, []record.Key{"a", "b"}) || len(unmounted) != 0 {
		t.Fatalf("first sync: mounted %v unmounted %v", mounted, unmounted)
	}

	mounted, unmounted = rows.Sync(record.Sequence{{Key: "b"}, {Key: "c"}})
	if !slices.Equal(mounted, []record.Key{"c"}) || !slices.Equal(unmounted, []record.Key{"a"}) {
		t.Fatalf("second sync: mounted %v unmounted %v", mounted, unmounted)
	}
	if rows.Len() != 2 {
		t.Errorf("Len = %d, want 2", rows.Len())
	}
	if _, ok := rows.Row("a"); ok {
		t.Error("row a still mounted")
	}
}

func TestRowsOneSessionPerRow(t *testing.T) {
	rows := NewRows(column.DefaultSchema(), NewController(nil), nil, nil)
	rows.Sync(record.Sequence{{Key: "a"}, {Key: "b"}})

	rowA, _ := rows.Row("a")
	rowB, _ := rows.Row("b")
	if rowA.Session == rowB.Session {
		t.Fatal("rows share a session")
	}
	for _, field := range record.Fields {
		cell, ok := rowA.Cell(field)
		if !ok {
			t.Fatalf("row a has no %s cell", field)
		}
		if cell.session != rowA.Session {
			t.Errorf("%s cell is not bound to its row's session", field)
		}
	}
	if rowA.Session.Key() != "a" {
		t.Errorf("session key = %q", rowA.Session.Key())
	}
}

func TestRowsPersistingRowKeepsEditState(t *testing.T) {
	initial := annSequence()
	rows := NewRows(column.DefaultSchema(), NewController(nil), nil, nil)
	rows.Sync(initial)
	cell, _ := rows.Cell("0", record.FieldName)
	cell.Activate(initial[0])
	cell.Input("Bo")

	next := append(initial.Clone(), record.Record{Key: "1"})
	rows.Sync(next)

	same, _ := rows.Cell("0", record.FieldName)
	if same != cell {
		t.Fatal("persisting row was remounted")
	}
	if same.State() != Editing || same.Value() != "Bo" {
		t.Errorf("edit state lost: %v %q", same.State(), same.Value())
	}
	if editing := rows.Editing(); len(editing) != 1 || editing[0] != cell {
		t.Errorf("Editing() = %v", editing)
	}
}

func TestRowsUnmountResetsSessionAndCells(t *testing.T) {
	initial := annSequence()
	rows := NewRows(column.DefaultSchema(), NewController(nil), nil, nil)
	rows.Sync(initial)
	row, _ := rows.Row("0")
	cell, _ := row.Cell(record.FieldName)
	cell.Activate(initial[0])
	cell.Input("Bob")

	rows.Sync(nil)

	if cell.State() != Viewing {
		t.Errorf("unmounted cell state = %v", cell.State())
	}
	if len(row.Session.Declared()) != 0 {
		t.Error("unmounted session kept declarations")
	}
	if len(rows.Editing()) != 0 {
		t.Error("Editing() reports cells of unmounted rows")
	}
	// A late commit on the unmounted cell has nothing to do.
	if err := cell.Commit(context.Background(), TriggerBlur, nil); err != ErrNotEditing {
		t.Errorf("Commit after unmount = %v, want ErrNotEditing", err)
	}
}
