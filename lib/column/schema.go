// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package column

import (
	"fmt"

	"github.com/bureau-foundation/recordgrid/lib/record"
)

// Column describes one grid column.
type Column struct {
	// Field is the record field shown in this column. Empty for the
	// operation column.
	Field record.Field

	// Title is the header label.
	Title string

	// Editable marks columns whose cells run the edit state machine.
	Editable bool

	// Required makes an empty value a validation failure.
	Required bool

	// Kind renders, seeds and parses values. Nil for the operation
	// column.
	Kind Kind

	// Width is the preferred display width in terminal columns. Zero
	// lets the layout pick.
	Width int
}

// IsOperation reports whether this is the row-actions column.
func (column Column) IsOperation() bool {
	return column.Field == ""
}

// Schema is the ordered column list of a grid.
type Schema struct {
	Columns []Column
}

// DefaultSchema is the name/age/address grid with a trailing operation
// column. All data columns are editable and required; age is numeric.
func DefaultSchema() Schema {
	return Schema{Columns: []Column{
		{Field: record.FieldName, Title: "name", Editable: true, Required: true, Kind: TextField{}, Width: 24},
		{Field: record.FieldAge, Title: "age", Editable: true, Required: true, Kind: NumericField{}, Width: 6},
		{Field: record.FieldAddress, Title: "address", Editable: true, Required: true, Kind: TextField{}, Width: 32},
		{Title: "operation", Width: 10},
	}}
}

// Lookup returns the column for a record field.
func (schema Schema) Lookup(field record.Field) (Column, bool) {
	for _, column := range schema.Columns {
		if column.Field == field && !column.IsOperation() {
			return column, true
		}
	}
	return Column{}, false
}

// EditableFields returns the fields of the editable columns in order.
// Commits replace only these fields of a record.
func (schema Schema) EditableFields() []record.Field {
	var fields []record.Field
	for _, column := range schema.Columns {
		if column.Editable && !column.IsOperation() {
			fields = append(fields, column.Field)
		}
	}
	return fields
}

// IsEditable reports whether field belongs to an editable column.
func (schema Schema) IsEditable(field record.Field) bool {
	column, ok := schema.Lookup(field)
	return ok && column.Editable
}

// Validate checks that every data column names a known record field
// with a kind, that no field appears twice, and that the operation
// column is not editable.
func (schema Schema) Validate() error {
	seen := make(map[record.Field]bool)
	for index, column := range schema.Columns {
		if column.IsOperation() {
			if column.Editable {
				return fmt.Errorf("column %d (%s): operation column cannot be editable", index, column.Title)
			}
			continue
		}
		if _, known := record.Blank("").Get(column.Field); !known {
			return fmt.Errorf("column %d (%s): unknown field %q", index, column.Title, column.Field)
		}
		if seen[column.Field] {
			return fmt.Errorf("column %d (%s): field %q appears twice", index, column.Title, column.Field)
		}
		seen[column.Field] = true
		if column.Kind == nil {
			return fmt.Errorf("column %d (%s): no kind", index, column.Title)
		}
	}
	return nil
}
