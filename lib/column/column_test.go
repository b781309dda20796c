// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package column

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/recordgrid/lib/record"
)

func TestNumericFieldParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
		err   error
	}{
		{"30", "30", nil},
		{" 007 ", "7", nil},
		{"", "", nil},
		{"   ", "", nil},
		{"thirty", "", ErrNotANumber},
		{"3.5", "", ErrNotANumber},
		{"-1", "", ErrNegative},
	}
	for _, test := range tests {
		got, err := NumericField{}.Parse(test.input)
		if !errors.Is(err, test.err) {
			t.Errorf("Parse(%q) error = %v, want %v", test.input, err, test.err)
			continue
		}
		if got != test.want {
			t.Errorf("Parse(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestTextFieldParseTrims(t *testing.T) {
	got, err := TextField{}.Parse("  Bob ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != "Bob" {
		t.Errorf("Parse = %q, want Bob", got)
	}
}

func TestFocusCapability(t *testing.T) {
	if !(TextField{}).RequestsFocus() {
		t.Error("text fields should request focus")
	}
	if (NumericField{}).RequestsFocus() {
		t.Error("numeric fields manage their own focus")
	}
}

func TestKindByName(t *testing.T) {
	if kind, ok := KindByName("number"); !ok || kind.Name() != "number" {
		t.Errorf("KindByName(number) = (%v, %v)", kind, ok)
	}
	if kind, ok := KindByName(""); !ok || kind.Name() != "text" {
		t.Errorf("KindByName(\"\") = (%v, %v)", kind, ok)
	}
	if _, ok := KindByName("date"); ok {
		t.Error("unknown kind accepted")
	}
}

func TestDefaultSchema(t *testing.T) {
	schema := DefaultSchema()
	if err := schema.Validate(); err != nil {
		t.Fatalf("default schema invalid: %v", err)
	}

	fields := schema.EditableFields()
	if len(fields) != 3 || fields[0] != record.FieldName || fields[1] != record.FieldAge || fields[2] != record.FieldAddress {
		t.Errorf("EditableFields() = %v", fields)
	}

	last := schema.Columns[len(schema.Columns)-1]
	if !last.IsOperation() || last.Editable {
		t.Errorf("last column should be a non-editable operation column, got %+v", last)
	}

	age, ok := schema.Lookup(record.FieldAge)
	if !ok || age.Kind.Name() != "number" {
		t.Errorf("age column = (%+v, %v)", age, ok)
	}
}

func TestSchemaValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
	}{
		{"editable operation", Schema{Columns: []Column{{Title: "ops", Editable: true}}}},
		{"unknown field", Schema{Columns: []Column{{Field: "email", Kind: TextField{}}}}},
		{"duplicate field", Schema{Columns: []Column{
			{Field: record.FieldName, Kind: TextField{}},
			{Field: record.FieldName, Kind: TextField{}},
		}}},
		{"missing kind", Schema{Columns: []Column{{Field: record.FieldName}}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.schema.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
