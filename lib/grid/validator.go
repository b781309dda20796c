// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/recordgrid/lib/column"
	"github.com/bureau-foundation/recordgrid/lib/record"
)

// SchemaValidator enforces the presence and type rules of a column
// schema: each value must parse under its column's kind, and required
// columns must not be empty after parsing. Values are returned in
// their canonical parsed form.
type SchemaValidator struct {
	Schema column.Schema
}

// Validate implements [Validator].
func (validator SchemaValidator) Validate(ctx context.Context, key record.Key, values Values) (Values, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make(Values, len(values))
	problems := make(map[record.Field]string)
	for field, value := range values {
		definition, ok := validator.Schema.Lookup(field)
		if !ok || !definition.Editable {
			problems[field] = fmt.Sprintf("%s is not an editable field", field)
			continue
		}
		parsed, err := definition.Kind.Parse(value)
		if err != nil {
			problems[field] = fmt.Sprintf("%s %v", definition.Title, err)
			continue
		}
		if definition.Required && parsed == "" {
			problems[field] = fmt.Sprintf("%s is required", definition.Title)
			continue
		}
		result[field] = parsed
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Key: key, Fields: problems}
	}
	return result, nil
}
