// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

// snapshotRow uses json tags, the convention for types written in
// both JSON and CBOR.
type snapshotRow struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
	Age  string `json:"age,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := []snapshotRow{
		{Key: "0", Name: "Ann", Age: "30"},
		{Key: "1"},
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded []snapshotRow
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("decoded %d rows, want %d", len(decoded), len(original))
	}
	for index := range original {
		if decoded[index] != original[index] {
			t.Errorf("row %d: got %+v, want %+v", index, decoded[index], original[index])
		}
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{"zeta": 1, "alpha": "a", "mid": []string{"x"}}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestJSONTagFallback(t *testing.T) {
	data, err := Marshal(snapshotRow{Key: "k", Name: "n"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, `"key"`) || !strings.Contains(diagnostic, `"name"`) {
		t.Errorf("json tag names not used: %s", diagnostic)
	}
	if strings.Contains(diagnostic, `"age"`) {
		t.Errorf("omitempty not honored: %s", diagnostic)
	}
}

func TestDecodeAnyUsesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"outer": map[string]any{"inner": "v"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	if _, ok := outer["outer"].(map[string]any); !ok {
		t.Errorf("nested value %T, want map[string]any", outer["outer"])
	}
}

func TestEncoderDecoderStream(t *testing.T) {
	rows := []snapshotRow{{Key: "a"}, {Key: "b", Name: "Bob"}}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for index, want := range rows {
		var got snapshotRow
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode %d: %v", index, err)
		}
		if got != want {
			t.Errorf("row %d: got %+v, want %+v", index, got, want)
		}
	}
}
