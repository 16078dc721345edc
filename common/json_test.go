// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package common

import "testing"

func TestUnmarshalDataByEncodingBareString(t *testing.T) {
	data, encoding, err := UnmarshalDataByEncoding([]byte(`"3Bxs4h24zMoVToyaQEnG2h3zN3z"`))
	if err != nil {
		t.Fatalf("UnmarshalDataByEncoding: %v", err)
	}
	if encoding != "" {
		t.Fatalf("expected no encoding tag for a bare string, got %q", encoding)
	}
	if len(data) == 0 {
		t.Fatal("expected decoded bytes")
	}
}

func TestUnmarshalDataByEncodingTuple(t *testing.T) {
	data, encoding, err := UnmarshalDataByEncoding([]byte(`["AAECAw==", "base64"]`))
	if err != nil {
		t.Fatalf("UnmarshalDataByEncoding: %v", err)
	}
	if encoding != "base64" {
		t.Fatalf("expected base64 encoding, got %q", encoding)
	}
	if len(data) != 4 {
		t.Fatalf("expected 4 decoded bytes, got %d", len(data))
	}
}

func TestUnmarshalDataByEncodingRejectsSingleElementTuple(t *testing.T) {
	if _, _, err := UnmarshalDataByEncoding([]byte(`["AAECAw=="]`)); err == nil {
		t.Fatal("expected an error for a tuple missing its encoding element")
	}
}

func TestUnmarshalDataByEncodingRejectsNonStringDataElement(t *testing.T) {
	if _, _, err := UnmarshalDataByEncoding([]byte(`[123, "base64"]`)); err == nil {
		t.Fatal("expected an error when the data element is not a string")
	}
}

func TestUnmarshalDataByEncodingRejectsUnsupportedEncoding(t *testing.T) {
	if _, _, err := UnmarshalDataByEncoding([]byte(`["AAECAw==", "jsonParsed"]`)); err == nil {
		t.Fatal("expected an error for an unsupported encoding")
	}
}
