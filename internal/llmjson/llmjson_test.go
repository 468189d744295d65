package llmjson

import (
	"fmt"
	"strings"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func validateRecord(r *record) error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func TestDecodeArray(t *testing.T) {
	items, err := DecodeArray[record](`[{"name":"Acme","value":3}]`, validateRecord)
	if err != nil {
		t.Fatalf("DecodeArray() error = %v", err)
	}
	if len(items) != 1 || items[0].Name != "Acme" || items[0].Value != 3 {
		t.Errorf("DecodeArray() = %#v", items)
	}
}

func TestDecodeArrayFenced(t *testing.T) {
	raw := "```json\n[{\"name\":\"Acme\",\"value\":1}]\n```"
	items, err := DecodeArray[record](raw, validateRecord)
	if err != nil {
		t.Fatalf("DecodeArray(fenced) error = %v", err)
	}
	if len(items) != 1 {
		t.Errorf("DecodeArray(fenced) = %#v", items)
	}
}

func TestDecodeArrayRejectsUnknownFields(t *testing.T) {
	_, err := DecodeArray[record](`[{"name":"Acme","surprise":true}]`, validateRecord)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestDecodeArrayRejectsFailedValidation(t *testing.T) {
	_, err := DecodeArray[record](`[{"name":"","value":1}]`, validateRecord)
	if err == nil || !strings.Contains(err.Error(), "element 0") {
		t.Fatalf("expected element validation error, got %v", err)
	}
}

func TestDecodeArrayRejectsTrailingContent(t *testing.T) {
	raw := "[{\"name\":\"Acme\",\"value\":1}]\nAs requested above."
	if _, err := DecodeArray[record](raw, validateRecord); err == nil {
		t.Fatal("expected error for prose after the array")
	}

	// Trailing whitespace alone is not content.
	items, err := DecodeArray[record]("[{\"name\":\"Acme\",\"value\":1}]\n\n", validateRecord)
	if err != nil || len(items) != 1 {
		t.Fatalf("DecodeArray(trailing whitespace) = %#v, %v", items, err)
	}
}

func TestDecodeArrayRejectsProse(t *testing.T) {
	_, err := DecodeArray[record]("Here is the data you asked for.", validateRecord)
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestDecodeArrayEmpty(t *testing.T) {
	items, err := DecodeArray[record]("[]", validateRecord)
	if err != nil {
		t.Fatalf("DecodeArray([]) error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("DecodeArray([]) = %#v, want empty", items)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
		{"  ```JSON\n{\"a\":1}\n```  ", "{\"a\":1}"},
		{"[1]", "[1]"},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
