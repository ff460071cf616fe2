package profile

import (
	"errors"
	"strings"
	"testing"
)

func TestParseYAMLMapping(t *testing.T) {
	doc, err := ParseYAML("fullName: Alice Smith\nphone: \"555-0100\"\nage: 30\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc["fullName"] != "Alice Smith" {
		t.Fatalf("fullName = %v", doc["fullName"])
	}
	if doc["phone"] != "555-0100" {
		t.Fatalf("phone = %v", doc["phone"])
	}
	if doc["age"] != 30 {
		t.Fatalf("age = %v (%T)", doc["age"], doc["age"])
	}
}

func TestParseYAMLAcceptsUnexpectedKeys(t *testing.T) {
	doc, err := ParseYAML("ssn: 123-45-6789\nnested:\n  a: 1\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc["ssn"] != "123-45-6789" {
		t.Fatalf("ssn = %v", doc["ssn"])
	}
}

func TestParseYAMLRejectsNonMapping(t *testing.T) {
	for _, text := range []string{"- a\n- b\n", "just a string\n", ""} {
		if _, err := ParseYAML(text); !errors.Is(err, ErrNotMapping) {
			t.Fatalf("ParseYAML(%q) err = %v, want ErrNotMapping", text, err)
		}
	}
}

func TestParseYAMLRejectsExecutableTags(t *testing.T) {
	payloads := []string{
		"profile: !!python/object/apply:os.system [\"id\"]\n",
		"profile: !ruby/object:Gem::Requirement {}\n",
		"!custom\nfullName: x\n",
	}
	for _, text := range payloads {
		_, err := ParseYAML(text)
		if err == nil {
			t.Fatalf("ParseYAML(%q) succeeded, want tag rejection", text)
		}
		if !strings.Contains(err.Error(), "tag") && !errors.Is(err, ErrNotMapping) {
			t.Fatalf("ParseYAML(%q) err = %v, want unsupported tag error", text, err)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	doc := Document{"fullName": "Bob", "phone": "555-0101"}

	encoded, err := doc.JSON()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := FromJSON(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["fullName"] != "Bob" {
		t.Fatalf("fullName = %v", decoded["fullName"])
	}

	empty, err := FromJSON("")
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("empty profile has %d keys", len(empty))
	}
}

func TestDocumentStringFallback(t *testing.T) {
	doc := Document{"fullName": "Carol"}
	if got := doc.String("fullName", "x"); got != "Carol" {
		t.Fatalf("String(fullName) = %q", got)
	}
	if got := doc.String("phone", ""); got != "" {
		t.Fatalf("String(phone) = %q", got)
	}
}
