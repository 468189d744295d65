package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	lib, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for _, kind := range []Kind{Summarize, ExtractCompanies, Consolidate, Chat} {
		out, err := lib.Render(kind, nil)
		if err != nil || out == "" {
			t.Errorf("Render(%s) = %q, %v", kind, out, err)
		}
	}
}

func TestRenderSubstitutesSlots(t *testing.T) {
	lib, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	out, err := lib.Render(Summarize, map[string]string{"documentText": "UNIQUE_SENTINEL"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "UNIQUE_SENTINEL") {
		t.Error("slot value missing from rendered prompt")
	}
	if strings.Contains(out, "{documentText}") {
		t.Error("slot placeholder left in rendered prompt")
	}
}

func TestRenderUnknownKind(t *testing.T) {
	lib, _ := Load("")
	if _, err := lib.Render(Kind("nonsense"), nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestLoadDirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	custom := "Summarize like a pirate: {documentText}"
	if err := os.WriteFile(filepath.Join(dir, "summarize.txt"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	lib, err := Load(dir)
	if err != nil {
		t.Fatalf("Load(dir) error = %v", err)
	}

	out, err := lib.Render(Summarize, map[string]string{"documentText": "doc"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "Summarize like a pirate: doc" {
		t.Errorf("override not applied: %q", out)
	}

	// Kinds without an override file keep their defaults.
	if out, _ := lib.Render(Chat, nil); out == "" {
		t.Error("default chat template lost")
	}
}
