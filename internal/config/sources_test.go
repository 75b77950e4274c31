package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSourceList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.yaml")
	content := `sources:
  - url: https://www.hdb.gov.sg/renting-a-flat
    title: Renting a flat
    category: hdb
  - url: https://www.ura.gov.sg/private-rental
    title: Private rental
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source list: %v", err)
	}

	sources, err := LoadSourceList(path)
	if err != nil {
		t.Fatalf("LoadSourceList() error = %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Category != "hdb" || sources[1].Title != "Private rental" {
		t.Fatalf("unexpected sources %+v", sources)
	}
}

func TestLoadSourceListEmptyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.yaml")
	if err := os.WriteFile(path, []byte("sources: []"), 0o644); err != nil {
		t.Fatalf("write source list: %v", err)
	}
	if _, err := LoadSourceList(path); err == nil {
		t.Fatal("expected error for empty source list")
	}
}
