package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceEntry is one URL from the curated source list used by the batch
// ingest command.
type SourceEntry struct {
	URL      string `yaml:"url"`
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
}

type sourceFile struct {
	Sources []SourceEntry `yaml:"sources"`
}

// LoadSourceList reads the curated URL list for batch ingestion.
func LoadSourceList(path string) ([]SourceEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source list: %w", err)
	}
	var file sourceFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse source list: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("no sources in %s", path)
	}
	return file.Sources, nil
}
