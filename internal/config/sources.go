package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type sourcesFile struct {
	Sources map[string]string `yaml:"sources"`
}

// LoadSources merges the inline sources map with the optional YAML
// catalog file. The file is decoded strictly so a typoed key fails loud
// instead of silently dropping a feed.
func (c *Config) LoadSources() (map[string]string, error) {
	out := make(map[string]string, len(c.Ingestor.Sources))
	for name, url := range c.Ingestor.Sources {
		out[strings.TrimSpace(name)] = strings.TrimSpace(url)
	}
	path := strings.TrimSpace(c.Ingestor.SourcesFile)
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources catalog failed: %w", err)
	}
	var catalog sourcesFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("parse sources catalog failed (%s): %w", path, err)
	}
	for name, url := range catalog.Sources {
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if name == "" || url == "" {
			continue
		}
		out[name] = url
	}
	return out, nil
}
