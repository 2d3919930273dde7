// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kelindar/ase"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of a packing run, read from a YAML file and
// overridden by the command-line flags.
type Config struct {
	Inputs    []string `yaml:"inputs"`    // Files, directories or glob patterns
	Output    string   `yaml:"output"`    // Directory receiving pages and metadata
	Database  string   `yaml:"database"`  // Resource file receiving pages and metadata
	MaxWidth  int      `yaml:"maxWidth"`  // Maximum page width
	MaxHeight int      `yaml:"maxHeight"` // Maximum page height
	Preview   int      `yaml:"preview"`   // Scale of the preview pages, 0 to disable
}

// loadConfig reads a configuration file. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := Config{
		MaxWidth:  ase.DefaultAtlasSize.X,
		MaxHeight: ase.DefaultAtlasSize.Y,
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to read config '%s': %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse config '%s': %w", path, err)
	}

	return cfg, nil
}

// validate checks that the configuration can be used.
func (c *Config) validate() error {
	switch {
	case len(c.Inputs) == 0:
		return fmt.Errorf("no input files")
	case c.Output == "" && c.Database == "":
		return fmt.Errorf("no output directory or database")
	case c.MaxWidth <= 0 || c.MaxHeight <= 0:
		return fmt.Errorf("invalid maximum page size %dx%d", c.MaxWidth, c.MaxHeight)
	case c.Preview < 0:
		return fmt.Errorf("invalid preview scale %d", c.Preview)
	default:
		return nil
	}
}

// files expands the inputs into a sorted list of sprite files.
func (c *Config) files() ([]string, error) {
	seen := make(map[string]bool)
	for _, input := range c.Inputs {
		matches, err := filepath.Glob(input)
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern '%s': %w", input, err)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, err
			}

			if !info.IsDir() {
				seen[filepath.Clean(match)] = true
				continue
			}

			entries, err := os.ReadDir(match)
			if err != nil {
				return nil, err
			}

			for _, entry := range entries {
				if !entry.IsDir() && isSprite(entry.Name()) {
					seen[filepath.Join(match, entry.Name())] = true
				}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}

// isSprite returns whether a file name has an Aseprite extension.
func isSprite(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ase", ".aseprite":
		return true
	default:
		return false
	}
}
