// Package manifest handles loxbc.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project configuration file.
const FileName = "loxbc.toml"

// Manifest represents a loxbc.toml project configuration.
type Manifest struct {
	Project Project      `toml:"project"`
	Disasm  DisasmConfig `toml:"disasm"`
	Store   StoreConfig  `toml:"store"`
	Log     LogConfig    `toml:"log"`

	// Dir is the directory containing the loxbc.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// DisasmConfig configures disassembly listings.
type DisasmConfig struct {
	// Label heads listings when no --label flag is given. Empty means each
	// command picks its own default.
	Label string `toml:"label"`
}

// StoreConfig configures the chunk database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// LogConfig configures commonlog verbosity (0 = errors only).
type LogConfig struct {
	Verbosity int `toml:"verbosity"`
}

// Default returns the configuration used when no loxbc.toml is found,
// rooted at dir.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults()
	return m
}

// Load parses a loxbc.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a loxbc.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) applyDefaults() {
	if m.Store.Path == "" {
		m.Store.Path = filepath.Join(".loxbc", "chunks.db")
	}
}

// ProjectName returns the configured project name, or the base name of the
// manifest directory when none is set.
func (m *Manifest) ProjectName() string {
	if m.Project.Name != "" {
		return m.Project.Name
	}
	return filepath.Base(m.Dir)
}

// ListingLabel returns the configured listing label, or fallback when the
// manifest does not set one.
func (m *Manifest) ListingLabel(fallback string) string {
	if m.Disasm.Label != "" {
		return m.Disasm.Label
	}
	return fallback
}

// StorePath returns the absolute path of the chunk database.
func (m *Manifest) StorePath() string {
	if filepath.IsAbs(m.Store.Path) {
		return m.Store.Path
	}
	return filepath.Join(m.Dir, m.Store.Path)
}
