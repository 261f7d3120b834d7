// Package config loads run settings from a TOML file.
package config

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// File mirrors the command-line flags. Zero values mean "not set".
type File struct {
	Input        string   `toml:"input"`
	Output       string   `toml:"output"`
	GenomeLength int64    `toml:"genome-length"`
	Weight       int      `toml:"weight"`
	Seeds        int      `toml:"seeds"`
	Patterns     []string `toml:"patterns"`
	Threads      int      `toml:"threads"`
	BucketSize   int      `toml:"bucket-size"`
	ErrorRate    float64  `toml:"error-rate"`
	RandomSeed   uint64   `toml:"random-seed"`
	TmpDir       string   `toml:"tmp-dir"`
	Quiet        bool     `toml:"quiet"`
	Verbose      bool     `toml:"verbose"`
	Progress     bool     `toml:"progress"`
}

// Load reads path. Unknown keys are an error.
func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, errors.Wrap(err, "config")
	}
	return Parse(b)
}

// Parse decodes a TOML document.
func Parse(b []byte) (File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var sm *toml.StrictMissingError
		if errors.As(err, &sm) {
			return File{}, errors.Errorf("config: %s", sm.String())
		}
		return File{}, errors.Wrap(err, "config")
	}
	return f, nil
}
