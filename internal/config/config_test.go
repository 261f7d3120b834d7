package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(p, []byte(`
input = "reads.fq"
genome-length = 4600000
weight = 18
seeds = 4
error-rate = 0.01
random-seed = 42
patterns = ["111010111", "1111"]
verbose = true
`), 0o644))

	f, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, File{
		Input:        "reads.fq",
		GenomeLength: 4600000,
		Weight:       18,
		Seeds:        4,
		ErrorRate:    0.01,
		RandomSeed:   42,
		Patterns:     []string{"111010111", "1111"},
		Verbose:      true,
	}, f)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("genome_length = 10\n"))
	assert.Error(t, err)
}

func TestParseRejectsBadTypes(t *testing.T) {
	_, err := Parse([]byte(`weight = "sixteen"`))
	assert.Error(t, err)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
