// internal/cli/options.go
package cli

import (
	"runtime"

	"github.com/pkg/errors"

	"readfix/internal/config"
	"readfix/internal/fastxio"
	"readfix/internal/seedtable"
)

const (
	MinWeight = 10
	MaxWeight = 26
	MaxSeeds  = 8

	DefaultSeeds     = 8
	DefaultWeight    = 16
	LargeInputWeight = 20
	// LargeInputBases is the total read length above which the default
	// weight switches to LargeInputWeight.
	LargeInputBases = 1_000_000_000
)

// Options holds the settings of a correction run after flags and the config
// file are merged.
type Options struct {
	Input        string
	Output       string
	GenomeLength int64
	Weight       int // 0 = pick from input size
	Seeds        int
	Patterns     []string
	Threads      int
	BucketSize   int // 0 = derive from genome length
	ErrorRate    float64
	RandomSeed   uint64
	TmpDir       string
	Config       string

	Quiet    bool
	Verbose  bool
	Progress bool
}

// Validate checks ranges and fills derived defaults.
func (o *Options) Validate() error {
	if o.Input == "" {
		return errors.New("--input is required")
	}
	if o.GenomeLength <= 0 {
		return errors.New("--genome-length must be > 0")
	}
	if o.Weight != 0 && (o.Weight < MinWeight || o.Weight > MaxWeight) {
		return errors.Errorf("--weight must be in [%d, %d]", MinWeight, MaxWeight)
	}
	if len(o.Patterns) == 0 && (o.Seeds < 1 || o.Seeds > MaxSeeds) {
		return errors.Errorf("--seeds must be in [1, %d]", MaxSeeds)
	}
	if len(o.Patterns) > 0 {
		if _, err := seedtable.Parse(o.Patterns); err != nil {
			return errors.Wrap(err, "--pattern")
		}
	}
	if o.Threads < 0 {
		return errors.New("--threads must be >= 0")
	}
	if o.BucketSize < 0 {
		return errors.New("--bucket-size must be >= 0")
	}
	if o.ErrorRate <= 0 || o.ErrorRate >= 1 {
		return errors.New("--error-rate must be in (0, 1)")
	}
	if o.Quiet && o.Verbose {
		return errors.New("--quiet conflicts with --verbose")
	}
	if o.Threads == 0 {
		o.Threads = runtime.NumCPU()
	}
	if o.BucketSize == 0 {
		o.BucketSize = int(max(1, o.GenomeLength*10/302))
	}
	if o.Output == "" {
		o.Output = fastxio.DefaultOutput(o.Input)
	}
	return nil
}

// WeightFor returns the seed weight for an input of totalBases bases.
func (o Options) WeightFor(totalBases int64) int {
	if o.Weight != 0 {
		return o.Weight
	}
	if totalBases > LargeInputBases {
		return LargeInputWeight
	}
	return DefaultWeight
}

// merge fills every field the command line left unset from f.
func (o *Options) merge(f config.File, set func(name string) bool) {
	str := func(dst *string, name, v string) {
		if !set(name) && v != "" {
			*dst = v
		}
	}
	num := func(dst *int, name string, v int) {
		if !set(name) && v != 0 {
			*dst = v
		}
	}
	flag := func(dst *bool, name string, v bool) {
		if !set(name) && v {
			*dst = v
		}
	}
	str(&o.Input, "input", f.Input)
	str(&o.Output, "output", f.Output)
	str(&o.TmpDir, "tmp-dir", f.TmpDir)
	num(&o.Weight, "weight", f.Weight)
	num(&o.Seeds, "seeds", f.Seeds)
	num(&o.Threads, "threads", f.Threads)
	num(&o.BucketSize, "bucket-size", f.BucketSize)
	flag(&o.Quiet, "quiet", f.Quiet)
	flag(&o.Verbose, "verbose", f.Verbose)
	flag(&o.Progress, "progress", f.Progress)
	if !set("genome-length") && f.GenomeLength != 0 {
		o.GenomeLength = f.GenomeLength
	}
	if !set("error-rate") && f.ErrorRate != 0 {
		o.ErrorRate = f.ErrorRate
	}
	if !set("random-seed") && f.RandomSeed != 0 {
		o.RandomSeed = f.RandomSeed
	}
	if !set("pattern") && len(f.Patterns) > 0 {
		o.Patterns = f.Patterns
	}
}
