// Package seedtable serves the built-in spaced seed sets.
package seedtable

import (
	_ "embed"
	"math/bits"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"readfix-core/seed"
)

//go:embed seeds.toml
var raw []byte

// Set is a group of patterns chosen together for one weight.
type Set struct {
	Weight      int       `toml:"weight"`
	Count       int       `toml:"count"`
	Patterns    []string  `toml:"patterns"`
	Sensitivity []float64 `toml:"sensitivity"`
}

type file struct {
	Sets []Set `toml:"set"`
}

var (
	loadOnce sync.Once
	sets     []Set
	loadErr  error
)

func load() ([]Set, error) {
	loadOnce.Do(func() {
		var f file
		if err := toml.Unmarshal(raw, &f); err != nil {
			loadErr = errors.Wrap(err, "seedtable: decode")
			return
		}
		sort.SliceStable(f.Sets, func(i, j int) bool {
			if f.Sets[i].Weight != f.Sets[j].Weight {
				return f.Sets[i].Weight < f.Sets[j].Weight
			}
			return f.Sets[i].Count < f.Sets[j].Count
		})
		sets = f.Sets
	})
	return sets, loadErr
}

// Weights lists the weights with at least one set.
func Weights() []int {
	all, _ := load()
	var out []int
	for _, s := range all {
		if len(out) == 0 || out[len(out)-1] != s.Weight {
			out = append(out, s.Weight)
		}
	}
	return out
}

// Sets returns every set of the given weight, smallest first.
func Sets(weight int) []Set {
	all, _ := load()
	var out []Set
	for _, s := range all {
		if s.Weight == weight {
			out = append(out, s)
		}
	}
	return out
}

// Patterns returns count patterns of the given weight: the first count of the
// smallest set holding at least count patterns.
func Patterns(weight, count int) ([]string, error) {
	all, err := load()
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, errors.Errorf("seedtable: seed count %d", count)
	}
	want := 1 << bits.Len(uint(count-1))
	for _, s := range all {
		if s.Weight == weight && s.Count >= want && len(s.Patterns) >= count {
			return append([]string(nil), s.Patterns[:count]...), nil
		}
	}
	return nil, errors.Errorf("seedtable: no set of %d seeds with weight %d", count, weight)
}

// Seeds parses Patterns(weight, count).
func Seeds(weight, count int) ([]*seed.Spaced, error) {
	ps, err := Patterns(weight, count)
	if err != nil {
		return nil, err
	}
	out := make([]*seed.Spaced, len(ps))
	for i, p := range ps {
		sd, err := seed.New(p)
		if err != nil {
			return nil, errors.Wrapf(err, "seedtable: set %d/%d", weight, count)
		}
		out[i] = sd
	}
	return out, nil
}

// Parse builds seeds from explicit patterns. Patterns must read the same in
// both directions.
func Parse(patterns []string) ([]*seed.Spaced, error) {
	if len(patterns) == 0 {
		return nil, errors.New("seedtable: no patterns")
	}
	out := make([]*seed.Spaced, len(patterns))
	for i, p := range patterns {
		sd, err := seed.New(p)
		if err != nil {
			return nil, err
		}
		if !sd.IsPalindrome() {
			return nil, errors.Errorf("seedtable: pattern %q is not symmetric", p)
		}
		out[i] = sd
	}
	return out, nil
}
