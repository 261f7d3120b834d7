// core/engine/thresholds.go
package engine

import "math"

const (
	DefaultErrorRate = 0.005
	DefaultRounds    = 3

	tcMin     = 4
	tcMax     = 254
	tcOffset  = 2
	tcMaxIter = 2_000_000
)

// ComputeTc returns the frequency threshold for a data set: two more than the
// smallest t at which a Poisson count with the expected true-coverage rate is
// at least as likely as one with the expected error rate, t clamped to
// [4, 254]. The comparison runs on log probabilities.
func ComputeTc(readLen float64, reads, genomeLen int64, weight int, errRate float64) int {
	if genomeLen < 1 {
		genomeLen = 1
	}
	w := float64(weight)
	base := (readLen - w) * float64(reads) / float64(genomeLen)
	lc := base * math.Pow(1-errRate, w)
	le := base * math.Pow(1-errRate, w-1) * errRate / 3

	logMass := func(lambda float64, t int) float64 {
		if lambda <= 0 {
			return math.Inf(-1)
		}
		return -lambda + float64(t)*math.Log(lambda)
	}

	t := 1
	for t < tcMaxIter && logMass(le, t) > logMass(lc, t) {
		t++
	}
	return min(max(t, tcMin), tcMax) + tcOffset
}

// ForIteration derives the thresholds of seed iteration i (0-based) from Tc.
func ForIteration(tc, i int) Config {
	c := Config{
		Freq:        tc,
		MaxVariants: max(1, 9-i),
		Rounds:      DefaultRounds,
	}
	if i <= 3 {
		c.Err = max(2, tc/4)
		c.MaxBitDiff = 4
	} else {
		c.Err = max(2, tc/2)
		c.MaxBitDiff = 2
	}
	return c
}
