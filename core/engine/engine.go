// core/engine/engine.go
package engine

import (
	"readfix-core/packed"
	"readfix-core/scan"
	"readfix-core/seed"
	"readfix-core/table"
)

// Config holds the thresholds of one seed iteration.
type Config struct {
	Freq        int // keep k-mers and gaps seen at least this often (Tc)
	Err         int // variants seen this often are not sequencing noise (Te)
	MaxBitDiff  int // replace a gap only when fewer bases differ (Tdiff)
	MaxVariants int // gap variants tracked per k-mer
	Rounds      int // correction rounds per read
}

// Engine runs the per-read operations of one seed iteration against a shared
// table. It holds no per-read state and is safe for concurrent use as far as
// the table operation of the current stage is.
type Engine struct {
	cfg  Config
	seed *seed.Spaced
	tbl  *table.Table
	diff *table.DiffTable
}

// New creates an Engine for one seed iteration.
func New(c Config, sd *seed.Spaced, tbl *table.Table, diff *table.DiffTable) *Engine {
	if c.Rounds < 1 {
		c.Rounds = 1
	}
	if c.MaxVariants < 1 {
		c.MaxVariants = 1
	}
	return &Engine{cfg: c, seed: sd, tbl: tbl, diff: diff}
}

// Config returns the thresholds in effect after defaults were applied.
func (e *Engine) Config() Config { return e.cfg }

// Seed returns the spaced seed the engine scans with.
func (e *Engine) Seed() *seed.Spaced { return e.seed }

// Count adds every k-mer of s to the table. It returns false as soon as the
// table reports it is full.
func (e *Engine) Count(s *packed.Sequence) bool {
	for p := range scan.Windows(s, e.seed) {
		if !e.tbl.InsertOrIncrement(p.Kmer) {
			return false
		}
	}
	return true
}

// Collect records the gap seen next to every k-mer of s.
func (e *Engine) Collect(s *packed.Sequence) {
	for p := range scan.Windows(s, e.seed) {
		e.tbl.AttachVariant(p.Kmer, p.Gap, e.cfg.Err, e.cfg.MaxVariants)
	}
}

// Outcome summarizes the correction of one read.
type Outcome struct {
	Skipped   bool // not scanned: too short or too ambiguous
	Suspects  int  // windows of the last round whose gap was not confirmed
	Corrected int  // gap replacements over all rounds
	Rounds    int
}

// Correct rewrites the gap bases of s wherever the table holds a confirmed,
// close enough gap for the window's k-mer. Rounds repeat while the previous
// round both changed something and left suspect windows, up to Config.Rounds.
func (e *Engine) Correct(s *packed.Sequence) Outcome {
	sd := e.seed
	if !scan.Eligible(s, sd) {
		return Outcome{Skipped: true}
	}
	var (
		out   Outcome
		n     = scan.Count(s, sd)
		span  = sd.Span()
		shift = uint(64 - sd.MaskBits())
	)
	out.Suspects = 1
	fixed := 1
	for out.Rounds < e.cfg.Rounds && out.Suspects > 0 && fixed > 0 {
		out.Rounds++
		out.Suspects, fixed = 0, 0
		for off := 0; off < n; off++ {
			w := s.Window(off)
			p := scan.FromWindow(w, sd, off)
			res := e.tbl.LookupCorrection(p.Kmer, p.Gap, e.cfg.MaxBitDiff, e.diff)
			if res.Status != table.AlreadyCorrect {
				out.Suspects++
			}
			if res.Status != table.Correct {
				continue
			}
			var fix uint64
			if p.Forward {
				fix = res.Gap << shift
			} else {
				fix = packed.RevComp64(res.Gap) & sd.GapMask()
			}
			s.StoreWindow(off, w&^sd.GapMask()|fix, span)
			fixed++
		}
		out.Corrected += fixed
	}
	return out
}

// Rewrite reports whether a read's text should take its corrected bases.
// The first two iterations only accept reads left with no suspect window.
func Rewrite(iteration int, o Outcome) bool {
	if o.Skipped || o.Corrected == 0 {
		return false
	}
	return iteration >= 2 || o.Suspects == 0
}
