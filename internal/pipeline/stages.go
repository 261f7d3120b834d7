// internal/pipeline/stages.go
package pipeline

import (
	"context"
	"math/rand/v2"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"readfix-core/engine"
	"readfix-core/packed"
	"readfix-core/seed"
	"readfix-core/table"
	"readfix/internal/reads"
	"readfix/internal/writers"
)

// Stage is one step of a seed iteration.
type Stage int

const (
	StageCount Stage = iota
	StageShrink
	StageCollect
	StageResolve
	StageCorrect
	stageDone
)

func (s Stage) String() string {
	switch s {
	case StageCount:
		return "count"
	case StageShrink:
		return "shrink"
	case StageCollect:
		return "collect"
	case StageResolve:
		return "resolve"
	case StageCorrect:
		return "correct"
	}
	return "done"
}

var errTableFull = errors.New("table full")

// run carries the state of one seed iteration through its stages.
type run struct {
	iter  int
	eng   *engine.Engine
	src   reads.Source
	sink  reads.Sink
	stats IterationStats
	log   logrus.FieldLogger
}

// RunIteration runs the five stages of seed iteration i over src and writes
// every read, corrected or not, to sink in input order.
func (p *Pipeline) RunIteration(ctx context.Context, i int, sd *seed.Spaced, src reads.Source, sink reads.Sink) (IterationStats, error) {
	if p.tc <= 0 {
		return IterationStats{}, errors.New("pipeline: frequency threshold not prepared")
	}
	if p.tbl == nil {
		p.tbl = table.New(uint64(2*max(p.cfg.GenomeLength, 1)), p.ledger)
	} else {
		p.tbl.RecreateAtPeak()
	}

	eng := engine.New(engine.ForIteration(p.tc, i), sd, p.tbl, p.diff)
	cfg := eng.Config()
	r := &run{
		iter: i,
		eng:  eng,
		src:  src,
		sink: sink,
		stats: IterationStats{
			Seed:    i,
			Pattern: eng.Seed().Pattern(),
			Thresh:  cfg,
		},
		log: p.log.WithFields(logrus.Fields{"seed": i, "pattern": eng.Seed().Pattern()}),
	}

	for st := StageCount; st != stageDone; st++ {
		r.log.WithField("stage", st).Debug("stage start")
		var err error
		switch st {
		case StageCount:
			err = p.countKmers(ctx, r)
		case StageShrink:
			p.tbl.RetainFrequent(cfg.Freq)
			r.stats.Frequent = p.tbl.Len()
			r.stats.TableCap = p.tbl.Cap()
		case StageCollect:
			err = p.collectGaps(ctx, r)
		case StageResolve:
			r.stats.Removed = p.tbl.ResolveAmbiguity(cfg.Freq, cfg.Err)
		case StageCorrect:
			err = p.applyCorrections(ctx, r)
		}
		if err != nil {
			return r.stats, errors.Wrapf(err, "seed %d: %s", i, st)
		}
		r.log.WithFields(logrus.Fields{
			"stage":     st,
			"table_cap": p.tbl.Cap(),
			"live":      p.tbl.Len(),
		}).Debug("stage done")
	}
	p.progress.Done()
	return r.stats, nil
}

// countKmers counts every k-mer into the table. An overflow discards the
// pass, doubles the table and starts over from the first read.
func (p *Pipeline) countKmers(ctx context.Context, r *run) error {
	for {
		p.progress.Stage(r.iter, StageCount)
		rngs := p.workerRands(r.iter, StageCount)
		err := p.stream(ctx, r.src, func(bucket [][]byte) (bool, error) {
			ok := p.parallel(len(bucket), func(w, i int) bool {
				return r.eng.Count(packed.Encode(bucket[i], rngs[w]))
			})
			p.progress.Advance(len(bucket))
			if !ok {
				return false, errTableFull
			}
			return true, nil
		})
		if !errors.Is(err, errTableFull) {
			return err
		}
		r.stats.Restarts++
		p.tbl.RecreateAtDoublePeak()
		r.log.WithFields(logrus.Fields{
			"restarts":  r.stats.Restarts,
			"table_cap": p.tbl.Cap(),
		}).Info("table full, restarting count")
	}
}

func (p *Pipeline) collectGaps(ctx context.Context, r *run) error {
	p.progress.Stage(r.iter, StageCollect)
	rngs := p.workerRands(r.iter, StageCollect)
	return p.stream(ctx, r.src, func(bucket [][]byte) (bool, error) {
		p.parallel(len(bucket), func(w, i int) bool {
			r.eng.Collect(packed.Encode(bucket[i], rngs[w]))
			return true
		})
		p.progress.Advance(len(bucket))
		return true, nil
	})
}

func (p *Pipeline) applyCorrections(ctx context.Context, r *run) error {
	p.progress.Stage(r.iter, StageCorrect)
	rngs := p.workerRands(r.iter, StageCorrect)
	var total, skipped, corrected, rewritten atomic.Int64

	out, done := writers.StartBucketWriter(r.sink, 2)
	err := p.stream(ctx, r.src, func(bucket [][]byte) (bool, error) {
		lines := make([][]byte, len(bucket))
		p.parallel(len(bucket), func(w, i int) bool {
			text := bucket[i]
			s := packed.Encode(text, rngs[w])
			o := r.eng.Correct(s)
			if o.Skipped {
				skipped.Add(1)
			}
			corrected.Add(int64(o.Corrected))
			if engine.Rewrite(r.iter, o) && s.PatchText(text) > 0 {
				rewritten.Add(1)
			}
			lines[i] = text
			return true
		})
		total.Add(int64(len(bucket)))
		p.progress.Advance(len(bucket))
		out <- lines
		return true, nil
	})
	close(out)
	werr := <-done

	r.stats.Reads = total.Load()
	r.stats.Skipped = skipped.Load()
	r.stats.Corrected = corrected.Load()
	r.stats.Rewritten = rewritten.Load()
	if err != nil {
		return err
	}
	return errors.Wrap(werr, "write corrected reads")
}

// workerRands returns one generator per worker for ambiguous bases.
func (p *Pipeline) workerRands(iter int, st Stage) []*rand.Rand {
	out := make([]*rand.Rand, p.cfg.Workers)
	for w := range out {
		out[w] = rand.New(rand.NewPCG(p.cfg.RandSeed, uint64(iter)<<32|uint64(st)<<16|uint64(w)))
	}
	return out
}
