// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"readfix-core/engine"
	"readfix-core/memstat"
	"readfix-core/seed"
	"readfix-core/table"
	"readfix/internal/reads"
)

// Config controls a correction run.
type Config struct {
	Workers      int     // worker goroutines per bucket (>=1; 0 = NumCPU)
	BucketSize   int     // reads per bucket (>=1)
	GenomeLength int64   // estimated genome length
	ErrorRate    float64 // per-base error rate used for Tc
	Tc           int     // frequency threshold; 0 derives it from the reads
	RandSeed     uint64  // stream seed for ambiguous-base encoding
}

const defaultBucketSize = 4096

// Summary describes the read set a run works on.
type Summary struct {
	Reads       int64
	TotalLength int64
}

// MeanLength is the average read length, rounded down.
func (s Summary) MeanLength() int64 {
	if s.Reads == 0 {
		return 0
	}
	return s.TotalLength / s.Reads
}

// Store moves reads from one seed iteration to the next: Source is the
// current generation, Begin opens the next and Commit makes it current.
type Store interface {
	Source() (reads.Source, error)
	Begin() (reads.Sink, error)
	Commit() error
}

// IterationStats reports what one seed iteration did.
type IterationStats struct {
	Seed      int
	Pattern   string
	Thresh    engine.Config
	Restarts  int
	TableCap  uint64
	Frequent  int64
	Removed   int
	Reads     int64
	Skipped   int64
	Corrected int64
	Rewritten int64
}

// Stats reports a whole run.
type Stats struct {
	Tc         int
	Iterations []IterationStats
	PeakBytes  int64
}

// Pipeline owns the frequency table across seed iterations so that later
// iterations start at the size the first one discovered.
type Pipeline struct {
	cfg      Config
	log      logrus.FieldLogger
	ledger   *memstat.Ledger
	progress Progress

	tbl  *table.Table
	diff *table.DiffTable
	tc   int
	mean int64
}

// New creates a pipeline. log, ledger and progress may be nil.
func New(cfg Config, log logrus.FieldLogger, ledger *memstat.Ledger, progress Progress) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.BucketSize <= 0 {
		cfg.BucketSize = defaultBucketSize
	}
	if cfg.ErrorRate <= 0 {
		cfg.ErrorRate = engine.DefaultErrorRate
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	if ledger == nil {
		ledger = &memstat.Ledger{}
	}
	if progress == nil {
		progress = nopProgress{}
	}
	return &Pipeline{
		cfg:      cfg,
		log:      log,
		ledger:   ledger,
		progress: progress,
		diff:     table.NewDiffTable(),
		tc:       cfg.Tc,
	}
}

// Tc is the frequency threshold in use, 0 before Prepare.
func (p *Pipeline) Tc() int { return p.tc }

// Prepare derives the frequency threshold from the read set unless the
// config fixed one.
func (p *Pipeline) Prepare(sum Summary, weight int) {
	p.mean = sum.MeanLength()
	if p.cfg.Tc > 0 {
		p.tc = p.cfg.Tc
		return
	}
	p.tc = engine.ComputeTc(float64(p.mean), sum.Reads, p.cfg.GenomeLength, weight, p.cfg.ErrorRate)
}

// Run applies seeds in order, each iteration reading the generation the
// previous one wrote.
func (p *Pipeline) Run(ctx context.Context, seeds []*seed.Spaced, store Store, sum Summary) (Stats, error) {
	if len(seeds) == 0 {
		return Stats{}, errors.New("pipeline: no seeds")
	}
	p.Prepare(sum, seeds[0].Weight())
	p.log.WithFields(logrus.Fields{
		"reads":       sum.Reads,
		"mean_length": p.mean,
		"genome":      p.cfg.GenomeLength,
		"tc":          p.tc,
	}).Info("starting correction")

	st := Stats{Tc: p.tc}
	defer p.release()
	for i, sd := range seeds {
		src, err := store.Source()
		if err != nil {
			return st, err
		}
		sink, err := store.Begin()
		if err != nil {
			return st, err
		}
		it, err := p.RunIteration(ctx, i, sd, src, sink)
		if err != nil {
			return st, err
		}
		if err := store.Commit(); err != nil {
			return st, err
		}
		st.Iterations = append(st.Iterations, it)
		p.log.WithFields(logrus.Fields{
			"seed":       i,
			"corrected":  it.Corrected,
			"rewritten":  it.Rewritten,
			"current_mb": memstat.MB(p.ledger.Current()),
			"peak_mb":    memstat.MB(p.ledger.Peak()),
		}).Info("seed done")
	}
	st.PeakBytes = p.ledger.Peak()
	return st, nil
}

func (p *Pipeline) release() {
	if p.tbl != nil {
		p.tbl.Clear()
	}
}
