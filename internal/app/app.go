// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"readfix-core/memstat"
	"readfix-core/seed"
	"readfix/internal/cli"
	"readfix/internal/cmdutil"
	"readfix/internal/fastxio"
	"readfix/internal/pipeline"
	"readfix/internal/progress"
	"readfix/internal/reads"
	"readfix/internal/seedtable"
	"readfix/internal/writers"
)

// RunContext runs readfix with argv (without the program name) and returns
// the process exit code.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	var runErr error
	cmd := cli.NewCommand(stdout, stderr, cli.Handlers{
		Correct: func(ctx context.Context, opts cli.Options) error {
			runErr = correct(ctx, opts, stdout, stderr)
			return runErr
		},
		Seeds: func(ctx context.Context, w io.Writer, weight int) error {
			runErr = listSeeds(ctx, w, weight)
			return runErr
		},
	})
	err := cmd.Run(ctx, append([]string{"readfix"}, argv...))
	// urfave reports flag parse errors before any handler runs
	usage := cli.IsUsage(err) || (err != nil && runErr == nil)
	if usage {
		_, _ = fmt.Fprintln(stderr, "readfix:", err)
	}
	return cmdutil.ExitCode(ctx, err, usage)
}

func correct(ctx context.Context, opts cli.Options, stdout, stderr io.Writer) error {
	log := cmdutil.NewLogger(stderr, opts.Quiet, opts.Verbose)
	entry := log.WithField("run", uuid.NewString()[:8])

	spool, err := reads.NewSpool(opts.TmpDir)
	if err != nil {
		return fail(entry, err)
	}
	defer func() {
		if err := spool.Close(); err != nil {
			entry.WithError(err).Warn("spool cleanup")
		}
	}()

	sink, err := spool.Begin()
	if err != nil {
		return fail(entry, err)
	}
	in, err := fastxio.Extract(opts.Input, sink)
	if err != nil {
		return fail(entry, err)
	}
	if err := spool.Commit(); err != nil {
		return fail(entry, err)
	}
	entry.WithFields(logrus.Fields{
		"input":   opts.Input,
		"records": in.Records,
		"bases":   in.TotalLength,
		"min_len": in.MinLength,
		"max_len": in.MaxLength,
		"fastq":   in.Fastq,
	}).Info("reads loaded")

	seeds, err := pickSeeds(opts, in.TotalLength)
	if err != nil {
		return fail(entry, err)
	}
	for i, sd := range seeds {
		entry.WithFields(logrus.Fields{"seed": i, "pattern": sd.Pattern(), "weight": sd.Weight()}).Debug("seed")
	}

	var prog pipeline.Progress
	if opts.Progress {
		bars := progress.New(stderr, in.Records)
		defer bars.Close()
		prog = bars
	}
	ledger := &memstat.Ledger{}
	p := pipeline.New(pipeline.Config{
		Workers:      opts.Threads,
		BucketSize:   opts.BucketSize,
		GenomeLength: opts.GenomeLength,
		ErrorRate:    opts.ErrorRate,
		RandSeed:     opts.RandomSeed,
	}, entry, ledger, prog)

	st, err := p.Run(ctx, seeds, spool, pipeline.Summary{Reads: in.Records, TotalLength: in.TotalLength})
	if err != nil {
		return fail(entry, err)
	}

	n, err := writeOutput(opts, spool, stdout)
	if err != nil {
		return fail(entry, err)
	}

	var corrected, rewritten int64
	for _, it := range st.Iterations {
		corrected += it.Corrected
		rewritten += it.Rewritten
	}
	entry.WithFields(logrus.Fields{
		"output":    opts.Output,
		"records":   n,
		"tc":        st.Tc,
		"corrected": corrected,
		"rewritten": rewritten,
		"peak_mb":   memstat.MB(st.PeakBytes),
	}).Info("done")
	return nil
}

func pickSeeds(opts cli.Options, totalBases int64) ([]*seed.Spaced, error) {
	if len(opts.Patterns) > 0 {
		return seedtable.Parse(opts.Patterns)
	}
	return seedtable.Seeds(opts.WeightFor(totalBases), opts.Seeds)
}

func writeOutput(opts cli.Options, spool *reads.Spool, stdout io.Writer) (int64, error) {
	src, err := spool.Source()
	if err != nil {
		return 0, err
	}
	if opts.Output == "-" {
		return fastxio.Reassemble(opts.Input, src, stdout)
	}
	out, err := fastxio.Create(opts.Output)
	if err != nil {
		return 0, err
	}
	n, err := fastxio.Reassemble(opts.Input, src, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errors.Wrapf(cerr, "close %s", opts.Output)
	}
	return n, err
}

func fail(log logrus.FieldLogger, err error) error {
	if errors.Is(err, context.Canceled) {
		log.Warn("cancelled")
	} else {
		log.WithError(err).Error("run failed")
	}
	return err
}

func listSeeds(_ context.Context, w io.Writer, weight int) error {
	for _, s := range seedtable.Sets(weight) {
		if _, err := fmt.Fprintf(w, "# weight %d, %d seed(s), sensitivity %v\n", s.Weight, s.Count, s.Sensitivity); err != nil {
			return writers.IgnoreBrokenPipe(errors.Wrap(err, "list seeds"))
		}
		for _, p := range s.Patterns {
			if _, err := fmt.Fprintln(w, p); err != nil {
				return writers.IgnoreBrokenPipe(errors.Wrap(err, "list seeds"))
			}
		}
	}
	return nil
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
