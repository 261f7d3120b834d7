// internal/cli/command.go
package cli

import (
	"context"
	"io"
	"slices"

	ucli "github.com/urfave/cli/v3"

	"readfix-core/engine"
	"readfix/internal/config"
	"readfix/internal/seedtable"
	"readfix/internal/version"
)

// Handlers are the actions behind the command tree.
type Handlers struct {
	Correct func(ctx context.Context, opts Options) error
	Seeds   func(ctx context.Context, w io.Writer, weight int) error
}

// NewCommand builds the readfix command tree. Errors returned by the
// handlers pass through Run unchanged.
func NewCommand(stdout, stderr io.Writer, h Handlers) *ucli.Command {
	return &ucli.Command{
		Name:      "readfix",
		Usage:     "correct substitution errors in short reads with spaced seeds",
		Version:   version.Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []ucli.Flag{
			&ucli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "FASTA/FASTQ reads, plain or gzip"},
			&ucli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "corrected reads (default <input>_corrected<ext>)"},
			&ucli.IntFlag{Name: "genome-length", Aliases: []string{"g"}, Usage: "estimated genome length in bases"},
			&ucli.IntFlag{Name: "weight", Aliases: []string{"w"}, Usage: "seed weight 10..26 (0 = 16, or 20 above 1e9 read bases)"},
			&ucli.IntFlag{Name: "seeds", Aliases: []string{"s"}, Value: DefaultSeeds, Usage: "number of seeds 1..8"},
			&ucli.StringSliceFlag{Name: "pattern", Aliases: []string{"p"}, Usage: "explicit seed pattern, repeatable (overrides --weight/--seeds)"},
			&ucli.IntFlag{Name: "threads", Aliases: []string{"t"}, Usage: "worker goroutines (0 = all CPUs)"},
			&ucli.IntFlag{Name: "bucket-size", Usage: "reads per bucket (0 = genome-length*10/302)"},
			&ucli.FloatFlag{Name: "error-rate", Value: engine.DefaultErrorRate, Usage: "per-base error rate used for the frequency threshold"},
			&ucli.UintFlag{Name: "random-seed", Value: 1, Usage: "seed for the bases drawn in place of ambiguous characters"},
			&ucli.StringFlag{Name: "tmp-dir", Usage: "directory for the read spool (default system temp)"},
			&ucli.StringFlag{Name: "config", Usage: "TOML file with the same keys as the flags"},
			&ucli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "log warnings and errors only"},
			&ucli.BoolFlag{Name: "verbose", Usage: "log every stage"},
			&ucli.BoolFlag{Name: "progress", Usage: "show progress bars on stderr"},
		},
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			opts, err := optionsFrom(cmd)
			if err != nil {
				return usageError{err}
			}
			return h.Correct(ctx, opts)
		},
		Commands: []*ucli.Command{
			{
				Name:  "seeds",
				Usage: "list the built-in seed sets of a weight",
				Flags: []ucli.Flag{
					&ucli.IntFlag{Name: "weight", Aliases: []string{"w"}, Value: DefaultWeight, Usage: "seed weight"},
				},
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					w := int(cmd.Int("weight"))
					if !slices.Contains(seedtable.Weights(), w) {
						return usageError{errorf("--weight must be one of %v", seedtable.Weights())}
					}
					return h.Seeds(ctx, stdout, w)
				},
			},
		},
	}
}

func optionsFrom(cmd *ucli.Command) (Options, error) {
	o := Options{
		Input:        cmd.String("input"),
		Output:       cmd.String("output"),
		GenomeLength: int64(cmd.Int("genome-length")),
		Weight:       int(cmd.Int("weight")),
		Seeds:        int(cmd.Int("seeds")),
		Patterns:     cmd.StringSlice("pattern"),
		Threads:      int(cmd.Int("threads")),
		BucketSize:   int(cmd.Int("bucket-size")),
		ErrorRate:    cmd.Float("error-rate"),
		RandomSeed:   uint64(cmd.Uint("random-seed")),
		TmpDir:       cmd.String("tmp-dir"),
		Config:       cmd.String("config"),
		Quiet:        cmd.Bool("quiet"),
		Verbose:      cmd.Bool("verbose"),
		Progress:     cmd.Bool("progress"),
	}
	if o.Config != "" {
		f, err := config.Load(o.Config)
		if err != nil {
			return o, err
		}
		o.merge(f, cmd.IsSet)
	}
	return o, o.Validate()
}
