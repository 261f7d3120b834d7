// Package progress draws one bar per pipeline pass.
package progress

import (
	"fmt"
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"readfix/internal/pipeline"
)

// Bars implements pipeline.Progress on top of mpb.
type Bars struct {
	p     *mpb.Progress
	total int64
	bar   *mpb.Bar
}

// New returns bars for passes over total reads, drawn on w.
func New(w io.Writer, total int64) *Bars {
	return &Bars{
		p:     mpb.New(mpb.WithWidth(40), mpb.WithOutput(w)),
		total: total,
	}
}

func (b *Bars) Stage(seed int, st pipeline.Stage) {
	b.drop()
	name := fmt.Sprintf("seed %d %-7s ", seed+1, st)
	b.bar = b.p.AddBar(b.total,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name), C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.Name(" "),
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO), " done"),
		),
	)
}

func (b *Bars) Advance(n int) {
	if b.bar != nil {
		b.bar.IncrBy(n)
	}
}

func (b *Bars) Done() { b.drop() }

// drop removes a bar that stopped short of its total, as on a restart.
func (b *Bars) drop() {
	if b.bar != nil && !b.bar.Completed() {
		b.bar.Abort(true)
	}
	b.bar = nil
}

// Close waits for the last frame to render.
func (b *Bars) Close() {
	b.drop()
	b.p.Wait()
}

var _ pipeline.Progress = (*Bars)(nil)
