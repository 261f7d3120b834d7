// internal/pipeline/stream.go
package pipeline

import (
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"readfix/internal/reads"
)

// stream rewinds src and hands it to work one bucket at a time, in order.
// Bucket lines are copies owned by work, so src may reuse its buffer.
// The next bucket is loaded while work runs on the current one. work returns
// false to stop early; the remaining reads are not loaded. ctx is checked
// between buckets only.
func (p *Pipeline) stream(ctx context.Context, src reads.Source, work func(bucket [][]byte) (bool, error)) error {
	if err := src.Rewind(); err != nil {
		return errors.Wrap(err, "rewind reads")
	}

	free := make(chan [][]byte, 2)
	for range 2 {
		free <- make([][]byte, 0, p.cfg.BucketSize)
	}
	loaded := make(chan [][]byte)
	stop := make(chan struct{})
	var lerr error

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(loaded)
		for {
			var buf [][]byte
			select {
			case buf = <-free:
			case <-stop:
				return
			}
			buf = buf[:0]
			eof := false
			for len(buf) < p.cfg.BucketSize {
				line, err := src.Next()
				if err == io.EOF {
					eof = true
					break
				}
				if err != nil {
					lerr = errors.Wrap(err, "read bucket")
					return
				}
				buf = append(buf, bytes.Clone(line))
			}
			if len(buf) > 0 {
				select {
				case loaded <- buf:
				case <-stop:
					return
				}
			}
			if eof {
				return
			}
		}
	}()

	var err error
	for bucket := range loaded {
		if err = ctx.Err(); err != nil {
			break
		}
		var more bool
		more, err = work(bucket)
		if err != nil || !more {
			break
		}
		free <- bucket
	}
	close(stop)
	for range loaded {
	}
	wg.Wait()

	if err != nil {
		return err
	}
	return lerr
}

// parallel runs fn for i in [0,n) on the configured number of workers. w is
// the worker index. It stops handing out indices once fn returns false and
// reports whether every call returned true.
func (p *Pipeline) parallel(n int, fn func(w, i int) bool) bool {
	workers := min(p.cfg.Workers, n)
	var (
		next   atomic.Int64
		failed atomic.Bool
		wg     sync.WaitGroup
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for !failed.Load() {
				i := int(next.Add(1) - 1)
				if i >= n {
					return
				}
				if !fn(w, i) {
					failed.Store(true)
				}
			}
		}()
	}
	wg.Wait()
	return !failed.Load()
}
