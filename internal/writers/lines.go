// internal/writers/lines.go
package writers

// LineSink receives lines in order.
type LineSink interface {
	Write(line []byte) error
}

// StartBucketWriter spins up a goroutine that writes every line of every
// bucket it receives, in arrival order. Close the returned channel when done
// and read the error channel once; it yields the first write error or nil.
// After an error the goroutine keeps draining input so senders never block.
func StartBucketWriter(sink LineSink, bufSize int) (chan<- [][]byte, <-chan error) {
	if bufSize <= 0 {
		bufSize = 1
	}
	in := make(chan [][]byte, bufSize)
	done := make(chan error, 1)

	go func() {
		var err error
		for bucket := range in {
			if err != nil {
				continue
			}
			for _, line := range bucket {
				if err = sink.Write(line); err != nil {
					break
				}
			}
		}
		done <- err
		close(done)
	}()
	return in, done
}
