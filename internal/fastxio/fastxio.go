// internal/fastxio/fastxio.go
package fastxio

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"

	"readfix/internal/reads"
)

func init() {
	// reads may carry IUPAC codes or lowercase bases; they are kept as is
	seq.ValidateSeq = false
}

// Stats describes the records of an input file.
type Stats struct {
	Records     int64
	TotalLength int64
	MinLength   int
	MaxLength   int
	Fastq       bool
}

// Extract writes the sequence of every record in path to sink, one per line,
// in file order.
func Extract(path string, sink reads.Sink) (Stats, error) {
	r, err := fastx.NewReader(nil, path, "")
	if err != nil {
		return Stats{}, errors.Wrapf(err, "open %s", path)
	}
	defer r.Close()

	var st Stats
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return st, errors.Wrapf(err, "read record %d of %s", st.Records+1, path)
		}
		n := len(rec.Seq.Seq)
		if st.Records == 0 {
			st.MinLength, st.MaxLength = n, n
			st.Fastq = len(rec.Seq.Qual) > 0
		}
		st.MinLength = min(st.MinLength, n)
		st.MaxLength = max(st.MaxLength, n)
		st.Records++
		st.TotalLength += int64(n)
		if err := sink.Write(rec.Seq.Seq); err != nil {
			return st, errors.Wrap(err, "spool read")
		}
	}
	if st.Records == 0 {
		return st, errors.Errorf("%s: no records", path)
	}
	return st, nil
}

// Reassemble re-reads path and writes each record to out with its sequence
// replaced by the next line of corrected. Headers and qualities are kept.
func Reassemble(path string, corrected reads.Source, out io.Writer) (int64, error) {
	r, err := fastx.NewReader(nil, path, "")
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	defer r.Close()
	if err := corrected.Rewind(); err != nil {
		return 0, err
	}

	var n int64
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, errors.Wrapf(err, "read record %d of %s", n+1, path)
		}
		line, err := corrected.Next()
		if err == io.EOF {
			return n, errors.Errorf("corrected reads end at record %d of %s", n+1, path)
		}
		if err != nil {
			return n, err
		}
		if len(line) != len(rec.Seq.Seq) {
			return n, errors.Errorf("record %d: corrected length %d, want %d", n+1, len(line), len(rec.Seq.Seq))
		}
		rec.Seq.Seq = line
		if _, err := out.Write(rec.Format(0)); err != nil {
			return n, errors.Wrap(err, "write record")
		}
		n++
	}
	if _, err := corrected.Next(); err != io.EOF {
		return n, errors.Errorf("more corrected reads than records in %s", path)
	}
	return n, nil
}

// Create opens path for writing, compressed when it ends in .gz. "-" is stdout.
func Create(path string) (io.WriteCloser, error) {
	w, err := xopen.Wopen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	return w, nil
}

// DefaultOutput names the output next to the input: reads.fq becomes
// reads_corrected.fq and reads.fq.gz becomes reads_corrected.fq.gz.
func DefaultOutput(input string) string {
	dir, base := filepath.Split(input)
	var gz string
	if strings.HasSuffix(base, ".gz") {
		base, gz = strings.TrimSuffix(base, ".gz"), ".gz"
	}
	ext := filepath.Ext(base)
	return dir + strings.TrimSuffix(base, ext) + "_corrected" + ext + gz
}
