// Package pipeline runs the correction stages of every seed over a stream of
// reads: CountKmers, Shrink, CollectGapVariants, Resolve, ApplyCorrections.
//
// Reads move in fixed-size buckets. While the workers process one bucket a
// loader fills the other; both meet at a barrier before the next bucket.
// When counting overflows the table the stage is thrown away, the table
// doubles, and counting restarts from the first read.
package pipeline
