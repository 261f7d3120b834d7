// Package writers moves corrected reads out of the pipeline.
//
// Writers run on their own goroutine so a stage can keep computing on the
// next bucket while the previous one is flushed. They know nothing about
// tables or seeds; they only see ordered lines.
package writers
