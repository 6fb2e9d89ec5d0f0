/*
Package rows holds the blocking interfaces for reading record batch streams as
plain arrow records.
*/
package rows

import (
	"context"

	"github.com/apache/arrow/go/v12/arrow"
)

// Rows is a source of record batches that can be read as arrow records.
type Rows interface {
	// GetArrowBatches hands the batches over to an iterator. The source is left
	// empty and the iterator owns every record it returns.
	GetArrowBatches(context.Context) (ArrowBatchIterator, error)
}

// ArrowBatchIterator reads the batches of a record batch stream one at a time,
// blocking while the stream is pending.
type ArrowBatchIterator interface {
	// Next returns the record of the next batch, which the caller must Release,
	// or the error item the stream yielded in its place.
	// Returns io.EOF once the stream is exhausted.
	Next() (arrow.Record, error)

	// HasNext reports whether Next has a record or an error to return.
	HasNext() bool

	// Close releases a batch read ahead and closes the underlying stream.
	Close()
}
