package engine

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/databricks/databricks-recordbatch-go/poll"
)

// NewMemoryStream returns a stream yielding records in order. The stream takes
// ownership of the records; records never polled are released by Close.
func NewMemoryStream(schema *arrow.Schema, records ...arrow.Record) *MemoryStream {
	return &MemoryStream{schema: schema, records: records}
}

// MemoryStream is a stream over records already held in memory. It never reports pending.
type MemoryStream struct {
	schema  *arrow.Schema
	records []arrow.Record
}

var _ Stream = (*MemoryStream)(nil)

func (ms *MemoryStream) Schema() *arrow.Schema {
	return ms.schema
}

func (ms *MemoryStream) PollNext(cx *poll.Context) poll.Poll[arrow.Record] {
	if len(ms.records) == 0 {
		return poll.Done[arrow.Record]()
	}

	r := ms.records[0]
	ms.records[0] = nil
	ms.records = ms.records[1:]
	return poll.Item(r)
}

func (ms *MemoryStream) SizeHint() poll.SizeHint {
	return poll.ExactSize(len(ms.records))
}

// Close releases the records that were not polled.
func (ms *MemoryStream) Close() error {
	for i := range ms.records {
		ms.records[i].Release()
	}
	ms.records = nil
	return nil
}

// FromRecordReader exposes an arrow record reader as a stream.
// The stream takes over the reference held on rr and releases it on Close.
func FromRecordReader(rr array.RecordReader) *RecordReaderStream {
	return &RecordReaderStream{reader: rr, schema: rr.Schema()}
}

// RecordReaderStream adapts an array.RecordReader. Reading is synchronous, so the
// reader should not block for long, e.g. it reads from memory or a local file.
type RecordReaderStream struct {
	reader array.RecordReader
	schema *arrow.Schema
	done   bool
}

var _ Stream = (*RecordReaderStream)(nil)

func (rs *RecordReaderStream) Schema() *arrow.Schema {
	return rs.schema
}

func (rs *RecordReaderStream) PollNext(cx *poll.Context) poll.Poll[arrow.Record] {
	if rs.done {
		return poll.Done[arrow.Record]()
	}

	if rs.reader.Next() {
		// the reader releases its current record on the next call to Next
		r := rs.reader.Record()
		r.Retain()
		return poll.Item(r)
	}

	rs.done = true
	if err := rs.reader.Err(); err != nil {
		return poll.Err[arrow.Record](NewError(KindIO, "failed to read record", err))
	}
	return poll.Done[arrow.Record]()
}

func (rs *RecordReaderStream) SizeHint() poll.SizeHint {
	if rs.done {
		return poll.ExactSize(0)
	}
	return poll.UnknownSize()
}

func (rs *RecordReaderStream) Close() error {
	if rs.reader != nil {
		rs.reader.Release()
		rs.reader = nil
	}
	rs.done = true
	return nil
}
