package recordbatch

import (
	"context"
	"sort"
	"strconv"

	"github.com/apache/arrow/go/v12/arrow"
	rberrint "github.com/databricks/databricks-recordbatch-go/internal/errors"
	"github.com/pkg/errors"
)

// Keys of the arrow schema metadata carrying the internal schema properties.
const (
	TimestampIndexKey = "recordbatch.timestamp_index"
	VersionKey        = "recordbatch.version"
)

// ColumnSchema describes a single column.
type ColumnSchema struct {
	Name     string
	DataType DataType
	Nullable bool
	Metadata arrow.Metadata
}

func (c ColumnSchema) arrowField() arrow.Field {
	return arrow.Field{
		Name:     c.Name,
		Type:     c.DataType.ArrowType(),
		Nullable: c.Nullable,
		Metadata: c.Metadata,
	}
}

// Schema is the immutable column layout of a record batch stream.
// It is shared by pointer and must not be modified after construction.
type Schema struct {
	columns        []ColumnSchema
	nameToIndex    map[string]int
	timestampIndex int
	version        uint32
	metadata       map[string]string
	arrowSchema    *arrow.Schema
}

type schemaOptions struct {
	timestampIndex int
	version        uint32
	metadata       map[string]string
}

type SchemaOption func(*schemaOptions)

// WithTimestampIndex marks column i as the time index. The column must be a timestamp.
func WithTimestampIndex(i int) SchemaOption {
	return func(o *schemaOptions) {
		o.timestampIndex = i
	}
}

func WithVersion(v uint32) SchemaOption {
	return func(o *schemaOptions) {
		o.version = v
	}
}

// WithMetadata attaches extra key/values to the arrow schema.
func WithMetadata(md map[string]string) SchemaOption {
	return func(o *schemaOptions) {
		o.metadata = md
	}
}

// NewSchema builds a schema from columns. Column names must be unique.
func NewSchema(columns []ColumnSchema, opts ...SchemaOption) (*Schema, error) {
	o := schemaOptions{timestampIndex: -1}
	for _, opt := range opts {
		opt(&o)
	}

	nameToIndex := make(map[string]int, len(columns))
	for i := range columns {
		if _, ok := nameToIndex[columns[i].Name]; ok {
			return nil, errors.Errorf("%s: %s", rberrint.ErrDuplicateColumn, columns[i].Name)
		}
		nameToIndex[columns[i].Name] = i
	}

	if o.timestampIndex >= 0 {
		if o.timestampIndex >= len(columns) {
			return nil, errors.Errorf("%s: %d out of range for %d columns", rberrint.ErrInvalidTimestampIndex, o.timestampIndex, len(columns))
		}
		if !columns[o.timestampIndex].DataType.IsTimestamp() {
			return nil, errors.Errorf("%s: column %s is %s", rberrint.ErrInvalidTimestampIndex, columns[o.timestampIndex].Name, columns[o.timestampIndex].DataType)
		}
	} else {
		o.timestampIndex = -1
	}

	cols := make([]ColumnSchema, len(columns))
	copy(cols, columns)

	s := &Schema{
		columns:        cols,
		nameToIndex:    nameToIndex,
		timestampIndex: o.timestampIndex,
		version:        o.version,
		metadata:       o.metadata,
	}
	s.arrowSchema = s.buildArrowSchema()
	return s, nil
}

func (s *Schema) buildArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(s.columns))
	for i := range s.columns {
		fields[i] = s.columns[i].arrowField()
	}

	md := make(map[string]string, len(s.metadata)+2)
	for k, v := range s.metadata {
		md[k] = v
	}
	if s.timestampIndex >= 0 {
		md[TimestampIndexKey] = strconv.Itoa(s.timestampIndex)
	}
	md[VersionKey] = strconv.FormatUint(uint64(s.version), 10)

	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]string, len(keys))
	for i, k := range keys {
		vals[i] = md[k]
	}

	meta := arrow.NewMetadata(keys, vals)
	return arrow.NewSchema(fields, &meta)
}

// SchemaFromArrow converts an arrow schema. It fails with a schema conversion
// error when a field type is unsupported, column names repeat, or the schema
// metadata carries a malformed time index or version.
func SchemaFromArrow(as *arrow.Schema) (*Schema, error) {
	return schemaFromArrowContext(context.Background(), as)
}

func schemaFromArrowContext(ctx context.Context, as *arrow.Schema) (*Schema, error) {
	s, err := schemaFromArrow(as)
	if err != nil {
		return nil, rberrint.NewSchemaConversionError(ctx, rberrint.ErrSchemaConversion, err)
	}
	return s, nil
}

func schemaFromArrow(as *arrow.Schema) (*Schema, error) {
	if as == nil {
		return nil, errors.New(rberrint.ErrNilSchema)
	}

	fields := as.Fields()
	columns := make([]ColumnSchema, len(fields))
	for i := range fields {
		dt, err := DataTypeFromArrow(fields[i].Type)
		if err != nil {
			return nil, rberrint.WrapErrf(err, "column %s", fields[i].Name)
		}
		columns[i] = ColumnSchema{
			Name:     fields[i].Name,
			DataType: dt,
			Nullable: fields[i].Nullable,
			Metadata: fields[i].Metadata,
		}
	}

	opts := []SchemaOption{}
	md := as.Metadata()
	extra := make(map[string]string)
	for i, k := range md.Keys() {
		v := md.Values()[i]
		switch k {
		case TimestampIndexKey:
			idx, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.Errorf("%s: %q", rberrint.ErrInvalidTimestampIndex, v)
			}
			if idx < 0 {
				return nil, errors.Errorf("%s: %d", rberrint.ErrInvalidTimestampIndex, idx)
			}
			opts = append(opts, WithTimestampIndex(idx))
		case VersionKey:
			ver, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return nil, errors.Errorf("%s: %q", rberrint.ErrInvalidSchemaVersion, v)
			}
			opts = append(opts, WithVersion(uint32(ver)))
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		opts = append(opts, WithMetadata(extra))
	}

	return NewSchema(columns, opts...)
}

// ArrowSchema returns the arrow representation, computed once at construction.
func (s *Schema) ArrowSchema() *arrow.Schema {
	return s.arrowSchema
}

// ColumnSchemas returns the columns in order. The slice must not be modified.
func (s *Schema) ColumnSchemas() []ColumnSchema {
	return s.columns
}

func (s *Schema) NumColumns() int {
	return len(s.columns)
}

func (s *Schema) Column(i int) ColumnSchema {
	return s.columns[i]
}

func (s *Schema) ColumnIndexByName(name string) (int, bool) {
	i, ok := s.nameToIndex[name]
	return i, ok
}

func (s *Schema) ColumnByName(name string) (ColumnSchema, bool) {
	i, ok := s.nameToIndex[name]
	if !ok {
		return ColumnSchema{}, false
	}
	return s.columns[i], true
}

// TimestampIndex returns the index of the time index column, if there is one.
func (s *Schema) TimestampIndex() (int, bool) {
	return s.timestampIndex, s.timestampIndex >= 0
}

func (s *Schema) TimestampColumn() (ColumnSchema, bool) {
	if s.timestampIndex < 0 {
		return ColumnSchema{}, false
	}
	return s.columns[s.timestampIndex], true
}

func (s *Schema) Version() uint32 {
	return s.version
}

// Equal reports whether both schemas have the same columns, time index and version.
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	if len(s.columns) != len(other.columns) || s.timestampIndex != other.timestampIndex || s.version != other.version {
		return false
	}
	for i := range s.columns {
		a, b := s.columns[i], other.columns[i]
		if a.Name != b.Name || a.Nullable != b.Nullable || !a.DataType.Equal(b.DataType) {
			return false
		}
	}
	return true
}
