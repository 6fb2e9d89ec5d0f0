package recordbatch

import (
	"fmt"

	"github.com/apache/arrow/go/v12/arrow"
	rberrint "github.com/databricks/databricks-recordbatch-go/internal/errors"
	"github.com/pkg/errors"
)

type TypeKind int

const (
	NullKind TypeKind = iota
	BooleanKind
	Int8Kind
	Int16Kind
	Int32Kind
	Int64Kind
	UInt8Kind
	UInt16Kind
	UInt32Kind
	UInt64Kind
	Float32Kind
	Float64Kind
	StringKind
	BinaryKind
	DateKind     // days since epoch
	DateTimeKind // milliseconds since epoch
	TimestampKind
	ListKind
)

var kindNames = map[TypeKind]string{
	NullKind:      "Null",
	BooleanKind:   "Boolean",
	Int8Kind:      "Int8",
	Int16Kind:     "Int16",
	Int32Kind:     "Int32",
	Int64Kind:     "Int64",
	UInt8Kind:     "UInt8",
	UInt16Kind:    "UInt16",
	UInt32Kind:    "UInt32",
	UInt64Kind:    "UInt64",
	Float32Kind:   "Float32",
	Float64Kind:   "Float64",
	StringKind:    "String",
	BinaryKind:    "Binary",
	DateKind:      "Date",
	DateTimeKind:  "DateTime",
	TimestampKind: "Timestamp",
	ListKind:      "List",
}

func (k TypeKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// DataType is the concrete type of a column.
// Timestamps carry a unit and time zone, lists carry their item type.
type DataType struct {
	kind     TypeKind
	unit     arrow.TimeUnit
	timeZone string
	item     *DataType
}

var (
	NullType     = DataType{kind: NullKind}
	BooleanType  = DataType{kind: BooleanKind}
	Int8Type     = DataType{kind: Int8Kind}
	Int16Type    = DataType{kind: Int16Kind}
	Int32Type    = DataType{kind: Int32Kind}
	Int64Type    = DataType{kind: Int64Kind}
	UInt8Type    = DataType{kind: UInt8Kind}
	UInt16Type   = DataType{kind: UInt16Kind}
	UInt32Type   = DataType{kind: UInt32Kind}
	UInt64Type   = DataType{kind: UInt64Kind}
	Float32Type  = DataType{kind: Float32Kind}
	Float64Type  = DataType{kind: Float64Kind}
	StringType   = DataType{kind: StringKind}
	BinaryType   = DataType{kind: BinaryKind}
	DateType     = DataType{kind: DateKind}
	DateTimeType = DataType{kind: DateTimeKind}
)

func TimestampType(unit arrow.TimeUnit, timeZone string) DataType {
	return DataType{kind: TimestampKind, unit: unit, timeZone: timeZone}
}

func ListType(item DataType) DataType {
	return DataType{kind: ListKind, item: &item}
}

func (dt DataType) Kind() TypeKind {
	return dt.kind
}

func (dt DataType) IsTimestamp() bool {
	return dt.kind == TimestampKind
}

// Unit of a timestamp type, zero for every other type.
func (dt DataType) Unit() arrow.TimeUnit {
	return dt.unit
}

func (dt DataType) TimeZone() string {
	return dt.timeZone
}

// Item type of a list, false for every other type.
func (dt DataType) Item() (DataType, bool) {
	if dt.kind != ListKind || dt.item == nil {
		return DataType{}, false
	}
	return *dt.item, true
}

func (dt DataType) Equal(other DataType) bool {
	if dt.kind != other.kind {
		return false
	}
	switch dt.kind {
	case TimestampKind:
		return dt.unit == other.unit && dt.timeZone == other.timeZone
	case ListKind:
		a, _ := dt.Item()
		b, _ := other.Item()
		return a.Equal(b)
	default:
		return true
	}
}

func (dt DataType) String() string {
	switch dt.kind {
	case TimestampKind:
		if dt.timeZone != "" {
			return fmt.Sprintf("Timestamp(%s, %s)", dt.unit, dt.timeZone)
		}
		return fmt.Sprintf("Timestamp(%s)", dt.unit)
	case ListKind:
		item, _ := dt.Item()
		return fmt.Sprintf("List(%s)", item)
	default:
		return dt.kind.String()
	}
}

// ArrowType returns the arrow representation of dt.
func (dt DataType) ArrowType() arrow.DataType {
	switch dt.kind {
	case BooleanKind:
		return arrow.FixedWidthTypes.Boolean
	case Int8Kind:
		return arrow.PrimitiveTypes.Int8
	case Int16Kind:
		return arrow.PrimitiveTypes.Int16
	case Int32Kind:
		return arrow.PrimitiveTypes.Int32
	case Int64Kind:
		return arrow.PrimitiveTypes.Int64
	case UInt8Kind:
		return arrow.PrimitiveTypes.Uint8
	case UInt16Kind:
		return arrow.PrimitiveTypes.Uint16
	case UInt32Kind:
		return arrow.PrimitiveTypes.Uint32
	case UInt64Kind:
		return arrow.PrimitiveTypes.Uint64
	case Float32Kind:
		return arrow.PrimitiveTypes.Float32
	case Float64Kind:
		return arrow.PrimitiveTypes.Float64
	case StringKind:
		return arrow.BinaryTypes.String
	case BinaryKind:
		return arrow.BinaryTypes.Binary
	case DateKind:
		return arrow.FixedWidthTypes.Date32
	case DateTimeKind:
		return arrow.FixedWidthTypes.Date64
	case TimestampKind:
		return &arrow.TimestampType{Unit: dt.unit, TimeZone: dt.timeZone}
	case ListKind:
		item, _ := dt.Item()
		return arrow.ListOf(item.ArrowType())
	default:
		return arrow.Null
	}
}

// DataTypeFromArrow converts an arrow type. Types without an internal
// representation (structs, maps, unions, dictionaries, decimals...) are rejected.
func DataTypeFromArrow(t arrow.DataType) (DataType, error) {
	if t == nil {
		return DataType{}, errors.New(rberrint.ErrUnsupportedArrowType + ": nil")
	}

	switch t.ID() {
	case arrow.NULL:
		return NullType, nil
	case arrow.BOOL:
		return BooleanType, nil
	case arrow.INT8:
		return Int8Type, nil
	case arrow.INT16:
		return Int16Type, nil
	case arrow.INT32:
		return Int32Type, nil
	case arrow.INT64:
		return Int64Type, nil
	case arrow.UINT8:
		return UInt8Type, nil
	case arrow.UINT16:
		return UInt16Type, nil
	case arrow.UINT32:
		return UInt32Type, nil
	case arrow.UINT64:
		return UInt64Type, nil
	case arrow.FLOAT32:
		return Float32Type, nil
	case arrow.FLOAT64:
		return Float64Type, nil
	case arrow.STRING:
		return StringType, nil
	case arrow.BINARY:
		return BinaryType, nil
	case arrow.DATE32:
		return DateType, nil
	case arrow.DATE64:
		return DateTimeType, nil
	case arrow.TIMESTAMP:
		ts := t.(*arrow.TimestampType)
		return TimestampType(ts.Unit, ts.TimeZone), nil
	case arrow.LIST:
		item, err := DataTypeFromArrow(t.(*arrow.ListType).Elem())
		if err != nil {
			return DataType{}, rberrint.WrapErrf(err, "list item")
		}
		return ListType(item), nil
	default:
		return DataType{}, errors.Errorf("%s: %s", rberrint.ErrUnsupportedArrowType, t)
	}
}
