package columnar

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

// Columns appended after the descriptor fields by ToArrow.
const (
	ColumnResultCode = "_result_code"
	ColumnGen        = "_gen"
	ColumnTTL        = "_ttl"
)

// ArrowSchema returns the schema ToArrow produces for desc. Reserved fields
// are left out.
func ArrowSchema(desc *Descriptor) (*arrow.Schema, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	var fields []arrow.Field
	for _, f := range desc.Fields {
		if f.Reserved() {
			continue
		}
		fields = append(fields, arrow.Field{Name: f.Name, Type: arrowType(f), Nullable: true})
	}
	fields = append(fields,
		arrow.Field{Name: ColumnResultCode, Type: arrow.PrimitiveTypes.Int32},
		arrow.Field{Name: ColumnGen, Type: arrow.PrimitiveTypes.Uint32},
		arrow.Field{Name: ColumnTTL, Type: arrow.PrimitiveTypes.Uint32},
	)
	return arrow.NewSchema(fields, nil), nil
}

func arrowType(f Field) arrow.DataType {
	switch f.Kind {
	case SignedInt:
		switch f.Width {
		case 1:
			return arrow.PrimitiveTypes.Int8
		case 2:
			return arrow.PrimitiveTypes.Int16
		case 4:
			return arrow.PrimitiveTypes.Int32
		}
		return arrow.PrimitiveTypes.Int64
	case UnsignedInt:
		switch f.Width {
		case 1:
			return arrow.PrimitiveTypes.Uint8
		case 2:
			return arrow.PrimitiveTypes.Uint16
		case 4:
			return arrow.PrimitiveTypes.Uint32
		}
		return arrow.PrimitiveTypes.Uint64
	case Float:
		switch f.Width {
		case 2:
			return arrow.FixedWidthTypes.Float16
		case 4:
			return arrow.PrimitiveTypes.Float32
		}
		return arrow.PrimitiveTypes.Float64
	default:
		return &arrow.FixedSizeBinaryType{ByteWidth: f.Width}
	}
}

// ToArrow copies the result into an Arrow record with one column per field
// plus the result code, generation and TTL of every row. Field values of
// failed rows are null. The caller releases the record.
func (r *ReadResult) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	schema, err := ArrowSchema(r.Desc)
	if err != nil {
		return nil, err
	}
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	var fields []Field
	for _, f := range r.Desc.Fields {
		if !f.Reserved() {
			fields = append(fields, f)
		}
	}
	b.Reserve(r.Len())

	stride := r.Desc.Stride
	for i := 0; i < r.Len(); i++ {
		row := r.Buffer[i*stride : (i+1)*stride]
		failed := r.ResultCodes[i] != int32(kverrors.CodeOK)
		for j, f := range fields {
			if failed {
				b.Field(j).AppendNull()
				continue
			}
			if err := appendField(b.Field(j), slice(row, f)); err != nil {
				return nil, err
			}
		}
		n := len(fields)
		b.Field(n).(*array.Int32Builder).Append(r.ResultCodes[i])
		b.Field(n + 1).(*array.Uint32Builder).Append(r.Meta[i].Gen)
		b.Field(n + 2).(*array.Uint32Builder).Append(r.Meta[i].TTL)
	}
	return b.NewRecord(), nil
}

func appendField(bld array.Builder, src []byte) error {
	switch b := bld.(type) {
	case *array.Int8Builder:
		b.Append(int8(getInt(src)))
	case *array.Int16Builder:
		b.Append(int16(getInt(src)))
	case *array.Int32Builder:
		b.Append(int32(getInt(src)))
	case *array.Int64Builder:
		b.Append(getInt(src))
	case *array.Uint8Builder:
		b.Append(uint8(getUint(src)))
	case *array.Uint16Builder:
		b.Append(uint16(getUint(src)))
	case *array.Uint32Builder:
		b.Append(uint32(getUint(src)))
	case *array.Uint64Builder:
		b.Append(getUint(src))
	case *array.Float16Builder:
		b.Append(float16.FromLEBytes(src))
	case *array.Float32Builder:
		b.Append(float32(getFloat(src)))
	case *array.Float64Builder:
		b.Append(getFloat(src))
	case *array.FixedSizeBinaryBuilder:
		b.Append(src)
	default:
		return kverrors.Newf(kverrors.UnsupportedColumnType, "no arrow builder for %s", bld.Type())
	}
	return nil
}

// WriteIPC writes rec to w in the Arrow IPC file format.
func WriteIPC(w io.Writer, rec arrow.Record) error {
	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()))
	if err != nil {
		return kverrors.Wrap(err, kverrors.ClientError, "failed to create arrow writer")
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return kverrors.Wrap(err, kverrors.ClientError, "failed to write arrow record")
	}
	if err := fw.Close(); err != nil {
		return kverrors.Wrap(err, kverrors.ClientError, "failed to finish arrow file")
	}
	return nil
}
