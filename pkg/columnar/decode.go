package columnar

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow-go/v18/arrow/float16"
	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/logger"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// NoTTL is the row TTL of a record that never expires.
const NoTTL uint32 = 0xFFFFFFFF

// RowMeta is the record metadata of one row. Failed rows have zero meta.
type RowMeta struct {
	Gen uint32
	TTL uint32
}

// ReadResult is a decoded batch read. Row i of Buffer starts at i*Stride and
// belongs to entry i of the batch, whether or not that entry succeeded.
type ReadResult struct {
	Desc        *Descriptor
	Buffer      []byte
	ResultCodes []int32
	Meta        []RowMeta

	keys map[any]int
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	strict bool
	logger *zap.Logger
}

// WithStrict logs a warning for every descriptor field missing from a record
// and every record bin missing from the descriptor.
func WithStrict(strict bool) DecodeOption {
	return func(c *decodeConfig) { c.strict = strict }
}

// WithLogger sets the logger used by strict mode.
func WithLogger(l *zap.Logger) DecodeOption {
	return func(c *decodeConfig) { c.logger = l }
}

// Decode writes the bins of a batch read into a row buffer laid out by desc.
// Bins missing from the descriptor are ignored and missing or nil bins leave
// the field zeroed. A bin whose value cannot be stored in its field fails the
// whole decode with kverrors.BinTypeError.
func Decode(entries []record.BatchEntry, desc *Descriptor, opts ...DecodeOption) (*ReadResult, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	cfg := decodeConfig{logger: logger.Get()}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(entries)
	res := &ReadResult{
		Desc:        desc,
		Buffer:      make([]byte, n*desc.Stride),
		ResultCodes: make([]int32, n),
		Meta:        make([]RowMeta, n),
		keys:        make(map[any]int, n),
	}
	fields := desc.byName()

	for i, e := range entries {
		res.ResultCodes[i] = int32(e.ResultCode)
		if e.Key.HasUserKey() {
			if k, ok := indexKey(e.Key.UserKey); ok {
				res.keys[k] = i
			}
		}
		if !e.OK() || e.Record == nil {
			continue
		}
		if m := e.Record.Meta; m != nil {
			res.Meta[i] = RowMeta{Gen: m.Generation, TTL: rowTTL(m.TTL)}
		}

		row := res.Buffer[i*desc.Stride : (i+1)*desc.Stride]
		for name, v := range e.Record.Bins {
			f, ok := fields[name]
			if !ok || f.Reserved() {
				continue
			}
			if err := put(row, f, v); err != nil {
				return nil, err.WithDetail("row", i)
			}
		}
		if cfg.strict {
			checkBins(cfg.logger, i, desc, e.Record.Bins, fields)
		}
	}
	return res, nil
}

func rowTTL(ttl int32) uint32 {
	if ttl < 0 {
		return NoTTL
	}
	return uint32(ttl)
}

func checkBins(l *zap.Logger, row int, desc *Descriptor, bins value.BinMap, fields map[string]Field) {
	for _, f := range desc.Fields {
		if f.Reserved() {
			continue
		}
		if _, ok := bins[f.Name]; !ok {
			l.Warn("bin missing from record", zap.Int("row", row), zap.String("bin", f.Name))
		}
	}
	for name := range bins {
		if _, ok := fields[name]; !ok {
			l.Warn("bin not in descriptor", zap.Int("row", row), zap.String("bin", name))
		}
	}
}

// put stores v into its field of row. Integers wrap to the field width.
func put(row []byte, f Field, v value.Value) *kverrors.Error {
	dst := row[f.Offset : f.Offset+f.Width]
	switch f.Kind {
	case SignedInt, UnsignedInt:
		n, ok := asInt(v)
		if !ok {
			break
		}
		putUint(dst, uint64(n))
		return nil
	case Float:
		x, ok := asFloat(v)
		if !ok {
			break
		}
		putFloat(dst, x)
		return nil
	case FixedBytes, RawBytes:
		b, ok := asBytes(v)
		if !ok {
			break
		}
		copy(dst, b)
		return nil
	}
	if value.IsNil(v) {
		return nil
	}
	return kverrors.Newf(kverrors.BinTypeError, "bin %q holds %s, which cannot be stored in a %s field",
		f.Name, v.Type(), f.Kind).WithDetail("bin", f.Name)
}

func asInt(v value.Value) (int64, bool) {
	switch x := v.(type) {
	case value.Int:
		return int64(x), true
	case value.Float:
		return int64(x), true
	case value.Bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func asFloat(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Float:
		return float64(x), true
	case value.Int:
		return float64(x), true
	case value.Bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func asBytes(v value.Value) ([]byte, bool) {
	switch x := v.(type) {
	case value.String:
		return []byte(x), true
	case value.Blob:
		return x, true
	case value.GeoJSON:
		return []byte(x), true
	case value.HLL:
		return x, true
	}
	return nil, false
}

func putUint(dst []byte, u uint64) {
	switch len(dst) {
	case 1:
		dst[0] = byte(u)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(u))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(u))
	case 8:
		binary.LittleEndian.PutUint64(dst, u)
	}
}

func getUint(src []byte) uint64 {
	switch len(src) {
	case 1:
		return uint64(src[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(src))
	case 4:
		return uint64(binary.LittleEndian.Uint32(src))
	default:
		return binary.LittleEndian.Uint64(src)
	}
}

func getInt(src []byte) int64 {
	switch len(src) {
	case 1:
		return int64(int8(src[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(src)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(src)))
	default:
		return int64(binary.LittleEndian.Uint64(src))
	}
}

func putFloat(dst []byte, x float64) {
	switch len(dst) {
	case 2:
		float16.New(float32(x)).PutLEBytes(dst)
	case 4:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(x)))
	case 8:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(x))
	}
}

func getFloat(src []byte) float64 {
	switch len(src) {
	case 2:
		return float64(float16.FromLEBytes(src).Float32())
	case 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(src)))
	default:
		return math.Float64frombits(binary.LittleEndian.Uint64(src))
	}
}

// indexKey normalises a user key for the key index.
func indexKey(v value.Value) (any, bool) {
	switch x := v.(type) {
	case value.Int:
		return int64(x), true
	case value.String:
		return string(x), true
	case value.Blob:
		return value.BlobKey(x), true
	}
	return nil, false
}

func hostKey(k any) (any, bool) {
	switch x := k.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		return int64(x), x <= math.MaxInt64
	case uint64:
		return int64(x), x <= math.MaxInt64
	case string:
		return x, true
	case []byte:
		return value.BlobKey(x), true
	case value.Value:
		return indexKey(x)
	}
	return nil, false
}

// Len returns the number of rows.
func (r *ReadResult) Len() int { return len(r.ResultCodes) }

// Row returns row i. It panics if i is out of range.
func (r *ReadResult) Row(i int) Row {
	if i < 0 || i >= r.Len() {
		panic("columnar: row index out of range")
	}
	return Row{res: r, index: i}
}

// Lookup returns the row of the record whose user key is key. Keys are
// integers, strings or byte slices.
func (r *ReadResult) Lookup(key any) (Row, bool) {
	k, ok := hostKey(key)
	if !ok {
		return Row{}, false
	}
	i, ok := r.keys[k]
	if !ok {
		return Row{}, false
	}
	return Row{res: r, index: i}, true
}

// Row is a view of one row of a ReadResult.
type Row struct {
	res   *ReadResult
	index int
}

func (w Row) Index() int { return w.index }

func (w Row) ResultCode() kverrors.ResultCode {
	return kverrors.ResultCode(w.res.ResultCodes[w.index])
}

func (w Row) Meta() RowMeta { return w.res.Meta[w.index] }

func (w Row) field(name string, kinds ...Kind) ([]byte, Field, error) {
	f, ok := w.res.Desc.Field(name)
	if !ok {
		return nil, f, kverrors.Newf(kverrors.InvalidArgError, "no field %q", name)
	}
	for _, k := range kinds {
		if f.Kind == k {
			start := w.index*w.res.Desc.Stride + f.Offset
			return w.res.Buffer[start : start+f.Width], f, nil
		}
	}
	return nil, f, kverrors.Newf(kverrors.BinTypeError, "field %q is %s", name, f.Kind)
}

// Int reads a signed or unsigned integer field.
func (w Row) Int(name string) (int64, error) {
	b, f, err := w.field(name, SignedInt, UnsignedInt)
	if err != nil {
		return 0, err
	}
	if f.Kind == UnsignedInt {
		return int64(getUint(b)), nil
	}
	return getInt(b), nil
}

// Uint reads an unsigned integer field.
func (w Row) Uint(name string) (uint64, error) {
	b, _, err := w.field(name, UnsignedInt)
	if err != nil {
		return 0, err
	}
	return getUint(b), nil
}

// Float reads a float field.
func (w Row) Float(name string) (float64, error) {
	b, _, err := w.field(name, Float)
	if err != nil {
		return 0, err
	}
	return getFloat(b), nil
}

// Bytes returns a copy of a bytes field, padding included.
func (w Row) Bytes(name string) ([]byte, error) {
	b, _, err := w.field(name, FixedBytes, RawBytes)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// Value reads any field as int64, uint64, float64 or []byte.
func (w Row) Value(name string) (any, error) {
	f, ok := w.res.Desc.Field(name)
	if !ok {
		return nil, kverrors.Newf(kverrors.InvalidArgError, "no field %q", name)
	}
	switch f.Kind {
	case SignedInt:
		return w.Int(name)
	case UnsignedInt:
		return w.Uint(name)
	case Float:
		return w.Float(name)
	default:
		return w.Bytes(name)
	}
}
