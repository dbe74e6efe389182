package columnar

import (
	"bytes"
	"math"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// DefaultKeyField is the key field used when none is named.
const DefaultKeyField = "_key"

// Encode turns every row of buf into a batch write. keyField names the field
// holding the user key; it and every reserved field are left out of the bins.
// Rows with a non-empty "_namespace" or "_set" field are written there instead
// of ns and set.
func Encode(buf []byte, desc *Descriptor, ns, set, keyField string) ([]record.BatchWrite, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if len(buf)%desc.Stride != 0 {
		return nil, kverrors.Newf(kverrors.InvalidArgError,
			"buffer of %d bytes is not a whole number of %d byte rows", len(buf), desc.Stride)
	}
	if keyField == "" {
		keyField = DefaultKeyField
	}
	keyF, ok := desc.Field(keyField)
	if !ok {
		return nil, kverrors.Newf(kverrors.InvalidArgError, "key field %q is not in the descriptor", keyField)
	}
	if keyF.Kind == Float {
		return nil, kverrors.Newf(kverrors.InvalidArgError, "key field %q must be an integer or bytes, not float", keyField)
	}
	nsF, hasNS := desc.Field(FieldNamespace)
	setF, hasSet := desc.Field(FieldSet)
	for _, f := range []struct {
		present bool
		field   Field
	}{{hasNS, nsF}, {hasSet, setF}} {
		if f.present && f.field.Kind != FixedBytes && f.field.Kind != RawBytes {
			return nil, kverrors.Newf(kverrors.InvalidArgError, "field %q must be bytes", f.field.Name)
		}
	}

	var bins []Field
	for _, f := range desc.Fields {
		if f.Name != keyField && !f.Reserved() {
			bins = append(bins, f)
		}
	}

	rows := len(buf) / desc.Stride
	out := make([]record.BatchWrite, rows)
	for i := 0; i < rows; i++ {
		row := buf[i*desc.Stride : (i+1)*desc.Stride]
		rowNS, rowSet := ns, set
		if hasNS {
			if s := trimNul(slice(row, nsF)); s != "" {
				rowNS = s
			}
		}
		if hasSet {
			if s := trimNul(slice(row, setF)); s != "" {
				rowSet = s
			}
		}

		uk, err := userKey(row, keyF)
		if err != nil {
			return nil, err.WithDetail("row", i)
		}
		key, kerr := record.NewKey(rowNS, rowSet, uk)
		if kerr != nil {
			return nil, kerr
		}

		bm := make(value.BinMap, len(bins))
		for _, f := range bins {
			bm[f.Name] = get(row, f)
		}
		out[i] = record.BatchWrite{Key: key, Bins: bm}
	}
	return out, nil
}

func slice(row []byte, f Field) []byte {
	return row[f.Offset : f.Offset+f.Width]
}

func trimNul(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}

func userKey(row []byte, f Field) (any, *kverrors.Error) {
	b := slice(row, f)
	switch f.Kind {
	case SignedInt:
		return getInt(b), nil
	case UnsignedInt:
		u := getUint(b)
		if u > math.MaxInt64 {
			return nil, kverrors.Newf(kverrors.OutOfRange, "key %d does not fit a signed 64-bit integer", u)
		}
		return int64(u), nil
	case FixedBytes:
		return trimNul(b), nil
	default:
		return append([]byte(nil), b...), nil
	}
}

// get reads a field as a bin value. Bytes fields become blobs, padding kept.
func get(row []byte, f Field) value.Value {
	b := slice(row, f)
	switch f.Kind {
	case SignedInt:
		return value.Int(getInt(b))
	case UnsignedInt:
		return value.Int(int64(getUint(b)))
	case Float:
		return value.Float(getFloat(b))
	default:
		return value.Blob(append([]byte(nil), b...))
	}
}
