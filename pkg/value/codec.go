package value

import (
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

// Encode converts a host value into the wire algebra.
//
// Supported host values: nil, bool, every integer kind, float32/float64,
// string, []byte, *big.Int, GeoJSON, HLL, BlobKey, values that already
// implement Value, and any slice, array or map built from those (named types
// included). Integers outside the signed 64-bit range fail with
// kverrors.OutOfRange; anything else fails with kverrors.UnsupportedType.
//
// Nested containers are encoded recursively. Cyclic structures are not
// detected.
func Encode(v any) (Value, error) {
	return encode(v, "value")
}

// EncodeAt is Encode with the path used in error details, for callers that
// encode values nested in a larger host structure.
func EncodeAt(v any, path string) (Value, error) {
	return encode(v, path)
}

func encode(v any, path string) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Nil{}, nil
	case Value:
		return encodeValue(x, path)
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint:
		return encodeUint(uint64(x), path)
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case uint64:
		return encodeUint(x, path)
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []byte:
		return Blob(x), nil
	case BlobKey:
		return Blob(x), nil
	case *big.Int:
		if x == nil {
			return Nil{}, nil
		}
		if !x.IsInt64() {
			return nil, kverrors.Newf(kverrors.OutOfRange, "%s: integer %s does not fit in 64 bits", path, x.String()).
				WithDetail("path", path)
		}
		return Int(x.Int64()), nil
	case []any:
		return encodeList(x, path)
	case map[string]any:
		entries := make(Map, 0, len(x))
		for k, item := range x {
			ev, err := encode(item, path+"."+k)
			if err != nil {
				return nil, err
			}
			entries = append(entries, MapEntry{Key: String(k), Value: ev})
		}
		sortEntries(entries)
		return entries, nil
	case map[any]any:
		entries := make(Map, 0, len(x))
		for k, item := range x {
			e, err := encodeEntry(k, item, path)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		return finishMap(entries, path)
	}
	return encodeReflect(reflect.ValueOf(v), path)
}

// encodeValue validates values that are already in wire form.
func encodeValue(v Value, path string) (Value, error) {
	if g, ok := v.(GeoJSON); ok && !json.Valid([]byte(g)) {
		return nil, kverrors.FromCode(kverrors.CodeInvalidGeoJSON, path+": invalid geojson").
			WithDetail("path", path)
	}
	return v, nil
}

func encodeUint(u uint64, path string) (Value, error) {
	if u > math.MaxInt64 {
		return nil, kverrors.Newf(kverrors.OutOfRange, "%s: integer %d does not fit in signed 64 bits", path, u).
			WithDetail("path", path)
	}
	return Int(int64(u)), nil
}

func encodeList(items []any, path string) (Value, error) {
	out := make(List, len(items))
	for i, item := range items {
		ev, err := encode(item, path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

func encodeEntry(k, item any, path string) (MapEntry, error) {
	ek, err := encode(k, path+".<key>")
	if err != nil {
		return MapEntry{}, err
	}
	switch ek.Type() {
	case TypeInt, TypeFloat, TypeString, TypeBlob, TypeBool:
	default:
		return MapEntry{}, kverrors.Newf(kverrors.UnsupportedType, "%s: %s is not a valid map key", path, ek.Type()).
			WithDetail("path", path)
	}
	ev, err := encode(item, path+"."+keyLabel(ek))
	if err != nil {
		return MapEntry{}, err
	}
	return MapEntry{Key: ek, Value: ev}, nil
}

func finishMap(entries Map, path string) (Value, error) {
	sortEntries(entries)
	for i := 1; i < len(entries); i++ {
		if Compare(entries[i-1].Key, entries[i].Key) == 0 {
			return nil, kverrors.Newf(kverrors.InvalidArgError, "%s: duplicate map key %s", path, keyLabel(entries[i].Key)).
				WithDetail("path", path)
		}
	}
	return entries, nil
}

func encodeReflect(rv reflect.Value, path string) (Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeUint(rv.Uint(), path)
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Nil{}, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Blob(rv.Bytes()), nil
		}
		return encodeSeq(rv, path)
	case reflect.Array:
		return encodeSeq(rv, path)
	case reflect.Map:
		if rv.IsNil() {
			return Nil{}, nil
		}
		entries := make(Map, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			e, err := encodeEntry(iter.Key().Interface(), iter.Value().Interface(), path)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		return finishMap(entries, path)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Nil{}, nil
		}
		return encode(rv.Elem().Interface(), path)
	case reflect.Invalid:
		return Nil{}, nil
	}
	return nil, kverrors.Newf(kverrors.UnsupportedType, "%s: unsupported type %s", path, rv.Type()).
		WithDetail("path", path).
		WithDetail("type", rv.Type().String())
}

func encodeSeq(rv reflect.Value, path string) (Value, error) {
	out := make(List, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev, err := encode(rv.Index(i).Interface(), path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

func sortEntries(entries Map) {
	sort.Slice(entries, func(i, j int) bool {
		return Compare(entries[i].Key, entries[j].Key) < 0
	})
}

func keyLabel(k Value) string {
	switch x := k.(type) {
	case String:
		return string(x)
	case Int:
		return strconv.FormatInt(int64(x), 10)
	default:
		return "<" + k.Type().String() + ">"
	}
}

// Decode converts a wire value into its host representation. It never fails.
func Decode(v Value) any {
	switch x := v.(type) {
	case nil, Nil:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case String:
		return string(x)
	case Blob:
		return []byte(x)
	case List:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Decode(item)
		}
		return out
	case Map:
		return decodeMap(x)
	case GeoJSON:
		return x
	case HLL:
		return x
	}
	return nil
}

func decodeMap(m Map) any {
	allStrings := true
	for _, e := range m {
		if _, ok := e.Key.(String); !ok {
			allStrings = false
			break
		}
	}
	if allStrings {
		out := make(map[string]any, len(m))
		for _, e := range m {
			out[string(e.Key.(String))] = Decode(e.Value)
		}
		return out
	}
	out := make(map[any]any, len(m))
	for _, e := range m {
		out[decodeKey(e.Key)] = Decode(e.Value)
	}
	return out
}

// decodeKey returns a hashable host key. Variants that decode to unhashable
// host values are represented by a BlobKey (Blob, HLL) or their rendered form.
func decodeKey(k Value) any {
	switch x := k.(type) {
	case Blob:
		return BlobKey(x)
	case HLL:
		return BlobKey(x)
	case List, Map:
		return keyLabel(k)
	}
	return Decode(k)
}
