package aerospike

import (
	"math"
	"reflect"

	aero "github.com/aerospike/aerospike-client-go/v7"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// toAero converts a value into the form the client packs. Maps become
// map[interface{}]interface{}, so byte-slice map keys cannot be sent.
func toAero(v value.Value) (interface{}, error) {
	switch t := v.(type) {
	case nil, value.Nil:
		return nil, nil
	case value.Bool:
		return bool(t), nil
	case value.Int:
		return int64(t), nil
	case value.Float:
		return float64(t), nil
	case value.String:
		return string(t), nil
	case value.Blob:
		return []byte(t), nil
	case value.GeoJSON:
		return aero.NewGeoJSONValue(string(t)), nil
	case value.HLL:
		return aero.NewHLLValue([]byte(t)), nil
	case value.List:
		return toAeroList(t)
	case value.Map:
		out := make(map[interface{}]interface{}, len(t))
		for _, e := range t {
			k, err := toAero(e.Key)
			if err != nil {
				return nil, err
			}
			if k != nil && !reflect.TypeOf(k).Comparable() {
				return nil, kverrors.Newf(kverrors.UnsupportedType, "map keys of type %s are not supported by this backend", e.Key.Type())
			}
			item, err := toAero(e.Value)
			if err != nil {
				return nil, err
			}
			out[k] = item
		}
		return out, nil
	default:
		return nil, kverrors.Newf(kverrors.UnsupportedType, "unsupported value %T", v)
	}
}

func toAeroList(l []value.Value) ([]interface{}, error) {
	out := make([]interface{}, len(l))
	for i, item := range l {
		v, err := toAero(item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func toAeroBins(bins value.BinMap) (aero.BinMap, error) {
	out := make(aero.BinMap, len(bins))
	for name, v := range bins {
		a, err := toAero(v)
		if err != nil {
			return nil, kverrors.Wrap(err, kverrors.InvalidArgError, "bin "+name)
		}
		out[name] = a
	}
	return out, nil
}

// fromAero converts a value returned by the client.
func fromAero(v interface{}) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Nil{}
	case bool:
		return value.Bool(t)
	case int:
		return value.Int(t)
	case int64:
		return value.Int(t)
	case int32:
		return value.Int(t)
	case int16:
		return value.Int(t)
	case int8:
		return value.Int(t)
	case uint32:
		return value.Int(t)
	case uint16:
		return value.Int(t)
	case uint8:
		return value.Int(t)
	case uint64:
		if t > math.MaxInt64 {
			return value.Float(float64(t))
		}
		return value.Int(t)
	case float64:
		return value.Float(t)
	case float32:
		return value.Float(t)
	case string:
		return value.String(t)
	case []byte:
		return value.Blob(t)
	case aero.GeoJSONValue:
		return value.GeoJSON(string(t))
	case aero.HLLValue:
		return value.HLL([]byte(t))
	case aero.OpResults:
		return fromAeroList(t)
	case []interface{}:
		return fromAeroList(t)
	case []aero.MapPair:
		m := make(value.Map, len(t))
		for i, p := range t {
			m[i] = value.MapEntry{Key: fromAero(p.Key), Value: fromAero(p.Value)}
		}
		return m
	case map[interface{}]interface{}:
		m := make(value.Map, 0, len(t))
		for k, item := range t {
			m = append(m, value.MapEntry{Key: fromAero(k), Value: fromAero(item)})
		}
		return value.SortMap(m)
	case map[string]interface{}:
		m := make(value.Map, 0, len(t))
		for k, item := range t {
			m = append(m, value.MapEntry{Key: value.String(k), Value: fromAero(item)})
		}
		return value.SortMap(m)
	case aero.Value:
		return fromAero(t.GetObject())
	default:
		if enc, err := value.Encode(v); err == nil {
			return enc
		}
		return value.Nil{}
	}
}

func fromAeroList(items []interface{}) value.List {
	out := make(value.List, len(items))
	for i, item := range items {
		out[i] = fromAero(item)
	}
	return out
}

func fromAeroBins(bins aero.BinMap) value.BinMap {
	if bins == nil {
		return nil
	}
	out := make(value.BinMap, len(bins))
	for name, v := range bins {
		out[name] = fromAero(v)
	}
	return out
}

// toAeroKey sends the digest so the server never recomputes it.
func toAeroKey(k record.Key) (*aero.Key, error) {
	var userKey interface{}
	if k.UserKey != nil {
		var err error
		if userKey, err = toAero(k.UserKey); err != nil {
			return nil, err
		}
	}
	key, err := aero.NewKeyWithDigest(k.Namespace, k.Set, userKey, k.Digest[:])
	if err != nil {
		return nil, mapError(err, kverrors.OpGeneric)
	}
	return key, nil
}

func fromAeroKey(k *aero.Key, fallback record.Key) *record.Key {
	if k == nil {
		out := fallback
		return &out
	}
	out := record.Key{Namespace: k.Namespace(), Set: k.SetName()}
	copy(out.Digest[:], k.Digest())
	if uk := k.Value(); uk != nil {
		if v := fromAero(uk.GetObject()); !value.IsNil(v) {
			out.UserKey = v
		}
	}
	if out.Namespace == "" {
		out.Namespace = fallback.Namespace
	}
	return &out
}

// metaOf converts the record header. The client reports a record that never
// expires with the maximum uint32 expiration.
func metaOf(r *aero.Record) *record.Meta {
	ttl := record.TTLNeverExpires
	if r.Expiration != math.MaxUint32 && r.Expiration <= math.MaxInt32 {
		ttl = int32(r.Expiration)
	}
	return &record.Meta{Generation: r.Generation, TTL: ttl}
}

func fromAeroRecord(r *aero.Record, key record.Key) *record.Record {
	if r == nil {
		return nil
	}
	return &record.Record{
		Key:  fromAeroKey(r.Key, key),
		Meta: metaOf(r),
		Bins: fromAeroBins(r.Bins),
	}
}
