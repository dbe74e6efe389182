package local

import (
	"fmt"
	"math"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// taggedValue is the JSON form of a value.Value. Floats are kept as their bit
// pattern so NaN and infinities survive.
type taggedValue struct {
	Type  string        `json:"t"`
	Bool  bool          `json:"b,omitempty"`
	Int   int64         `json:"i,omitempty"`
	Float uint64        `json:"f,omitempty"`
	Str   string        `json:"s,omitempty"`
	Bytes []byte        `json:"x,omitempty"`
	List  []taggedValue `json:"l,omitempty"`
	Map   []taggedEntry `json:"m,omitempty"`
}

type taggedEntry struct {
	Key   taggedValue `json:"k"`
	Value taggedValue `json:"v"`
}

type storedDoc struct {
	Set        string                 `json:"set"`
	UserKey    *taggedValue           `json:"key,omitempty"`
	Bins       map[string]taggedValue `json:"bins"`
	Generation uint32                 `json:"gen"`
	ExpiresAt  int64                  `json:"exp,omitempty"`
	TTL        int32                  `json:"ttl,omitempty"`
	LastUpdate int64                  `json:"lut"`
	Orders     map[string]int         `json:"orders,omitempty"`
}

func tag(v value.Value) taggedValue {
	if v == nil {
		v = value.Nil{}
	}
	t := taggedValue{Type: v.Type().String()}
	switch x := v.(type) {
	case value.Bool:
		t.Bool = bool(x)
	case value.Int:
		t.Int = int64(x)
	case value.Float:
		t.Float = math.Float64bits(float64(x))
	case value.String:
		t.Str = string(x)
	case value.GeoJSON:
		t.Str = string(x)
	case value.Blob:
		t.Bytes = x
	case value.HLL:
		t.Bytes = x
	case value.List:
		t.List = make([]taggedValue, len(x))
		for i, item := range x {
			t.List[i] = tag(item)
		}
	case value.Map:
		t.Map = make([]taggedEntry, len(x))
		for i, e := range x {
			t.Map[i] = taggedEntry{Key: tag(e.Key), Value: tag(e.Value)}
		}
	}
	return t
}

func untag(t taggedValue) (value.Value, error) {
	switch t.Type {
	case "nil":
		return value.Nil{}, nil
	case "bool":
		return value.Bool(t.Bool), nil
	case "int":
		return value.Int(t.Int), nil
	case "float":
		return value.Float(math.Float64frombits(t.Float)), nil
	case "string":
		return value.String(t.Str), nil
	case "geojson":
		return value.GeoJSON(t.Str), nil
	case "blob":
		return value.Blob(append([]byte{}, t.Bytes...)), nil
	case "hll":
		return value.HLL(append([]byte{}, t.Bytes...)), nil
	case "list":
		l := make(value.List, len(t.List))
		for i, item := range t.List {
			v, err := untag(item)
			if err != nil {
				return nil, err
			}
			l[i] = v
		}
		return l, nil
	case "map":
		m := make(value.Map, len(t.Map))
		for i, e := range t.Map {
			k, err := untag(e.Key)
			if err != nil {
				return nil, err
			}
			v, err := untag(e.Value)
			if err != nil {
				return nil, err
			}
			m[i] = value.MapEntry{Key: k, Value: v}
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown value tag %q", t.Type)
	}
}

func marshalRecord(rec *StoredRecord) ([]byte, error) {
	doc := storedDoc{
		Set:        rec.Set,
		Bins:       make(map[string]taggedValue, len(rec.Bins)),
		Generation: rec.Generation,
		TTL:        rec.TTL,
		LastUpdate: rec.LastUpdate.UnixNano(),
		Orders:     rec.Orders,
	}
	if rec.UserKey != nil {
		uk := tag(rec.UserKey)
		doc.UserKey = &uk
	}
	if !rec.ExpiresAt.IsZero() {
		doc.ExpiresAt = rec.ExpiresAt.UnixNano()
	}
	for name, v := range rec.Bins {
		doc.Bins[name] = tag(v)
	}
	return json.Marshal(doc)
}

func unmarshalRecord(digest []byte, data []byte) (*StoredRecord, error) {
	var doc storedDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	rec := &StoredRecord{
		Set:        doc.Set,
		Bins:       make(value.BinMap, len(doc.Bins)),
		Generation: doc.Generation,
		TTL:        doc.TTL,
		LastUpdate: time.Unix(0, doc.LastUpdate),
		Orders:     doc.Orders,
	}
	if len(digest) != record.DigestSize {
		return nil, fmt.Errorf("decode record: digest is %d bytes", len(digest))
	}
	copy(rec.Digest[:], digest)
	if doc.UserKey != nil {
		uk, err := untag(*doc.UserKey)
		if err != nil {
			return nil, err
		}
		rec.UserKey = uk
	}
	if doc.ExpiresAt != 0 {
		rec.ExpiresAt = time.Unix(0, doc.ExpiresAt)
	}
	for name, t := range doc.Bins {
		v, err := untag(t)
		if err != nil {
			return nil, fmt.Errorf("decode bin %q: %w", name, err)
		}
		rec.Bins[name] = v
	}
	return rec, nil
}
