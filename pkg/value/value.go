// Package value implements the storage value algebra and the codec between
// dynamic host values (Go `any`) and that algebra.
//
// The algebra is closed: Nil, Bool, Int, Float, String, Blob, List, Map, GeoJSON
// and HLL. Encode is partial and reports values with no wire representation;
// Decode is total and maps every variant to exactly one host representation:
//
//	Nil     -> nil
//	Bool    -> bool
//	Int     -> int64
//	Float   -> float64
//	String  -> string
//	Blob    -> []byte
//	List    -> []any
//	Map     -> map[string]any (all keys String) or map[any]any
//	GeoJSON -> GeoJSON
//	HLL     -> HLL
//
// String and Blob stay distinct in both directions even though both travel as
// bytes on the wire.
package value

import "strconv"

// Type identifies a variant of the value algebra.
type Type uint8

const (
	TypeNil Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeBlob
	TypeList
	TypeMap
	TypeGeoJSON
	TypeHLL
)

var typeNames = [...]string{"nil", "bool", "int", "float", "string", "blob", "list", "map", "geojson", "hll"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Value is a wire value. The set of implementations is closed.
type Value interface {
	Type() Type
	sealed()
}

type (
	// Nil is the absent value. Writing Nil to a bin removes the bin.
	Nil struct{}
	// Bool is a boolean.
	Bool bool
	// Int is a signed 64-bit integer.
	Int int64
	// Float is a 64-bit IEEE float.
	Float float64
	// String is UTF-8 text.
	String string
	// Blob is raw bytes.
	Blob []byte
	// List is an ordered sequence.
	List []Value
	// Map is an associative container. Entry order is the wire order; the
	// ordering mode of a stored map is operation metadata, not part of the value.
	Map []MapEntry
	// GeoJSON is a GeoJSON document used by geospatial indexes.
	GeoJSON string
	// HLL is a HyperLogLog sketch.
	HLL []byte
)

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// BlobKey is the host representation of a Blob used as a map key, since byte
// slices cannot be Go map keys.
type BlobKey string

func (Nil) Type() Type     { return TypeNil }
func (Bool) Type() Type    { return TypeBool }
func (Int) Type() Type     { return TypeInt }
func (Float) Type() Type   { return TypeFloat }
func (String) Type() Type  { return TypeString }
func (Blob) Type() Type    { return TypeBlob }
func (List) Type() Type    { return TypeList }
func (Map) Type() Type     { return TypeMap }
func (GeoJSON) Type() Type { return TypeGeoJSON }
func (HLL) Type() Type     { return TypeHLL }

func (Nil) sealed()     {}
func (Bool) sealed()    {}
func (Int) sealed()     {}
func (Float) sealed()   {}
func (String) sealed()  {}
func (Blob) sealed()    {}
func (List) sealed()    {}
func (Map) sealed()     {}
func (GeoJSON) sealed() {}
func (HLL) sealed()     {}

// Get returns the value stored under key and whether it was present.
func (m Map) Get(key Value) (Value, bool) {
	for _, e := range m {
		if Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// IsNil reports whether v is nil or the Nil variant.
func IsNil(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Nil)
	return ok
}
