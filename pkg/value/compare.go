package value

import (
	"bytes"
	"cmp"
	"strings"
)

// typeRank follows the server's cross-type ordering for ordered collections.
var typeRank = map[Type]int{
	TypeNil:     0,
	TypeBool:    1,
	TypeInt:     2,
	TypeString:  3,
	TypeList:    4,
	TypeMap:     5,
	TypeBlob:    6,
	TypeFloat:   7,
	TypeGeoJSON: 8,
	TypeHLL:     9,
}

// Compare orders two values: by type rank first, then within the type.
// A nil Value compares as Nil.
func Compare(a, b Value) int {
	if a == nil {
		a = Nil{}
	}
	if b == nil {
		b = Nil{}
	}
	if ra, rb := typeRank[a.Type()], typeRank[b.Type()]; ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch x := a.(type) {
	case Nil:
		return 0
	case Bool:
		y := b.(Bool)
		switch {
		case x == y:
			return 0
		case !bool(x):
			return -1
		default:
			return 1
		}
	case Int:
		return cmp.Compare(x, b.(Int))
	case Float:
		return cmp.Compare(x, b.(Float))
	case String:
		return strings.Compare(string(x), string(b.(String)))
	case GeoJSON:
		return strings.Compare(string(x), string(b.(GeoJSON)))
	case Blob:
		return bytes.Compare(x, b.(Blob))
	case HLL:
		return bytes.Compare(x, b.(HLL))
	case List:
		y := b.(List)
		for i := 0; i < len(x) && i < len(y); i++ {
			if c := Compare(x[i], y[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(x), len(y))
	case Map:
		y := b.(Map)
		if c := cmp.Compare(len(x), len(y)); c != 0 {
			return c
		}
		xs, ys := sortedCopy(x), sortedCopy(y)
		for i := range xs {
			if c := Compare(xs[i].Key, ys[i].Key); c != 0 {
				return c
			}
			if c := Compare(xs[i].Value, ys[i].Value); c != 0 {
				return c
			}
		}
		return 0
	}
	return 0
}

// Equal reports whether two values are the same variant with the same content.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func sortedCopy(m Map) Map {
	out := make(Map, len(m))
	copy(out, m)
	sortEntries(out)
	return out
}

// SortMap returns a copy of m ordered by key.
func SortMap(m Map) Map {
	return sortedCopy(m)
}
