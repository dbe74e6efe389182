// Package predicate builds the secondary-index filters of a query and the
// index descriptions they rely on.
package predicate

import (
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// IndexType is the data type of a secondary index.
type IndexType int

const (
	IndexNumeric     IndexType = 0
	IndexString      IndexType = 1
	IndexBlob        IndexType = 2
	IndexGeo2DSphere IndexType = 3
)

func (t IndexType) String() string {
	switch t {
	case IndexNumeric:
		return "numeric"
	case IndexString:
		return "string"
	case IndexBlob:
		return "blob"
	case IndexGeo2DSphere:
		return "geo2dsphere"
	default:
		return "unknown"
	}
}

// Collection selects which part of a bin an index covers.
type Collection int

const (
	CollectionDefault   Collection = 0
	CollectionList      Collection = 1
	CollectionMapKeys   Collection = 2
	CollectionMapValues Collection = 3
)

// Index describes a secondary index.
type Index struct {
	Namespace  string
	Set        string
	Bin        string
	Name       string
	Type       IndexType
	Collection Collection
}

// Validate checks the index description.
func (i Index) Validate() error {
	switch {
	case i.Namespace == "":
		return kverrors.New(kverrors.InvalidArgError, "index namespace must not be empty")
	case i.Bin == "":
		return kverrors.New(kverrors.InvalidArgError, "index bin must not be empty")
	case i.Name == "":
		return kverrors.New(kverrors.InvalidArgError, "index name must not be empty")
	case i.Type < IndexNumeric || i.Type > IndexGeo2DSphere:
		return kverrors.Newf(kverrors.InvalidArgError, "invalid index type %d", i.Type)
	case i.Collection < CollectionDefault || i.Collection > CollectionMapValues:
		return kverrors.Newf(kverrors.InvalidArgError, "invalid index collection type %d", i.Collection)
	}
	return value.CheckBinName(i.Bin)
}

// Kind identifies a filter.
type Kind int

const (
	KindEquals Kind = iota
	KindBetween
	KindContains
	KindGeoWithinRegion
	KindGeoWithinRadius
	KindGeoContainsPoint
)

func (k Kind) String() string {
	switch k {
	case KindEquals:
		return "equals"
	case KindBetween:
		return "between"
	case KindContains:
		return "contains"
	case KindGeoWithinRegion:
		return "geo_within_geojson_region"
	case KindGeoWithinRadius:
		return "geo_within_radius"
	case KindGeoContainsPoint:
		return "geo_contains_geojson_point"
	default:
		return "unknown"
	}
}

// Filter is one secondary-index predicate. Constructors never fail; an invalid
// argument is carried in the filter and reported by Err when the query is
// built.
type Filter struct {
	Kind       Kind
	Bin        string
	Value      value.Value
	Begin, End int64
	Collection Collection
	Region     value.GeoJSON
	Lat, Lng   float64
	Radius     float64

	err error
}

// Err returns the argument error captured by the constructor, if any.
func (f Filter) Err() error { return f.err }

// IndexType is the index type the filter needs.
func (f Filter) IndexType() IndexType {
	switch f.Kind {
	case KindGeoWithinRegion, KindGeoWithinRadius, KindGeoContainsPoint:
		return IndexGeo2DSphere
	case KindBetween:
		return IndexNumeric
	}
	switch f.Value.(type) {
	case value.String:
		return IndexString
	case value.Blob:
		return IndexBlob
	default:
		return IndexNumeric
	}
}

// Equals matches records whose bin equals v. Only integers, strings and
// bytes can be indexed.
func Equals(bin string, v any) Filter {
	f := Filter{Kind: KindEquals, Bin: bin}
	f.Value, f.err = indexable(v, bin)
	return f
}

// Between matches integer bins in the inclusive range [begin, end].
func Between(bin string, begin, end int64) Filter {
	f := Filter{Kind: KindBetween, Bin: bin, Begin: begin, End: end}
	if begin > end {
		f.err = kverrors.Newf(kverrors.InvalidArgError, "between on %q: begin %d is greater than end %d", bin, begin, end)
	}
	return f
}

// Contains matches records whose list, map keys or map values contain v.
func Contains(bin string, collection Collection, v any) Filter {
	f := Filter{Kind: KindContains, Bin: bin, Collection: collection}
	f.Value, f.err = indexable(v, bin)
	if f.err == nil && (collection < CollectionList || collection > CollectionMapValues) {
		f.err = kverrors.Newf(kverrors.InvalidArgError, "contains on %q requires a collection index type, got %d", bin, collection)
	}
	return f
}

// GeoWithinRegion matches GeoJSON points inside a polygon region.
func GeoWithinRegion(bin string, region string) Filter {
	f := Filter{Kind: KindGeoWithinRegion, Bin: bin, Region: value.GeoJSON(region)}
	_, f.err = value.EncodeAt(f.Region, "predicate."+bin)
	return f
}

// GeoWithinRadius matches GeoJSON points within radius meters of (lat, lng).
func GeoWithinRadius(bin string, lat, lng, radius float64) Filter {
	f := Filter{Kind: KindGeoWithinRadius, Bin: bin, Lat: lat, Lng: lng, Radius: radius}
	if radius < 0 {
		f.err = kverrors.Newf(kverrors.InvalidArgError, "radius must not be negative, got %v", radius)
	}
	return f
}

// GeoContainsPoint matches GeoJSON regions that contain a point.
func GeoContainsPoint(bin string, point string) Filter {
	f := Filter{Kind: KindGeoContainsPoint, Bin: bin, Region: value.GeoJSON(point)}
	_, f.err = value.EncodeAt(f.Region, "predicate."+bin)
	return f
}

func indexable(v any, bin string) (value.Value, error) {
	enc, err := value.EncodeAt(v, "predicate."+bin)
	if err != nil {
		return nil, err
	}
	switch enc.(type) {
	case value.Int, value.String, value.Blob:
		return enc, nil
	default:
		return nil, kverrors.Newf(kverrors.InvalidArgError, "filter value for %q must be an integer, string or bytes, got %s", bin, enc.Type())
	}
}

// Covers reports whether idx can serve the filter.
func (f Filter) Covers(idx Index) bool {
	if idx.Bin != f.Bin || idx.Type != f.IndexType() {
		return false
	}
	if f.Kind == KindContains {
		return idx.Collection == f.Collection
	}
	return idx.Collection == CollectionDefault
}

// Match reports whether a bin value satisfies the filter.
func (f Filter) Match(v value.Value) bool {
	switch f.Kind {
	case KindEquals:
		return v != nil && value.Equal(v, f.Value)
	case KindBetween:
		n, ok := v.(value.Int)
		return ok && int64(n) >= f.Begin && int64(n) <= f.End
	case KindContains:
		return f.containedIn(v)
	case KindGeoWithinRegion:
		pt, ok := pointOf(v)
		if !ok {
			return false
		}
		poly, ok := polygonOf(f.Region)
		return ok && poly.contains(pt)
	case KindGeoWithinRadius:
		pt, ok := pointOf(v)
		return ok && haversine(point{lng: f.Lng, lat: f.Lat}, pt) <= f.Radius
	case KindGeoContainsPoint:
		g, ok := v.(value.GeoJSON)
		if !ok {
			return false
		}
		poly, ok := polygonOf(g)
		if !ok {
			return false
		}
		pt, ok := pointOf(f.Region)
		return ok && poly.contains(pt)
	}
	return false
}

func (f Filter) containedIn(v value.Value) bool {
	switch f.Collection {
	case CollectionList:
		l, ok := v.(value.List)
		if !ok {
			return false
		}
		for _, item := range l {
			if value.Equal(item, f.Value) {
				return true
			}
		}
	case CollectionMapKeys, CollectionMapValues:
		m, ok := v.(value.Map)
		if !ok {
			return false
		}
		for _, e := range m {
			target := e.Value
			if f.Collection == CollectionMapKeys {
				target = e.Key
			}
			if value.Equal(target, f.Value) {
				return true
			}
		}
	}
	return false
}
