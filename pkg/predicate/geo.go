package predicate

import (
	"math"

	json "github.com/goccy/go-json"

	"github.com/ajitpratap0/kvbridge/pkg/value"
)

const earthRadiusMeters = 6371008.8

type point struct {
	lng, lat float64
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func parseGeometry(v value.Value) (geometry, bool) {
	g, ok := v.(value.GeoJSON)
	if !ok {
		return geometry{}, false
	}
	var geom geometry
	if err := json.Unmarshal([]byte(g), &geom); err != nil {
		return geometry{}, false
	}
	return geom, true
}

func pointOf(v value.Value) (point, bool) {
	geom, ok := parseGeometry(v)
	if !ok || geom.Type != "Point" {
		return point{}, false
	}
	var c [2]float64
	if err := json.Unmarshal(geom.Coordinates, &c); err != nil {
		return point{}, false
	}
	return point{lng: c[0], lat: c[1]}, true
}

// region is a polygon (outer ring only) or a circle.
type region struct {
	ring   []point
	center point
	radius float64
	circle bool
}

func polygonOf(v value.Value) (region, bool) {
	geom, ok := parseGeometry(v)
	if !ok {
		return region{}, false
	}
	switch geom.Type {
	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(geom.Coordinates, &rings); err != nil || len(rings) == 0 || len(rings[0]) < 3 {
			return region{}, false
		}
		r := region{ring: make([]point, len(rings[0]))}
		for i, c := range rings[0] {
			r.ring[i] = point{lng: c[0], lat: c[1]}
		}
		return r, true
	case "AeroCircle":
		var raw [2]json.RawMessage
		if err := json.Unmarshal(geom.Coordinates, &raw); err != nil {
			return region{}, false
		}
		var c [2]float64
		var radius float64
		if json.Unmarshal(raw[0], &c) != nil || json.Unmarshal(raw[1], &radius) != nil {
			return region{}, false
		}
		return region{center: point{lng: c[0], lat: c[1]}, radius: radius, circle: true}, true
	}
	return region{}, false
}

func (r region) contains(p point) bool {
	if r.circle {
		return haversine(r.center, p) <= r.radius
	}
	// Ray casting on the plane of (lng, lat).
	inside := false
	for i, j := 0, len(r.ring)-1; i < len(r.ring); j, i = i, i+1 {
		a, b := r.ring[i], r.ring[j]
		if (a.lat > p.lat) != (b.lat > p.lat) &&
			p.lng < (b.lng-a.lng)*(p.lat-a.lat)/(b.lat-a.lat)+a.lng {
			inside = !inside
		}
	}
	return inside
}

// haversine returns the great-circle distance in meters.
func haversine(a, b point) float64 {
	rad := math.Pi / 180
	dLat := (b.lat - a.lat) * rad
	dLng := (b.lng - a.lng) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.lat*rad)*math.Cos(b.lat*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// GeoCompare reports whether one GeoJSON value lies within the other: a
// point inside a region, in either order.
func GeoCompare(a, b value.Value) bool {
	if pt, ok := pointOf(a); ok {
		r, ok := polygonOf(b)
		return ok && r.contains(pt)
	}
	if pt, ok := pointOf(b); ok {
		r, ok := polygonOf(a)
		return ok && r.contains(pt)
	}
	return false
}
