package predicate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

func TestFilterMatch(t *testing.T) {
	tags := value.List{value.String("go"), value.String("kv")}
	attrs := value.Map{{Key: value.String("color"), Value: value.String("red")}}

	tests := []struct {
		name   string
		filter Filter
		bin    value.Value
		want   bool
	}{
		{"equals int", Equals("age", 30), value.Int(30), true},
		{"equals int mismatch", Equals("age", 30), value.Int(31), false},
		{"equals string", Equals("name", "bob"), value.String("bob"), true},
		{"equals missing bin", Equals("name", "bob"), nil, false},
		{"between inside", Between("age", 18, 65), value.Int(18), true},
		{"between upper bound", Between("age", 18, 65), value.Int(65), true},
		{"between outside", Between("age", 18, 65), value.Int(66), false},
		{"between on float", Between("age", 18, 65), value.Float(20), false},
		{"contains list", Contains("tags", CollectionList, "kv"), tags, true},
		{"contains list miss", Contains("tags", CollectionList, "db"), tags, false},
		{"contains map key", Contains("attrs", CollectionMapKeys, "color"), attrs, true},
		{"contains map value", Contains("attrs", CollectionMapValues, "red"), attrs, true},
		{"contains map value on keys", Contains("attrs", CollectionMapKeys, "red"), attrs, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.filter.Err())
			assert.Equal(t, tt.want, tt.filter.Match(tt.bin))
		})
	}
}

func TestGeoFilters(t *testing.T) {
	square := `{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`
	inside := value.GeoJSON(`{"type":"Point","coordinates":[5,5]}`)
	outside := value.GeoJSON(`{"type":"Point","coordinates":[15,5]}`)

	within := GeoWithinRegion("loc", square)
	require.NoError(t, within.Err())
	assert.True(t, within.Match(inside))
	assert.False(t, within.Match(outside))
	assert.False(t, within.Match(value.String("not geo")))

	radius := GeoWithinRadius("loc", 5, 5, 1000)
	assert.True(t, radius.Match(inside))
	assert.False(t, radius.Match(outside))

	circle := GeoWithinRegion("loc", `{"type":"AeroCircle","coordinates":[[5,5],1000]}`)
	assert.True(t, circle.Match(inside))
	assert.False(t, circle.Match(outside))

	contains := GeoContainsPoint("area", `{"type":"Point","coordinates":[1,1]}`)
	require.NoError(t, contains.Err())
	assert.True(t, contains.Match(value.GeoJSON(square)))
	assert.Equal(t, IndexGeo2DSphere, contains.IndexType())
}

func TestFilterArgumentErrors(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   *kverrors.Kind
	}{
		{"equals float", Equals("x", 1.5), kverrors.InvalidArgError},
		{"equals unsupported", Equals("x", struct{}{}), kverrors.UnsupportedType},
		{"between reversed", Between("x", 5, 1), kverrors.InvalidArgError},
		{"contains default collection", Contains("x", CollectionDefault, 1), kverrors.InvalidArgError},
		{"region not json", GeoWithinRegion("x", "{"), kverrors.InvalidArgError},
		{"negative radius", GeoWithinRadius("x", 0, 0, -1), kverrors.InvalidArgError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.filter.Err())
			assert.True(t, errors.Is(tt.filter.Err(), tt.want))
		})
	}
}

func TestFilterCovers(t *testing.T) {
	numeric := Index{Namespace: "test", Bin: "age", Name: "age_idx", Type: IndexNumeric}
	list := Index{Namespace: "test", Bin: "tags", Name: "tags_idx", Type: IndexString, Collection: CollectionList}

	assert.True(t, Between("age", 1, 2).Covers(numeric))
	assert.True(t, Equals("age", 3).Covers(numeric))
	assert.False(t, Equals("age", "3").Covers(numeric))
	assert.False(t, Equals("other", 3).Covers(numeric))
	assert.True(t, Contains("tags", CollectionList, "go").Covers(list))
	assert.False(t, Equals("tags", "go").Covers(list))
}

func TestIndexValidate(t *testing.T) {
	require.NoError(t, Index{Namespace: "test", Bin: "age", Name: "idx"}.Validate())
	assert.Error(t, Index{Bin: "age", Name: "idx"}.Validate())
	assert.Error(t, Index{Namespace: "test", Bin: "age", Name: "idx", Type: 7}.Validate())
	err := Index{Namespace: "test", Bin: "a_very_long_bin_name", Name: "idx"}.Validate()
	assert.True(t, errors.Is(err, kverrors.BinNameError))
}
