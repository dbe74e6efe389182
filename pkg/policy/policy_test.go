package policy

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/kvbridge/pkg/expression"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

func TestResolveWithoutOverridesSharesDefault(t *testing.T) {
	a, err := ResolveWrite(nil, nil)
	require.NoError(t, err)
	b, err := ResolveWrite(nil, map[string]any{})
	require.NoError(t, err)

	assert.Same(t, a.Policy(), b.Policy())
	assert.Same(t, DefaultWrite(), a.Policy())
	assert.False(t, a.Overridden())
}

func TestResolveOverlayDoesNotTouchDefault(t *testing.T) {
	before := *DefaultWrite()

	r, err := ResolveWrite(nil, map[string]any{"exists": ExistsCreateOnly, "ttl": 60, "total_timeout": 250})
	require.NoError(t, err)
	assert.True(t, r.Overridden())
	assert.Equal(t, ExistsCreateOnly, r.Policy().Exists)
	assert.Equal(t, TTL(60), r.Policy().TTL)
	assert.Equal(t, 250*time.Millisecond, r.Policy().TotalTimeout)

	r.Policy().CommitLevel = CommitMaster
	assert.Equal(t, before, *DefaultWrite())
}

func TestResolveConcurrentDefaultsAreIdentical(t *testing.T) {
	const workers = 32
	var wg sync.WaitGroup
	results := make([]Read, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r, err := ResolveRead(nil, map[string]any{"max_retries": i})
				if err == nil {
					r.Policy().MaxRetries = 99
				}
				return
			}
			r, _ := ResolveRead(nil, nil)
			results[i] = *r.Policy()
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i += 2 {
		assert.Equal(t, defaultRead(), results[i])
	}
}

func TestResolveUnknownField(t *testing.T) {
	_, err := ResolveRead(nil, map[string]any{"not_a_field": 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, kverrors.InvalidArgError))
	assert.Contains(t, err.Error(), "not_a_field")

	_, err = ResolveAdmin(nil, map[string]any{"exists": 1})
	assert.True(t, errors.Is(err, kverrors.InvalidArgError))
}

func TestResolveInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		over map[string]any
	}{
		{"exists out of range", map[string]any{"exists": 9}},
		{"gen negative", map[string]any{"gen": -1}},
		{"ttl below sentinels", map[string]any{"ttl": -4}},
		{"string timeout", map[string]any{"total_timeout": "1s"}},
		{"fractional timeout", map[string]any{"socket_timeout": 1.5}},
		{"bool from string", map[string]any{"durable_delete": "yes"}},
		{"negative retries", map[string]any{"max_retries": -1}},
		{"expression as text", map[string]any{"filter_expression": "age > 21"}},
		{"invalid expression", map[string]any{"filter_expression": expression.Eq(expression.IntBin("a"), nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWrite(nil, tt.over)
			require.Error(t, err)
			assert.True(t, errors.Is(err, kverrors.InvalidArgError))
		})
	}
}

func TestResolveAcceptsHostNumberShapes(t *testing.T) {
	r, err := ResolveQuery(nil, map[string]any{
		"max_records":        float64(100),
		"records_per_second": int32(10),
		"include_bin_data":   0,
		"total_timeout":      2 * time.Second,
	})
	require.NoError(t, err)
	p := r.Policy()
	assert.Equal(t, int64(100), p.MaxRecords)
	assert.Equal(t, 10, p.RecordsPerSecond)
	assert.False(t, p.IncludeBinData)
	assert.Equal(t, 2*time.Second, p.TotalTimeout)
}

func TestResolveOntoBase(t *testing.T) {
	base := &Batch{AllowInline: false, ConcurrentNodes: 4}
	r, err := ResolveBatch(base, nil)
	require.NoError(t, err)
	assert.Same(t, base, r.Policy())

	r, err = ResolveBatch(base, map[string]any{"respond_all_keys": true})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Policy().ConcurrentNodes)
	assert.True(t, r.Policy().RespondAllKeys)
	assert.False(t, base.RespondAllKeys)
}

func TestApplyMeta(t *testing.T) {
	r, err := ResolveWrite(nil, nil)
	require.NoError(t, err)

	withMeta, err := ApplyMeta(r, map[string]any{"gen": 7, "ttl": -1})
	require.NoError(t, err)
	assert.Equal(t, uint32(7), withMeta.Policy().Generation)
	assert.Equal(t, GenEQ, withMeta.Policy().Gen)
	assert.Equal(t, TTLNeverExpire, withMeta.Policy().TTL)
	assert.Equal(t, GenIgnore, DefaultWrite().Gen)

	gt, err := ResolveWrite(nil, map[string]any{"gen": GenGT})
	require.NoError(t, err)
	withMeta, err = ApplyMeta(gt, map[string]any{"gen": 3})
	require.NoError(t, err)
	assert.Equal(t, GenGT, withMeta.Policy().Gen)

	same, err := ApplyMeta(r, nil)
	require.NoError(t, err)
	assert.Same(t, r.Policy(), same.Policy())

	_, err = ApplyMeta(r, map[string]any{"generation": 1})
	assert.True(t, errors.Is(err, kverrors.InvalidArgError))
	_, err = ApplyMeta(r, map[string]any{"gen": -5})
	assert.True(t, errors.Is(err, kverrors.InvalidArgError))
}

func TestNewSet(t *testing.T) {
	s, err := NewSet(map[string]map[string]any{
		"read":  {"max_retries": 0},
		"write": {"key": KeySend},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Read.MaxRetries)
	assert.Equal(t, KeySend, s.Write.Key)
	assert.Same(t, DefaultBatch(), s.Batch)

	_, err = NewSet(map[string]map[string]any{"scan": {}})
	assert.True(t, errors.Is(err, kverrors.InvalidArgError))
}

func TestFields(t *testing.T) {
	assert.Contains(t, Fields(CategoryWrite), "exists")
	assert.Contains(t, Fields(CategoryWrite), "socket_timeout")
	assert.Equal(t, []string{"timeout"}, Fields(CategoryAdmin))
	assert.Nil(t, Fields(Category("bogus")))
}

func TestResolveFilterExpression(t *testing.T) {
	exp := expression.Gt(expression.IntBin("age"), expression.IntVal(21))
	for _, cat := range []Category{CategoryRead, CategoryWrite, CategoryBatch, CategoryQuery} {
		assert.Contains(t, Fields(cat), "filter_expression", "category %s", cat)
	}

	r, err := ResolveRead(nil, map[string]any{"filter_expression": exp})
	require.NoError(t, err)
	assert.Same(t, exp, r.Policy().FilterExpression)
	assert.Nil(t, DefaultRead().FilterExpression)

	b, err := ResolveBatch(nil, map[string]any{"filter_expression": exp})
	require.NoError(t, err)
	assert.Same(t, exp, b.Policy().FilterExpression)

	cleared, err := ResolveQuery(queryWithFilter(exp), map[string]any{"filter_expression": nil})
	require.NoError(t, err)
	assert.Nil(t, cleared.Policy().FilterExpression)
}

func queryWithFilter(exp *expression.Expr) *Query {
	p := *DefaultQuery()
	p.FilterExpression = exp
	return &p
}
