package local

import (
	"sort"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// span resolves an index and count against a collection of size elements and
// returns the half-open range they select. A negative index counts from the
// end; a count of -1 runs to the end.
func span(index, count int64, size int) (int, int) {
	n := int64(size)
	start := index
	if start < 0 {
		start += n
	}
	if start < 0 {
		if count >= 0 {
			count += start
			if count < 0 {
				count = 0
			}
		}
		start = 0
	}
	if start > n {
		return size, size
	}
	end := n
	if count >= 0 && start+count < end {
		end = start + count
	}
	return int(start), int(end)
}

// position resolves a single index.
func position(index int64, size int) (int, bool) {
	if index < 0 {
		index += int64(size)
	}
	if index < 0 || index >= int64(size) {
		return 0, false
	}
	return int(index), true
}

// rankOrder returns the positions of values sorted by value, ties by position.
func rankOrder(values []value.Value) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return value.Compare(values[order[a]], values[order[b]]) < 0
	})
	return order
}

func ranksOf(values []value.Value) []int {
	ranks := make([]int, len(values))
	for r, pos := range rankOrder(values) {
		ranks[pos] = r
	}
	return ranks
}

// inValueRange reports whether begin <= v < end; a nil end is unbounded.
func inValueRange(v, begin, end value.Value) bool {
	if value.Compare(v, begin) < 0 {
		return false
	}
	return end == nil || value.Compare(v, end) < 0
}

func containsValue(items []value.Value, v value.Value) bool {
	for _, item := range items {
		if value.Equal(item, v) {
			return true
		}
	}
	return false
}

func ascending(sel []int) []int {
	out := append([]int(nil), sel...)
	sort.Ints(out)
	return out
}

// formatCommon renders the return types shared by lists and maps. ok is false
// for value-carrying return types, which the caller renders.
func formatCommon(rt operation.ReturnType, values []value.Value, sel []int, single bool) (value.Value, bool) {
	size := len(values)
	pick := func(f func(pos int) int64) value.Value {
		if single {
			if len(sel) == 0 {
				return value.Nil{}
			}
			return value.Int(f(sel[0]))
		}
		out := make(value.List, len(sel))
		for i, pos := range sel {
			out[i] = value.Int(f(pos))
		}
		return out
	}

	switch rt {
	case operation.ReturnNone:
		return nil, true
	case operation.ReturnCount:
		return value.Int(len(sel)), true
	case operation.ReturnExists:
		return value.Bool(len(sel) > 0), true
	case operation.ReturnIndex:
		return pick(func(pos int) int64 { return int64(pos) }), true
	case operation.ReturnReverseIndex:
		return pick(func(pos int) int64 { return int64(size - 1 - pos) }), true
	case operation.ReturnRank, operation.ReturnReverseRank:
		ranks := ranksOf(values)
		if rt == operation.ReturnRank {
			return pick(func(pos int) int64 { return int64(ranks[pos]) }), true
		}
		return pick(func(pos int) int64 { return int64(size - 1 - ranks[pos]) }), true
	}
	return nil, false
}

func removePositions(n int, sel []int) []bool {
	drop := make([]bool, n)
	for _, pos := range sel {
		drop[pos] = true
	}
	return drop
}

func cdtError(code kverrors.ResultCode, op operation.Operation, message string) error {
	return kverrors.FromCode(code, message).
		WithDetail("bin", op.Bin).
		WithDetail("op", op.Code.String())
}

func binTypeError(op operation.Operation, got value.Value) error {
	return cdtError(kverrors.CodeBinType, op, op.Code.String()+" on a "+got.Type().String()+" bin")
}

// addNumbers adds two numbers of the same kind.
func addNumbers(op operation.Operation, cur, delta value.Value) (value.Value, error) {
	if value.IsNil(cur) {
		return delta, nil
	}
	switch c := cur.(type) {
	case value.Int:
		if d, ok := delta.(value.Int); ok {
			return c + d, nil
		}
	case value.Float:
		if d, ok := delta.(value.Float); ok {
			return c + d, nil
		}
	}
	return nil, binTypeError(op, cur)
}

func negate(v value.Value) value.Value {
	switch n := v.(type) {
	case value.Int:
		return -n
	case value.Float:
		return -n
	}
	return v
}
