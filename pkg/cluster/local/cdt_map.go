package local

import (
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

var mapCreators = map[operation.Code]bool{
	operation.OpMapSetOrder:  true,
	operation.OpMapPut:       true,
	operation.OpMapPutItems:  true,
	operation.OpMapIncrement: true,
	operation.OpMapDecrement: true,
}

// mapBin works on the entries of a map bin kept in key order, so index
// selections follow key order and rank selections follow value order.
type mapBin struct {
	op      operation.Operation
	entries value.Map
	order   operation.MapOrder
}

func applyMap(rec *StoredRecord, op operation.Operation) (value.Value, error) {
	cur, exists := rec.Bins[op.Bin]
	m := &mapBin{op: op, order: operation.MapOrder(rec.Orders[op.Bin])}
	if exists {
		entries, ok := cur.(value.Map)
		if !ok {
			return nil, binTypeError(op, cur)
		}
		m.entries = value.SortMap(entries)
	} else {
		if !mapCreators[op.Code] {
			if op.Code.Modifies() {
				return nil, nil
			}
			return value.Nil{}, nil
		}
		m.entries = value.Map{}
		m.order = op.MapPolicy.Order
	}

	out, err := m.apply()
	if err != nil {
		return nil, err
	}
	if op.Code.Modifies() {
		rec.Bins[op.Bin] = m.entries
		if m.order != operation.MapUnordered {
			if rec.Orders == nil {
				rec.Orders = make(map[string]int)
			}
			rec.Orders[op.Bin] = int(m.order)
		} else {
			delete(rec.Orders, op.Bin)
		}
	}
	return out, nil
}

func (m *mapBin) fail(code kverrors.ResultCode, message string) error {
	return cdtError(code, m.op, message)
}

func (m *mapBin) apply() (value.Value, error) {
	op := m.op
	switch op.Code {
	case operation.OpMapSetOrder:
		m.order = operation.MapOrder(op.Value.(value.Int))
		return nil, nil
	case operation.OpMapPut:
		return m.put(value.Map{{Key: op.MapKey, Value: op.Value}})
	case operation.OpMapPutItems:
		return m.put(op.Value.(value.Map))
	case operation.OpMapIncrement, operation.OpMapDecrement:
		delta := op.Value
		if op.Code == operation.OpMapDecrement {
			delta = negate(delta)
		}
		return m.increment(op.MapKey, delta)
	case operation.OpMapClear:
		m.entries = value.Map{}
		return nil, nil
	case operation.OpMapSize:
		return value.Int(len(m.entries)), nil
	}

	sel, single, err := m.selection()
	if err != nil {
		return nil, err
	}
	out := m.format(sel, single)
	if op.Code.Modifies() && len(sel) > 0 {
		drop := removePositions(len(m.entries), sel)
		kept := make(value.Map, 0, len(m.entries)-len(sel))
		for i, e := range m.entries {
			if !drop[i] {
				kept = append(kept, e)
			}
		}
		m.entries = kept
	}
	return out, nil
}

func (m *mapBin) find(key value.Value) (int, bool) {
	for i, e := range m.entries {
		if value.Equal(e.Key, key) {
			return i, true
		}
	}
	return 0, false
}

// put writes entries under the map write mode. Without the partial flag a
// failure under no-fail leaves the map unchanged.
func (m *mapBin) put(items value.Map) (value.Value, error) {
	mode := m.op.MapPolicy.WriteMode
	next := append(value.Map{}, m.entries...)
	for _, item := range items {
		at, found := -1, false
		for i, e := range next {
			if value.Equal(e.Key, item.Key) {
				at, found = i, true
				break
			}
		}
		var failure error
		switch {
		case found && mode&operation.MapWriteCreateOnly != 0:
			failure = m.fail(kverrors.CodeElementExists, "map key already exists")
		case !found && mode&operation.MapWriteUpdateOnly != 0:
			failure = m.fail(kverrors.CodeElementNotFound, "map key not found")
		}
		if failure != nil {
			switch {
			case mode&operation.MapWriteNoFail == 0:
				return nil, failure
			case mode&operation.MapWritePartial == 0:
				return value.Int(len(m.entries)), nil
			}
			continue
		}
		if found {
			next[at].Value = item.Value
		} else {
			next = append(next, item)
		}
	}
	m.entries = value.SortMap(next)
	return value.Int(len(m.entries)), nil
}

func (m *mapBin) increment(key, delta value.Value) (value.Value, error) {
	at, found := m.find(key)
	if !found && m.op.MapPolicy.WriteMode&operation.MapWriteUpdateOnly != 0 {
		return nil, m.fail(kverrors.CodeElementNotFound, "map key not found")
	}
	var cur value.Value
	if found {
		cur = m.entries[at].Value
	}
	next, err := addNumbers(m.op, cur, delta)
	if err != nil {
		return nil, err
	}
	if found {
		m.entries[at].Value = next
	} else {
		m.entries = value.SortMap(append(m.entries, value.MapEntry{Key: key, Value: next}))
	}
	return next, nil
}

func (m *mapBin) keys() []value.Value {
	out := make([]value.Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Key
	}
	return out
}

func (m *mapBin) values() []value.Value {
	out := make([]value.Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Value
	}
	return out
}

func (m *mapBin) matching(pred func(e value.MapEntry) bool) []int {
	var sel []int
	for i, e := range m.entries {
		if pred(e) {
			sel = append(sel, i)
		}
	}
	return sel
}

func (m *mapBin) selection() ([]int, bool, error) {
	op := m.op
	size := len(m.entries)
	switch op.Code {
	case operation.OpMapGetByKey, operation.OpMapRemoveByKey:
		if at, ok := m.find(op.MapKey); ok {
			return []int{at}, true, nil
		}
		return nil, true, nil
	case operation.OpMapGetByKeyList, operation.OpMapRemoveByKeyList:
		return m.matching(func(e value.MapEntry) bool { return containsValue(op.Items(), e.Key) }), false, nil
	case operation.OpMapGetByKeyRange, operation.OpMapRemoveByKeyRange:
		return m.matching(func(e value.MapEntry) bool { return inValueRange(e.Key, op.Value, op.ValueEnd) }), false, nil
	case operation.OpMapGetByValue, operation.OpMapRemoveByValue:
		return m.matching(func(e value.MapEntry) bool { return value.Equal(e.Value, op.Value) }), false, nil
	case operation.OpMapGetByValueList, operation.OpMapRemoveByValueList:
		return m.matching(func(e value.MapEntry) bool { return containsValue(op.Items(), e.Value) }), false, nil
	case operation.OpMapGetByValueRange, operation.OpMapRemoveByValueRange:
		return m.matching(func(e value.MapEntry) bool { return inValueRange(e.Value, op.Value, op.ValueEnd) }), false, nil
	case operation.OpMapGetByIndex, operation.OpMapRemoveByIndex:
		pos, ok := position(op.Index, size)
		if !ok {
			return nil, true, m.fail(kverrors.CodeOpNotApplicable, "index out of bounds")
		}
		return []int{pos}, true, nil
	case operation.OpMapGetByIndexRange, operation.OpMapRemoveByIndexRange:
		start, end := span(op.Index, op.Count, size)
		sel := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			sel = append(sel, i)
		}
		return sel, false, nil
	case operation.OpMapGetByRank, operation.OpMapRemoveByRank:
		r, ok := position(op.Rank, size)
		if !ok {
			return nil, true, m.fail(kverrors.CodeOpNotApplicable, "rank out of bounds")
		}
		return []int{rankOrder(m.values())[r]}, true, nil
	case operation.OpMapGetByRankRange, operation.OpMapRemoveByRankRange:
		start, end := span(op.Rank, op.Count, size)
		return append([]int(nil), rankOrder(m.values())[start:end]...), false, nil
	}
	return nil, false, m.fail(kverrors.CodeParameter, "unsupported map operation")
}

func (m *mapBin) format(sel []int, single bool) value.Value {
	rt := m.op.ReturnType
	if rt == operation.ReturnRank || rt == operation.ReturnReverseRank {
		if v, ok := formatCommon(rt, m.values(), sel, single); ok {
			return v
		}
	}
	if v, ok := formatCommon(rt, m.keys(), sel, single); ok {
		return v
	}

	if rt == operation.ReturnKeyValue {
		out := make(value.Map, 0, len(sel))
		for _, pos := range ascending(sel) {
			out = append(out, m.entries[pos])
		}
		return out
	}
	pick := func(pos int) value.Value {
		if rt == operation.ReturnKey {
			return m.entries[pos].Key
		}
		return m.entries[pos].Value
	}
	if single {
		if len(sel) == 0 {
			return value.Nil{}
		}
		return pick(sel[0])
	}
	out := make(value.List, len(sel))
	for i, pos := range sel {
		out[i] = pick(pos)
	}
	return out
}
