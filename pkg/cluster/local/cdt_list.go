package local

import (
	"sort"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// listCreators may create the bin when it does not exist.
var listCreators = map[operation.Code]bool{
	operation.OpListAppend:      true,
	operation.OpListAppendItems: true,
	operation.OpListInsert:      true,
	operation.OpListInsertItems: true,
	operation.OpListSet:         true,
	operation.OpListIncrement:   true,
	operation.OpListSetOrder:    true,
}

type listBin struct {
	op      operation.Operation
	items   value.List
	ordered bool
}

// applyList executes one list operation against rec. A nil result means the
// operation produced no value.
func applyList(rec *StoredRecord, op operation.Operation) (value.Value, error) {
	cur, exists := rec.Bins[op.Bin]
	l := &listBin{op: op, ordered: rec.Orders[op.Bin] == int(operation.ListOrdered)}
	if exists {
		items, ok := cur.(value.List)
		if !ok {
			return nil, binTypeError(op, cur)
		}
		l.items = append(value.List{}, items...)
	} else {
		if !listCreators[op.Code] {
			if op.Code.Modifies() {
				return nil, nil
			}
			return value.Nil{}, nil
		}
		l.items = value.List{}
		l.ordered = op.ListPolicy.Order == operation.ListOrdered
	}

	out, err := l.apply()
	if err != nil {
		return nil, err
	}
	if op.Code.Modifies() {
		rec.Bins[op.Bin] = l.items
		if l.ordered {
			if rec.Orders == nil {
				rec.Orders = make(map[string]int)
			}
			rec.Orders[op.Bin] = int(operation.ListOrdered)
		} else {
			delete(rec.Orders, op.Bin)
		}
	}
	return out, nil
}

func (l *listBin) fail(code kverrors.ResultCode, message string) error {
	return cdtError(code, l.op, message)
}

func (l *listBin) apply() (value.Value, error) {
	op := l.op
	switch op.Code {
	case operation.OpListAppend:
		return l.add([]value.Value{op.Value})
	case operation.OpListAppendItems:
		return l.add(op.Items())
	case operation.OpListInsert:
		return l.insert(op.Index, []value.Value{op.Value})
	case operation.OpListInsertItems:
		return l.insert(op.Index, op.Items())
	case operation.OpListSet:
		return l.set(op.Index, op.Value)
	case operation.OpListIncrement:
		return l.increment(op.Index, op.Value)
	case operation.OpListClear:
		l.items = value.List{}
		return nil, nil
	case operation.OpListSize:
		return value.Int(len(l.items)), nil
	case operation.OpListSort:
		l.sort(int(op.Value.(value.Int)))
		return nil, nil
	case operation.OpListSetOrder:
		l.ordered = operation.ListOrder(op.Value.(value.Int)) == operation.ListOrdered
		if l.ordered {
			l.sort(operation.ListSortDefault)
		}
		return nil, nil

	case operation.OpListGet, operation.OpListPop, operation.OpListRemove:
		pos, ok := position(op.Index, len(l.items))
		if !ok {
			return nil, l.fail(kverrors.CodeOpNotApplicable, "index out of bounds")
		}
		v := l.items[pos]
		switch op.Code {
		case operation.OpListPop:
			l.remove([]int{pos})
		case operation.OpListRemove:
			l.remove([]int{pos})
			return value.Int(1), nil
		}
		return v, nil
	case operation.OpListGetRange, operation.OpListPopRange, operation.OpListRemoveRange:
		start, end := span(op.Index, op.Count, len(l.items))
		got := append(value.List{}, l.items[start:end]...)
		if op.Code == operation.OpListGetRange {
			return got, nil
		}
		l.items = append(l.items[:start:start], l.items[end:]...)
		if op.Code == operation.OpListRemoveRange {
			return value.Int(len(got)), nil
		}
		return got, nil
	case operation.OpListTrim:
		start, end := span(op.Index, op.Count, len(l.items))
		removed := len(l.items) - (end - start)
		l.items = append(value.List{}, l.items[start:end]...)
		return value.Int(removed), nil
	}

	sel, single, err := l.selection()
	if err != nil {
		return nil, err
	}
	out := l.format(sel, single)
	if op.Code.Modifies() {
		l.remove(sel)
	}
	return out, nil
}

// selection resolves the elements a get_by or remove_by operation targets.
func (l *listBin) selection() ([]int, bool, error) {
	op := l.op
	size := len(l.items)
	switch op.Code {
	case operation.OpListGetByValue, operation.OpListRemoveByValue:
		var sel []int
		for i, item := range l.items {
			if value.Equal(item, op.Value) {
				sel = append(sel, i)
			}
		}
		return sel, false, nil
	case operation.OpListGetByValueList, operation.OpListRemoveByValueList:
		var sel []int
		for i, item := range l.items {
			if containsValue(op.Items(), item) {
				sel = append(sel, i)
			}
		}
		return sel, false, nil
	case operation.OpListGetByValueRange, operation.OpListRemoveByValueRange:
		var sel []int
		for i, item := range l.items {
			if inValueRange(item, op.Value, op.ValueEnd) {
				sel = append(sel, i)
			}
		}
		return sel, false, nil
	case operation.OpListGetByIndex, operation.OpListRemoveByIndex:
		pos, ok := position(op.Index, size)
		if !ok {
			return nil, true, l.fail(kverrors.CodeOpNotApplicable, "index out of bounds")
		}
		return []int{pos}, true, nil
	case operation.OpListGetByIndexRange, operation.OpListRemoveByIndexRange:
		start, end := span(op.Index, op.Count, size)
		sel := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			sel = append(sel, i)
		}
		return sel, false, nil
	case operation.OpListGetByRank, operation.OpListRemoveByRank:
		r, ok := position(op.Rank, size)
		if !ok {
			return nil, true, l.fail(kverrors.CodeOpNotApplicable, "rank out of bounds")
		}
		return []int{rankOrder(l.items)[r]}, true, nil
	case operation.OpListGetByRankRange, operation.OpListRemoveByRankRange:
		start, end := span(op.Rank, op.Count, size)
		return append([]int(nil), rankOrder(l.items)[start:end]...), false, nil
	}
	return nil, false, l.fail(kverrors.CodeParameter, "unsupported list operation")
}

func (l *listBin) format(sel []int, single bool) value.Value {
	if v, ok := formatCommon(l.op.ReturnType, l.items, sel, single); ok {
		return v
	}
	// ReturnValue
	if single {
		if len(sel) == 0 {
			return value.Nil{}
		}
		return l.items[sel[0]]
	}
	out := make(value.List, len(sel))
	for i, pos := range sel {
		out[i] = l.items[pos]
	}
	return out
}

func (l *listBin) remove(sel []int) {
	if len(sel) == 0 {
		return
	}
	drop := removePositions(len(l.items), sel)
	kept := make(value.List, 0, len(l.items)-len(sel))
	for i, item := range l.items {
		if !drop[i] {
			kept = append(kept, item)
		}
	}
	l.items = kept
}

// admit filters items through the unique-add flags. It returns the items to
// add, or an error when a duplicate must fail the operation.
func (l *listBin) admit(items []value.Value) ([]value.Value, error) {
	flags := l.op.ListPolicy.Flags
	if flags&operation.ListWriteAddUnique == 0 {
		return items, nil
	}
	var out []value.Value
	for _, item := range items {
		if containsValue(l.items, item) || containsValue(out, item) {
			switch {
			case flags&operation.ListWriteNoFail == 0:
				return nil, l.fail(kverrors.CodeElementExists, "list element already exists")
			case flags&operation.ListWritePartial == 0:
				return nil, nil
			}
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (l *listBin) add(items []value.Value) (value.Value, error) {
	admitted, err := l.admit(items)
	if err != nil {
		return nil, err
	}
	for _, item := range admitted {
		if l.ordered {
			at := sort.Search(len(l.items), func(i int) bool {
				return value.Compare(l.items[i], item) > 0
			})
			l.items = append(l.items, nil)
			copy(l.items[at+1:], l.items[at:])
			l.items[at] = item
			continue
		}
		l.items = append(l.items, item)
	}
	return value.Int(len(l.items)), nil
}

func (l *listBin) insert(index int64, items []value.Value) (value.Value, error) {
	if l.ordered {
		return nil, l.fail(kverrors.CodeOpNotApplicable, "insert on an ordered list")
	}
	size := int64(len(l.items))
	if index < 0 {
		index += size
		if index < 0 {
			return nil, l.fail(kverrors.CodeOpNotApplicable, "index out of bounds")
		}
	}
	if index > size {
		if l.op.ListPolicy.Flags&operation.ListWriteInsertBounded != 0 {
			if l.op.ListPolicy.Flags&operation.ListWriteNoFail != 0 {
				return value.Int(len(l.items)), nil
			}
			return nil, l.fail(kverrors.CodeOpNotApplicable, "index out of bounds")
		}
	}
	admitted, err := l.admit(items)
	if err != nil {
		return nil, err
	}
	for int64(len(l.items)) < index {
		l.items = append(l.items, value.Nil{})
	}
	tail := append(value.List{}, l.items[index:]...)
	l.items = append(append(l.items[:index], admitted...), tail...)
	return value.Int(len(l.items)), nil
}

func (l *listBin) set(index int64, v value.Value) (value.Value, error) {
	if l.ordered {
		return nil, l.fail(kverrors.CodeOpNotApplicable, "set on an ordered list")
	}
	pos, err := l.slot(index)
	if err != nil {
		return nil, err
	}
	l.items[pos] = v
	return nil, nil
}

func (l *listBin) increment(index int64, delta value.Value) (value.Value, error) {
	pos, err := l.slot(index)
	if err != nil {
		return nil, err
	}
	next, err := addNumbers(l.op, l.items[pos], delta)
	if err != nil {
		return nil, err
	}
	l.items[pos] = next
	if l.ordered {
		l.sort(operation.ListSortDefault)
	}
	return next, nil
}

// slot resolves an index for an in-place write, padding the list with nils
// when it points past the end.
func (l *listBin) slot(index int64) (int, error) {
	size := int64(len(l.items))
	if index < 0 {
		index += size
		if index < 0 {
			return 0, l.fail(kverrors.CodeOpNotApplicable, "index out of bounds")
		}
	}
	if index >= size && l.op.ListPolicy.Flags&operation.ListWriteInsertBounded != 0 {
		return 0, l.fail(kverrors.CodeOpNotApplicable, "index out of bounds")
	}
	for int64(len(l.items)) <= index {
		l.items = append(l.items, value.Nil{})
	}
	return int(index), nil
}

func (l *listBin) sort(flags int) {
	sort.SliceStable(l.items, func(i, j int) bool {
		return value.Compare(l.items[i], l.items[j]) < 0
	})
	if flags&operation.ListSortDropDuplicates == 0 {
		return
	}
	deduped := l.items[:0]
	for i, item := range l.items {
		if i > 0 && value.Equal(item, deduped[len(deduped)-1]) {
			continue
		}
		deduped = append(deduped, item)
	}
	l.items = deduped
}
