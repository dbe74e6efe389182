package aerospike

import (
	"sort"

	aero "github.com/aerospike/aerospike-client-go/v7"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// readsBack reports whether a read of the bin is appended after op so that
// its post-write value can be reported.
func readsBack(op operation.Operation) bool {
	switch op.Code {
	case operation.OpIncr, operation.OpAppend, operation.OpPrepend:
		return true
	}
	return false
}

// toAeroOps translates ops in order, appending a bin read after every
// increment, append and prepend.
func toAeroOps(ops []operation.Operation) ([]*aero.Operation, error) {
	out := make([]*aero.Operation, 0, len(ops))
	for i, op := range ops {
		a, err := toAeroOp(op)
		if err != nil {
			if kvErr, ok := err.(*kverrors.Error); ok {
				return nil, kvErr.WithDetail("operation", i)
			}
			return nil, err
		}
		out = append(out, a)
		if readsBack(op) {
			out = append(out, aero.GetBinOp(op.Bin))
		}
	}
	return out, nil
}

func toAeroOp(op operation.Operation) (*aero.Operation, error) {
	switch {
	case op.Code == operation.OpRead:
		if op.ReadsAllBins() {
			return aero.GetOp(), nil
		}
		return aero.GetBinOp(op.Bin), nil
	case op.Code == operation.OpWrite, op.Code == operation.OpIncr,
		op.Code == operation.OpAppend, op.Code == operation.OpPrepend:
		v, err := toAero(op.Value)
		if err != nil {
			return nil, err
		}
		bin := aero.NewBin(op.Bin, v)
		switch op.Code {
		case operation.OpIncr:
			return aero.AddOp(bin), nil
		case operation.OpAppend:
			return aero.AppendOp(bin), nil
		case operation.OpPrepend:
			return aero.PrependOp(bin), nil
		default:
			return aero.PutOp(bin), nil
		}
	case op.Code == operation.OpTouch:
		return aero.TouchOp(), nil
	case op.Code == operation.OpDelete:
		return aero.DeleteOp(), nil
	case op.Code.IsList():
		return listOp(op)
	case op.Code.IsMap():
		return mapOp(op)
	}
	return nil, kverrors.Newf(kverrors.InvalidArgError, "unsupported operation code %d", op.Code)
}

// cdtArgs holds the converted operands of a list or map operation.
type cdtArgs struct {
	val   interface{}
	items []interface{}
	end   interface{}
	key   interface{}
}

func cdtArgsOf(op operation.Operation) (cdtArgs, error) {
	var a cdtArgs
	var err error
	if a.val, err = toAero(op.Value); err != nil {
		return a, err
	}
	if items := op.Items(); items != nil {
		if a.items, err = toAeroList(items); err != nil {
			return a, err
		}
	}
	if op.ValueEnd == nil {
		a.end = aero.NewInfinityValue()
	} else if a.end, err = toAero(op.ValueEnd); err != nil {
		return a, err
	}
	if op.MapKey != nil {
		if a.key, err = toAero(op.MapKey); err != nil {
			return a, err
		}
	}
	return a, nil
}

func listOp(op operation.Operation) (*aero.Operation, error) {
	a, err := cdtArgsOf(op)
	if err != nil {
		return nil, err
	}
	bin := op.Bin
	idx, rank, count := int(op.Index), int(op.Rank), int(op.Count)
	rt := aero.ListReturnType(op.ReturnType)
	lp := aero.NewListPolicy(aero.ListOrderType(op.ListPolicy.Order), op.ListPolicy.Flags)

	switch op.Code {
	case operation.OpListAppend:
		return aero.ListAppendWithPolicyOp(lp, bin, a.val), nil
	case operation.OpListAppendItems:
		return aero.ListAppendWithPolicyOp(lp, bin, a.items...), nil
	case operation.OpListInsert:
		return aero.ListInsertWithPolicyOp(lp, bin, idx, a.val), nil
	case operation.OpListInsertItems:
		return aero.ListInsertWithPolicyOp(lp, bin, idx, a.items...), nil
	case operation.OpListPop:
		return aero.ListPopOp(bin, idx), nil
	case operation.OpListPopRange:
		if count < 0 {
			return aero.ListPopRangeFromOp(bin, idx), nil
		}
		return aero.ListPopRangeOp(bin, idx, count), nil
	case operation.OpListRemove:
		return aero.ListRemoveOp(bin, idx), nil
	case operation.OpListRemoveRange:
		if count < 0 {
			return aero.ListRemoveRangeFromOp(bin, idx), nil
		}
		return aero.ListRemoveRangeOp(bin, idx, count), nil
	case operation.OpListSet:
		return aero.ListSetOp(bin, idx, a.val), nil
	case operation.OpListTrim:
		return aero.ListTrimOp(bin, idx, count), nil
	case operation.OpListClear:
		return aero.ListClearOp(bin), nil
	case operation.OpListSize:
		return aero.ListSizeOp(bin), nil
	case operation.OpListGet:
		return aero.ListGetOp(bin, idx), nil
	case operation.OpListGetRange:
		if count < 0 {
			return aero.ListGetRangeFromOp(bin, idx), nil
		}
		return aero.ListGetRangeOp(bin, idx, count), nil
	case operation.OpListGetByValue:
		return aero.ListGetByValueOp(bin, a.val, rt), nil
	case operation.OpListGetByValueList:
		return aero.ListGetByValueListOp(bin, a.items, rt), nil
	case operation.OpListGetByValueRange:
		return aero.ListGetByValueRangeOp(bin, a.val, a.end, rt), nil
	case operation.OpListGetByIndex:
		return aero.ListGetByIndexOp(bin, idx, rt), nil
	case operation.OpListGetByIndexRange:
		if count < 0 {
			return aero.ListGetByIndexRangeOp(bin, idx, rt), nil
		}
		return aero.ListGetByIndexRangeCountOp(bin, idx, count, rt), nil
	case operation.OpListGetByRank:
		return aero.ListGetByRankOp(bin, rank, rt), nil
	case operation.OpListGetByRankRange:
		if count < 0 {
			return aero.ListGetByRankRangeOp(bin, rank, rt), nil
		}
		return aero.ListGetByRankRangeCountOp(bin, rank, count, rt), nil
	case operation.OpListRemoveByValue:
		return aero.ListRemoveByValueOp(bin, a.val, rt), nil
	case operation.OpListRemoveByValueList:
		return aero.ListRemoveByValueListOp(bin, a.items, rt), nil
	case operation.OpListRemoveByValueRange:
		return aero.ListRemoveByValueRangeOp(bin, rt, a.val, a.end), nil
	case operation.OpListRemoveByIndex:
		return aero.ListRemoveByIndexOp(bin, idx, rt), nil
	case operation.OpListRemoveByIndexRange:
		if count < 0 {
			return aero.ListRemoveByIndexRangeOp(bin, idx, rt), nil
		}
		return aero.ListRemoveByIndexRangeCountOp(bin, idx, count, rt), nil
	case operation.OpListRemoveByRank:
		return aero.ListRemoveByRankOp(bin, rank, rt), nil
	case operation.OpListRemoveByRankRange:
		if count < 0 {
			return aero.ListRemoveByRankRangeOp(bin, rank, rt), nil
		}
		return aero.ListRemoveByRankRangeCountOp(bin, rank, count, rt), nil
	case operation.OpListIncrement:
		return aero.ListIncrementWithPolicyOp(lp, bin, idx, a.val), nil
	case operation.OpListSort:
		return aero.ListSortOp(bin, aero.ListSortFlags(intOf(op.Value))), nil
	case operation.OpListSetOrder:
		return aero.ListSetOrderOp(bin, aero.ListOrderType(intOf(op.Value))), nil
	}
	return nil, kverrors.Newf(kverrors.InvalidArgError, "unsupported list operation %s", op.Code)
}

func mapOp(op operation.Operation) (*aero.Operation, error) {
	a, err := cdtArgsOf(op)
	if err != nil {
		return nil, err
	}
	bin := op.Bin
	idx, rank, count := int(op.Index), int(op.Rank), int(op.Count)

	rt := aero.MapReturnType.NONE
	switch op.ReturnType {
	case operation.ReturnIndex:
		rt = aero.MapReturnType.INDEX
	case operation.ReturnReverseIndex:
		rt = aero.MapReturnType.REVERSE_INDEX
	case operation.ReturnRank:
		rt = aero.MapReturnType.RANK
	case operation.ReturnReverseRank:
		rt = aero.MapReturnType.REVERSE_RANK
	case operation.ReturnCount:
		rt = aero.MapReturnType.COUNT
	case operation.ReturnKey:
		rt = aero.MapReturnType.KEY
	case operation.ReturnValue:
		rt = aero.MapReturnType.VALUE
	case operation.ReturnKeyValue:
		rt = aero.MapReturnType.KEY_VALUE
	case operation.ReturnExists:
		rt = aero.MapReturnType.EXISTS
	}

	order := aero.MapOrder.UNORDERED
	switch op.MapPolicy.Order {
	case operation.MapKeyOrdered:
		order = aero.MapOrder.KEY_ORDERED
	case operation.MapKeyValueOrdered:
		order = aero.MapOrder.KEY_VALUE_ORDERED
	}
	mp := aero.NewMapPolicyWithFlags(order, op.MapPolicy.WriteMode)

	switch op.Code {
	case operation.OpMapSetOrder:
		setOrder := aero.MapOrder.UNORDERED
		switch operation.MapOrder(intOf(op.Value)) {
		case operation.MapKeyOrdered:
			setOrder = aero.MapOrder.KEY_ORDERED
		case operation.MapKeyValueOrdered:
			setOrder = aero.MapOrder.KEY_VALUE_ORDERED
		}
		return aero.MapSetPolicyOp(aero.NewMapPolicyWithFlags(setOrder, aero.MapWriteFlagsDefault), bin), nil
	case operation.OpMapPut:
		return aero.MapPutOp(mp, bin, a.key, a.val), nil
	case operation.OpMapPutItems:
		items, _ := a.val.(map[interface{}]interface{})
		return aero.MapPutItemsOp(mp, bin, items), nil
	case operation.OpMapIncrement:
		return aero.MapIncrementOp(mp, bin, a.key, a.val), nil
	case operation.OpMapDecrement:
		return aero.MapDecrementOp(mp, bin, a.key, a.val), nil
	case operation.OpMapClear:
		return aero.MapClearOp(bin), nil
	case operation.OpMapSize:
		return aero.MapSizeOp(bin), nil
	case operation.OpMapRemoveByKey:
		return aero.MapRemoveByKeyOp(bin, a.key, rt), nil
	case operation.OpMapRemoveByKeyList:
		return aero.MapRemoveByKeyListOp(bin, a.items, rt), nil
	case operation.OpMapRemoveByKeyRange:
		return aero.MapRemoveByKeyRangeOp(bin, a.val, a.end, rt), nil
	case operation.OpMapRemoveByValue:
		return aero.MapRemoveByValueOp(bin, a.val, rt), nil
	case operation.OpMapRemoveByValueList:
		return aero.MapRemoveByValueListOp(bin, a.items, rt), nil
	case operation.OpMapRemoveByValueRange:
		return aero.MapRemoveByValueRangeOp(bin, a.val, a.end, rt), nil
	case operation.OpMapRemoveByIndex:
		return aero.MapRemoveByIndexOp(bin, idx, rt), nil
	case operation.OpMapRemoveByIndexRange:
		if count < 0 {
			return aero.MapRemoveByIndexRangeOp(bin, idx, rt), nil
		}
		return aero.MapRemoveByIndexRangeCountOp(bin, idx, count, rt), nil
	case operation.OpMapRemoveByRank:
		return aero.MapRemoveByRankOp(bin, rank, rt), nil
	case operation.OpMapRemoveByRankRange:
		if count < 0 {
			return aero.MapRemoveByRankRangeOp(bin, rank, rt), nil
		}
		return aero.MapRemoveByRankRangeCountOp(bin, rank, count, rt), nil
	case operation.OpMapGetByKey:
		return aero.MapGetByKeyOp(bin, a.key, rt), nil
	case operation.OpMapGetByKeyRange:
		return aero.MapGetByKeyRangeOp(bin, a.val, a.end, rt), nil
	case operation.OpMapGetByKeyList:
		return aero.MapGetByKeyListOp(bin, a.items, rt), nil
	case operation.OpMapGetByValue:
		return aero.MapGetByValueOp(bin, a.val, rt), nil
	case operation.OpMapGetByValueRange:
		return aero.MapGetByValueRangeOp(bin, a.val, a.end, rt), nil
	case operation.OpMapGetByValueList:
		return aero.MapGetByValueListOp(bin, a.items, rt), nil
	case operation.OpMapGetByIndex:
		return aero.MapGetByIndexOp(bin, idx, rt), nil
	case operation.OpMapGetByIndexRange:
		if count < 0 {
			return aero.MapGetByIndexRangeOp(bin, idx, rt), nil
		}
		return aero.MapGetByIndexRangeCountOp(bin, idx, count, rt), nil
	case operation.OpMapGetByRank:
		return aero.MapGetByRankOp(bin, rank, rt), nil
	case operation.OpMapGetByRankRange:
		if count < 0 {
			return aero.MapGetByRankRangeOp(bin, rank, rt), nil
		}
		return aero.MapGetByRankRangeCountOp(bin, rank, count, rt), nil
	}
	return nil, kverrors.Newf(kverrors.InvalidArgError, "unsupported map operation %s", op.Code)
}

func intOf(v value.Value) int {
	if n, ok := v.(value.Int); ok {
		return int(n)
	}
	return 0
}

// orderResults matches the per-bin results of a multi-op, returned with
// RespondPerEachOp set, back to the operations that produced them. The rules
// follow the local backend: reads always answer, writes report the written
// value, increments and concatenations report the value read back after them,
// and value-less results appear as Nil only when respondAll is set.
func orderResults(ops []operation.Operation, bins aero.BinMap, respondAll bool) []record.Bin {
	queues := make(map[string][]interface{}, len(bins))
	for name, v := range bins {
		if results, ok := v.(aero.OpResults); ok {
			queues[name] = []interface{}(results)
		} else {
			queues[name] = []interface{}{v}
		}
	}
	next := func(bin string) interface{} {
		q := queues[bin]
		if len(q) == 0 {
			return nil
		}
		queues[bin] = q[1:]
		return q[0]
	}

	var out []record.Bin
	emit := func(name string, v interface{}) {
		if v == nil && !respondAll {
			return
		}
		out = append(out, record.Bin{Name: name, Value: fromAero(v)})
	}

	for _, op := range ops {
		switch {
		case op.ReadsAllBins():
			names := make([]string, 0, len(queues))
			for name, q := range queues {
				if len(q) > 0 {
					names = append(names, name)
				}
			}
			sort.Strings(names)
			for _, name := range names {
				out = append(out, record.Bin{Name: name, Value: fromAero(next(name))})
			}
		case op.Code == operation.OpRead:
			out = append(out, record.Bin{Name: op.Bin, Value: fromAero(next(op.Bin))})
		case op.Code == operation.OpWrite:
			next(op.Bin)
			out = append(out, record.Bin{Name: op.Bin, Value: op.Value})
		case readsBack(op):
			next(op.Bin)
			out = append(out, record.Bin{Name: op.Bin, Value: fromAero(next(op.Bin))})
		case op.Code == operation.OpTouch, op.Code == operation.OpDelete:
		default:
			emit(op.Bin, next(op.Bin))
		}
	}
	return out
}
