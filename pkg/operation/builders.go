package operation

// Read reads one bin.
func Read(bin string) Spec { return Spec{"op": OpRead, "bin": bin} }

// ReadAll reads every bin of the record.
func ReadAll() Spec { return Spec{"op": OpRead} }

// Write sets a bin. Writing nil removes the bin.
func Write(bin string, v any) Spec { return Spec{"op": OpWrite, "bin": bin, "val": v} }

// Increment adds delta to an integer or float bin.
func Increment(bin string, delta any) Spec { return Spec{"op": OpIncr, "bin": bin, "val": delta} }

// Append appends to a string or bytes bin.
func Append(bin string, v any) Spec { return Spec{"op": OpAppend, "bin": bin, "val": v} }

// Prepend prepends to a string or bytes bin.
func Prepend(bin string, v any) Spec { return Spec{"op": OpPrepend, "bin": bin, "val": v} }

// Touch resets the record TTL.
func Touch() Spec { return Spec{"op": OpTouch} }

// Delete removes the record.
func Delete() Spec { return Spec{"op": OpDelete} }

func ListAppend(bin string, v any) Spec {
	return Spec{"op": OpListAppend, "bin": bin, "val": v}
}

func ListAppendItems(bin string, items []any) Spec {
	return Spec{"op": OpListAppendItems, "bin": bin, "val": items}
}

func ListInsert(bin string, index int64, v any) Spec {
	return Spec{"op": OpListInsert, "bin": bin, "index": index, "val": v}
}

func ListInsertItems(bin string, index int64, items []any) Spec {
	return Spec{"op": OpListInsertItems, "bin": bin, "index": index, "val": items}
}

func ListPop(bin string, index int64) Spec {
	return Spec{"op": OpListPop, "bin": bin, "index": index}
}

func ListPopRange(bin string, index, count int64) Spec {
	return Spec{"op": OpListPopRange, "bin": bin, "index": index, "count": count}
}

func ListRemove(bin string, index int64) Spec {
	return Spec{"op": OpListRemove, "bin": bin, "index": index}
}

func ListRemoveRange(bin string, index, count int64) Spec {
	return Spec{"op": OpListRemoveRange, "bin": bin, "index": index, "count": count}
}

func ListSet(bin string, index int64, v any) Spec {
	return Spec{"op": OpListSet, "bin": bin, "index": index, "val": v}
}

func ListTrim(bin string, index, count int64) Spec {
	return Spec{"op": OpListTrim, "bin": bin, "index": index, "count": count}
}

func ListClear(bin string) Spec { return Spec{"op": OpListClear, "bin": bin} }

func ListSize(bin string) Spec { return Spec{"op": OpListSize, "bin": bin} }

func ListGet(bin string, index int64) Spec {
	return Spec{"op": OpListGet, "bin": bin, "index": index}
}

func ListGetRange(bin string, index, count int64) Spec {
	return Spec{"op": OpListGetRange, "bin": bin, "index": index, "count": count}
}

func ListGetByValue(bin string, v any, rt ReturnType) Spec {
	return Spec{"op": OpListGetByValue, "bin": bin, "val": v, "return_type": rt}
}

func ListGetByIndex(bin string, index int64, rt ReturnType) Spec {
	return Spec{"op": OpListGetByIndex, "bin": bin, "index": index, "return_type": rt}
}

// ListGetByIndexRange selects count items from index; a negative count selects
// through the end of the list.
func ListGetByIndexRange(bin string, index, count int64, rt ReturnType) Spec {
	s := Spec{"op": OpListGetByIndexRange, "bin": bin, "index": index, "return_type": rt}
	if count >= 0 {
		s["count"] = count
	}
	return s
}

func ListGetByRank(bin string, rank int64, rt ReturnType) Spec {
	return Spec{"op": OpListGetByRank, "bin": bin, "rank": rank, "return_type": rt}
}

func ListGetByValueRange(bin string, begin, end any, rt ReturnType) Spec {
	return Spec{"op": OpListGetByValueRange, "bin": bin, "val": begin, "val_end": end, "return_type": rt}
}

func ListRemoveByValue(bin string, v any, rt ReturnType) Spec {
	return Spec{"op": OpListRemoveByValue, "bin": bin, "val": v, "return_type": rt}
}

func ListRemoveByIndex(bin string, index int64, rt ReturnType) Spec {
	return Spec{"op": OpListRemoveByIndex, "bin": bin, "index": index, "return_type": rt}
}

func ListIncrement(bin string, index int64, delta any) Spec {
	return Spec{"op": OpListIncrement, "bin": bin, "index": index, "val": delta}
}

func ListSort(bin string, flags int) Spec {
	return Spec{"op": OpListSort, "bin": bin, "val": flags}
}

func ListSetOrder(bin string, order ListOrder) Spec {
	return Spec{"op": OpListSetOrder, "bin": bin, "val": int(order)}
}

func MapPut(bin string, key, v any) Spec {
	return Spec{"op": OpMapPut, "bin": bin, "map_key": key, "val": v}
}

func MapPutItems(bin string, items map[string]any) Spec {
	return Spec{"op": OpMapPutItems, "bin": bin, "val": items}
}

func MapIncrement(bin string, key, delta any) Spec {
	return Spec{"op": OpMapIncrement, "bin": bin, "map_key": key, "val": delta}
}

func MapDecrement(bin string, key, delta any) Spec {
	return Spec{"op": OpMapDecrement, "bin": bin, "map_key": key, "val": delta}
}

func MapClear(bin string) Spec { return Spec{"op": OpMapClear, "bin": bin} }

func MapSize(bin string) Spec { return Spec{"op": OpMapSize, "bin": bin} }

func MapGetByKey(bin string, key any, rt ReturnType) Spec {
	return Spec{"op": OpMapGetByKey, "bin": bin, "map_key": key, "return_type": rt}
}

func MapGetByKeyRange(bin string, begin, end any, rt ReturnType) Spec {
	return Spec{"op": OpMapGetByKeyRange, "bin": bin, "val": begin, "val_end": end, "return_type": rt}
}

func MapGetByKeyList(bin string, keys []any, rt ReturnType) Spec {
	return Spec{"op": OpMapGetByKeyList, "bin": bin, "val": keys, "return_type": rt}
}

func MapGetByValue(bin string, v any, rt ReturnType) Spec {
	return Spec{"op": OpMapGetByValue, "bin": bin, "val": v, "return_type": rt}
}

func MapGetByIndex(bin string, index int64, rt ReturnType) Spec {
	return Spec{"op": OpMapGetByIndex, "bin": bin, "index": index, "return_type": rt}
}

func MapGetByRank(bin string, rank int64, rt ReturnType) Spec {
	return Spec{"op": OpMapGetByRank, "bin": bin, "rank": rank, "return_type": rt}
}

func MapRemoveByKey(bin string, key any, rt ReturnType) Spec {
	return Spec{"op": OpMapRemoveByKey, "bin": bin, "map_key": key, "return_type": rt}
}

func MapRemoveByKeyList(bin string, keys []any, rt ReturnType) Spec {
	return Spec{"op": OpMapRemoveByKeyList, "bin": bin, "val": keys, "return_type": rt}
}

func MapRemoveByValue(bin string, v any, rt ReturnType) Spec {
	return Spec{"op": OpMapRemoveByValue, "bin": bin, "val": v, "return_type": rt}
}

func MapSetOrder(bin string, order MapOrder) Spec {
	return Spec{"op": OpMapSetOrder, "bin": bin, "val": int(order)}
}

// WithListPolicy returns a copy of s carrying a list write policy.
func (s Spec) WithListPolicy(p ListPolicy) Spec {
	cp := s.clone()
	cp["list_policy"] = map[string]any{"order": int(p.Order), "flags": p.Flags}
	return cp
}

// WithMapPolicy returns a copy of s carrying a map write policy.
func (s Spec) WithMapPolicy(p MapPolicy) Spec {
	cp := s.clone()
	cp["map_policy"] = map[string]any{"order": int(p.Order), "write_mode": p.WriteMode}
	return cp
}

func (s Spec) clone() Spec {
	cp := make(Spec, len(s)+1)
	for k, v := range s {
		cp[k] = v
	}
	return cp
}
