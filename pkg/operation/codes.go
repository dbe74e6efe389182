package operation

import "strconv"

// Code identifies an operation inside a multi-op request.
type Code int

// Basic record operations.
const (
	OpRead    Code = 1
	OpWrite   Code = 2
	OpIncr    Code = 5
	OpAppend  Code = 9
	OpPrepend Code = 10
	OpTouch   Code = 11
	OpDelete  Code = 12
)

// List operations.
const (
	OpListAppend Code = 1001 + iota
	OpListAppendItems
	OpListInsert
	OpListInsertItems
	OpListPop
	OpListPopRange
	OpListRemove
	OpListRemoveRange
	OpListSet
	OpListTrim
	OpListClear
	OpListSize
	OpListGet
	OpListGetRange
	OpListGetByValue
	OpListGetByIndex
	OpListGetByIndexRange
	OpListGetByRank
	OpListGetByRankRange
	OpListGetByValueList
	OpListGetByValueRange
	OpListRemoveByValue
	OpListRemoveByValueList
	OpListRemoveByValueRange
	OpListRemoveByIndex
	OpListRemoveByIndexRange
	OpListRemoveByRank
	OpListRemoveByRankRange
	OpListIncrement
	OpListSort
	OpListSetOrder
)

// Map operations.
const (
	OpMapSetOrder Code = 2001 + iota
	OpMapPut
	OpMapPutItems
	OpMapIncrement
	OpMapDecrement
	OpMapClear
	OpMapRemoveByKey
	OpMapRemoveByKeyList
	OpMapRemoveByKeyRange
	OpMapRemoveByValue
	OpMapRemoveByValueList
	OpMapRemoveByValueRange
	OpMapRemoveByIndex
	OpMapRemoveByIndexRange
	OpMapRemoveByRank
	OpMapRemoveByRankRange
	OpMapSize
	OpMapGetByKey
	OpMapGetByKeyRange
	OpMapGetByValue
	OpMapGetByValueRange
	OpMapGetByIndex
	OpMapGetByIndexRange
	OpMapGetByRank
	OpMapGetByRankRange
	OpMapGetByKeyList
	OpMapGetByValueList
)

// needs describes which spec fields an operation reads.
type needs uint16

const (
	needBin needs = 1 << iota
	needIndex
	needRank
	needReturnType
	needMapKey
	needListValue
	needMapValue
	useListPolicy
	useMapPolicy
	optCount
	optValueEnd
	modifies
)

type codeInfo struct {
	name  string
	needs needs
	// defaultCount applies when "count" is absent; -1 means until the end.
	defaultCount int64
}

var codes = map[Code]codeInfo{
	OpRead:    {name: "read"},
	OpWrite:   {name: "write", needs: needBin | modifies},
	OpIncr:    {name: "increment", needs: needBin | modifies},
	OpAppend:  {name: "append", needs: needBin | modifies},
	OpPrepend: {name: "prepend", needs: needBin | modifies},
	OpTouch:   {name: "touch", needs: modifies},
	OpDelete:  {name: "delete", needs: modifies},

	OpListAppend:             {name: "list_append", needs: needBin | useListPolicy | modifies},
	OpListAppendItems:        {name: "list_append_items", needs: needBin | needListValue | useListPolicy | modifies},
	OpListInsert:             {name: "list_insert", needs: needBin | needIndex | useListPolicy | modifies},
	OpListInsertItems:        {name: "list_insert_items", needs: needBin | needIndex | needListValue | useListPolicy | modifies},
	OpListPop:                {name: "list_pop", needs: needBin | needIndex | modifies},
	OpListPopRange:           {name: "list_pop_range", needs: needBin | needIndex | optCount | modifies, defaultCount: 1},
	OpListRemove:             {name: "list_remove", needs: needBin | needIndex | modifies},
	OpListRemoveRange:        {name: "list_remove_range", needs: needBin | needIndex | optCount | modifies, defaultCount: 1},
	OpListSet:                {name: "list_set", needs: needBin | needIndex | modifies},
	OpListTrim:               {name: "list_trim", needs: needBin | needIndex | optCount | modifies},
	OpListClear:              {name: "list_clear", needs: needBin | modifies},
	OpListSize:               {name: "list_size", needs: needBin},
	OpListGet:                {name: "list_get", needs: needBin | needIndex},
	OpListGetRange:           {name: "list_get_range", needs: needBin | needIndex | optCount, defaultCount: 1},
	OpListGetByValue:         {name: "list_get_by_value", needs: needBin | needReturnType},
	OpListGetByIndex:         {name: "list_get_by_index", needs: needBin | needIndex | needReturnType},
	OpListGetByIndexRange:    {name: "list_get_by_index_range", needs: needBin | needIndex | needReturnType | optCount, defaultCount: -1},
	OpListGetByRank:          {name: "list_get_by_rank", needs: needBin | needRank | needReturnType},
	OpListGetByRankRange:     {name: "list_get_by_rank_range", needs: needBin | needRank | needReturnType | optCount, defaultCount: -1},
	OpListGetByValueList:     {name: "list_get_by_value_list", needs: needBin | needListValue | needReturnType},
	OpListGetByValueRange:    {name: "list_get_by_value_range", needs: needBin | needReturnType | optValueEnd},
	OpListRemoveByValue:      {name: "list_remove_by_value", needs: needBin | needReturnType | modifies},
	OpListRemoveByValueList:  {name: "list_remove_by_value_list", needs: needBin | needListValue | needReturnType | modifies},
	OpListRemoveByValueRange: {name: "list_remove_by_value_range", needs: needBin | needReturnType | optValueEnd | modifies},
	OpListRemoveByIndex:      {name: "list_remove_by_index", needs: needBin | needIndex | needReturnType | modifies},
	OpListRemoveByIndexRange: {name: "list_remove_by_index_range", needs: needBin | needIndex | needReturnType | optCount | modifies, defaultCount: -1},
	OpListRemoveByRank:       {name: "list_remove_by_rank", needs: needBin | needRank | needReturnType | modifies},
	OpListRemoveByRankRange:  {name: "list_remove_by_rank_range", needs: needBin | needRank | needReturnType | optCount | modifies, defaultCount: -1},
	OpListIncrement:          {name: "list_increment", needs: needBin | needIndex | useListPolicy | modifies},
	OpListSort:               {name: "list_sort", needs: needBin | modifies},
	OpListSetOrder:           {name: "list_set_order", needs: needBin | modifies},

	OpMapSetOrder:           {name: "map_set_order", needs: needBin | modifies},
	OpMapPut:                {name: "map_put", needs: needBin | needMapKey | useMapPolicy | modifies},
	OpMapPutItems:           {name: "map_put_items", needs: needBin | needMapValue | useMapPolicy | modifies},
	OpMapIncrement:          {name: "map_increment", needs: needBin | needMapKey | useMapPolicy | modifies},
	OpMapDecrement:          {name: "map_decrement", needs: needBin | needMapKey | useMapPolicy | modifies},
	OpMapClear:              {name: "map_clear", needs: needBin | modifies},
	OpMapRemoveByKey:        {name: "map_remove_by_key", needs: needBin | needMapKey | needReturnType | modifies},
	OpMapRemoveByKeyList:    {name: "map_remove_by_key_list", needs: needBin | needListValue | needReturnType | modifies},
	OpMapRemoveByKeyRange:   {name: "map_remove_by_key_range", needs: needBin | needReturnType | optValueEnd | modifies},
	OpMapRemoveByValue:      {name: "map_remove_by_value", needs: needBin | needReturnType | modifies},
	OpMapRemoveByValueList:  {name: "map_remove_by_value_list", needs: needBin | needListValue | needReturnType | modifies},
	OpMapRemoveByValueRange: {name: "map_remove_by_value_range", needs: needBin | needReturnType | optValueEnd | modifies},
	OpMapRemoveByIndex:      {name: "map_remove_by_index", needs: needBin | needIndex | needReturnType | modifies},
	OpMapRemoveByIndexRange: {name: "map_remove_by_index_range", needs: needBin | needIndex | needReturnType | optCount | modifies, defaultCount: 1},
	OpMapRemoveByRank:       {name: "map_remove_by_rank", needs: needBin | needRank | needReturnType | modifies},
	OpMapRemoveByRankRange:  {name: "map_remove_by_rank_range", needs: needBin | needRank | needReturnType | optCount | modifies, defaultCount: 1},
	OpMapSize:               {name: "map_size", needs: needBin},
	OpMapGetByKey:           {name: "map_get_by_key", needs: needBin | needMapKey | needReturnType},
	OpMapGetByKeyRange:      {name: "map_get_by_key_range", needs: needBin | needReturnType | optValueEnd},
	OpMapGetByValue:         {name: "map_get_by_value", needs: needBin | needReturnType},
	OpMapGetByValueRange:    {name: "map_get_by_value_range", needs: needBin | needReturnType | optValueEnd},
	OpMapGetByIndex:         {name: "map_get_by_index", needs: needBin | needIndex | needReturnType},
	OpMapGetByIndexRange:    {name: "map_get_by_index_range", needs: needBin | needIndex | needReturnType | optCount, defaultCount: 1},
	OpMapGetByRank:          {name: "map_get_by_rank", needs: needBin | needRank | needReturnType},
	OpMapGetByRankRange:     {name: "map_get_by_rank_range", needs: needBin | needRank | needReturnType | optCount, defaultCount: 1},
	OpMapGetByKeyList:       {name: "map_get_by_key_list", needs: needBin | needListValue | needReturnType},
	OpMapGetByValueList:     {name: "map_get_by_value_list", needs: needBin | needListValue | needReturnType},
}

func (c Code) String() string {
	if info, ok := codes[c]; ok {
		return info.name
	}
	return "op(" + strconv.Itoa(int(c)) + ")"
}

// Known reports whether c is a supported operation code.
func (c Code) Known() bool {
	_, ok := codes[c]
	return ok
}

// IsList reports whether c is a list operation.
func (c Code) IsList() bool { return c >= OpListAppend && c <= OpListSetOrder }

// IsMap reports whether c is a map operation.
func (c Code) IsMap() bool { return c >= OpMapSetOrder && c <= OpMapGetByValueList }

// Modifies reports whether c changes the record.
func (c Code) Modifies() bool { return codes[c].needs&modifies != 0 }
