// Package operation describes the operations of a multi-op request.
//
// Hosts describe operations as dicts (Spec). Parse validates a Spec against the
// requirements of its op code and produces a typed Operation that storage
// backends execute:
//
//	ops := []operation.Spec{
//		operation.Read("a"),
//		operation.Write("b", 1),
//		operation.ListAppend("tags", "new"),
//	}
//	parsed, err := operation.ParseAll(ops)
package operation

import "github.com/ajitpratap0/kvbridge/pkg/value"

// Spec is the host form of one operation: a dict keyed by "op", "bin", "val",
// "index", "rank", "count", "return_type", "map_key", "val_end", "list_policy"
// and "map_policy".
type Spec map[string]any

// ReturnType selects what a list or map operation returns.
type ReturnType int

const (
	ReturnNone         ReturnType = 0
	ReturnIndex        ReturnType = 1
	ReturnReverseIndex ReturnType = 2
	ReturnRank         ReturnType = 3
	ReturnReverseRank  ReturnType = 4
	ReturnCount        ReturnType = 5
	ReturnKey          ReturnType = 6
	ReturnValue        ReturnType = 7
	ReturnKeyValue     ReturnType = 8
	ReturnExists       ReturnType = 13
)

// ListOrder is the ordering attribute of a list bin.
type ListOrder int

const (
	ListUnordered ListOrder = 0
	ListOrdered   ListOrder = 1
)

// List write and sort flags.
const (
	ListWriteDefault       = 0
	ListWriteAddUnique     = 1
	ListWriteInsertBounded = 2
	ListWriteNoFail        = 4
	ListWritePartial       = 8

	ListSortDefault        = 0
	ListSortDropDuplicates = 2
)

// ListPolicy is the "list_policy" of list writes.
type ListPolicy struct {
	Order ListOrder
	Flags int
}

// MapOrder is the ordering attribute of a map bin.
type MapOrder int

const (
	MapUnordered       MapOrder = 0
	MapKeyOrdered      MapOrder = 1
	MapKeyValueOrdered MapOrder = 3
)

// Map write flags. Update (0) creates or replaces the entry.
const (
	MapWriteUpdate     = 0
	MapWriteCreateOnly = 1
	MapWriteUpdateOnly = 2
	MapWriteNoFail     = 4
	MapWritePartial    = 8
)

// MapPolicy is the "map_policy" of map writes.
type MapPolicy struct {
	Order     MapOrder
	WriteMode int
}

// Operation is a validated operation.
type Operation struct {
	Code Code
	// Bin is empty for record-level operations and for a READ of all bins.
	Bin   string
	Value value.Value
	Index int64
	Rank  int64
	// Count is -1 when the range runs to the end.
	Count      int64
	ReturnType ReturnType
	MapKey     value.Value
	// ValueEnd is nil for an unbounded range.
	ValueEnd   value.Value
	ListPolicy ListPolicy
	MapPolicy  MapPolicy
}

// ReadsAllBins reports whether the operation is a READ without a bin name.
func (o Operation) ReadsAllBins() bool {
	return o.Code == OpRead && o.Bin == ""
}

// Items returns the elements of a list-valued operand.
func (o Operation) Items() []value.Value {
	if l, ok := o.Value.(value.List); ok {
		return l
	}
	return nil
}
