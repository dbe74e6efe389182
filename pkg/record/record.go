package record

import (
	"strconv"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// TTLNeverExpires is the read-side TTL of a record that never expires.
const TTLNeverExpires int32 = -1

// Meta is the server-maintained metadata of a record.
type Meta struct {
	// Generation increments on every write.
	Generation uint32
	// TTL is the remaining lifetime in seconds, or TTLNeverExpires.
	TTL int32
}

// Record is the result of a read. Each field is independently optional: Key is
// nil when only a digest was sent, Meta and Bins are nil when the record was
// not found.
type Record struct {
	Key  *Key
	Meta *Meta
	Bins value.BinMap
}

// Bin is one named value of an ordered result.
type Bin struct {
	Name  string
	Value value.Value
}

// OrderedRecord is the result of an ordered multi-op: one Bin per operation
// that produced a result, in submission order.
type OrderedRecord struct {
	Key  *Key
	Meta *Meta
	Bins []Bin
}

// Collapse folds the ordered bins into a map keeping the last value per bin.
func (o *OrderedRecord) Collapse() *Record {
	bins := make(value.BinMap, len(o.Bins))
	for _, b := range o.Bins {
		bins[b.Name] = b.Value
	}
	return &Record{Key: o.Key, Meta: o.Meta, Bins: bins}
}

// BatchEntry is the outcome for one key of a batch request.
type BatchEntry struct {
	Key        Key
	ResultCode kverrors.ResultCode
	Record     *Record
	InDoubt    bool
}

// OK reports whether the entry succeeded.
func (e BatchEntry) OK() bool {
	return e.ResultCode == kverrors.CodeOK
}

// BatchWrite is one row of a batch write: a key and the bins to store.
type BatchWrite struct {
	Key  Key
	Bins value.BinMap
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
