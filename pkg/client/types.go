package client

import (
	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// Record is a read result with host-typed bins.
type Record struct {
	// Key is nil when the server returned only a digest.
	Key  *record.Key
	Meta *record.Meta
	Bins map[string]any
}

// ExistsResult is the answer of Exists. Meta is nil when the record does not
// exist.
type ExistsResult struct {
	Key  record.Key
	Meta *record.Meta
}

// Found reports whether the record exists.
func (r *ExistsResult) Found() bool { return r.Meta != nil }

// Bin is one named result of an ordered operate.
type Bin struct {
	Name  string
	Value any
}

// OrderedRecord is the result of OperateOrdered: one bin per operation that
// produced a value, in submission order.
type OrderedRecord struct {
	Key  *record.Key
	Meta *record.Meta
	Bins []Bin
}

// BatchRecord is the outcome for one key of a batch call.
type BatchRecord struct {
	Key        record.Key
	ResultCode kverrors.ResultCode
	// Record is nil when the entry failed.
	Record  *Record
	InDoubt bool
}

// OK reports whether the entry succeeded.
func (b BatchRecord) OK() bool { return b.ResultCode == kverrors.CodeOK }

// Err returns the error of a failed entry, or nil.
func (b BatchRecord) Err() error {
	if b.OK() {
		return nil
	}
	e := kverrors.FromCode(b.ResultCode, "")
	if b.InDoubt {
		e = e.WithInDoubt(true)
	}
	return e
}

// InfoResult is the response of one node to an info command.
type InfoResult = cluster.InfoResult

func toRecord(r *record.Record) *Record {
	if r == nil {
		return nil
	}
	return &Record{Key: r.Key, Meta: r.Meta, Bins: value.DecodeBins(r.Bins)}
}

func toOrdered(r *record.OrderedRecord) *OrderedRecord {
	if r == nil {
		return nil
	}
	out := &OrderedRecord{Key: r.Key, Meta: r.Meta, Bins: make([]Bin, len(r.Bins))}
	for i, b := range r.Bins {
		out.Bins[i] = Bin{Name: b.Name, Value: value.Decode(b.Value)}
	}
	return out
}

func toBatchRecords(entries []record.BatchEntry) []BatchRecord {
	out := make([]BatchRecord, len(entries))
	for i, e := range entries {
		out[i] = BatchRecord{Key: e.Key, ResultCode: e.ResultCode, InDoubt: e.InDoubt}
		if e.OK() {
			out[i].Record = toRecord(e.Record)
		}
	}
	return out
}
