// Package policy resolves the per-call behavioural parameters of every
// operation.
//
// Each category (read, write, batch, query, admin, info) has one immutable
// default, built lazily on first use and shared for the life of the process.
// A call resolves its effective policy by overlaying only the fields it set
// explicitly:
//
//	r, err := policy.ResolveWrite(nil, map[string]any{"exists": policy.ExistsCreateOnly})
//	p := r.Policy() // a private copy with Exists changed
//
//	r, _ = policy.ResolveWrite(nil, nil)
//	p = r.Policy() // the shared default itself; never mutate it
//
// Unknown field names and values of the wrong type fail with
// kverrors.InvalidArgError.
package policy

import (
	"time"

	"github.com/ajitpratap0/kvbridge/pkg/expression"
)

// Category names a policy family.
type Category string

const (
	CategoryRead  Category = "read"
	CategoryWrite Category = "write"
	CategoryBatch Category = "batch"
	CategoryQuery Category = "query"
	CategoryAdmin Category = "admin"
	CategoryInfo  Category = "info"
)

// KeyPolicy selects whether the user key is stored next to the digest.
type KeyPolicy int

const (
	KeyDigest KeyPolicy = 0
	KeySend   KeyPolicy = 1
)

// RecordExists controls how a write treats an existing record.
type RecordExists int

const (
	ExistsUpdate      RecordExists = 0
	ExistsUpdateOnly  RecordExists = 1
	ExistsReplace     RecordExists = 2
	ExistsReplaceOnly RecordExists = 3
	ExistsCreateOnly  RecordExists = 4
)

// GenPolicy controls the generation check of a write.
type GenPolicy int

const (
	GenIgnore GenPolicy = 0
	GenEQ     GenPolicy = 1
	GenGT     GenPolicy = 2
)

// CommitLevel selects which replicas must acknowledge a write.
type CommitLevel int

const (
	CommitAll    CommitLevel = 0
	CommitMaster CommitLevel = 1
)

// TTL is a write-side time to live in seconds, or one of the sentinels.
type TTL int32

const (
	TTLNamespaceDefault TTL = 0
	TTLNeverExpire      TTL = -1
	TTLDontUpdate       TTL = -2
	TTLClientDefault    TTL = -3
)

// Base carries the fields shared by every record-level category.
type Base struct {
	SocketTimeout       time.Duration
	TotalTimeout        time.Duration
	MaxRetries          int
	SleepBetweenRetries time.Duration
	ReadTouchTTLPercent int
	// FilterExpression must evaluate to true for the command to touch a
	// record. Nil matches every record.
	FilterExpression *expression.Expr
}

// Read is the policy of single-record reads.
type Read struct {
	Base
}

// Write is the policy of single-record writes and multi-ops.
type Write struct {
	Base
	Key           KeyPolicy
	Exists        RecordExists
	Gen           GenPolicy
	Generation    uint32
	CommitLevel   CommitLevel
	TTL           TTL
	DurableDelete bool
	RespondAllOps bool
}

// Batch is the policy of batch requests.
type Batch struct {
	Base
	AllowInline     bool
	AllowInlineSSD  bool
	RespondAllKeys  bool
	ConcurrentNodes int
}

// Query is the policy of queries and scans.
type Query struct {
	Base
	MaxRecords         int64
	RecordsPerSecond   int
	MaxConcurrentNodes int
	RecordQueueSize    int
	IncludeBinData     bool
}

// Admin is the policy of user and role management.
type Admin struct {
	Timeout time.Duration
}

// Info is the policy of info, truncate, index and UDF registration commands.
type Info struct {
	Timeout time.Duration
}

func defaultRead() Read {
	return Read{Base: Base{
		SocketTimeout: 30 * time.Second,
		TotalTimeout:  time.Second,
		MaxRetries:    2,
	}}
}

func defaultWrite() Write {
	return Write{
		Base: Base{
			SocketTimeout: 30 * time.Second,
			TotalTimeout:  time.Second,
		},
		Key:         KeyDigest,
		Exists:      ExistsUpdate,
		Gen:         GenIgnore,
		CommitLevel: CommitAll,
		TTL:         TTLNamespaceDefault,
	}
}

func defaultBatch() Batch {
	return Batch{
		Base: Base{
			SocketTimeout: 30 * time.Second,
			TotalTimeout:  time.Second,
			MaxRetries:    2,
		},
		AllowInline:     true,
		ConcurrentNodes: 1,
	}
}

func defaultQuery() Query {
	return Query{
		Base: Base{
			SocketTimeout: 30 * time.Second,
			MaxRetries:    5,
		},
		RecordQueueSize: 5000,
		IncludeBinData:  true,
	}
}

func defaultAdmin() Admin {
	return Admin{Timeout: time.Second}
}

func defaultInfo() Info {
	return Info{Timeout: time.Second}
}
