// Package cluster defines the storage-client surface the bridge consumes.
//
// A Cluster speaks typed values only: keys, value.BinMap, parsed operations and
// resolved policies. Implementations return *kverrors.Error for every failure
// and carry the server result code and the in-doubt flag through unchanged.
//
// Two implementations exist: cluster/aerospike, an adapter over the production
// client library, and cluster/local, an in-process cluster for tests and
// embedded use.
package cluster

import (
	"context"
	"time"

	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/predicate"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

//go:generate mockgen -destination=mock_cluster.go -package=cluster . Cluster

// Lifecycle manages the connection to the cluster.
type Lifecycle interface {
	Connect(ctx context.Context) error
	Close() error
	IsConnected() bool
	NodeNames(ctx context.Context) ([]string, error)
}

// Records is the single-record surface.
type Records interface {
	// Get reads a record. A nil bins slice reads every bin; an empty non-nil
	// slice reads the header only.
	Get(ctx context.Context, p *policy.Read, key record.Key, bins []string) (*record.Record, error)
	// Exists reads the record header. A missing record fails with
	// kverrors.RecordNotFound.
	Exists(ctx context.Context, p *policy.Read, key record.Key) (*record.Meta, error)
	Put(ctx context.Context, p *policy.Write, key record.Key, bins value.BinMap) error
	// Delete removes a record and reports whether it existed.
	Delete(ctx context.Context, p *policy.Write, key record.Key) (bool, error)
	Touch(ctx context.Context, p *policy.Write, key record.Key) error
	// Operate applies ops atomically and returns one result per operation that
	// produced one, in submission order.
	Operate(ctx context.Context, p *policy.Write, key record.Key, ops []operation.Operation) (*record.OrderedRecord, error)
}

// Batches is the multi-key surface. Per-key failures are reported in the
// entries; only batch-wide failures return an error.
type Batches interface {
	BatchGet(ctx context.Context, p *policy.Batch, keys []record.Key, bins []string) ([]record.BatchEntry, error)
	BatchOperate(ctx context.Context, p *policy.Batch, wp *policy.Write, keys []record.Key, ops []operation.Operation) ([]record.BatchEntry, error)
	BatchRemove(ctx context.Context, p *policy.Batch, wp *policy.Write, keys []record.Key) ([]record.BatchEntry, error)
	BatchWrite(ctx context.Context, p *policy.Batch, wp *policy.Write, rows []record.BatchWrite) ([]record.BatchEntry, error)
}

// Queries is the query, scan and index surface.
type Queries interface {
	Query(ctx context.Context, p *policy.Query, stmt Statement) (Recordset, error)
	Scan(ctx context.Context, p *policy.Query, stmt Statement) (Recordset, error)
	CreateIndex(ctx context.Context, p *policy.Info, idx predicate.Index) error
	DropIndex(ctx context.Context, p *policy.Info, namespace, set, name string) error
	// Truncate removes the records of a set (every set when set is empty)
	// last updated before the cut-off. A zero cut-off removes everything.
	Truncate(ctx context.Context, p *policy.Info, namespace, set string, before time.Time) error
}

// Functions is the user-defined function surface.
type Functions interface {
	RegisterUDF(ctx context.Context, p *policy.Info, body []byte, serverPath string) error
	RemoveUDF(ctx context.Context, p *policy.Info, serverPath string) error
	ApplyUDF(ctx context.Context, p *policy.Write, key record.Key, module, function string, args []value.Value) (value.Value, error)
}

// Info is the info-command surface.
type Info interface {
	// Info sends a command to one node chosen by the cluster.
	Info(ctx context.Context, p *policy.Info, command string) (InfoResult, error)
	InfoAll(ctx context.Context, p *policy.Info, command string) ([]InfoResult, error)
}

// Admin is the user and role management surface.
type Admin interface {
	CreateUser(ctx context.Context, p *policy.Admin, user, password string, roles []string) error
	DropUser(ctx context.Context, p *policy.Admin, user string) error
	ChangePassword(ctx context.Context, p *policy.Admin, user, password string) error
	GrantRoles(ctx context.Context, p *policy.Admin, user string, roles []string) error
	RevokeRoles(ctx context.Context, p *policy.Admin, user string, roles []string) error
	QueryUser(ctx context.Context, p *policy.Admin, user string) (*UserInfo, error)
	QueryUsers(ctx context.Context, p *policy.Admin) ([]*UserInfo, error)
	CreateRole(ctx context.Context, p *policy.Admin, role RoleInfo) error
	DropRole(ctx context.Context, p *policy.Admin, role string) error
	GrantPrivileges(ctx context.Context, p *policy.Admin, role string, privileges []Privilege) error
	RevokePrivileges(ctx context.Context, p *policy.Admin, role string, privileges []Privilege) error
	QueryRole(ctx context.Context, p *policy.Admin, role string) (*RoleInfo, error)
	QueryRoles(ctx context.Context, p *policy.Admin) ([]*RoleInfo, error)
	SetWhitelist(ctx context.Context, p *policy.Admin, role string, whitelist []string) error
	SetQuotas(ctx context.Context, p *policy.Admin, role string, readQuota, writeQuota uint32) error
}

// Cluster is the complete storage-client surface.
type Cluster interface {
	Lifecycle
	Records
	Batches
	Queries
	Functions
	Info
	Admin
}

// Statement selects the records of a query or scan.
type Statement struct {
	Namespace string
	Set       string
	// Bins restricts the returned bins; nil returns every bin.
	Bins []string
	// Filter selects records through a secondary index. A query without a
	// filter reads the whole set; a scan ignores it.
	Filter *predicate.Filter
}

// Result is one element of a Recordset stream.
type Result struct {
	Record *record.Record
	Err    error
}

// Recordset streams query or scan results. The channel is closed after the
// last record or the first error.
type Recordset interface {
	Results() <-chan Result
	// Close stops the producer. It is safe to call more than once.
	Close() error
}

// InfoResult is the response of one node to an info command.
type InfoResult struct {
	Node     string
	Err      error
	Response string
}

// PrivilegeCode identifies a permission.
type PrivilegeCode int

const (
	PrivUserAdmin    PrivilegeCode = 0
	PrivSysAdmin     PrivilegeCode = 1
	PrivDataAdmin    PrivilegeCode = 2
	PrivUDFAdmin     PrivilegeCode = 3
	PrivSIndexAdmin  PrivilegeCode = 4
	PrivRead         PrivilegeCode = 10
	PrivReadWrite    PrivilegeCode = 11
	PrivReadWriteUDF PrivilegeCode = 12
	PrivWrite        PrivilegeCode = 13
	PrivTruncate     PrivilegeCode = 14
)

// Valid reports whether c is a known privilege code.
func (c PrivilegeCode) Valid() bool {
	return (c >= PrivUserAdmin && c <= PrivSIndexAdmin) || (c >= PrivRead && c <= PrivTruncate)
}

// Privilege is a permission, optionally scoped to a namespace and set.
type Privilege struct {
	Code      PrivilegeCode
	Namespace string
	Set       string
}

// UserInfo describes a user.
type UserInfo struct {
	User       string
	Roles      []string
	ConnsInUse int
}

// RoleInfo describes a role.
type RoleInfo struct {
	Name       string
	Privileges []Privilege
	Whitelist  []string
	ReadQuota  uint32
	WriteQuota uint32
}
