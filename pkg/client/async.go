package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/columnar"
	"github.com/ajitpratap0/kvbridge/pkg/config"
	"github.com/ajitpratap0/kvbridge/pkg/operation"
	"github.com/ajitpratap0/kvbridge/pkg/predicate"
	"github.com/ajitpratap0/kvbridge/pkg/record"
)

// AsyncClient is the non-blocking client. Every call is scheduled on the
// shared runtime and returns a Future at once; the execution lock is only
// held while the call is prepared and while its result is converted in
// Future.Await.
type AsyncClient struct {
	b *bridge
}

// NewAsync creates an asynchronous client. It does not connect.
func NewAsync(cfg *config.ClientConfig, opts ...Option) (*AsyncClient, error) {
	b, err := newBridge(cfg, opts)
	if err != nil {
		return nil, err
	}
	return &AsyncClient{b: b}, nil
}

func (a *AsyncClient) Connect(ctx context.Context) *Future[struct{}] {
	return submit(ctx, a.b, a.b.connect())
}

// Close releases the connection. It does not wait for pending futures.
func (a *AsyncClient) Close() error {
	if err := a.b.cluster.Close(); err != nil {
		return err
	}
	a.b.logger.Info("client closed", zap.Bool("async", true))
	return nil
}

func (a *AsyncClient) IsConnected() bool { return a.b.cluster.IsConnected() }

func (a *AsyncClient) NodeNames(ctx context.Context) *Future[[]string] {
	return submit(ctx, a.b, a.b.nodeNames())
}

// Put writes bins to the record, creating it when needed. A nil bin value
// removes that bin.
func (a *AsyncClient) Put(ctx context.Context, key record.Key, bins map[string]any, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.put(key, bins, collect(opts)))
}

// Get reads every bin of the record.
func (a *AsyncClient) Get(ctx context.Context, key record.Key, opts ...CallOption) *Future[*Record] {
	return submit(ctx, a.b, a.b.get("get", key, nil, collect(opts)))
}

// Select reads the named bins of the record.
func (a *AsyncClient) Select(ctx context.Context, key record.Key, bins []string, opts ...CallOption) *Future[*Record] {
	return submit(ctx, a.b, a.b.get("select", key, bins, collect(opts)))
}

// Exists reads the record header. A missing record is not an error: the
// result has a nil Meta.
func (a *AsyncClient) Exists(ctx context.Context, key record.Key, opts ...CallOption) *Future[*ExistsResult] {
	return submit(ctx, a.b, a.b.exists(key, collect(opts)))
}

func (a *AsyncClient) Remove(ctx context.Context, key record.Key, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.remove(key, collect(opts)))
}

// Touch resets the record TTL to ttl seconds, or to the policy TTL when ttl
// is 0, and bumps its generation.
func (a *AsyncClient) Touch(ctx context.Context, key record.Key, ttl uint32, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.touch(key, ttl, collect(opts)))
}

func (a *AsyncClient) Append(ctx context.Context, key record.Key, bin string, v any, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.single("append", key, operation.Append(bin, v), collect(opts)))
}

func (a *AsyncClient) Prepend(ctx context.Context, key record.Key, bin string, v any, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.single("prepend", key, operation.Prepend(bin, v), collect(opts)))
}

// Increment adds delta, an integer or a float, to the bin.
func (a *AsyncClient) Increment(ctx context.Context, key record.Key, bin string, delta any, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.single("increment", key, operation.Increment(bin, delta), collect(opts)))
}

func (a *AsyncClient) RemoveBin(ctx context.Context, key record.Key, bins []string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.removeBin(key, bins, collect(opts)))
}

// Operate applies ops atomically. Bins read more than once keep their last
// value; use OperateOrdered to see each result.
func (a *AsyncClient) Operate(ctx context.Context, key record.Key, ops []operation.Spec, opts ...CallOption) *Future[*Record] {
	return submit(ctx, a.b, a.b.operate(key, ops, collect(opts)))
}

// OperateOrdered applies ops atomically and returns their results in
// submission order.
func (a *AsyncClient) OperateOrdered(ctx context.Context, key record.Key, ops []operation.Spec, opts ...CallOption) *Future[*OrderedRecord] {
	return submit(ctx, a.b, a.b.operateOrdered(key, ops, collect(opts)))
}

// BatchRead reads many records. nil bins reads every bin; an empty slice
// reads headers only. Per-key failures are reported in the entries.
func (a *AsyncClient) BatchRead(ctx context.Context, keys []record.Key, bins []string, opts ...CallOption) *Future[[]BatchRecord] {
	return submit(ctx, a.b, a.b.batchRead(keys, bins, collect(opts)))
}

func (a *AsyncClient) BatchOperate(ctx context.Context, keys []record.Key, ops []operation.Spec, opts ...CallOption) *Future[[]BatchRecord] {
	return submit(ctx, a.b, a.b.batchOperate(keys, ops, collect(opts)))
}

func (a *AsyncClient) BatchRemove(ctx context.Context, keys []record.Key, opts ...CallOption) *Future[[]BatchRecord] {
	return submit(ctx, a.b, a.b.batchRemove(keys, collect(opts)))
}

// BatchReadColumnar reads the fields of desc for every key into one
// row-major buffer.
func (a *AsyncClient) BatchReadColumnar(ctx context.Context, keys []record.Key, desc *columnar.Descriptor, opts ...CallOption) *Future[*columnar.ReadResult] {
	return submit(ctx, a.b, a.b.batchReadColumnar(keys, desc, collect(opts)))
}

// BatchWriteColumnar writes one record per row of buf. keyField names the
// field holding the user key; empty means columnar.DefaultKeyField.
func (a *AsyncClient) BatchWriteColumnar(ctx context.Context, buf []byte, desc *columnar.Descriptor, namespace, set, keyField string, opts ...CallOption) *Future[[]BatchRecord] {
	return submit(ctx, a.b, a.b.batchWriteColumnar(buf, desc, namespace, set, keyField, collect(opts)))
}

// Query starts a secondary-index query on the set.
func (a *AsyncClient) Query(namespace, set string) *AsyncQuery {
	return &AsyncQuery{s: newStatement(a.b, false, namespace, set)}
}

// Scan starts a scan of the set, or of the namespace when set is empty.
func (a *AsyncClient) Scan(namespace, set string) *AsyncQuery {
	return &AsyncQuery{s: newStatement(a.b, true, namespace, set)}
}

func (a *AsyncClient) IndexIntegerCreate(ctx context.Context, namespace, set, bin, name string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.createIndex(index(namespace, set, bin, name, predicate.IndexNumeric), collect(opts)))
}

func (a *AsyncClient) IndexStringCreate(ctx context.Context, namespace, set, bin, name string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.createIndex(index(namespace, set, bin, name, predicate.IndexString), collect(opts)))
}

func (a *AsyncClient) IndexGeo2DSphereCreate(ctx context.Context, namespace, set, bin, name string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.createIndex(index(namespace, set, bin, name, predicate.IndexGeo2DSphere), collect(opts)))
}

// IndexCreate creates an index with any type and collection.
func (a *AsyncClient) IndexCreate(ctx context.Context, idx predicate.Index, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.createIndex(idx, collect(opts)))
}

func (a *AsyncClient) IndexRemove(ctx context.Context, namespace, name string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.removeIndex(namespace, name, collect(opts)))
}

// Truncate removes the records of the set last updated before the cut-off.
// A zero cut-off removes everything.
func (a *AsyncClient) Truncate(ctx context.Context, namespace, set string, before time.Time, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.truncate(namespace, set, before, collect(opts)))
}

// UDFPut registers the Lua module at path.
func (a *AsyncClient) UDFPut(ctx context.Context, path string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.udfPut(path, collect(opts)))
}

func (a *AsyncClient) UDFRemove(ctx context.Context, module string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.udfRemove(module, collect(opts)))
}

// Apply runs a registered function on the record and returns its result.
func (a *AsyncClient) Apply(ctx context.Context, key record.Key, module, function string, args []any, opts ...CallOption) *Future[any] {
	return submit(ctx, a.b, a.b.apply(key, module, function, args, collect(opts)))
}

// InfoAll sends the info command to every node.
func (a *AsyncClient) InfoAll(ctx context.Context, command string, opts ...CallOption) *Future[[]InfoResult] {
	return submit(ctx, a.b, a.b.infoAll(command, collect(opts)))
}

// InfoRandomNode sends the info command to one node.
func (a *AsyncClient) InfoRandomNode(ctx context.Context, command string, opts ...CallOption) *Future[string] {
	return submit(ctx, a.b, a.b.infoRandomNode(command, collect(opts)))
}

func (a *AsyncClient) AdminCreateUser(ctx context.Context, user, password string, roles []string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminCreateUser(user, password, roles, collect(opts)))
}

func (a *AsyncClient) AdminDropUser(ctx context.Context, user string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminDropUser(user, collect(opts)))
}

func (a *AsyncClient) AdminChangePassword(ctx context.Context, user, password string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminChangePassword(user, password, collect(opts)))
}

func (a *AsyncClient) AdminGrantRoles(ctx context.Context, user string, roles []string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminGrantRoles(user, roles, collect(opts)))
}

func (a *AsyncClient) AdminRevokeRoles(ctx context.Context, user string, roles []string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminRevokeRoles(user, roles, collect(opts)))
}

func (a *AsyncClient) AdminQueryUser(ctx context.Context, user string, opts ...CallOption) *Future[*UserInfo] {
	return submit(ctx, a.b, a.b.adminQueryUser(user, collect(opts)))
}

func (a *AsyncClient) AdminQueryUsers(ctx context.Context, opts ...CallOption) *Future[[]*UserInfo] {
	return submit(ctx, a.b, a.b.adminQueryUsers(collect(opts)))
}

func (a *AsyncClient) AdminCreateRole(ctx context.Context, role RoleInfo, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminCreateRole(role, collect(opts)))
}

func (a *AsyncClient) AdminDropRole(ctx context.Context, role string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminDropRole(role, collect(opts)))
}

func (a *AsyncClient) AdminGrantPrivileges(ctx context.Context, role string, privileges []Privilege, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminGrantPrivileges(role, privileges, collect(opts)))
}

func (a *AsyncClient) AdminRevokePrivileges(ctx context.Context, role string, privileges []Privilege, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminRevokePrivileges(role, privileges, collect(opts)))
}

func (a *AsyncClient) AdminQueryRole(ctx context.Context, role string, opts ...CallOption) *Future[*RoleInfo] {
	return submit(ctx, a.b, a.b.adminQueryRole(role, collect(opts)))
}

func (a *AsyncClient) AdminQueryRoles(ctx context.Context, opts ...CallOption) *Future[[]*RoleInfo] {
	return submit(ctx, a.b, a.b.adminQueryRoles(collect(opts)))
}

// AdminSetWhitelist replaces the client addresses allowed for the role. An
// empty list removes the restriction.
func (a *AsyncClient) AdminSetWhitelist(ctx context.Context, role string, whitelist []string, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminSetWhitelist(role, whitelist, collect(opts)))
}

// AdminSetQuotas sets the read and write quotas of the role in records per
// second; 0 means unlimited.
func (a *AsyncClient) AdminSetQuotas(ctx context.Context, role string, readQuota, writeQuota uint32, opts ...CallOption) *Future[struct{}] {
	return submit(ctx, a.b, a.b.adminSetQuotas(role, readQuota, writeQuota, collect(opts)))
}
