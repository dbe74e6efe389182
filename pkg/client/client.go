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

// Client is the blocking client. Each call runs on the calling goroutine and
// returns when the cluster has answered or the policy timeout has expired.
type Client struct {
	b *bridge
}

// New creates a client. It does not connect.
func New(cfg *config.ClientConfig, opts ...Option) (*Client, error) {
	b, err := newBridge(cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Client{b: b}, nil
}

// Connect opens the connection to the cluster.
func (c *Client) Connect(ctx context.Context) error {
	_, err := block(ctx, c.b, c.b.connect())
	return err
}

// Close releases the connection. Calling it on a closed client is a no-op.
func (c *Client) Close() error {
	if err := c.b.cluster.Close(); err != nil {
		return err
	}
	c.b.logger.Info("client closed", zap.Bool("async", false))
	return nil
}

func (c *Client) IsConnected() bool { return c.b.cluster.IsConnected() }

func (c *Client) NodeNames(ctx context.Context) ([]string, error) {
	return block(ctx, c.b, c.b.nodeNames())
}

// Put writes bins to the record, creating it when needed. A nil bin value
// removes that bin.
func (c *Client) Put(ctx context.Context, key record.Key, bins map[string]any, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.put(key, bins, collect(opts)))
	return err
}

// Get reads every bin of the record.
func (c *Client) Get(ctx context.Context, key record.Key, opts ...CallOption) (*Record, error) {
	return block(ctx, c.b, c.b.get("get", key, nil, collect(opts)))
}

// Select reads the named bins of the record.
func (c *Client) Select(ctx context.Context, key record.Key, bins []string, opts ...CallOption) (*Record, error) {
	return block(ctx, c.b, c.b.get("select", key, bins, collect(opts)))
}

// Exists reads the record header. A missing record is not an error: the
// result has a nil Meta.
func (c *Client) Exists(ctx context.Context, key record.Key, opts ...CallOption) (*ExistsResult, error) {
	return block(ctx, c.b, c.b.exists(key, collect(opts)))
}

func (c *Client) Remove(ctx context.Context, key record.Key, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.remove(key, collect(opts)))
	return err
}

// Touch resets the record TTL to ttl seconds, or to the policy TTL when ttl
// is 0, and bumps its generation.
func (c *Client) Touch(ctx context.Context, key record.Key, ttl uint32, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.touch(key, ttl, collect(opts)))
	return err
}

func (c *Client) Append(ctx context.Context, key record.Key, bin string, v any, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.single("append", key, operation.Append(bin, v), collect(opts)))
	return err
}

func (c *Client) Prepend(ctx context.Context, key record.Key, bin string, v any, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.single("prepend", key, operation.Prepend(bin, v), collect(opts)))
	return err
}

// Increment adds delta, an integer or a float, to the bin.
func (c *Client) Increment(ctx context.Context, key record.Key, bin string, delta any, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.single("increment", key, operation.Increment(bin, delta), collect(opts)))
	return err
}

func (c *Client) RemoveBin(ctx context.Context, key record.Key, bins []string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.removeBin(key, bins, collect(opts)))
	return err
}

// Operate applies ops atomically. Bins read more than once keep their last
// value; use OperateOrdered to see each result.
func (c *Client) Operate(ctx context.Context, key record.Key, ops []operation.Spec, opts ...CallOption) (*Record, error) {
	return block(ctx, c.b, c.b.operate(key, ops, collect(opts)))
}

// OperateOrdered applies ops atomically and returns their results in
// submission order.
func (c *Client) OperateOrdered(ctx context.Context, key record.Key, ops []operation.Spec, opts ...CallOption) (*OrderedRecord, error) {
	return block(ctx, c.b, c.b.operateOrdered(key, ops, collect(opts)))
}

// BatchRead reads many records. nil bins reads every bin; an empty slice
// reads headers only. Per-key failures are reported in the entries.
func (c *Client) BatchRead(ctx context.Context, keys []record.Key, bins []string, opts ...CallOption) ([]BatchRecord, error) {
	return block(ctx, c.b, c.b.batchRead(keys, bins, collect(opts)))
}

func (c *Client) BatchOperate(ctx context.Context, keys []record.Key, ops []operation.Spec, opts ...CallOption) ([]BatchRecord, error) {
	return block(ctx, c.b, c.b.batchOperate(keys, ops, collect(opts)))
}

func (c *Client) BatchRemove(ctx context.Context, keys []record.Key, opts ...CallOption) ([]BatchRecord, error) {
	return block(ctx, c.b, c.b.batchRemove(keys, collect(opts)))
}

// BatchReadColumnar reads the fields of desc for every key into one
// row-major buffer.
func (c *Client) BatchReadColumnar(ctx context.Context, keys []record.Key, desc *columnar.Descriptor, opts ...CallOption) (*columnar.ReadResult, error) {
	return block(ctx, c.b, c.b.batchReadColumnar(keys, desc, collect(opts)))
}

// BatchWriteColumnar writes one record per row of buf. keyField names the
// field holding the user key; empty means columnar.DefaultKeyField.
func (c *Client) BatchWriteColumnar(ctx context.Context, buf []byte, desc *columnar.Descriptor, namespace, set, keyField string, opts ...CallOption) ([]BatchRecord, error) {
	return block(ctx, c.b, c.b.batchWriteColumnar(buf, desc, namespace, set, keyField, collect(opts)))
}

// Query starts a secondary-index query on the set.
func (c *Client) Query(namespace, set string) *Query {
	return &Query{s: newStatement(c.b, false, namespace, set)}
}

// Scan starts a scan of the set, or of the namespace when set is empty.
func (c *Client) Scan(namespace, set string) *Query {
	return &Query{s: newStatement(c.b, true, namespace, set)}
}

func (c *Client) IndexIntegerCreate(ctx context.Context, namespace, set, bin, name string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.createIndex(index(namespace, set, bin, name, predicate.IndexNumeric), collect(opts)))
	return err
}

func (c *Client) IndexStringCreate(ctx context.Context, namespace, set, bin, name string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.createIndex(index(namespace, set, bin, name, predicate.IndexString), collect(opts)))
	return err
}

func (c *Client) IndexGeo2DSphereCreate(ctx context.Context, namespace, set, bin, name string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.createIndex(index(namespace, set, bin, name, predicate.IndexGeo2DSphere), collect(opts)))
	return err
}

// IndexCreate creates an index with any type and collection.
func (c *Client) IndexCreate(ctx context.Context, idx predicate.Index, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.createIndex(idx, collect(opts)))
	return err
}

func (c *Client) IndexRemove(ctx context.Context, namespace, name string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.removeIndex(namespace, name, collect(opts)))
	return err
}

// Truncate removes the records of the set last updated before the cut-off.
// A zero cut-off removes everything.
func (c *Client) Truncate(ctx context.Context, namespace, set string, before time.Time, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.truncate(namespace, set, before, collect(opts)))
	return err
}

// UDFPut registers the Lua module at path.
func (c *Client) UDFPut(ctx context.Context, path string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.udfPut(path, collect(opts)))
	return err
}

func (c *Client) UDFRemove(ctx context.Context, module string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.udfRemove(module, collect(opts)))
	return err
}

// Apply runs a registered function on the record and returns its result.
func (c *Client) Apply(ctx context.Context, key record.Key, module, function string, args []any, opts ...CallOption) (any, error) {
	return block(ctx, c.b, c.b.apply(key, module, function, args, collect(opts)))
}

// InfoAll sends the info command to every node.
func (c *Client) InfoAll(ctx context.Context, command string, opts ...CallOption) ([]InfoResult, error) {
	return block(ctx, c.b, c.b.infoAll(command, collect(opts)))
}

// InfoRandomNode sends the info command to one node.
func (c *Client) InfoRandomNode(ctx context.Context, command string, opts ...CallOption) (string, error) {
	return block(ctx, c.b, c.b.infoRandomNode(command, collect(opts)))
}

func (c *Client) AdminCreateUser(ctx context.Context, user, password string, roles []string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminCreateUser(user, password, roles, collect(opts)))
	return err
}

func (c *Client) AdminDropUser(ctx context.Context, user string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminDropUser(user, collect(opts)))
	return err
}

func (c *Client) AdminChangePassword(ctx context.Context, user, password string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminChangePassword(user, password, collect(opts)))
	return err
}

func (c *Client) AdminGrantRoles(ctx context.Context, user string, roles []string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminGrantRoles(user, roles, collect(opts)))
	return err
}

func (c *Client) AdminRevokeRoles(ctx context.Context, user string, roles []string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminRevokeRoles(user, roles, collect(opts)))
	return err
}

func (c *Client) AdminQueryUser(ctx context.Context, user string, opts ...CallOption) (*UserInfo, error) {
	return block(ctx, c.b, c.b.adminQueryUser(user, collect(opts)))
}

func (c *Client) AdminQueryUsers(ctx context.Context, opts ...CallOption) ([]*UserInfo, error) {
	return block(ctx, c.b, c.b.adminQueryUsers(collect(opts)))
}

func (c *Client) AdminCreateRole(ctx context.Context, role RoleInfo, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminCreateRole(role, collect(opts)))
	return err
}

func (c *Client) AdminDropRole(ctx context.Context, role string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminDropRole(role, collect(opts)))
	return err
}

func (c *Client) AdminGrantPrivileges(ctx context.Context, role string, privileges []Privilege, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminGrantPrivileges(role, privileges, collect(opts)))
	return err
}

func (c *Client) AdminRevokePrivileges(ctx context.Context, role string, privileges []Privilege, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminRevokePrivileges(role, privileges, collect(opts)))
	return err
}

func (c *Client) AdminQueryRole(ctx context.Context, role string, opts ...CallOption) (*RoleInfo, error) {
	return block(ctx, c.b, c.b.adminQueryRole(role, collect(opts)))
}

func (c *Client) AdminQueryRoles(ctx context.Context, opts ...CallOption) ([]*RoleInfo, error) {
	return block(ctx, c.b, c.b.adminQueryRoles(collect(opts)))
}

// AdminSetWhitelist replaces the client addresses allowed for the role. An
// empty list removes the restriction.
func (c *Client) AdminSetWhitelist(ctx context.Context, role string, whitelist []string, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminSetWhitelist(role, whitelist, collect(opts)))
	return err
}

// AdminSetQuotas sets the read and write quotas of the role in records per
// second; 0 means unlimited.
func (c *Client) AdminSetQuotas(ctx context.Context, role string, readQuota, writeQuota uint32, opts ...CallOption) error {
	_, err := block(ctx, c.b, c.b.adminSetQuotas(role, readQuota, writeQuota, collect(opts)))
	return err
}
