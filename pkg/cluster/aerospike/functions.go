package aerospike

import (
	"context"
	"sort"

	aero "github.com/aerospike/aerospike-client-go/v7"
	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// RegisterUDF uploads a Lua module and waits until every node has loaded it.
func (c *Cluster) RegisterUDF(ctx context.Context, p *policy.Info, body []byte, serverPath string) error {
	client, err := c.conn(ctx)
	if err != nil {
		return err
	}
	wp, err := infoWritePolicy(ctx, p)
	if err != nil {
		return err
	}
	task, aerr := client.RegisterUDF(wp, body, serverPath, aero.LUA)
	if aerr != nil {
		return mapError(aerr, kverrors.OpGeneric)
	}
	if err := waitTask(ctx, task.OnComplete()); err != nil {
		return err
	}
	c.logger.Info("udf registered", zap.String("module", serverPath), zap.Int("size", len(body)))
	return nil
}

func (c *Cluster) RemoveUDF(ctx context.Context, p *policy.Info, serverPath string) error {
	client, err := c.conn(ctx)
	if err != nil {
		return err
	}
	wp, err := infoWritePolicy(ctx, p)
	if err != nil {
		return err
	}
	task, aerr := client.RemoveUDF(wp, serverPath)
	if aerr != nil {
		return mapError(aerr, kverrors.OpGeneric)
	}
	return waitTask(ctx, task.OnComplete())
}

func (c *Cluster) ApplyUDF(ctx context.Context, p *policy.Write, key record.Key, module, function string, args []value.Value) (value.Value, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	wp, err := writePolicy(ctx, p)
	if err != nil {
		return nil, err
	}
	k, err := toAeroKey(key)
	if err != nil {
		return nil, err
	}
	aargs := make([]aero.Value, len(args))
	for i, arg := range args {
		v, err := toAero(arg)
		if err != nil {
			return nil, kverrors.Wrap(err, kverrors.InvalidArgError, "udf argument").WithDetail("index", i)
		}
		aargs[i] = aero.NewValue(v)
	}
	res, aerr := client.Execute(wp, k, module, function, aargs...)
	if aerr != nil {
		return nil, mapError(aerr, kverrors.OpGeneric)
	}
	return fromAero(res), nil
}

func waitTask(ctx context.Context, done <-chan aero.Error) error {
	select {
	case aerr := <-done:
		return mapError(aerr, kverrors.OpGeneric)
	case <-ctx.Done():
		return ctxErr(ctx)
	}
}

// Info sends the command to a random node.
func (c *Cluster) Info(ctx context.Context, p *policy.Info, command string) (cluster.InfoResult, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return cluster.InfoResult{}, err
	}
	ip, err := infoPolicy(ctx, p)
	if err != nil {
		return cluster.InfoResult{}, err
	}
	node, aerr := client.Cluster().GetRandomNode()
	if aerr != nil {
		return cluster.InfoResult{}, mapError(aerr, kverrors.OpGeneric)
	}
	res := infoOn(node, ip, command)
	return res, res.Err
}

// InfoAll sends the command to every node. A node failure is reported in its
// result.
func (c *Cluster) InfoAll(ctx context.Context, p *policy.Info, command string) ([]cluster.InfoResult, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	ip, err := infoPolicy(ctx, p)
	if err != nil {
		return nil, err
	}
	nodes := client.GetNodes()
	out := make([]cluster.InfoResult, len(nodes))
	for i, node := range nodes {
		out[i] = infoOn(node, ip, command)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Node < out[j].Node })
	return out, nil
}

func infoOn(node *aero.Node, ip *aero.InfoPolicy, command string) cluster.InfoResult {
	res := cluster.InfoResult{Node: node.GetName()}
	resp, aerr := node.RequestInfo(ip, command)
	if aerr != nil {
		res.Err = mapError(aerr, kverrors.OpGeneric)
		return res
	}
	res.Response = resp[command]
	return res
}
