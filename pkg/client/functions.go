package client

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

const udfExt = ".lua"

// udfPut registers the Lua module at path under its base name.
func (b *bridge) udfPut(path string, o callOptions) invocation[none] {
	if !strings.HasSuffix(path, udfExt) {
		return failed[none]("udf_put", kverrors.Newf(kverrors.InvalidArgError, "only Lua modules are supported: %s", path))
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return failed[none]("udf_put", kverrors.Wrap(err, kverrors.InvalidArgError, "failed to read module").
			WithDetail("path", path))
	}
	p, err := b.infoPolicy(o)
	if err != nil {
		return failed[none]("udf_put", err)
	}
	serverPath := filepath.Base(path)
	return invoke("udf_put", "", "", func(ctx context.Context) (none, error) {
		return none{}, b.cluster.RegisterUDF(ctx, p, body, serverPath)
	}, same[none])
}

func (b *bridge) udfRemove(module string, o callOptions) invocation[none] {
	if module == "" {
		return failed[none]("udf_remove", kverrors.New(kverrors.InvalidArgError, "module name must not be empty"))
	}
	if !strings.HasSuffix(module, udfExt) {
		module += udfExt
	}
	p, err := b.infoPolicy(o)
	if err != nil {
		return failed[none]("udf_remove", err)
	}
	return invoke("udf_remove", "", "", func(ctx context.Context) (none, error) {
		return none{}, b.cluster.RemoveUDF(ctx, p, module)
	}, same[none])
}

func (b *bridge) apply(key record.Key, module, function string, args []any, o callOptions) invocation[any] {
	if module == "" || function == "" {
		return failed[any]("udf_apply", kverrors.New(kverrors.InvalidArgError, "module and function are required"))
	}
	encoded := make([]value.Value, len(args))
	for i, a := range args {
		v, err := value.EncodeAt(a, "args["+strconv.Itoa(i)+"]")
		if err != nil {
			return failed[any]("udf_apply", err)
		}
		encoded[i] = v
	}
	p, err := b.writePolicy(o)
	if err != nil {
		return failed[any]("udf_apply", err)
	}
	return invoke("udf_apply", key.Namespace, key.Set, func(ctx context.Context) (value.Value, error) {
		return b.cluster.ApplyUDF(ctx, p, key, module, function, encoded)
	}, func(v value.Value) (any, error) {
		if v == nil {
			return nil, nil
		}
		return value.Decode(v), nil
	})
}

func (b *bridge) infoAll(command string, o callOptions) invocation[[]InfoResult] {
	if command == "" {
		return failed[[]InfoResult]("info_all", kverrors.New(kverrors.InvalidArgError, "info command must not be empty"))
	}
	p, err := b.infoPolicy(o)
	if err != nil {
		return failed[[]InfoResult]("info_all", err)
	}
	return invoke("info_all", "", "", func(ctx context.Context) ([]InfoResult, error) {
		return b.cluster.InfoAll(ctx, p, command)
	}, same[[]InfoResult])
}

func (b *bridge) infoRandomNode(command string, o callOptions) invocation[string] {
	if command == "" {
		return failed[string]("info_random_node", kverrors.New(kverrors.InvalidArgError, "info command must not be empty"))
	}
	p, err := b.infoPolicy(o)
	if err != nil {
		return failed[string]("info_random_node", err)
	}
	return invoke("info_random_node", "", "", func(ctx context.Context) (InfoResult, error) {
		return b.cluster.Info(ctx, p, command)
	}, func(r InfoResult) (string, error) {
		return r.Response, r.Err
	})
}
