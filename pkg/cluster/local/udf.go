package local

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// Function is a record UDF implemented in Go. The local cluster cannot run
// Lua, so the functions of a registered module are bound with
// RegisterFunction.
type Function func(rec *UDFRecord, args []value.Value) (value.Value, error)

// UDFRecord is the record a Function works on. Changes are written back when
// the function returns without error.
type UDFRecord struct {
	exists  bool
	bins    value.BinMap
	dirty   bool
	removed bool
}

// Exists reports whether the record exists.
func (r *UDFRecord) Exists() bool { return r.exists && !r.removed }

// Get returns a bin, or Nil.
func (r *UDFRecord) Get(bin string) value.Value {
	if v, ok := r.bins[bin]; ok {
		return v
	}
	return value.Nil{}
}

// Set writes a bin, creating the record if needed. Nil removes the bin.
func (r *UDFRecord) Set(bin string, v value.Value) {
	if value.IsNil(v) {
		delete(r.bins, bin)
	} else {
		r.bins[bin] = v
	}
	r.dirty, r.removed = true, false
}

// Remove deletes the record.
func (r *UDFRecord) Remove() {
	r.bins = value.BinMap{}
	r.removed, r.dirty = true, false
}

// RegisterFunction binds fn to module.name. The module must also be
// registered with RegisterUDF before ApplyUDF can call it.
func (c *Cluster) RegisterFunction(module, name string, fn Function) {
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	module = moduleName(module)
	if c.functions[module] == nil {
		c.functions[module] = make(map[string]Function)
	}
	c.functions[module][name] = fn
}

func (c *Cluster) RegisterUDF(ctx context.Context, _ *policy.Info, body []byte, serverPath string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if serverPath == "" || strings.ContainsAny(serverPath, "/\\") {
		return kverrors.Newf(kverrors.InvalidArgError, "invalid udf server path %q", serverPath)
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	c.udfs[serverPath] = append([]byte(nil), body...)
	c.logger.Info("udf registered", zap.String("path", serverPath), zap.Int("bytes", len(body)))
	return nil
}

func (c *Cluster) RemoveUDF(ctx context.Context, _ *policy.Info, serverPath string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	if _, ok := c.udfs[serverPath]; !ok {
		return kverrors.FromCode(kverrors.CodeUDFBadResponse, "udf file not found: "+serverPath)
	}
	delete(c.udfs, serverPath)
	return nil
}

func (c *Cluster) ApplyUDF(ctx context.Context, p *policy.Write, key record.Key, module, function string, args []value.Value) (value.Value, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	if err := c.checkNamespace(key.Namespace); err != nil {
		return nil, err
	}
	fn, err := c.lookupFunction(module, function)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.load(key)
	if err != nil {
		return nil, err
	}
	if p != nil {
		if err := c.filter(p.FilterExpression, key, existing); err != nil {
			return nil, err
		}
	}
	rec := &UDFRecord{exists: existing != nil, bins: value.BinMap{}}
	if existing != nil {
		rec.bins = existing.Bins.Clone()
	}

	result, err := call(fn, rec, args)
	if err != nil {
		return nil, kverrors.Wrap(err, kverrors.UDFError, fmt.Sprintf("%s.%s failed", module, function)).
			WithDetail("module", module).
			WithDetail("function", function)
	}

	switch {
	case rec.removed && existing != nil:
		if err := checkGeneration(existing, p); err != nil {
			return nil, err
		}
		if _, err := c.store.Delete(key.Namespace, key.Digest); err != nil {
			return nil, storeErr(err)
		}
	case rec.dirty:
		_, err := c.write(key, p, func(sr *StoredRecord) error {
			for name := range sr.Bins {
				if _, ok := rec.bins[name]; !ok {
					setBin(sr, name, value.Nil{})
				}
			}
			for name, v := range rec.bins {
				if !value.Equal(sr.Bins[name], v) {
					setBin(sr, name, v)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if result == nil {
		result = value.Nil{}
	}
	return result, nil
}

func (c *Cluster) lookupFunction(module, function string) (Function, error) {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()

	module = moduleName(module)
	if _, ok := c.udfs[module+".lua"]; !ok {
		return nil, kverrors.FromCode(kverrors.CodeUDFBadResponse, "udf module not registered: "+module)
	}
	fn, ok := c.functions[module][function]
	if !ok {
		return nil, kverrors.FromCode(kverrors.CodeUDFBadResponse, "function not found: "+module+"."+function)
	}
	return fn, nil
}

// call runs fn and turns a panic into an error.
func call(fn Function, rec *UDFRecord, args []value.Value) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("udf panic: %v", r)
		}
	}()
	return fn(rec, args)
}

func moduleName(module string) string {
	return strings.TrimSuffix(module, ".lua")
}
