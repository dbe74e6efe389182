package operation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

const unboundedCount = -1

// ParseAll parses a multi-op request, preserving order.
func ParseAll(specs []Spec) ([]Operation, error) {
	if len(specs) == 0 {
		return nil, kverrors.New(kverrors.InvalidArgError, "operate requires at least one operation")
	}
	ops := make([]Operation, len(specs))
	for i, s := range specs {
		op, err := parseAt(s, "operations["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	return ops, nil
}

// Parse validates one operation spec.
func Parse(s Spec) (Operation, error) {
	return parseAt(s, "operation")
}

func parseAt(s Spec, path string) (Operation, error) {
	p := parser{spec: s, path: path}
	return p.parse()
}

type parser struct {
	spec Spec
	path string
	code Code
}

func (p *parser) fail(format string, args ...any) error {
	return kverrors.Newf(kverrors.InvalidArgError, "%s: %s", p.path, fmt.Sprintf(format, args...)).
		WithDetail("path", p.path).
		WithDetail("op", int(p.code))
}

func (p *parser) parse() (Operation, error) {
	raw, ok := p.spec["op"]
	if !ok {
		return Operation{}, p.fail("missing %q", "op")
	}
	n, err := toInt64(raw)
	if err != nil {
		return Operation{}, p.fail("op: %v", err)
	}
	p.code = Code(n)
	info, ok := codes[p.code]
	if !ok {
		return Operation{}, p.fail("unsupported operation code %d", n)
	}

	op := Operation{Code: p.code, Count: unboundedCount}

	if bin, present := p.spec["bin"]; present && bin != nil {
		name, ok := bin.(string)
		if !ok {
			return Operation{}, p.fail("bin must be a string, got %T", bin)
		}
		if err := value.CheckBinName(name); err != nil {
			return Operation{}, err
		}
		op.Bin = name
	}
	if info.needs&needBin != 0 && op.Bin == "" {
		return Operation{}, p.fail("%s requires %q", p.code, "bin")
	}

	if op.Value, err = p.optionalValue("val"); err != nil {
		return Operation{}, err
	}
	if err := p.applyValueDefaults(&op, info); err != nil {
		return Operation{}, err
	}

	if info.needs&needIndex != 0 {
		if op.Index, err = p.requiredInt("index"); err != nil {
			return Operation{}, err
		}
	}
	if info.needs&needRank != 0 {
		key := "rank"
		if _, ok := p.spec[key]; !ok {
			key = "index"
		}
		if op.Rank, err = p.requiredInt(key); err != nil {
			return Operation{}, err
		}
	}
	if info.needs&optCount != 0 {
		if op.Count, err = p.count(info.defaultCount); err != nil {
			return Operation{}, err
		}
	}
	if info.needs&needReturnType != 0 {
		if op.ReturnType, err = p.returnType(); err != nil {
			return Operation{}, err
		}
	}
	if info.needs&needMapKey != 0 {
		if _, ok := p.spec["map_key"]; !ok {
			return Operation{}, p.fail("%s requires %q", p.code, "map_key")
		}
		if op.MapKey, err = p.optionalValue("map_key"); err != nil {
			return Operation{}, err
		}
	}
	if info.needs&optValueEnd != 0 {
		if op.ValueEnd, err = p.optionalValue("val_end"); err != nil {
			return Operation{}, err
		}
	}
	if info.needs&useListPolicy != 0 {
		if op.ListPolicy, err = p.listPolicy(); err != nil {
			return Operation{}, err
		}
	}
	if info.needs&useMapPolicy != 0 {
		if op.MapPolicy, err = p.mapPolicy(); err != nil {
			return Operation{}, err
		}
	}
	return op, nil
}

func (p *parser) applyValueDefaults(op *Operation, info codeInfo) error {
	switch p.code {
	case OpIncr, OpListIncrement, OpMapIncrement, OpMapDecrement:
		if op.Value == nil {
			op.Value = value.Int(1)
		}
		switch op.Value.(type) {
		case value.Int, value.Float:
		default:
			return p.fail("%s requires a numeric val, got %s", p.code, op.Value.Type())
		}
	case OpAppend, OpPrepend:
		if op.Value == nil {
			op.Value = value.String("")
		}
		switch op.Value.(type) {
		case value.String, value.Blob:
		default:
			return p.fail("%s requires a string or bytes val, got %s", p.code, op.Value.Type())
		}
	case OpListSort, OpListSetOrder, OpMapSetOrder:
		if op.Value == nil {
			op.Value = value.Int(0)
		}
		if _, ok := op.Value.(value.Int); !ok {
			return p.fail("%s requires an integer val", p.code)
		}
		if p.code == OpMapSetOrder {
			switch MapOrder(op.Value.(value.Int)) {
			case MapUnordered, MapKeyOrdered, MapKeyValueOrdered:
			default:
				return p.fail("invalid map order %d", op.Value.(value.Int))
			}
		}
	}

	if info.needs&needListValue != 0 {
		if _, ok := op.Value.(value.List); !ok {
			return p.fail("%s requires a list val", p.code)
		}
	}
	if info.needs&needMapValue != 0 {
		if _, ok := op.Value.(value.Map); !ok {
			return p.fail("%s requires a dict val", p.code)
		}
	}
	if op.Value == nil && info.needs&needBin != 0 {
		op.Value = value.Nil{}
	}
	return nil
}

func (p *parser) optionalValue(key string) (value.Value, error) {
	raw, ok := p.spec[key]
	if !ok || raw == nil {
		return nil, nil
	}
	return value.EncodeAt(raw, p.path+"."+key)
}

func (p *parser) requiredInt(key string) (int64, error) {
	raw, ok := p.spec[key]
	if !ok || raw == nil {
		return 0, p.fail("%s requires %q", p.code, key)
	}
	n, err := toInt64(raw)
	if err != nil {
		return 0, p.fail("%s: %v", key, err)
	}
	return n, nil
}

func (p *parser) count(def int64) (int64, error) {
	raw, ok := p.spec["count"]
	if !ok || raw == nil {
		return def, nil
	}
	n, err := toInt64(raw)
	if err != nil {
		return 0, p.fail("count: %v", err)
	}
	if n < 0 {
		return 0, p.fail("count must not be negative, got %d", n)
	}
	return n, nil
}

func (p *parser) returnType() (ReturnType, error) {
	n, err := p.requiredInt("return_type")
	if err != nil {
		return 0, err
	}
	rt := ReturnType(n)
	switch rt {
	case ReturnNone, ReturnIndex, ReturnReverseIndex, ReturnRank, ReturnReverseRank, ReturnCount, ReturnValue, ReturnExists:
		return rt, nil
	case ReturnKey, ReturnKeyValue:
		if p.code.IsMap() {
			return rt, nil
		}
	}
	return 0, p.fail("return_type %d is not valid for %s", n, p.code)
}

func (p *parser) subDict(key string) (map[string]any, error) {
	raw, ok := p.spec[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch d := raw.(type) {
	case map[string]any:
		return d, nil
	case Spec:
		return d, nil
	default:
		return nil, p.fail("%s must be a dict, got %T", key, raw)
	}
}

func (p *parser) listPolicy() (ListPolicy, error) {
	d, err := p.subDict("list_policy")
	if err != nil || d == nil {
		return ListPolicy{}, err
	}
	var lp ListPolicy
	if raw, ok := d["order"]; ok {
		n, err := toInt64(raw)
		if err != nil || (n != int64(ListUnordered) && n != int64(ListOrdered)) {
			return ListPolicy{}, p.fail("list_policy.order: invalid value %v", raw)
		}
		lp.Order = ListOrder(n)
	}
	if raw, ok := d["flags"]; ok {
		n, err := toInt64(raw)
		if err != nil || n < 0 || n&^(ListWriteAddUnique|ListWriteInsertBounded|ListWriteNoFail|ListWritePartial) != 0 {
			return ListPolicy{}, p.fail("list_policy.flags: invalid value %v", raw)
		}
		lp.Flags = int(n)
	}
	return lp, nil
}

func (p *parser) mapPolicy() (MapPolicy, error) {
	d, err := p.subDict("map_policy")
	if err != nil || d == nil {
		return MapPolicy{}, err
	}
	var mp MapPolicy
	if raw, ok := d["order"]; ok {
		n, err := toInt64(raw)
		switch {
		case err != nil:
			return MapPolicy{}, p.fail("map_policy.order: %v", err)
		case MapOrder(n) != MapUnordered && MapOrder(n) != MapKeyOrdered && MapOrder(n) != MapKeyValueOrdered:
			return MapPolicy{}, p.fail("map_policy.order: invalid value %d", n)
		}
		mp.Order = MapOrder(n)
	}
	if raw, ok := d["write_mode"]; ok {
		n, err := toInt64(raw)
		if err != nil || n < 0 || n&^(MapWriteCreateOnly|MapWriteUpdateOnly|MapWriteNoFail|MapWritePartial) != 0 ||
			n&(MapWriteCreateOnly|MapWriteUpdateOnly) == MapWriteCreateOnly|MapWriteUpdateOnly {
			return MapPolicy{}, p.fail("map_policy.write_mode: invalid value %v", raw)
		}
		mp.WriteMode = int(n)
	}
	return mp, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int64(n), nil
	case Code:
		return int64(n), nil
	case ReturnType:
		return int64(n), nil
	case ListOrder:
		return int64(n), nil
	case MapOrder:
		return int64(n), nil
	case value.Int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
