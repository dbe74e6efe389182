package aerospike

import (
	aero "github.com/aerospike/aerospike-client-go/v7"

	"github.com/ajitpratap0/kvbridge/pkg/expression"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

func optionalExpression(e *expression.Expr) (*aero.Expression, error) {
	if e == nil {
		return nil, nil
	}
	return toAeroExpression(e)
}

// toAeroExpression builds the client's filter expression for e.
func toAeroExpression(e *expression.Expr) (*aero.Expression, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return buildExpression(e)
}

func buildExpression(e *expression.Expr) (*aero.Expression, error) {
	args := make([]*aero.Expression, len(e.Args))
	for i, a := range e.Args {
		x, err := buildExpression(a)
		if err != nil {
			return nil, err
		}
		args[i] = x
	}

	switch e.Op {
	case expression.OpVal:
		return literalExpression(e.Value)
	case expression.OpInfinity:
		return aero.ExpInfinityValue(), nil
	case expression.OpWildcard:
		return aero.ExpWildCardValue(), nil
	case expression.OpBin:
		return binExpression(e.Name, e.Type), nil
	case expression.OpBinExists:
		return aero.ExpBinExists(e.Name), nil
	case expression.OpBinType:
		return aero.ExpBinType(e.Name), nil
	case expression.OpKey:
		return aero.ExpKey(aero.ExpType(e.Type)), nil
	case expression.OpKeyExists:
		return aero.ExpKeyExists(), nil
	case expression.OpSetName:
		return aero.ExpSetName(), nil
	case expression.OpRecordSize:
		return aero.ExpRecordSize(), nil
	case expression.OpLastUpdate:
		return aero.ExpLastUpdate(), nil
	case expression.OpSinceUpdate:
		return aero.ExpSinceUpdate(), nil
	case expression.OpVoidTime:
		return aero.ExpVoidTime(), nil
	case expression.OpTTL:
		return aero.ExpTTL(), nil
	case expression.OpIsTombstone:
		return aero.ExpIsTombstone(), nil
	case expression.OpDigestModulo:
		return aero.ExpDigestModulo(e.Int), nil
	case expression.OpEq:
		return aero.ExpEq(args[0], args[1]), nil
	case expression.OpNe:
		return aero.ExpNotEq(args[0], args[1]), nil
	case expression.OpGt:
		return aero.ExpGreater(args[0], args[1]), nil
	case expression.OpGe:
		return aero.ExpGreaterEq(args[0], args[1]), nil
	case expression.OpLt:
		return aero.ExpLess(args[0], args[1]), nil
	case expression.OpLe:
		return aero.ExpLessEq(args[0], args[1]), nil
	case expression.OpRegex:
		return aero.ExpRegexCompare(e.Pattern, aero.ExpRegexFlags(e.Int), args[0]), nil
	case expression.OpGeo:
		return aero.ExpGeoCompare(args[0], args[1]), nil
	case expression.OpAnd:
		return aero.ExpAnd(args...), nil
	case expression.OpOr:
		return aero.ExpOr(args...), nil
	case expression.OpNot:
		return aero.ExpNot(args[0]), nil
	case expression.OpXor:
		return aero.ExpExclusive(args...), nil
	case expression.OpAdd:
		return aero.ExpNumAdd(args...), nil
	case expression.OpSub:
		return aero.ExpNumSub(args...), nil
	case expression.OpMul:
		return aero.ExpNumMul(args...), nil
	case expression.OpDiv:
		return aero.ExpNumDiv(args...), nil
	case expression.OpPow:
		return aero.ExpNumPow(args[0], args[1]), nil
	case expression.OpLog:
		return aero.ExpNumLog(args[0], args[1]), nil
	case expression.OpMod:
		return aero.ExpNumMod(args[0], args[1]), nil
	case expression.OpAbs:
		return aero.ExpNumAbs(args[0]), nil
	case expression.OpFloor:
		return aero.ExpNumFloor(args[0]), nil
	case expression.OpCeil:
		return aero.ExpNumCeil(args[0]), nil
	case expression.OpToInt:
		return aero.ExpToInt(args[0]), nil
	case expression.OpToFloat:
		return aero.ExpToFloat(args[0]), nil
	case expression.OpMin:
		return aero.ExpMin(args...), nil
	case expression.OpMax:
		return aero.ExpMax(args...), nil
	case expression.OpIntAnd:
		return aero.ExpIntAnd(args...), nil
	case expression.OpIntOr:
		return aero.ExpIntOr(args...), nil
	case expression.OpIntXor:
		return aero.ExpIntXor(args...), nil
	case expression.OpIntNot:
		return aero.ExpIntNot(args[0]), nil
	case expression.OpLShift:
		return aero.ExpIntLShift(args[0], args[1]), nil
	case expression.OpRShift:
		return aero.ExpIntRShift(args[0], args[1]), nil
	case expression.OpARShift:
		return aero.ExpIntARShift(args[0], args[1]), nil
	case expression.OpCount:
		return aero.ExpIntCount(args[0]), nil
	case expression.OpLScan:
		return aero.ExpIntLScan(args[0], args[1]), nil
	case expression.OpRScan:
		return aero.ExpIntRScan(args[0], args[1]), nil
	case expression.OpCond:
		return aero.ExpCond(args...), nil
	case expression.OpLet:
		return aero.ExpLet(args...), nil
	case expression.OpDef:
		return aero.ExpDef(e.Name, args[0]), nil
	case expression.OpVar:
		return aero.ExpVar(e.Name), nil
	}
	return nil, kverrors.Newf(kverrors.InvalidArgError, "unsupported expression %s", e.Op)
}

func binExpression(name string, t expression.Type) *aero.Expression {
	switch t {
	case expression.TypeInt:
		return aero.ExpIntBin(name)
	case expression.TypeFloat:
		return aero.ExpFloatBin(name)
	case expression.TypeString:
		return aero.ExpStringBin(name)
	case expression.TypeBool:
		return aero.ExpBoolBin(name)
	case expression.TypeBlob:
		return aero.ExpBlobBin(name)
	case expression.TypeList:
		return aero.ExpListBin(name)
	case expression.TypeMap:
		return aero.ExpMapBin(name)
	case expression.TypeGeo:
		return aero.ExpGeoBin(name)
	default:
		return aero.ExpHLLBin(name)
	}
}

func literalExpression(v value.Value) (*aero.Expression, error) {
	switch x := v.(type) {
	case nil, value.Nil:
		return aero.ExpNilValue(), nil
	case value.Bool:
		return aero.ExpBoolVal(bool(x)), nil
	case value.Int:
		return aero.ExpIntVal(int64(x)), nil
	case value.Float:
		return aero.ExpFloatVal(float64(x)), nil
	case value.String:
		return aero.ExpStringVal(string(x)), nil
	case value.Blob:
		return aero.ExpBlobVal([]byte(x)), nil
	case value.GeoJSON:
		return aero.ExpGeoVal(string(x)), nil
	case value.List:
		items, err := toAeroList(x)
		if err != nil {
			return nil, err
		}
		return aero.ExpListValueVal(items...), nil
	case value.Map:
		m, err := toAero(x)
		if err != nil {
			return nil, err
		}
		return aero.ExpMapVal(aero.MapValue(m.(map[interface{}]interface{}))), nil
	}
	return nil, kverrors.Newf(kverrors.UnsupportedType, "%s literals are not supported in expressions", v.Type())
}
