package expression

import (
	"encoding/binary"
	"errors"
	"math"
	"math/bits"
	"regexp"
	"time"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/predicate"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// Env is the record an expression is evaluated against.
type Env struct {
	Bins value.BinMap
	// UserKey is nil unless the key was stored with the record.
	UserKey    value.Value
	Set        string
	Digest     []byte
	Size       int64
	LastUpdate time.Time
	// ExpiresAt is zero for records that never expire.
	ExpiresAt time.Time
	Now       time.Time
}

// errUnknown marks a sub-expression with no value for this record, such as a
// missing bin or mismatched operand types. It filters the record out.
var errUnknown = errors.New("unknown")

// Matches evaluates e against env. A nil expression matches every record.
// Only an expression that evaluates to true matches; an expression the
// evaluator cannot run is an InvalidArgError.
func Matches(e *Expr, env Env) (bool, error) {
	if e == nil {
		return true, nil
	}
	v, err := (&evaluator{env: env}).eval(e)
	if errors.Is(err, errUnknown) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Bool)
	return ok && bool(b), nil
}

type evaluator struct {
	env  Env
	vars map[string]value.Value
}

func (ev *evaluator) eval(e *Expr) (value.Value, error) {
	switch e.Op {
	case OpVal:
		return e.Value, nil
	case OpBin:
		return ev.bin(e)
	case OpBinExists:
		_, ok := ev.env.Bins[e.Name]
		return value.Bool(ok), nil
	case OpBinType:
		return value.Int(particleType(ev.env.Bins[e.Name])), nil
	case OpKey:
		if ev.env.UserKey == nil || !hasType(ev.env.UserKey, e.Type) {
			return nil, errUnknown
		}
		return ev.env.UserKey, nil
	case OpKeyExists:
		return value.Bool(ev.env.UserKey != nil), nil
	case OpSetName:
		return value.String(ev.env.Set), nil
	case OpRecordSize:
		return value.Int(ev.env.Size), nil
	case OpLastUpdate:
		return value.Int(ev.env.LastUpdate.UnixNano()), nil
	case OpSinceUpdate:
		return value.Int(ev.env.Now.Sub(ev.env.LastUpdate).Milliseconds()), nil
	case OpVoidTime:
		if ev.env.ExpiresAt.IsZero() {
			return value.Int(-1), nil
		}
		return value.Int(ev.env.ExpiresAt.UnixNano()), nil
	case OpTTL:
		if ev.env.ExpiresAt.IsZero() {
			return value.Int(-1), nil
		}
		return value.Int(int64(math.Ceil(ev.env.ExpiresAt.Sub(ev.env.Now).Seconds()))), nil
	case OpIsTombstone:
		return value.Bool(false), nil
	case OpDigestModulo:
		if len(ev.env.Digest) < 12 {
			return nil, errUnknown
		}
		return value.Int(int64(binary.LittleEndian.Uint32(ev.env.Digest[8:12])) % e.Int), nil
	case OpEq, OpNe, OpGt, OpGe, OpLt, OpLe:
		return ev.compare(e)
	case OpRegex:
		return ev.regex(e)
	case OpGeo:
		l, r, err := ev.pair(e)
		if err != nil {
			return nil, err
		}
		return value.Bool(predicate.GeoCompare(l, r)), nil
	case OpAnd, OpOr, OpNot, OpXor:
		return ev.logic(e)
	case OpAdd, OpSub, OpMul, OpDiv, OpMin, OpMax:
		return ev.fold(e)
	case OpPow, OpLog, OpMod, OpAbs, OpFloor, OpCeil, OpToInt, OpToFloat:
		return ev.numeric(e)
	case OpIntAnd, OpIntOr, OpIntXor, OpIntNot, OpLShift, OpRShift, OpARShift, OpCount, OpLScan, OpRScan:
		return ev.bitwise(e)
	case OpCond:
		return ev.cond(e)
	case OpLet:
		return ev.let(e)
	case OpVar:
		v, ok := ev.vars[e.Name]
		if !ok {
			return nil, kverrors.Newf(kverrors.InvalidArgError, "undefined variable %q", e.Name)
		}
		return v, nil
	}
	return nil, kverrors.Newf(kverrors.InvalidArgError, "%s cannot be evaluated in a filter", e.Op)
}

func (ev *evaluator) bin(e *Expr) (value.Value, error) {
	v, ok := ev.env.Bins[e.Name]
	if !ok {
		return nil, errUnknown
	}
	if e.Type == TypeBool {
		// Booleans written by older clients are stored as 0 or 1.
		if n, isInt := v.(value.Int); isInt && (n == 0 || n == 1) {
			return value.Bool(n == 1), nil
		}
	}
	if !hasType(v, e.Type) {
		return nil, errUnknown
	}
	return v, nil
}

func hasType(v value.Value, t Type) bool {
	return typeOf(v) == t
}

func typeOf(v value.Value) Type {
	switch v.(type) {
	case value.Bool:
		return TypeBool
	case value.Int:
		return TypeInt
	case value.Float:
		return TypeFloat
	case value.String:
		return TypeString
	case value.Blob:
		return TypeBlob
	case value.List:
		return TypeList
	case value.Map:
		return TypeMap
	case value.GeoJSON:
		return TypeGeo
	case value.HLL:
		return TypeHLL
	}
	return TypeNil
}

// particleType is the server's storage type number of a bin value.
func particleType(v value.Value) int64 {
	switch v.(type) {
	case value.Int:
		return 1
	case value.Float:
		return 2
	case value.String:
		return 3
	case value.Blob:
		return 4
	case value.Bool:
		return 17
	case value.HLL:
		return 18
	case value.Map:
		return 19
	case value.List:
		return 20
	case value.GeoJSON:
		return 23
	}
	return 0
}

func (ev *evaluator) args(e *Expr) ([]value.Value, error) {
	out := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ev.eval(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (ev *evaluator) pair(e *Expr) (value.Value, value.Value, error) {
	vs, err := ev.args(e)
	if err != nil {
		return nil, nil, err
	}
	return vs[0], vs[1], nil
}

func (ev *evaluator) compare(e *Expr) (value.Value, error) {
	l, r, err := ev.pair(e)
	if err != nil {
		return nil, err
	}
	if typeOf(l) != typeOf(r) {
		return nil, errUnknown
	}
	c := value.Compare(l, r)
	switch e.Op {
	case OpEq:
		return value.Bool(c == 0), nil
	case OpNe:
		return value.Bool(c != 0), nil
	case OpGt:
		return value.Bool(c > 0), nil
	case OpGe:
		return value.Bool(c >= 0), nil
	case OpLt:
		return value.Bool(c < 0), nil
	default:
		return value.Bool(c <= 0), nil
	}
}

func (ev *evaluator) regex(e *Expr) (value.Value, error) {
	v, err := ev.eval(e.Args[0])
	if err != nil {
		return nil, err
	}
	s, ok := v.(value.String)
	if !ok {
		return nil, errUnknown
	}
	pattern := e.Pattern
	flags := RegexFlags(e.Int)
	if flags&RegexNewline != 0 {
		pattern = "(?m)" + pattern
	}
	if flags&RegexICase != 0 {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, kverrors.Wrap(err, kverrors.InvalidArgError, "invalid regex")
	}
	return value.Bool(re.MatchString(string(s))), nil
}

func (ev *evaluator) boolean(e *Expr) (bool, error) {
	v, err := ev.eval(e)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Bool)
	if !ok {
		return false, errUnknown
	}
	return bool(b), nil
}

// logic short-circuits left to right.
func (ev *evaluator) logic(e *Expr) (value.Value, error) {
	switch e.Op {
	case OpNot:
		b, err := ev.boolean(e.Args[0])
		return value.Bool(!b), err
	case OpXor:
		n := 0
		for _, a := range e.Args {
			b, err := ev.boolean(a)
			if err != nil {
				return nil, err
			}
			if b {
				n++
			}
		}
		return value.Bool(n == 1), nil
	}
	stop := e.Op == OpOr
	for _, a := range e.Args {
		b, err := ev.boolean(a)
		if err != nil {
			return nil, err
		}
		if b == stop {
			return value.Bool(stop), nil
		}
	}
	return value.Bool(!stop), nil
}

// fold applies a variadic arithmetic operator. Operands share int or float.
func (ev *evaluator) fold(e *Expr) (value.Value, error) {
	vs, err := ev.args(e)
	if err != nil {
		return nil, err
	}
	switch first := vs[0].(type) {
	case value.Int:
		acc := int64(first)
		if len(vs) == 1 && e.Op == OpSub {
			return value.Int(-acc), nil
		}
		for _, v := range vs[1:] {
			n, ok := v.(value.Int)
			if !ok {
				return nil, errUnknown
			}
			if acc, err = intStep(e.Op, acc, int64(n)); err != nil {
				return nil, err
			}
		}
		return value.Int(acc), nil
	case value.Float:
		acc := float64(first)
		if len(vs) == 1 && e.Op == OpSub {
			return value.Float(-acc), nil
		}
		for _, v := range vs[1:] {
			f, ok := v.(value.Float)
			if !ok {
				return nil, errUnknown
			}
			acc = floatStep(e.Op, acc, float64(f))
		}
		return value.Float(acc), nil
	}
	return nil, errUnknown
}

func intStep(op Op, a, b int64) (int64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, errUnknown
		}
		return a / b, nil
	case OpMin:
		return min(a, b), nil
	default:
		return max(a, b), nil
	}
}

func floatStep(op Op, a, b float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	case OpMin:
		return math.Min(a, b)
	default:
		return math.Max(a, b)
	}
}

func (ev *evaluator) numeric(e *Expr) (value.Value, error) {
	vs, err := ev.args(e)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case OpPow, OpLog:
		a, ok1 := vs[0].(value.Float)
		b, ok2 := vs[1].(value.Float)
		if !ok1 || !ok2 {
			return nil, errUnknown
		}
		if e.Op == OpPow {
			return value.Float(math.Pow(float64(a), float64(b))), nil
		}
		return value.Float(math.Log(float64(a)) / math.Log(float64(b))), nil
	case OpMod:
		a, ok1 := vs[0].(value.Int)
		b, ok2 := vs[1].(value.Int)
		if !ok1 || !ok2 || b == 0 {
			return nil, errUnknown
		}
		return a % b, nil
	case OpAbs:
		switch x := vs[0].(type) {
		case value.Int:
			if x < 0 {
				return -x, nil
			}
			return x, nil
		case value.Float:
			return value.Float(math.Abs(float64(x))), nil
		}
	case OpFloor, OpCeil:
		f, ok := vs[0].(value.Float)
		if !ok {
			return nil, errUnknown
		}
		if e.Op == OpFloor {
			return value.Float(math.Floor(float64(f))), nil
		}
		return value.Float(math.Ceil(float64(f))), nil
	case OpToInt:
		if f, ok := vs[0].(value.Float); ok {
			return value.Int(int64(f)), nil
		}
	case OpToFloat:
		if n, ok := vs[0].(value.Int); ok {
			return value.Float(float64(n)), nil
		}
	}
	return nil, errUnknown
}

func (ev *evaluator) bitwise(e *Expr) (value.Value, error) {
	vs, err := ev.args(e)
	if err != nil {
		return nil, err
	}
	ints := make([]int64, len(vs))
	for i, v := range vs {
		switch x := v.(type) {
		case value.Int:
			ints[i] = int64(x)
		case value.Bool:
			// The search operand of the scans is a bool.
			if (e.Op != OpLScan && e.Op != OpRScan) || i != 1 {
				return nil, errUnknown
			}
			if x {
				ints[i] = 1
			}
		default:
			return nil, errUnknown
		}
	}
	a := ints[0]
	switch e.Op {
	case OpIntAnd, OpIntOr, OpIntXor:
		for _, b := range ints[1:] {
			switch e.Op {
			case OpIntAnd:
				a &= b
			case OpIntOr:
				a |= b
			default:
				a ^= b
			}
		}
		return value.Int(a), nil
	case OpIntNot:
		return value.Int(^a), nil
	case OpLShift:
		return value.Int(a << uint64(ints[1]&63)), nil
	case OpRShift:
		return value.Int(int64(uint64(a) >> uint64(ints[1]&63))), nil
	case OpARShift:
		return value.Int(a >> uint64(ints[1]&63)), nil
	case OpCount:
		return value.Int(bits.OnesCount64(uint64(a))), nil
	case OpLScan:
		return value.Int(scan(uint64(a), ints[1] != 0, true)), nil
	default:
		return value.Int(scan(uint64(a), ints[1] != 0, false)), nil
	}
}

// scan returns the index, counted from the most significant bit, of the
// first (fromLeft) or last bit equal to search; -1 when there is none.
func scan(v uint64, search, fromLeft bool) int64 {
	if !search {
		v = ^v
	}
	if v == 0 {
		return -1
	}
	if fromLeft {
		return int64(bits.LeadingZeros64(v))
	}
	return int64(63 - bits.TrailingZeros64(v))
}

func (ev *evaluator) cond(e *Expr) (value.Value, error) {
	n := len(e.Args)
	for i := 0; i+1 < n; i += 2 {
		ok, err := ev.boolean(e.Args[i])
		if err != nil {
			return nil, err
		}
		if ok {
			return ev.eval(e.Args[i+1])
		}
	}
	return ev.eval(e.Args[n-1])
}

func (ev *evaluator) let(e *Expr) (value.Value, error) {
	saved := ev.vars
	ev.vars = make(map[string]value.Value, len(saved)+len(e.Args)-1)
	for k, v := range saved {
		ev.vars[k] = v
	}
	defer func() { ev.vars = saved }()

	last := len(e.Args) - 1
	for _, def := range e.Args[:last] {
		v, err := ev.eval(def.Args[0])
		if err != nil {
			return nil, err
		}
		ev.vars[def.Name] = v
	}
	return ev.eval(e.Args[last])
}
