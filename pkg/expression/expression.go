// Package expression builds filter expressions: typed predicates over the
// bins and metadata of a record, evaluated by the cluster before a command
// touches the record. A record whose filter does not evaluate to true is
// reported as FilteredOut (code 27) by single-record commands, skipped by
// queries and scans, and marked per entry in batches.
//
//	exp := expression.And(
//	    expression.Ge(expression.IntBin("age"), expression.IntVal(21)),
//	    expression.Eq(expression.StringBin("country"), expression.StringVal("NZ")),
//	)
//	rec, err := c.Get(ctx, key, client.WithPolicy(map[string]any{"filter_expression": exp}))
//
// Constructors never fail. Invalid arguments are carried in the tree and
// reported by Validate when the policy is resolved.
package expression

import (
	"strconv"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// Type is the result type of an expression, numbered as on the wire.
type Type int

const (
	TypeNil    Type = 0
	TypeBool   Type = 1
	TypeInt    Type = 2
	TypeString Type = 3
	TypeList   Type = 4
	TypeMap    Type = 5
	TypeBlob   Type = 6
	TypeFloat  Type = 7
	TypeGeo    Type = 8
	TypeHLL    Type = 9
)

var typeNames = [...]string{"nil", "bool", "int", "string", "list", "map", "blob", "float", "geo", "hll"}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// RegexFlags are POSIX regcomp flags for RegexCompare.
type RegexFlags int64

const (
	RegexNone     RegexFlags = 0
	RegexExtended RegexFlags = 1 << 0
	RegexICase    RegexFlags = 1 << 1
	RegexNoSub    RegexFlags = 1 << 2
	RegexNewline  RegexFlags = 1 << 3
)

// Op is the node kind of an expression tree.
type Op uint8

const (
	OpVal Op = iota
	OpInfinity
	OpWildcard
	OpBin
	OpBinExists
	OpBinType
	OpKey
	OpKeyExists
	OpSetName
	OpRecordSize
	OpLastUpdate
	OpSinceUpdate
	OpVoidTime
	OpTTL
	OpIsTombstone
	OpDigestModulo
	OpEq
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpRegex
	OpGeo
	OpAnd
	OpOr
	OpNot
	OpXor
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpLog
	OpMod
	OpAbs
	OpFloor
	OpCeil
	OpToInt
	OpToFloat
	OpMin
	OpMax
	OpIntAnd
	OpIntOr
	OpIntXor
	OpIntNot
	OpLShift
	OpRShift
	OpARShift
	OpCount
	OpLScan
	OpRScan
	OpCond
	OpLet
	OpDef
	OpVar
)

var opNames = [...]string{
	"val", "infinity", "wildcard", "bin", "bin_exists", "bin_type", "key", "key_exists",
	"set_name", "record_size", "last_update", "since_update", "void_time", "ttl",
	"is_tombstone", "digest_modulo", "eq", "ne", "gt", "ge", "lt", "le", "regex_compare",
	"geo_compare", "and", "or", "not", "xor", "num_add", "num_sub", "num_mul", "num_div",
	"num_pow", "num_log", "num_mod", "num_abs", "num_floor", "num_ceil", "to_int", "to_float",
	"min", "max", "int_and", "int_or", "int_xor", "int_not", "int_lshift", "int_rshift",
	"int_arshift", "int_count", "int_lscan", "int_rscan", "cond", "let", "def", "var",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Expr is a node of a filter expression.
type Expr struct {
	Op   Op
	Args []*Expr
	// Value is the literal of OpVal.
	Value value.Value
	// Name is a bin or variable name.
	Name string
	// Type is the declared type of a bin or key read.
	Type Type
	// Int holds the modulus of OpDigestModulo and the flags of OpRegex.
	Int int64
	// Pattern is the regular expression of OpRegex.
	Pattern string

	err error
}

func node(op Op, args ...*Expr) *Expr { return &Expr{Op: op, Args: args} }

func literal(v value.Value) *Expr { return &Expr{Op: OpVal, Value: v} }

// Literals.

func IntVal(v int64) *Expr        { return literal(value.Int(v)) }
func FloatVal(v float64) *Expr    { return literal(value.Float(v)) }
func StringVal(v string) *Expr    { return literal(value.String(v)) }
func BoolVal(v bool) *Expr        { return literal(value.Bool(v)) }
func BlobVal(v []byte) *Expr      { return literal(value.Blob(v)) }
func GeoVal(geoJSON string) *Expr { return literal(value.GeoJSON(geoJSON)) }
func Nil() *Expr                  { return literal(value.Nil{}) }

// ListVal is a list literal built from a host slice.
func ListVal(items any) *Expr { return encoded(items, value.TypeList) }

// MapVal is a map literal built from a host map.
func MapVal(m any) *Expr { return encoded(m, value.TypeMap) }

func encoded(v any, want value.Type) *Expr {
	enc, err := value.EncodeAt(v, "expression")
	if err == nil && enc.Type() != want {
		err = kverrors.Newf(kverrors.InvalidArgError, "expression literal must be a %s, got %s", want, enc.Type())
	}
	return &Expr{Op: OpVal, Value: enc, err: err}
}

// Infinity and Wildcard are only meaningful inside collection operations.
func Infinity() *Expr { return node(OpInfinity) }
func Wildcard() *Expr { return node(OpWildcard) }

// Bin reads.

func bin(name string, t Type) *Expr {
	e := &Expr{Op: OpBin, Name: name, Type: t}
	e.err = value.CheckBinName(name)
	return e
}

func IntBin(name string) *Expr    { return bin(name, TypeInt) }
func FloatBin(name string) *Expr  { return bin(name, TypeFloat) }
func StringBin(name string) *Expr { return bin(name, TypeString) }
func BoolBin(name string) *Expr   { return bin(name, TypeBool) }
func BlobBin(name string) *Expr   { return bin(name, TypeBlob) }
func ListBin(name string) *Expr   { return bin(name, TypeList) }
func MapBin(name string) *Expr    { return bin(name, TypeMap) }
func GeoBin(name string) *Expr    { return bin(name, TypeGeo) }
func HLLBin(name string) *Expr    { return bin(name, TypeHLL) }

// BinExists is true when the bin is present.
func BinExists(name string) *Expr {
	e := bin(name, TypeBool)
	e.Op = OpBinExists
	return e
}

// BinType returns the particle type of the bin, 0 when absent.
func BinType(name string) *Expr {
	e := bin(name, TypeInt)
	e.Op = OpBinType
	return e
}

// Record metadata.

// Key reads the stored user key as t. Only int, string and blob keys exist.
func Key(t Type) *Expr {
	e := &Expr{Op: OpKey, Type: t}
	if t != TypeInt && t != TypeString && t != TypeBlob {
		e.err = kverrors.Newf(kverrors.InvalidArgError, "key type must be int, string or blob, got %s", t)
	}
	return e
}

func KeyExists() *Expr   { return node(OpKeyExists) }
func SetName() *Expr     { return node(OpSetName) }
func RecordSize() *Expr  { return node(OpRecordSize) }
func LastUpdate() *Expr  { return node(OpLastUpdate) }
func SinceUpdate() *Expr { return node(OpSinceUpdate) }
func VoidTime() *Expr    { return node(OpVoidTime) }
func TTL() *Expr         { return node(OpTTL) }
func IsTombstone() *Expr { return node(OpIsTombstone) }

// DigestModulo returns the record digest modulo m, for sampling.
func DigestModulo(m int64) *Expr {
	e := &Expr{Op: OpDigestModulo, Int: m}
	if m <= 0 {
		e.err = kverrors.Newf(kverrors.InvalidArgError, "digest modulo must be positive, got %d", m)
	}
	return e
}

// Comparisons.

func Eq(left, right *Expr) *Expr { return node(OpEq, left, right) }
func Ne(left, right *Expr) *Expr { return node(OpNe, left, right) }
func Gt(left, right *Expr) *Expr { return node(OpGt, left, right) }
func Ge(left, right *Expr) *Expr { return node(OpGe, left, right) }
func Lt(left, right *Expr) *Expr { return node(OpLt, left, right) }
func Le(left, right *Expr) *Expr { return node(OpLe, left, right) }

// GeoCompare is true when one GeoJSON operand lies within the other.
func GeoCompare(left, right *Expr) *Expr { return node(OpGeo, left, right) }

// RegexCompare matches a string expression against a POSIX regex.
func RegexCompare(pattern string, flags RegexFlags, str *Expr) *Expr {
	e := node(OpRegex, str)
	e.Pattern = pattern
	e.Int = int64(flags)
	return e
}

// Logic.

func And(exps ...*Expr) *Expr { return node(OpAnd, exps...) }
func Or(exps ...*Expr) *Expr  { return node(OpOr, exps...) }
func Not(exp *Expr) *Expr     { return node(OpNot, exp) }

// Xor is true when exactly one operand is true.
func Xor(exps ...*Expr) *Expr { return node(OpXor, exps...) }

// Arithmetic. Operands must share one numeric type.

func NumAdd(exps ...*Expr) *Expr          { return node(OpAdd, exps...) }
func NumSub(exps ...*Expr) *Expr          { return node(OpSub, exps...) }
func NumMul(exps ...*Expr) *Expr          { return node(OpMul, exps...) }
func NumDiv(exps ...*Expr) *Expr          { return node(OpDiv, exps...) }
func NumPow(base, exponent *Expr) *Expr   { return node(OpPow, base, exponent) }
func NumLog(num, base *Expr) *Expr        { return node(OpLog, num, base) }
func NumMod(numerator, denom *Expr) *Expr { return node(OpMod, numerator, denom) }
func NumAbs(v *Expr) *Expr                { return node(OpAbs, v) }
func NumFloor(v *Expr) *Expr              { return node(OpFloor, v) }
func NumCeil(v *Expr) *Expr               { return node(OpCeil, v) }
func ToInt(v *Expr) *Expr                 { return node(OpToInt, v) }
func ToFloat(v *Expr) *Expr               { return node(OpToFloat, v) }
func Min(exps ...*Expr) *Expr             { return node(OpMin, exps...) }
func Max(exps ...*Expr) *Expr             { return node(OpMax, exps...) }

// Integer bit operations.

func IntAnd(exps ...*Expr) *Expr      { return node(OpIntAnd, exps...) }
func IntOr(exps ...*Expr) *Expr       { return node(OpIntOr, exps...) }
func IntXor(exps ...*Expr) *Expr      { return node(OpIntXor, exps...) }
func IntNot(v *Expr) *Expr            { return node(OpIntNot, v) }
func IntLShift(v, shift *Expr) *Expr  { return node(OpLShift, v, shift) }
func IntRShift(v, shift *Expr) *Expr  { return node(OpRShift, v, shift) }
func IntARShift(v, shift *Expr) *Expr { return node(OpARShift, v, shift) }
func IntCount(v *Expr) *Expr          { return node(OpCount, v) }
func IntLScan(v, search *Expr) *Expr  { return node(OpLScan, v, search) }
func IntRScan(v, search *Expr) *Expr  { return node(OpRScan, v, search) }

// Control flow.

// Cond takes condition/action pairs followed by a default action.
func Cond(exps ...*Expr) *Expr { return node(OpCond, exps...) }

// Let binds Def variables for the final scope expression.
func Let(exps ...*Expr) *Expr { return node(OpLet, exps...) }

func Def(name string, v *Expr) *Expr {
	e := node(OpDef, v)
	e.Name = name
	return e
}

func Var(name string) *Expr { return &Expr{Op: OpVar, Name: name} }

// arity is the operand count of fixed-arity nodes.
var arity = map[Op]int{
	OpEq: 2, OpNe: 2, OpGt: 2, OpGe: 2, OpLt: 2, OpLe: 2, OpGeo: 2, OpRegex: 1,
	OpNot: 1, OpPow: 2, OpLog: 2, OpMod: 2, OpAbs: 1, OpFloor: 1, OpCeil: 1,
	OpToInt: 1, OpToFloat: 1, OpIntNot: 1, OpLShift: 2, OpRShift: 2, OpARShift: 2,
	OpCount: 1, OpLScan: 2, OpRScan: 2, OpDef: 1,
}

// variadic nodes need at least this many operands.
var variadic = map[Op]int{
	OpAnd: 1, OpOr: 1, OpXor: 2, OpAdd: 1, OpSub: 1, OpMul: 1, OpDiv: 1,
	OpMin: 1, OpMax: 1, OpIntAnd: 1, OpIntOr: 1, OpIntXor: 1,
}

// Validate reports the first invalid node of the tree.
func (e *Expr) Validate() error {
	return e.validate(false)
}

func (e *Expr) validate(inLet bool) error {
	if e == nil {
		return kverrors.New(kverrors.InvalidArgError, "expression must not be nil")
	}
	if e.err != nil {
		return e.err
	}
	if n, ok := arity[e.Op]; ok && len(e.Args) != n {
		return kverrors.Newf(kverrors.InvalidArgError, "%s takes %d operands, got %d", e.Op, n, len(e.Args))
	}
	if n, ok := variadic[e.Op]; ok && len(e.Args) < n {
		return kverrors.Newf(kverrors.InvalidArgError, "%s takes at least %d operands, got %d", e.Op, n, len(e.Args))
	}
	switch e.Op {
	case OpCond:
		if len(e.Args) < 3 || len(e.Args)%2 == 0 {
			return kverrors.Newf(kverrors.InvalidArgError, "cond takes condition/action pairs and a default, got %d operands", len(e.Args))
		}
	case OpLet:
		if len(e.Args) < 2 {
			return kverrors.New(kverrors.InvalidArgError, "let takes at least one def and a scope expression")
		}
		for i, a := range e.Args {
			if last := i == len(e.Args)-1; a != nil && (a.Op == OpDef) == last {
				return kverrors.New(kverrors.InvalidArgError, "let takes defs followed by one scope expression")
			}
		}
	case OpDef:
		if !inLet {
			return kverrors.Newf(kverrors.InvalidArgError, "def %q outside let", e.Name)
		}
		if e.Name == "" {
			return kverrors.New(kverrors.InvalidArgError, "def needs a variable name")
		}
	case OpVar:
		if e.Name == "" {
			return kverrors.New(kverrors.InvalidArgError, "var needs a variable name")
		}
	}
	for _, a := range e.Args {
		if err := a.validate(e.Op == OpLet); err != nil {
			return err
		}
	}
	return nil
}
