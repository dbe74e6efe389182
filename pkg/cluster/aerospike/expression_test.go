package aerospike

import (
	"context"
	"testing"

	aero "github.com/aerospike/aerospike-client-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/kvbridge/pkg/expression"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
)

func wire(t *testing.T, e *aero.Expression) string {
	t.Helper()
	s, err := e.Base64()
	require.NoError(t, err)
	return s
}

func TestExpressionTranslation(t *testing.T) {
	tests := []struct {
		name string
		ours *expression.Expr
		want *aero.Expression
	}{
		{
			"comparison",
			expression.Ge(expression.IntBin("age"), expression.IntVal(21)),
			aero.ExpGreaterEq(aero.ExpIntBin("age"), aero.ExpIntVal(21)),
		},
		{
			"logic",
			expression.And(
				expression.Eq(expression.StringBin("country"), expression.StringVal("NZ")),
				expression.Not(expression.BinExists("banned")),
			),
			aero.ExpAnd(
				aero.ExpEq(aero.ExpStringBin("country"), aero.ExpStringVal("NZ")),
				aero.ExpNot(aero.ExpBinExists("banned")),
			),
		},
		{
			"metadata",
			expression.Or(
				expression.Eq(expression.Key(expression.TypeString), expression.StringVal("k")),
				expression.Lt(expression.SinceUpdate(), expression.IntVal(1000)),
				expression.Eq(expression.DigestModulo(3), expression.IntVal(0)),
			),
			aero.ExpOr(
				aero.ExpEq(aero.ExpKey(aero.ExpTypeSTRING), aero.ExpStringVal("k")),
				aero.ExpLess(aero.ExpSinceUpdate(), aero.ExpIntVal(1000)),
				aero.ExpEq(aero.ExpDigestModulo(3), aero.ExpIntVal(0)),
			),
		},
		{
			"arithmetic",
			expression.Gt(expression.NumAdd(expression.FloatBin("a"), expression.ToFloat(expression.IntBin("b"))), expression.FloatVal(1.5)),
			aero.ExpGreater(aero.ExpNumAdd(aero.ExpFloatBin("a"), aero.ExpToFloat(aero.ExpIntBin("b"))), aero.ExpFloatVal(1.5)),
		},
		{
			"regex",
			expression.RegexCompare("^ada", expression.RegexICase, expression.StringBin("name")),
			aero.ExpRegexCompare("^ada", aero.ExpRegexFlagICASE, aero.ExpStringBin("name")),
		},
		{
			"let",
			expression.Let(
				expression.Def("x", expression.IntBin("n")),
				expression.Cond(expression.Gt(expression.Var("x"), expression.IntVal(0)), expression.BoolVal(true), expression.BoolVal(false)),
			),
			aero.ExpLet(
				aero.ExpDef("x", aero.ExpIntBin("n")),
				aero.ExpCond(aero.ExpGreater(aero.ExpVar("x"), aero.ExpIntVal(0)), aero.ExpBoolVal(true), aero.ExpBoolVal(false)),
			),
		},
		{
			"list literal",
			expression.Eq(expression.ListBin("tags"), expression.ListVal([]any{"a", int64(1)})),
			aero.ExpEq(aero.ExpListBin("tags"), aero.ExpListValueVal("a", int64(1))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toAeroExpression(tt.ours)
			require.NoError(t, err)
			assert.Equal(t, wire(t, tt.want), wire(t, got))
		})
	}
}

func TestExpressionTranslationRejectsInvalid(t *testing.T) {
	_, err := toAeroExpression(expression.And())
	assert.True(t, kverrors.IsKind(err, kverrors.InvalidArgError))
}

func TestPoliciesCarryFilterExpression(t *testing.T) {
	ctx := context.Background()
	exp := expression.Ge(expression.IntBin("age"), expression.IntVal(18))
	want := wire(t, aero.ExpGreaterEq(aero.ExpIntBin("age"), aero.ExpIntVal(18)))

	rp := *policy.DefaultRead()
	rp.FilterExpression = exp
	base, err := readPolicy(ctx, &rp)
	require.NoError(t, err)
	require.NotNil(t, base.FilterExpression)
	assert.Equal(t, want, wire(t, base.FilterExpression))

	bp := *policy.DefaultBatch()
	bp.FilterExpression = exp
	batch, err := batchPolicy(ctx, &bp)
	require.NoError(t, err)
	require.NotNil(t, batch.FilterExpression)
	assert.Equal(t, want, wire(t, batch.FilterExpression))

	wp := *policy.DefaultWrite()
	wp.FilterExpression = exp
	bw, err := batchWritePolicy(&wp)
	require.NoError(t, err)
	require.NotNil(t, bw.FilterExpression)
	assert.Equal(t, want, wire(t, bw.FilterExpression))

	plain, err := readPolicy(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, plain.FilterExpression)
}
