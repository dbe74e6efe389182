package kverrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		code ResultCode
		want *Kind
	}{
		{"not found", CodeKeyNotFound, RecordNotFound},
		{"exists", CodeKeyExists, RecordExistsError},
		{"generation", CodeGeneration, RecordGenerationError},
		{"too big", CodeRecordTooBig, RecordTooBig},
		{"bin name", CodeBinNameTooLong, BinNameError},
		{"bin exists", CodeBinExists, BinExistsError},
		{"bin not found", CodeBinNotFound, BinNotFound},
		{"bin type", CodeBinType, BinTypeError},
		{"filtered out", CodeFilteredOut, FilteredOut},
		{"element not found", CodeElementNotFound, RecordError},
		{"element exists", CodeElementExists, RecordError},
		{"timeout", CodeTimeout, TimeoutError},
		{"index found", CodeIndexFound, IndexFoundError},
		{"index not found", CodeIndexNotFound, IndexNotFound},
		{"query aborted", CodeQueryAborted, QueryAbortedError},
		{"scan aborted", CodeScanAbort, QueryAbortedError},
		{"udf", CodeUDFBadResponse, UDFError},
		{"invalid user", CodeInvalidUser, AdminError},
		{"role violation", CodeRoleViolation, AdminError},
		{"security not enabled", CodeSecurityNotEnabled, AdminError},
		{"quota exceeded", CodeQuotaExceeded, AdminError},
		{"connection", CodeConnection, ClusterError},
		{"no more connections", CodeNoMoreConnections, ClusterError},
		{"parameter", CodeParameter, InvalidArgError},
		{"unknown server code", ResultCode(250), ServerError},
		{"device overload", CodeDeviceOverload, ServerError},
		{"unknown client code", ResultCode(-99), ClientError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, KindOf(tt.code))
		})
	}
}

func TestMapExistsNotFoundIsNotAnError(t *testing.T) {
	assert.NoError(t, Map(CodeKeyNotFound, OpExists))
	assert.NoError(t, Map(CodeOK, OpGeneric))

	err := Map(CodeKeyNotFound, OpGeneric)
	require.Error(t, err)
	assert.True(t, errors.Is(err, RecordNotFound))
	assert.Equal(t, CodeKeyNotFound, CodeOf(err))

	err = Map(CodeTimeout, OpExists)
	require.Error(t, err)
	assert.True(t, errors.Is(err, TimeoutError))
}

func TestErrorIsWalksTheTaxonomy(t *testing.T) {
	err := FromCode(CodeIndexNotFound, "")

	assert.True(t, errors.Is(err, IndexNotFound))
	assert.True(t, errors.Is(err, IndexError))
	assert.True(t, errors.Is(err, ServerError))
	assert.True(t, errors.Is(err, Base))
	assert.False(t, errors.Is(err, RecordError))
	assert.False(t, errors.Is(err, IndexFoundError))

	wrapped := fmt.Errorf("creating index: %w", err)
	assert.True(t, errors.Is(wrapped, IndexError))
	assert.True(t, IsKind(wrapped, ServerError))
}

func TestClientKindsSitUnderClientError(t *testing.T) {
	for _, k := range []*Kind{ClusterError, InvalidArgError, TimeoutError, UnsupportedType, OutOfRange, UnsupportedColumnType} {
		assert.True(t, k.IsA(ClientError), k.Name())
	}
	assert.True(t, UnsupportedType.IsA(InvalidArgError))
	assert.False(t, RecordError.IsA(ClientError))
}

func TestErrorMessage(t *testing.T) {
	err := FromCode(CodeGeneration, "")
	assert.Equal(t, "RecordGenerationError (3): generation error", err.Error())

	err = FromCode(CodeTimeout, "write timed out").WithInDoubt(true)
	assert.Equal(t, "TimeoutError (9): write timed out [in_doubt]", err.Error())

	cause := errors.New("dial tcp: refused")
	err = Wrap(cause, ClusterError, "connect failed")
	assert.Equal(t, "ClusterError (-11): connect failed: dial tcp: refused", err.Error())
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestNewUsesCanonicalCodes(t *testing.T) {
	tests := []struct {
		kind *Kind
		want ResultCode
	}{
		{RecordNotFound, CodeKeyNotFound},
		{RecordExistsError, CodeKeyExists},
		{TimeoutError, CodeTimeout},
		{ClusterError, CodeCluster},
		{InvalidArgError, CodeParameter},
		{UnsupportedType, CodeParameter},
		{ClientError, CodeClient},
		{IndexFoundError, CodeIndexFound},
		{UDFError, CodeUDFBadResponse},
		{AdminError, CodeServer},
	}
	for _, tt := range tests {
		t.Run(tt.kind.Name(), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.kind, "x").Code)
		})
	}
}

func TestWrapPreservesCodeAndStack(t *testing.T) {
	inner := FromCode(CodeKeyBusy, "").WithInDoubt(true)
	outer := Wrap(inner, ServerError, "operate failed")

	assert.Equal(t, CodeKeyBusy, outer.Code)
	assert.True(t, outer.InDoubt)
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.Nil(t, Wrap(nil, ServerError, "nothing"))
}

func TestWithDetail(t *testing.T) {
	err := New(InvalidArgError, "bad bin").WithDetail("bin", "averyveryverylongname").WithDetail("max", 15)
	assert.Equal(t, "averyveryverylongname", err.Details["bin"])
	assert.Equal(t, 15, err.Details["max"])
	assert.NotEmpty(t, err.Stack)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(FromCode(CodeTimeout, "")))
	assert.True(t, IsRetryable(FromCode(CodeConnection, "")))
	assert.True(t, IsRetryable(FromCode(CodeKeyBusy, "")))
	assert.False(t, IsRetryable(FromCode(CodeKeyNotFound, "")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeOK, CodeOf(nil))
	assert.Equal(t, CodeClient, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeFilteredOut, CodeOf(FromCode(CodeFilteredOut, "")))
}

func TestResultCodeString(t *testing.T) {
	assert.Equal(t, "key not found", CodeKeyNotFound.String())
	assert.Equal(t, "unknown result code 999", ResultCode(999).String())
}

func TestKindsAreOrderedParentFirst(t *testing.T) {
	seen := map[*Kind]bool{}
	for _, k := range Kinds() {
		if k.Parent() != nil {
			assert.True(t, seen[k.Parent()], "%s listed before its parent", k.Name())
		}
		seen[k] = true
	}
}
