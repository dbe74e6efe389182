package aerospike

import (
	"context"
	"errors"

	aero "github.com/aerospike/aerospike-client-go/v7"
	"github.com/aerospike/aerospike-client-go/v7/types"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

// mapError converts an error of the underlying client. The Exists not-found
// outcome maps to nil, as kverrors.Map does.
func mapError(err error, op kverrors.OpContext) error {
	if err == nil {
		return nil
	}
	var kvErr *kverrors.Error
	if errors.As(err, &kvErr) {
		return kvErr
	}
	var ae *aero.AerospikeError
	if !errors.As(err, &ae) {
		if errors.Is(err, context.Canceled) {
			return kverrors.FromCode(kverrors.CodeCancelled, "")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return kverrors.Wrap(err, kverrors.TimeoutError, "command timed out")
		}
		return kverrors.Wrap(err, kverrors.ClientError, "client failure")
	}

	code := resultCode(ae.ResultCode)
	if kverrors.Map(code, op) == nil {
		return nil
	}
	out := kverrors.FromCode(code, ae.Error()).WithInDoubt(ae.InDoubt)
	out.Cause = err
	return out
}

// resultCode carries server codes through and folds the client's own negative
// codes onto the kverrors client codes.
func resultCode(rc types.ResultCode) kverrors.ResultCode {
	if rc >= 0 {
		return kverrors.ResultCode(rc)
	}
	switch rc {
	case types.SERVER_NOT_AVAILABLE:
		return kverrors.CodeNotConnected
	case types.NO_AVAILABLE_CONNECTIONS_TO_NODE:
		return kverrors.CodeNoMoreConnections
	case types.NETWORK_ERROR:
		return kverrors.CodeConnection
	case types.INVALID_NODE_ERROR:
		return kverrors.CodeInvalidNode
	case types.PARSE_ERROR:
		return kverrors.CodeParse
	case types.SERIALIZE_ERROR:
		return kverrors.CodeSerialize
	default:
		return kverrors.CodeClient
	}
}

func ctxErr(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return kverrors.Wrap(err, kverrors.TimeoutError, "command timed out")
	default:
		return kverrors.FromCode(kverrors.CodeCancelled, "")
	}
}
