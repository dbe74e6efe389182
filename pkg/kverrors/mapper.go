package kverrors

// OpContext names the logical operation a result code was produced by. Only a
// few operations change how a code is classified.
type OpContext string

const (
	OpGeneric OpContext = ""
	OpExists  OpContext = "exists"
)

var codeKinds = map[ResultCode]*Kind{
	CodeKeyNotFound:     RecordNotFound,
	CodeKeyExists:       RecordExistsError,
	CodeGeneration:      RecordGenerationError,
	CodeRecordTooBig:    RecordTooBig,
	CodeBinNameTooLong:  BinNameError,
	CodeBinExists:       BinExistsError,
	CodeBinNotFound:     BinNotFound,
	CodeBinType:         BinTypeError,
	CodeFilteredOut:     FilteredOut,
	CodeElementNotFound: RecordError,
	CodeElementExists:   RecordError,

	CodeTimeout: TimeoutError,

	CodeParameter:        InvalidArgError,
	CodeInvalidNamespace: InvalidArgError,
	CodeSerialize:        InvalidArgError,
	CodeParse:            InvalidArgError,
	CodeInvalidGeoJSON:   InvalidArgError,

	CodeCluster:           ClusterError,
	CodeConnection:        ClusterError,
	CodeNotConnected:      ClusterError,
	CodeNoMoreConnections: ClusterError,
	CodeInvalidHost:       ClusterError,
	CodeInvalidNode:       ClusterError,
	CodeCancelled:         ClientError,
	CodeClient:            ClientError,

	CodeIndexFound:       IndexFoundError,
	CodeIndexNotFound:    IndexNotFound,
	CodeIndexOOM:         IndexError,
	CodeIndexNotReadable: IndexError,
	CodeIndexGeneric:     IndexError,
	CodeIndexNameMaxLen:  IndexError,
	CodeIndexMaxCount:    IndexError,

	CodeQueryAborted:   QueryAbortedError,
	CodeScanAbort:      QueryAbortedError,
	CodeQueryQueueFull: QueryError,
	CodeQueryTimeout:   QueryError,
	CodeQueryGeneric:   QueryError,

	CodeUDFBadResponse: UDFError,
}

// KindOf classifies a result code. Codes without a specific entry fall back to
// AdminError for the security range and ServerError otherwise.
func KindOf(code ResultCode) *Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	if code >= CodeSecurityNotSupported && code <= CodeQuotaExceeded {
		return AdminError
	}
	if code < 0 {
		return ClientError
	}
	return ServerError
}

// Map converts a result code produced by op into an error. It returns nil for
// CodeOK and for a not-found outcome of an existence check, which is an
// expected answer rather than a failure.
func Map(code ResultCode, op OpContext) error {
	if code == CodeOK {
		return nil
	}
	if op == OpExists && code == CodeKeyNotFound {
		return nil
	}
	return FromCode(code, "")
}
