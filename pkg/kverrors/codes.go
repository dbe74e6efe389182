package kverrors

import "strconv"

// ResultCode is a storage result code. Non-negative codes come from the server,
// negative codes are raised by the client itself.
type ResultCode int

// Client-side result codes.
const (
	CodeCluster           ResultCode = -11
	CodeConnection        ResultCode = -10
	CodeNotConnected      ResultCode = -8
	CodeNoMoreConnections ResultCode = -7
	CodeCancelled         ResultCode = -6
	CodeSerialize         ResultCode = -5
	CodeInvalidHost       ResultCode = -4
	CodeInvalidNode       ResultCode = -3
	CodeParse             ResultCode = -2
	CodeClient            ResultCode = -1
)

// Server result codes.
const (
	CodeOK                         ResultCode = 0
	CodeServer                     ResultCode = 1
	CodeKeyNotFound                ResultCode = 2
	CodeGeneration                 ResultCode = 3
	CodeParameter                  ResultCode = 4
	CodeKeyExists                  ResultCode = 5
	CodeBinExists                  ResultCode = 6
	CodeClusterKeyMismatch         ResultCode = 7
	CodeServerMem                  ResultCode = 8
	CodeTimeout                    ResultCode = 9
	CodeAlwaysForbidden            ResultCode = 10
	CodePartitionUnavailable       ResultCode = 11
	CodeBinType                    ResultCode = 12
	CodeRecordTooBig               ResultCode = 13
	CodeKeyBusy                    ResultCode = 14
	CodeScanAbort                  ResultCode = 15
	CodeUnsupportedFeature         ResultCode = 16
	CodeBinNotFound                ResultCode = 17
	CodeDeviceOverload             ResultCode = 18
	CodeKeyMismatch                ResultCode = 19
	CodeInvalidNamespace           ResultCode = 20
	CodeBinNameTooLong             ResultCode = 21
	CodeFailForbidden              ResultCode = 22
	CodeElementNotFound            ResultCode = 23
	CodeElementExists              ResultCode = 24
	CodeEnterpriseOnly             ResultCode = 25
	CodeOpNotApplicable            ResultCode = 26
	CodeFilteredOut                ResultCode = 27
	CodeLostConflict               ResultCode = 28
	CodeXDRKeyBusy                 ResultCode = 32
	CodeQueryEnd                   ResultCode = 50
	CodeSecurityNotSupported       ResultCode = 51
	CodeSecurityNotEnabled         ResultCode = 52
	CodeSecuritySchemeNotSupported ResultCode = 53
	CodeInvalidCommand             ResultCode = 54
	CodeInvalidField               ResultCode = 55
	CodeIllegalState               ResultCode = 56
	CodeInvalidUser                ResultCode = 60
	CodeUserAlreadyExists          ResultCode = 61
	CodeInvalidPassword            ResultCode = 62
	CodeExpiredPassword            ResultCode = 63
	CodeForbiddenPassword          ResultCode = 64
	CodeInvalidCredential          ResultCode = 65
	CodeExpiredSession             ResultCode = 66
	CodeInvalidRole                ResultCode = 70
	CodeRoleAlreadyExists          ResultCode = 71
	CodeInvalidPrivilege           ResultCode = 72
	CodeInvalidWhitelist           ResultCode = 73
	CodeQuotasNotEnabled           ResultCode = 74
	CodeInvalidQuota               ResultCode = 75
	CodeNotAuthenticated           ResultCode = 80
	CodeRoleViolation              ResultCode = 81
	CodeNotWhitelisted             ResultCode = 82
	CodeQuotaExceeded              ResultCode = 83
	CodeUDFBadResponse             ResultCode = 100
	CodeBatchDisabled              ResultCode = 150
	CodeBatchMaxRequests           ResultCode = 151
	CodeBatchQueuesFull            ResultCode = 152
	CodeInvalidGeoJSON             ResultCode = 160
	CodeIndexFound                 ResultCode = 200
	CodeIndexNotFound              ResultCode = 201
	CodeIndexOOM                   ResultCode = 202
	CodeIndexNotReadable           ResultCode = 203
	CodeIndexGeneric               ResultCode = 204
	CodeIndexNameMaxLen            ResultCode = 205
	CodeIndexMaxCount              ResultCode = 206
	CodeQueryAborted               ResultCode = 210
	CodeQueryQueueFull             ResultCode = 211
	CodeQueryTimeout               ResultCode = 212
	CodeQueryGeneric               ResultCode = 213
)

var codeMessages = map[ResultCode]string{
	CodeCluster:           "cluster error",
	CodeConnection:        "connection error",
	CodeNotConnected:      "client not connected",
	CodeNoMoreConnections: "no more connections available",
	CodeCancelled:         "operation cancelled",
	CodeSerialize:         "serialization error",
	CodeInvalidHost:       "invalid host",
	CodeInvalidNode:       "invalid node",
	CodeParse:             "parse error",
	CodeClient:            "client error",

	CodeOK:                         "ok",
	CodeServer:                     "server error",
	CodeKeyNotFound:                "key not found",
	CodeGeneration:                 "generation error",
	CodeParameter:                  "parameter error",
	CodeKeyExists:                  "key already exists",
	CodeBinExists:                  "bin already exists",
	CodeClusterKeyMismatch:         "cluster key mismatch",
	CodeServerMem:                  "server memory error",
	CodeTimeout:                    "timeout",
	CodeAlwaysForbidden:            "operation not allowed",
	CodePartitionUnavailable:       "partition unavailable",
	CodeBinType:                    "bin type error",
	CodeRecordTooBig:               "record too big",
	CodeKeyBusy:                    "hot key",
	CodeScanAbort:                  "scan aborted",
	CodeUnsupportedFeature:         "unsupported server feature",
	CodeBinNotFound:                "bin not found",
	CodeDeviceOverload:             "device overload",
	CodeKeyMismatch:                "key mismatch",
	CodeInvalidNamespace:           "namespace not found",
	CodeBinNameTooLong:             "bin name length greater than 15 characters",
	CodeFailForbidden:              "operation not allowed at this time",
	CodeElementNotFound:            "element not found",
	CodeElementExists:              "element already exists",
	CodeEnterpriseOnly:             "enterprise only",
	CodeOpNotApplicable:            "operation not applicable",
	CodeFilteredOut:                "filtered out",
	CodeLostConflict:               "lost conflict",
	CodeXDRKeyBusy:                 "xdr key busy",
	CodeQueryEnd:                   "query end",
	CodeSecurityNotSupported:       "security not supported",
	CodeSecurityNotEnabled:         "security not enabled",
	CodeSecuritySchemeNotSupported: "security scheme not supported",
	CodeInvalidCommand:             "invalid command",
	CodeInvalidField:               "invalid field",
	CodeIllegalState:               "illegal state",
	CodeInvalidUser:                "invalid user",
	CodeUserAlreadyExists:          "user already exists",
	CodeInvalidPassword:            "invalid password",
	CodeExpiredPassword:            "expired password",
	CodeForbiddenPassword:          "forbidden password",
	CodeInvalidCredential:          "invalid credential",
	CodeExpiredSession:             "expired session",
	CodeInvalidRole:                "invalid role",
	CodeRoleAlreadyExists:          "role already exists",
	CodeInvalidPrivilege:           "invalid privilege",
	CodeInvalidWhitelist:           "invalid whitelist",
	CodeQuotasNotEnabled:           "quotas not enabled",
	CodeInvalidQuota:               "invalid quota",
	CodeNotAuthenticated:           "not authenticated",
	CodeRoleViolation:              "role violation",
	CodeNotWhitelisted:             "command not whitelisted",
	CodeQuotaExceeded:              "quota exceeded",
	CodeUDFBadResponse:             "udf returned error",
	CodeBatchDisabled:              "batch functionality has been disabled",
	CodeBatchMaxRequests:           "batch max requests have been exceeded",
	CodeBatchQueuesFull:            "all batch queues are full",
	CodeInvalidGeoJSON:             "invalid geojson",
	CodeIndexFound:                 "index already exists",
	CodeIndexNotFound:              "index not found",
	CodeIndexOOM:                   "index out of memory",
	CodeIndexNotReadable:           "index not readable",
	CodeIndexGeneric:               "index error",
	CodeIndexNameMaxLen:            "index name max length exceeded",
	CodeIndexMaxCount:              "index count exceeds max",
	CodeQueryAborted:               "query aborted",
	CodeQueryQueueFull:             "query queue full",
	CodeQueryTimeout:               "query timeout",
	CodeQueryGeneric:               "query error",
}

// String returns a human-readable description of the code.
func (c ResultCode) String() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "unknown result code " + strconv.Itoa(int(c))
}
