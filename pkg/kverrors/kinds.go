package kverrors

// Kind is a node in the closed error taxonomy. Every *Error carries exactly one
// Kind, and errors.Is(err, k) reports true when the error's Kind is k or any
// descendant of k.
//
// Kinds are themselves errors so they can be used directly as errors.Is targets:
//
//	if errors.Is(err, kverrors.RecordError) {
//	    // any per-record outcome: not found, generation mismatch, ...
//	}
type Kind struct {
	name   string
	parent *Kind
}

func newKind(name string, parent *Kind) *Kind {
	return &Kind{name: name, parent: parent}
}

// Error implements error so a Kind can be an errors.Is target.
func (k *Kind) Error() string { return k.name }

// Name returns the kind's name.
func (k *Kind) Name() string { return k.name }

// Parent returns the enclosing kind, or nil for the root.
func (k *Kind) Parent() *Kind { return k.parent }

// IsA reports whether k equals other or descends from it.
func (k *Kind) IsA(other *Kind) bool {
	for cur := k; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

var (
	// Base is the root of the taxonomy.
	Base = newKind("KVError", nil)

	// ClientError covers connectivity, configuration and programmer errors
	// detected on the client side.
	ClientError     = newKind("ClientError", Base)
	ClusterError    = newKind("ClusterError", ClientError)
	InvalidArgError = newKind("InvalidArgError", ClientError)
	TimeoutError    = newKind("TimeoutError", ClientError)

	// UnsupportedType is returned when a host value has no wire representation.
	UnsupportedType = newKind("UnsupportedType", InvalidArgError)
	// OutOfRange is returned for integers that do not fit in a signed 64-bit value.
	OutOfRange = newKind("OutOfRange", InvalidArgError)
	// UnsupportedColumnType is returned while validating a column descriptor.
	UnsupportedColumnType = newKind("UnsupportedColumnType", InvalidArgError)

	// RecordError covers per-record outcomes reported by the server.
	RecordError           = newKind("RecordError", Base)
	RecordNotFound        = newKind("RecordNotFound", RecordError)
	RecordExistsError     = newKind("RecordExistsError", RecordError)
	RecordGenerationError = newKind("RecordGenerationError", RecordError)
	RecordTooBig          = newKind("RecordTooBig", RecordError)
	BinNameError          = newKind("BinNameError", RecordError)
	BinExistsError        = newKind("BinExistsError", RecordError)
	BinNotFound           = newKind("BinNotFound", RecordError)
	BinTypeError          = newKind("BinTypeError", RecordError)
	FilteredOut           = newKind("FilteredOut", RecordError)

	// ServerError covers cluster-side operational failures.
	ServerError       = newKind("ServerError", Base)
	IndexError        = newKind("IndexError", ServerError)
	IndexNotFound     = newKind("IndexNotFound", IndexError)
	IndexFoundError   = newKind("IndexFoundError", IndexError)
	QueryError        = newKind("QueryError", ServerError)
	QueryAbortedError = newKind("QueryAbortedError", QueryError)
	AdminError        = newKind("AdminError", ServerError)
	UDFError          = newKind("UDFError", ServerError)
)

// Kinds lists every kind in the taxonomy, parents before children.
func Kinds() []*Kind {
	return []*Kind{
		Base,
		ClientError, ClusterError, InvalidArgError, TimeoutError,
		UnsupportedType, OutOfRange, UnsupportedColumnType,
		RecordError, RecordNotFound, RecordExistsError, RecordGenerationError,
		RecordTooBig, BinNameError, BinExistsError, BinNotFound, BinTypeError, FilteredOut,
		ServerError, IndexError, IndexNotFound, IndexFoundError,
		QueryError, QueryAbortedError, AdminError, UDFError,
	}
}
