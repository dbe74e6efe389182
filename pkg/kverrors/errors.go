// Package kverrors provides the error taxonomy of kvbridge: structured errors that
// carry a storage result code, a taxonomy kind, the in-doubt flag for writes, and the
// stack at the point of creation.
//
// # Overview
//
// Every error returned by the public API is a *Error. Its Kind places it in a closed
// tree with three branches:
//
//   - ClientError: ClusterError, InvalidArgError (UnsupportedType, OutOfRange,
//     UnsupportedColumnType) and TimeoutError
//   - RecordError: RecordNotFound, RecordExistsError, RecordGenerationError, ...
//   - ServerError: IndexError, QueryError, AdminError, UDFError
//
// # Basic Usage
//
//	err := client.Put(ctx, key, bins, client.WithPolicy(map[string]any{"exists": 4}))
//	if errors.Is(err, kverrors.RecordExistsError) {
//	    // create-only write hit an existing record
//	}
//
//	// The result code is always available
//	code := kverrors.CodeOf(err)
//
// # Result Codes
//
// KindOf holds the fixed code to kind table. Map applies it with the one
// operation-specific exception: a not-found answer to an existence check is not
// an error.
//
// # Retries
//
// Nothing in this module retries. IsRetryable only classifies errors for callers
// that implement their own recovery.
package kverrors

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Error is a structured error with a taxonomy kind and the storage result code
// that produced it.
//
// Fields:
//   - Kind: position in the taxonomy, used for errors.Is matching
//   - Code: storage result code (negative for client-side failures)
//   - Message: human-readable description
//   - InDoubt: set when a write may have completed despite the error
//   - Cause: underlying error, if any
//   - Details: key-value pairs with additional context
//   - Stack: call stack at the point of creation
type Error struct {
	Kind    *Kind
	Code    ResultCode
	Message string
	InDoubt bool
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is a single frame of a captured call stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error formats the error as "<Kind> (<code>): <message>", followed by the cause
// and an in-doubt marker when present.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Name())
	b.WriteString(" (")
	b.WriteString(strconv.Itoa(int(e.Code)))
	b.WriteString("): ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.InDoubt {
		b.WriteString(" [in_doubt]")
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is this error's kind or an ancestor of it. It also
// matches another *Error with the same kind and code.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Kind:
		return e.Kind.IsA(t)
	case *Error:
		return e.Kind == t.Kind && e.Code == t.Code
	default:
		return false
	}
}

// WithDetail adds a key-value detail to the error. It can be chained.
//
// Example:
//
//	err := kverrors.New(kverrors.InvalidArgError, "bad bin name").
//	    WithDetail("bin", name).
//	    WithDetail("max_len", 15)
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithInDoubt marks the error as in doubt.
func (e *Error) WithInDoubt(inDoubt bool) *Error {
	e.InDoubt = inDoubt
	return e
}

// New creates an error of the given kind. The result code is the canonical code
// for client-side kinds and CodeServer for everything else.
func New(kind *Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Code:    defaultCode(kind),
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind *Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Code:    defaultCode(kind),
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// FromCode creates an error classified by the code table. An empty message is
// replaced by the code's description.
func FromCode(code ResultCode, message string) *Error {
	if message == "" {
		message = code.String()
	}
	return &Error{
		Kind:    KindOf(code),
		Code:    code,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Wrap wraps err with a kind and message. When err is already a *Error its code,
// in-doubt flag and stack are preserved. Returns nil if err is nil.
func Wrap(err error, kind *Kind, message string) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Kind:    kind,
			Code:    existing.Code,
			Message: message,
			InDoubt: existing.InDoubt,
			Cause:   err,
			Stack:   existing.Stack,
		}
	}

	return &Error{
		Kind:    kind,
		Code:    defaultCode(kind),
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsKind reports whether err is a *Error of kind or one of its descendants.
func IsKind(err error, kind *Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind.IsA(kind)
}

// CodeOf returns the result code carried by err, CodeOK for nil and CodeClient
// for errors that did not originate here.
func CodeOf(err error) ResultCode {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if !errors.As(err, &e) {
		return CodeClient
	}
	return e.Code
}

// IsRetryable reports whether err describes a transient condition: timeouts,
// cluster connectivity, hot keys and overloaded devices.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Kind.IsA(TimeoutError) || e.Kind.IsA(ClusterError) {
		return true
	}
	switch e.Code {
	case CodeKeyBusy, CodeDeviceOverload, CodePartitionUnavailable, CodeServerMem:
		return true
	default:
		return false
	}
}

func defaultCode(kind *Kind) ResultCode {
	switch {
	case kind.IsA(TimeoutError):
		return CodeTimeout
	case kind.IsA(ClusterError):
		return CodeCluster
	case kind.IsA(InvalidArgError):
		return CodeParameter
	case kind.IsA(ClientError):
		return CodeClient
	}
	if code, ok := canonicalCodes[kind]; ok {
		return code
	}
	return CodeServer
}

var canonicalCodes = map[*Kind]ResultCode{
	RecordNotFound:        CodeKeyNotFound,
	RecordExistsError:     CodeKeyExists,
	RecordGenerationError: CodeGeneration,
	RecordTooBig:          CodeRecordTooBig,
	BinNameError:          CodeBinNameTooLong,
	BinExistsError:        CodeBinExists,
	BinNotFound:           CodeBinNotFound,
	BinTypeError:          CodeBinType,
	FilteredOut:           CodeFilteredOut,
	IndexFoundError:       CodeIndexFound,
	IndexNotFound:         CodeIndexNotFound,
	IndexError:            CodeIndexGeneric,
	QueryAbortedError:     CodeQueryAborted,
	QueryError:            CodeQueryGeneric,
	UDFError:              CodeUDFBadResponse,
}

// captureStack records up to 32 frames, skipping the given number of callers.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
