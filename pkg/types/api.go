// Package types holds the stable, importable error taxonomy and identifier
// types shared by the store and onenote packages, mirroring the split the
// rest of this codebase's ancestry uses between low-level decoders and their
// public-facing error contract.
package types

import "fmt"

// ErrKind classifies a decode failure so callers can branch on category
// instead of matching error strings.
type ErrKind int

const (
	// ErrKindTruncated: the reader ran out of bytes mid-field.
	ErrKindTruncated ErrKind = iota
	// ErrKindUnrecognizedFileFormat: the header's guidFileType matched neither
	// recognized file type.
	ErrKindUnrecognizedFileFormat
	// ErrKindUnrecognizedFileNode: a file-node header named an unknown nodeID.
	ErrKindUnrecognizedFileNode
	// ErrKindBaseTypeMismatch: a file-node's baseType disagreed with its variant.
	ErrKindBaseTypeMismatch
	// ErrKindUnexpectedFileNode: a node appeared where its context forbids it.
	ErrKindUnexpectedFileNode
	// ErrKindUnrecognizedPropertyDataType: a property's dataType was outside
	// the known set.
	ErrKindUnrecognizedPropertyDataType
	// ErrKindCircularObjectReference: an OID pointed back at an object
	// currently being realized.
	ErrKindCircularObjectReference
	// ErrKindObjectNotFound: a property-set OID could not be resolved.
	ErrKindObjectNotFound
	// ErrKindRevisionMismatch: a ridDependent was not present in the object space.
	ErrKindRevisionMismatch
	// ErrKindUnrecognizedFileData: a file-data reference string had an
	// unrecognized tag prefix.
	ErrKindUnrecognizedFileData
	// ErrKindArgument: malformed caller-supplied input.
	ErrKindArgument
)

// String renders the kind's taxonomy name (spec-stable; not the Go const name).
func (k ErrKind) String() string {
	switch k {
	case ErrKindTruncated:
		return "Truncated"
	case ErrKindUnrecognizedFileFormat:
		return "UnrecognizedFileFormat"
	case ErrKindUnrecognizedFileNode:
		return "UnrecognizedFileNode"
	case ErrKindBaseTypeMismatch:
		return "BaseTypeMismatch"
	case ErrKindUnexpectedFileNode:
		return "UnexpectedFileNode"
	case ErrKindUnrecognizedPropertyDataType:
		return "UnrecognizedPropertyDataType"
	case ErrKindCircularObjectReference:
		return "CircularObjectReference"
	case ErrKindObjectNotFound:
		return "ObjectNotFound"
	case ErrKindRevisionMismatch:
		return "RevisionMismatch"
	case ErrKindUnrecognizedFileData:
		return "UnrecognizedFileData"
	case ErrKindArgument:
		return "ArgumentError"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Error is a typed decode error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is(err, types.ErrTruncated) style matching: two *Error
// values match by Kind alone, regardless of Msg/Err, so callers can use the
// bare sentinels below against wrapped, context-carrying errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind wrapping cause (which may be nil).
func New(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Sentinels for errors.Is matching against a bare kind, e.g.
// errors.Is(err, types.ErrTruncated).
var (
	ErrTruncated                    = &Error{Kind: ErrKindTruncated, Msg: "truncated"}
	ErrUnrecognizedFileFormat       = &Error{Kind: ErrKindUnrecognizedFileFormat, Msg: "unrecognized file format"}
	ErrUnrecognizedFileNode         = &Error{Kind: ErrKindUnrecognizedFileNode, Msg: "unrecognized file node"}
	ErrBaseTypeMismatch             = &Error{Kind: ErrKindBaseTypeMismatch, Msg: "base type mismatch"}
	ErrUnexpectedFileNode           = &Error{Kind: ErrKindUnexpectedFileNode, Msg: "unexpected file node"}
	ErrUnrecognizedPropertyDataType = &Error{Kind: ErrKindUnrecognizedPropertyDataType, Msg: "unrecognized property data type"}
	ErrCircularObjectReference      = &Error{Kind: ErrKindCircularObjectReference, Msg: "circular object reference"}
	ErrObjectNotFound               = &Error{Kind: ErrKindObjectNotFound, Msg: "object not found"}
	ErrRevisionMismatch             = &Error{Kind: ErrKindRevisionMismatch, Msg: "revision mismatch"}
	ErrUnrecognizedFileData         = &Error{Kind: ErrKindUnrecognizedFileData, Msg: "unrecognized file data reference"}
	ErrArgument                     = &Error{Kind: ErrKindArgument, Msg: "invalid argument"}
)

// RootRole selects which root object of a revision to traverse.
type RootRole uint32

const (
	RoleContents         RootRole = 1
	RolePageMetadata     RootRole = 2
	RoleRevisionMetadata RootRole = 4
)

func (r RootRole) String() string {
	switch r {
	case RoleContents:
		return "Contents"
	case RolePageMetadata:
		return "PageMetadata"
	case RoleRevisionMetadata:
		return "RevisionMetadata"
	default:
		return fmt.Sprintf("RootRole(%d)", uint32(r))
	}
}
