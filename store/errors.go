package store

import (
	"fmt"

	"github.com/joshuapare/onekit/pkg/types"
)

// Local aliases so decoders in this package can write ErrArgument instead of
// types.ErrArgument; the taxonomy itself is owned by pkg/types so that
// pkg/onenote (which wraps this package) shares the same sentinels.
var (
	ErrTruncated                    = types.ErrTruncated
	ErrUnrecognizedFileFormat       = types.ErrUnrecognizedFileFormat
	ErrUnrecognizedFileNode         = types.ErrUnrecognizedFileNode
	ErrBaseTypeMismatch             = types.ErrBaseTypeMismatch
	ErrUnexpectedFileNode           = types.ErrUnexpectedFileNode
	ErrUnrecognizedPropertyDataType = types.ErrUnrecognizedPropertyDataType
	ErrRevisionMismatch             = types.ErrRevisionMismatch
	ErrUnrecognizedFileData         = types.ErrUnrecognizedFileData
	ErrArgument                     = types.ErrArgument
	ErrObjectNotFound               = types.ErrObjectNotFound
	ErrCircularObjectReference      = types.ErrCircularObjectReference
)

// wrapf builds a *types.Error of kind, with Msg formatted from format/args,
// wrapping cause.
func wrapf(kind types.ErrKind, cause error, format string, args ...interface{}) *types.Error {
	return types.New(kind, fmt.Sprintf(format, args...), cause)
}
