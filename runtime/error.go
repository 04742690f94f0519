package runtime

import "github.com/ardnew/vtc/lang"

// Predefined errors (sentinel values).
var (
	ErrNamespaceNotFound = lang.NewError("namespace not found")
	ErrNamespaceExists   = lang.NewError("namespace already exists")
	ErrVariableNotFound  = lang.NewError("variable not found")
	ErrTypeMismatch      = lang.NewError("type mismatch")
	ErrStructural        = lang.NewError("structural mismatch")
	ErrDuplicateKey      = lang.NewError("duplicate key")
	ErrCircularReference = lang.NewError("circular reference")
	ErrIndexOutOfBounds  = lang.NewError("index out of bounds")
	ErrInvalidRange      = lang.NewError("invalid range")
	ErrInvalidAccessor   = lang.NewError("accessor not supported for value")
	ErrUnknownIntrinsic  = lang.NewError("unknown intrinsic function")
	ErrIntrinsicArgs     = lang.NewError("invalid intrinsic arguments")
	ErrEval              = lang.NewError("expression evaluation failed")
	ErrMarshal           = lang.NewError("marshal error")
	ErrWrite             = lang.NewError("failed to write output")
)
