package circuitgen

import "errors"

var (
	// ErrUnsupportedSchemaNode is returned for a schema node the generator
	// has no circuit mapping for. Nothing is generated for the root type.
	ErrUnsupportedSchemaNode = errors.New("unsupported schema node")
	// ErrDuplicateDeclaration is returned when a declaration name is already
	// taken by a different type or function.
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
)
