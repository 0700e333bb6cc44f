package schema

import "errors"

var (
	// ErrMissingCapacityAnnotation is returned when a list, map or string
	// has no declared capacity.
	ErrMissingCapacityAnnotation = errors.New("missing capacity annotation")
	// ErrUnsupportedRecursiveType is returned when a type refers to itself,
	// directly or through other types.
	ErrUnsupportedRecursiveType = errors.New("unsupported recursive type")
	// ErrMissingSurrogateConverter is returned when a surrogate names a
	// converter that was never registered.
	ErrMissingSurrogateConverter = errors.New("missing surrogate converter")
	ErrUnknownType               = errors.New("unknown type")
	ErrInvalidDescriptor         = errors.New("invalid descriptor")
)

// ResolveError reports the type and the path inside it where resolution
// failed.
type ResolveError struct {
	Type string
	Path string
	Err  error
}

func (e *ResolveError) Error() string {
	if e.Path == "" {
		return "resolve " + e.Type + ": " + e.Err.Error()
	}
	return "resolve " + e.Type + " at " + e.Path + ": " + e.Err.Error()
}

func (e *ResolveError) Unwrap() error { return e.Err }
