package codec

import "errors"

var (
	// ErrCapacityExceeded is returned when a list, map or string value holds
	// more elements than its schema capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrUnsupportedDirectEncoding is returned when a float, string or
	// other non integer value is given for an integer primitive.
	ErrUnsupportedDirectEncoding = errors.New("unsupported direct encoding")
	ErrTruncatedInput            = errors.New("truncated input")
	ErrTrailingInput             = errors.New("trailing input")
	// ErrMalformedDiscriminant is returned on decode when a flag, ordinal,
	// size or code unit holds a value its schema does not allow.
	ErrMalformedDiscriminant = errors.New("malformed discriminant")
	ErrTypeMismatch          = errors.New("type mismatch")
	// ErrNonZeroPadding is returned on decode when the units after the last
	// element of a list, map or string, or those of an absent option, are
	// not all zero.
	ErrNonZeroPadding = errors.New("non zero padding")
)

// Error locates a codec failure inside the encoded value.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
