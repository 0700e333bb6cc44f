package witness

import "errors"

var (
	// ErrComponentLength is returned when serialized units do not have the
	// length of their schema.
	ErrComponentLength = errors.New("component length mismatch")
	// ErrGroupSize is returned when a group does not hold the number of
	// components its layout declares.
	ErrGroupSize = errors.New("group size mismatch")

	ErrFrozen             = errors.New("witness already built")
	ErrMissingPrivacySalt = errors.New("missing privacy salt")
	ErrUnknownStateType   = errors.New("unknown state type")
	ErrInvalidGroup       = errors.New("invalid group")
	ErrUnknownLayout      = errors.New("unknown layout")
	ErrInvalidLayout      = errors.New("invalid layout")
)
