package relationships

import "errors"

var (
	// ErrUnknownLinkType is returned when a link declares a kind the resolver does not handle
	ErrUnknownLinkType = errors.New("unknown link type")

	// ErrMissingTarget is returned when a link points at an entity that is not declared
	ErrMissingTarget = errors.New("link target entity is not declared")
)
