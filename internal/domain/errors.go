package domain

import "errors"

var (
	// ErrNotFound signals an unknown collection name.
	ErrNotFound = errors.New("collection not found")
	// ErrAlreadyExists signals a duplicate collection name.
	ErrAlreadyExists = errors.New("collection already exists")
	// ErrSchema signals an undeclared field, a value/type mismatch, or a
	// malformed facet path.
	ErrSchema = errors.New("schema error")
	// ErrQuery signals an invalid query expression: unknown field,
	// unparsable text, mismatched range types, or an unsupported term type.
	ErrQuery = errors.New("invalid query")
	// ErrSearch signals a failure while assembling search results.
	ErrSearch = errors.New("search failed")
	// ErrConfig signals an invalid configuration change.
	ErrConfig = errors.New("invalid configuration")
)
