package propbind

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors. Use errors.Is to match.
var (
	// ErrSameObjectAndProperty is returned by Bind when source and
	// destination are the same property on the same object and no
	// transform was supplied.
	ErrSameObjectAndProperty = errors.New("propbind: cannot bind a property to itself without a transform")

	// ErrNilEndpoint is returned by Bind when the source or destination
	// object is nil.
	ErrNilEndpoint = errors.New("propbind: source and destination objects must be non-nil")

	// ErrValueRejected is returned by a Transform to skip the destination
	// write for the current change without logging.
	ErrValueRejected = errors.New("propbind: value rejected by transform")
)

// IncompatibleTypesError is returned by Bind when no transform is supplied
// and the destination value type is neither the source value type nor a
// pointer to it.
type IncompatibleTypesError struct {
	Source reflect.Type
	Dest   reflect.Type
}

func (e *IncompatibleTypesError) Error() string {
	return fmt.Sprintf("propbind: incompatible types: cannot bind %s to %s without a transform", e.Source, e.Dest)
}
