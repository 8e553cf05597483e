package deepclone

import (
	"fmt"
	"reflect"
)

type constError string

// ErrUnsupportedType may be returned from [Clone] and [CompilePlan]
// when the root value's type carries behavioral state (func, chan)
// that cannot be duplicated.
const ErrUnsupportedType = constError("unsupported type")

// ErrMemberAccess may be returned from [Clone] when a storage location
// exists but cannot be read or written, even via direct field access.
const ErrMemberAccess = constError("inaccessible member")

func (errStr constError) Error() string { return string(errStr) }

func unsupportedTypeError(typ reflect.Type) error {
	return fmt.Errorf(
		"%w: %s values carry behavioral state and cannot be cloned",
		ErrUnsupportedType, typ)
}

func memberAccessError(typ reflect.Type, name string) error {
	return fmt.Errorf(
		"%w: field %q of %s",
		ErrMemberAccess, name, typ)
}
