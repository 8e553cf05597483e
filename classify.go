package deepclone

import (
	"reflect"
	"sync"
	"time"

	"github.com/djdv/go-deepclone/internal/member"
)

// strategy selects how instances of a runtime type are duplicated.
// Classification considers the concrete runtime type of a value,
// never its declared abstraction.
type strategy uint8

const (
	// strategyValue types are copied completely by Go assignment.
	strategyValue strategy = iota
	// strategyString values are immutable; the clone is the same instance.
	strategyString
	// strategyBehavioral types (func, chan) carry live behavioral
	// state. They fail at the root and clone to nil as members.
	strategyBehavioral
	// strategyInterface defers classification to the dynamic value.
	strategyInterface
	strategyArray
	strategyStruct
	strategyPointer
	strategyMap
	strategySlice
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	plainCache sync.Map // reflect.Type → bool
)

func classify(typ reflect.Type) strategy {
	switch typ.Kind() {
	case reflect.String:
		return strategyString
	case reflect.Func, reflect.Chan:
		return strategyBehavioral
	case reflect.Interface:
		return strategyInterface
	case reflect.Pointer:
		return strategyPointer
	case reflect.Map:
		return strategyMap
	case reflect.Slice:
		return strategySlice
	case reflect.Array:
		if isPlain(typ) {
			return strategyValue
		}
		return strategyArray
	case reflect.Struct:
		if isPlain(typ) {
			return strategyValue
		}
		return strategyStruct
	default:
		return strategyValue
	}
}

// isPlain reports whether t's storage reaches no reference, behavioral,
// or dynamic types at any depth, so that assignment duplicates it fully.
// Strings count as plain: sharing their immutable bytes is the desired
// clone anyway. [time.Time] is plain by fiat; its location pointer
// refers to an immutable, canonical object.
func isPlain(t reflect.Type) bool {
	if cached, ok := plainCache.Load(t); ok {
		return cached.(bool)
	}
	plain := computePlain(t)
	plainCache.Store(t, plain)
	return plain
}

func computePlain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.UnsafePointer,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	case reflect.Array:
		return isPlain(t.Elem())
	case reflect.Struct:
		if t == timeType {
			return true
		}
		for _, field := range member.Fields(t) {
			if !isPlain(field.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
