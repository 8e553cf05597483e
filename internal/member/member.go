// Package member is a memoized index of struct storage locations,
// with direct access to unexported fields for use by clone planners.
package member

import (
	"reflect"
	"sync"
	"unsafe"
)

// Field describes one instance-level storage location of a struct type.
type Field struct {
	// Type is the field's declared type.
	Type reflect.Type
	// Name is the field's declared name.
	Name string
	// Index is the field's position within [reflect.Type.Field].
	Index int
	// Unexported is true if the field cannot be accessed
	// through the ordinary reflect setters.
	Unexported bool
}

var fieldCache sync.Map // reflect.Type → []Field

// Fields returns descriptors for every field of struct type t,
// own and embedded, exported and unexported, in declaration order.
// The returned slice is shared and must not be mutated.
func Fields(t reflect.Type) []Field {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]Field)
	}
	cached, _ := fieldCache.LoadOrStore(t, describe(t))
	return cached.([]Field)
}

func describe(t reflect.Type) []Field {
	count := t.NumField()
	descriptors := make([]Field, count)
	for i := 0; i < count; i++ {
		field := t.Field(i)
		descriptors[i] = Field{
			Type:       field.Type,
			Name:       field.Name,
			Index:      i,
			Unexported: field.PkgPath != "",
		}
	}
	return descriptors
}

// Read returns the value stored in f within structValue, reaching
// unexported storage through its address when reflect denies access.
// Reports false if the location cannot be read at all
// (an unexported field of an unaddressable struct).
func Read(structValue reflect.Value, f Field) (reflect.Value, bool) {
	field := structValue.Field(f.Index)
	if !f.Unexported {
		return field, true
	}
	if !field.CanAddr() {
		return reflect.Value{}, false
	}
	return reflect.NewAt(f.Type, unsafe.Pointer(field.UnsafeAddr())).Elem(), true
}

// Write stores value into f within structValue, bypassing export
// restrictions. Reports false if the location cannot be written.
func Write(structValue reflect.Value, f Field, value reflect.Value) bool {
	field := structValue.Field(f.Index)
	if field.CanSet() {
		field.Set(value)
		return true
	}
	if !field.CanAddr() {
		return false
	}
	reflect.NewAt(f.Type, unsafe.Pointer(field.UnsafeAddr())).Elem().Set(value)
	return true
}
