package deepclone

import "reflect"

type identityKey struct {
	pointer uintptr
	length  int
	typ     reflect.Type
}

// IdentityMap records, for one identity space, which clone was created
// for each original reference-typed node (pointer, map, slice).
// Keys compare by reference identity, never by a type's own equality.
//
// One map is created implicitly per [Clone] call; passing a map via
// [WithIdentityMap] merges several sequential calls into a shared
// identity space. An IdentityMap is not safe for concurrent use.
// Constructed by [NewIdentityMap].
type IdentityMap struct {
	clones map[identityKey]reflect.Value
}

// NewIdentityMap creates an empty identity map.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{clones: make(map[identityKey]reflect.Value)}
}

// Len returns the number of original nodes registered so far.
func (m *IdentityMap) Len() int { return len(m.clones) }

// Lookup returns the clone registered for original, if any.
// original must be a pointer, map, or slice; anything else
// (including nil references) reports false.
func (m *IdentityMap) Lookup(original any) (clone any, ok bool) {
	value := reflect.ValueOf(original)
	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
	default:
		return nil, false
	}
	if value.IsNil() {
		return nil, false
	}
	cloned, ok := m.lookup(value)
	if !ok {
		return nil, false
	}
	return cloned.Interface(), true
}

// keyOf derives the identity of a non-nil pointer, map, or slice.
// Slices additionally carry their length: distinct subslices over
// one backing array are distinct nodes.
func keyOf(v reflect.Value) identityKey {
	key := identityKey{pointer: v.Pointer(), typ: v.Type()}
	if v.Kind() == reflect.Slice {
		key.length = v.Len()
	}
	return key
}

func (m *IdentityMap) lookup(original reflect.Value) (reflect.Value, bool) {
	clone, ok := m.clones[keyOf(original)]
	return clone, ok
}

// register must be called before the clone's members are populated;
// that ordering is what terminates cycles and keeps shared nodes shared.
func (m *IdentityMap) register(original, clone reflect.Value) {
	m.clones[keyOf(original)] = clone
}
