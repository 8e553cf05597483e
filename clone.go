package deepclone

import "reflect"

type (
	// Option adjusts a single [Clone] call.
	Option func(*settings)

	settings struct {
		seen     *IdentityMap
		useCache bool
	}

	// walker carries the per-call state of one graph traversal:
	// the identity space and the plan source.
	walker struct {
		seen *IdentityMap
		// cache serves plan resolution; nil when the caller
		// opted out, in which case throwaway holds plans
		// compiled for this call alone.
		cache     *planCache
		throwaway *compiler
	}
)

// WithIdentityMap makes the call record and consult m instead of a
// fresh map, merging several sequential calls into one identity space.
// Such reuse must be serialized by the caller.
func WithIdentityMap(m *IdentityMap) Option {
	return func(s *settings) { s.seen = m }
}

// WithoutCache compiles throwaway plans for the call, consulting and
// populating neither cache tier.
func WithoutCache() Option {
	return func(s *settings) { s.useCache = false }
}

// Clone returns a structurally independent copy of source.
//
// Plain values and strings are returned as-is; strings are immutable
// and copying them would only waste memory. Every reference-typed node
// (pointer, map, slice) is duplicated exactly once per identity space,
// so shared nodes stay shared and cyclic graphs terminate. Unexported
// fields are duplicated through direct storage access.
//
// A func or chan passed as source fails with [ErrUnsupportedType];
// the same types reached as members clone to nil instead, so a large
// graph survives an incidental callback field. Errors are never
// partial: on any failure the returned value is the zero value.
func Clone[T any](source T, options ...Option) (T, error) {
	var (
		zero T
		cfg  = settings{useCache: true}
	)
	for _, apply := range options {
		apply(&cfg)
	}
	value := reflect.ValueOf(source)
	if !value.IsValid() {
		return zero, nil
	}
	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan:
		if value.IsNil() {
			return zero, nil
		}
	}
	typ := value.Type()
	switch classify(typ) {
	case strategyValue, strategyString:
		return source, nil
	case strategyBehavioral:
		return zero, unsupportedTypeError(typ)
	}
	seen := cfg.seen
	if seen == nil {
		seen = NewIdentityMap()
	}
	w := &walker{seen: seen}
	if cfg.useCache {
		w.cache = &plans
	} else {
		w.throwaway = newCompiler(nil)
	}
	// A shared identity space may already hold this node.
	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if cloned, ok := seen.lookup(value); ok {
			return cloned.Interface().(T), nil
		}
	}
	plan, err := w.resolve(typ)
	if err != nil {
		return zero, err
	}
	cloned, err := plan.exec(value, w)
	if err != nil {
		return zero, err
	}
	return cloned.Interface().(T), nil
}

func (w *walker) resolve(t reflect.Type) (*Plan, error) {
	if w.cache != nil {
		return w.cache.resolve(t)
	}
	return w.throwaway.plan(t)
}

// clone duplicates a value whose concrete type was not known at
// compile time: interface members and plan-less root kinds.
// Behavioral values here are members by construction, so they
// clone to nil rather than failing.
func (w *walker) clone(value reflect.Value) (reflect.Value, error) {
	if value.Kind() == reflect.Interface {
		if value.IsNil() {
			return reflect.Zero(value.Type()), nil
		}
		elem := value.Elem()
		if classify(elem.Type()) == strategyBehavioral {
			// The member is nulled outright, not boxed as a typed nil.
			return reflect.Zero(value.Type()), nil
		}
		cloned, err := w.clone(elem)
		if err != nil {
			return reflect.Value{}, err
		}
		boxed := reflect.New(value.Type()).Elem()
		boxed.Set(cloned)
		return boxed, nil
	}
	typ := value.Type()
	switch classify(typ) {
	case strategyValue, strategyString:
		return value, nil
	case strategyBehavioral:
		return reflect.Zero(typ), nil
	}
	plan, err := w.resolve(typ)
	if err != nil {
		return reflect.Value{}, err
	}
	return plan.exec(value, w)
}

// apply executes a compiled member op against the member's current value.
func (w *walker) apply(op memberOp, value reflect.Value) (reflect.Value, error) {
	switch op.mode {
	case opCopy:
		return value, nil
	case opZero:
		return reflect.Zero(op.typ), nil
	case opDynamic:
		return w.clone(value)
	default: // opPlan
		if debugging {
			assert(op.plan.exec != nil, "member op bound to an uncompiled plan")
		}
		return op.plan.exec(value, w)
	}
}
