package deepclone

import (
	"reflect"

	"github.com/djdv/go-deepclone/internal/member"
)

type (
	// Plan is a compiled clone routine for exactly one type.
	// Constructed by [CompilePlan] or implicitly by [Clone];
	// storable in either cache tier via [StoreFullPlan] and
	// [StoreLimitedPlan].
	Plan struct {
		typ  reflect.Type
		exec planFunc
	}
	// planFunc duplicates source, registering reference-typed
	// allocations in the walker's identity map before descending
	// into their members.
	planFunc func(source reflect.Value, w *walker) (reflect.Value, error)

	// opMode tells a compiled plan how to treat one member
	// of the type it clones, decided once at compile time.
	opMode uint8
	// memberOp is the compiled treatment of a single storage
	// location (struct field, array/slice element, map key/value).
	memberOp struct {
		plan *Plan
		typ  reflect.Type
		mode opMode
	}
)

const (
	// opCopy: assignment suffices (plain values, strings).
	opCopy opMode = iota
	// opZero: behavioral member; the clone holds the zero value.
	opZero
	// opPlan: a compiled plan is bound for the concrete type.
	opPlan
	// opDynamic: declared type is an abstraction; classify the
	// dynamic value at execution time.
	opDynamic
)

// Type returns the concrete type this plan clones.
func (p *Plan) Type() reflect.Type { return p.typ }

// CompilePlan builds a standalone clone plan for t without consulting
// or populating either cache tier. Callers pre-warming the cache pass
// the result to [StoreFullPlan] or [StoreLimitedPlan].
// Behavioral types (func, chan) fail with [ErrUnsupportedType].
func CompilePlan(t reflect.Type) (*Plan, error) {
	return newCompiler(nil).plan(t)
}

// compiler builds plans for one resolution request. Every compound
// type it visits lands in compiled; a placeholder is registered before
// a type's members are examined so self- and mutually-referential
// types terminate.
type compiler struct {
	compiled map[reflect.Type]*Plan
	// lookup consults the active cache tier for already-compiled
	// plans; nil for throwaway (uncached) compilation.
	lookup func(reflect.Type) (*Plan, bool)
}

func newCompiler(lookup func(reflect.Type) (*Plan, bool)) *compiler {
	return &compiler{
		compiled: make(map[reflect.Type]*Plan),
		lookup:   lookup,
	}
}

func (c *compiler) plan(t reflect.Type) (*Plan, error) {
	if existing, ok := c.compiled[t]; ok {
		return existing, nil
	}
	if c.lookup != nil {
		if cached, ok := c.lookup(t); ok {
			return cached, nil
		}
	}
	switch t.Kind() {
	case reflect.Func, reflect.Chan:
		return nil, unsupportedTypeError(t)
	}
	placeholder := &Plan{typ: t}
	c.compiled[t] = placeholder
	exec, err := c.compile(t)
	if err != nil {
		delete(c.compiled, t)
		return nil, err
	}
	placeholder.exec = exec
	return placeholder, nil
}

func (c *compiler) compile(t reflect.Type) (planFunc, error) {
	switch classify(t) {
	case strategyStruct:
		return c.compileStruct(t)
	case strategyArray:
		return c.compileArray(t)
	case strategyPointer:
		return c.compilePointer(t)
	case strategyMap:
		return c.compileMap(t)
	case strategySlice:
		return c.compileSlice(t)
	case strategyInterface:
		return func(source reflect.Value, w *walker) (reflect.Value, error) {
			return w.clone(source)
		}, nil
	default: // strategyValue, strategyString
		return func(source reflect.Value, _ *walker) (reflect.Value, error) {
			return source, nil
		}, nil
	}
}

// memberOp decides, from a member's declared type, how the containing
// plan treats it. Concrete compound types bind their plan here;
// abstractions defer to runtime classification.
func (c *compiler) memberOp(t reflect.Type) (memberOp, error) {
	switch classify(t) {
	case strategyValue, strategyString:
		return memberOp{mode: opCopy, typ: t}, nil
	case strategyBehavioral:
		return memberOp{mode: opZero, typ: t}, nil
	case strategyInterface:
		return memberOp{mode: opDynamic, typ: t}, nil
	default:
		plan, err := c.plan(t)
		if err != nil {
			return memberOp{}, err
		}
		return memberOp{mode: opPlan, typ: t, plan: plan}, nil
	}
}

func (c *compiler) compileStruct(t reflect.Type) (planFunc, error) {
	fields := member.Fields(t)
	ops := make([]memberOp, len(fields))
	for i, field := range fields {
		op, err := c.memberOp(field.Type)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	return func(source reflect.Value, w *walker) (reflect.Value, error) {
		if debugging {
			assert(source.Type() == t, "plan executed against a foreign type")
		}
		source = addressable(source)
		target := reflect.New(t).Elem()
		for i, field := range fields {
			if ops[i].mode == opZero {
				continue // behavioral member: the clone keeps the nil zero value
			}
			current, ok := member.Read(source, field)
			if !ok {
				return reflect.Value{}, memberAccessError(t, field.Name)
			}
			cloned, err := w.apply(ops[i], current)
			if err != nil {
				return reflect.Value{}, err
			}
			if !member.Write(target, field, cloned) {
				return reflect.Value{}, memberAccessError(t, field.Name)
			}
		}
		return target, nil
	}, nil
}

func (c *compiler) compileArray(t reflect.Type) (planFunc, error) {
	elemOp, err := c.memberOp(t.Elem())
	if err != nil {
		return nil, err
	}
	length := t.Len()
	return func(source reflect.Value, w *walker) (reflect.Value, error) {
		target := reflect.New(t).Elem()
		source = addressable(source)
		for i := 0; i < length; i++ {
			cloned, err := w.apply(elemOp, source.Index(i))
			if err != nil {
				return reflect.Value{}, err
			}
			target.Index(i).Set(cloned)
		}
		return target, nil
	}, nil
}

func (c *compiler) compilePointer(t reflect.Type) (planFunc, error) {
	elemOp, err := c.memberOp(t.Elem())
	if err != nil {
		return nil, err
	}
	return func(source reflect.Value, w *walker) (reflect.Value, error) {
		if source.IsNil() {
			return reflect.Zero(t), nil
		}
		if cloned, ok := w.seen.lookup(source); ok {
			return cloned, nil
		}
		target := reflect.New(t.Elem())
		w.seen.register(source, target)
		cloned, err := w.apply(elemOp, source.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		target.Elem().Set(cloned)
		return target, nil
	}, nil
}

func (c *compiler) compileMap(t reflect.Type) (planFunc, error) {
	keyOp, err := c.memberOp(t.Key())
	if err != nil {
		return nil, err
	}
	elemOp, err := c.memberOp(t.Elem())
	if err != nil {
		return nil, err
	}
	return func(source reflect.Value, w *walker) (reflect.Value, error) {
		if source.IsNil() {
			return reflect.Zero(t), nil
		}
		if cloned, ok := w.seen.lookup(source); ok {
			return cloned, nil
		}
		target := reflect.MakeMapWithSize(t, source.Len())
		w.seen.register(source, target)
		for iter := source.MapRange(); iter.Next(); {
			key, err := w.apply(keyOp, iter.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			value, err := w.apply(elemOp, iter.Value())
			if err != nil {
				return reflect.Value{}, err
			}
			target.SetMapIndex(key, value)
		}
		return target, nil
	}, nil
}

func (c *compiler) compileSlice(t reflect.Type) (planFunc, error) {
	elemOp, err := c.memberOp(t.Elem())
	if err != nil {
		return nil, err
	}
	return func(source reflect.Value, w *walker) (reflect.Value, error) {
		if source.IsNil() {
			return reflect.Zero(t), nil
		}
		if cloned, ok := w.seen.lookup(source); ok {
			return cloned, nil
		}
		length := source.Len()
		target := reflect.MakeSlice(t, length, source.Cap())
		w.seen.register(source, target)
		for i := 0; i < length; i++ {
			cloned, err := w.apply(elemOp, source.Index(i))
			if err != nil {
				return reflect.Value{}, err
			}
			target.Index(i).Set(cloned)
		}
		return target, nil
	}, nil
}

// addressable returns v, or an addressable copy of it, so that
// unexported storage can be reached through its address.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	copied := reflect.New(v.Type()).Elem()
	copied.Set(v)
	return copied
}
