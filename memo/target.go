package memo

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// TargetID is the arena index of a target: xxhash64 of its canonical key.
type TargetID uint64

func (id TargetID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// Target identifies one memoized call: a computation identity applied to an
// ordered argument list. Targets are immutable values; two targets are equal
// iff their identities and arguments are equal.
type Target struct {
	function string
	args     []any
	key      string
	id       TargetID
}

// NewTarget builds the target for function applied to args.
//
// Arguments must be comparable. A non-comparable argument is accepted when it
// implements fmt.Stringer, in which case its String() takes part in equality.
//
// Arguments are equal when their dynamic types (qualified by import path) and
// their Go-syntax renderings match. For a float argument this means +0 and -0
// are the same argument, and a NaN equals every NaN of its type so that a
// call with NaN can hit its own entry. Floats nested inside other values are
// compared by rendering only.
func NewTarget(function string, args ...any) (Target, error) {
	var b strings.Builder
	b.WriteString(function)
	b.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		k, err := argKey(arg)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %s argument %d (%T)", err, function, i, arg)
		}
		b.WriteString(k)
	}
	b.WriteByte(')')

	key := b.String()
	return Target{
		function: function,
		args:     append([]any(nil), args...),
		key:      key,
		id:       TargetID(xxhash.Sum64String(key)),
	}, nil
}

// MustTarget is the panic-on-failure variant of NewTarget.
func MustTarget(function string, args ...any) Target {
	t, err := NewTarget(function, args...)
	if err != nil {
		panic(err)
	}
	return t
}

// argKey renders one argument so that two arguments share a key iff they are
// equal and of the same dynamic type.
func argKey(arg any) (string, error) {
	if arg == nil {
		return "nil", nil
	}
	typ := reflect.TypeOf(arg)
	if !typ.Comparable() {
		if stringer, ok := arg.(fmt.Stringer); ok {
			return fmt.Sprintf("%s:%q", typeKey(typ), stringer.String()), nil
		}
		return "", ErrUnhashableArgument
	}
	switch typ.Kind() {
	case reflect.Float32, reflect.Float64:
		if reflect.ValueOf(arg).Float() == 0 {
			arg = reflect.Zero(typ).Interface()
		}
	}
	return fmt.Sprintf("%s:%#v", typeKey(typ), arg), nil
}

// typeKey qualifies named types with their import path; reflect.Type.String
// only carries the package name.
func typeKey(typ reflect.Type) string {
	switch {
	case typ.Name() != "" && typ.PkgPath() != "":
		return typ.PkgPath() + "." + typ.Name()
	case typ.Kind() == reflect.Pointer:
		return "*" + typeKey(typ.Elem())
	default:
		return typ.String()
	}
}

func (t Target) Function() string { return t.function }

// Args returns a copy of the argument list.
func (t Target) Args() []any { return append([]any(nil), t.args...) }

func (t Target) ID() TargetID { return t.id }

func (t Target) Equal(other Target) bool { return t.key == other.key }

// IsZero reports whether t was never built by NewTarget.
func (t Target) IsZero() bool { return t.key == "" }

func (t Target) String() string { return "<Target " + t.key + ">" }
