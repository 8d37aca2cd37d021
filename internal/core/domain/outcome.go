package domain

// Outcome is the result of a fetch: either a value of type T or an error of
// type E, never both. The zero Outcome is a success holding the zero T.
type Outcome[T, E any] struct {
	value  T
	err    E
	failed bool
}

// Success returns an Outcome holding v.
func Success[T, E any](v T) Outcome[T, E] {
	return Outcome[T, E]{value: v}
}

// Failure returns an Outcome holding err.
func Failure[T, E any](err E) Outcome[T, E] {
	return Outcome[T, E]{err: err, failed: true}
}

// IsSuccess reports whether the outcome holds a value.
func (o Outcome[T, E]) IsSuccess() bool {
	return !o.failed
}

// Value returns the success value and true, or the zero T and false.
func (o Outcome[T, E]) Value() (T, bool) {
	if o.failed {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Err returns the failure and true, or the zero E and false.
func (o Outcome[T, E]) Err() (E, bool) {
	if !o.failed {
		var zero E
		return zero, false
	}
	return o.err, true
}

// Unpack converts an Outcome whose failure type is an error into the
// conventional (value, error) pair.
func Unpack[T any, E error](o Outcome[T, E]) (T, error) {
	if e, failed := o.Err(); failed {
		var zero T
		return zero, e
	}
	v, _ := o.Value()
	return v, nil
}
