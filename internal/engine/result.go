package engine

// Result is the outcome of one query against the engine: a value or the
// reason it could not be produced. A failed Result carries the zero value.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the query succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Get returns the value and error as a pair.
func (r Result[T]) Get() (T, error) {
	return r.Value, r.Err
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}
