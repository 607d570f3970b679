package prefmap

// Mutation is a scoped write handle for one entry. It works on a scratch
// copy; Commit writes the copy back into the store exactly once. A second
// Commit is a no-op, so deferring it alongside an explicit call is safe.
type Mutation[T any] struct {
	m         *Map
	value     T
	committed bool
}

// Mutate begins a mutation scope for T. The scratch value starts from the
// current entry, or from the registered default if the entry is absent.
func Mutate[T any](m *Map) *Mutation[T] {
	value, ok := Get[T](m)
	if !ok {
		value = defaultValue[T](m)
	}
	return &Mutation[T]{m: m, value: value}
}

// Value returns the scratch copy for editing.
func (mu *Mutation[T]) Value() *T {
	return &mu.value
}

// Commit writes the scratch copy back into the store. Only the first call
// commits.
func (mu *Mutation[T]) Commit() {
	if mu.committed {
		return
	}
	mu.committed = true
	Set(mu.m, mu.value)
}

// Update runs fn against a scratch copy of the entry for T and commits it
// back into the store on every exit path, including panics inside fn. The
// commit happens exactly once per call.
func Update[T any](m *Map, fn func(*T)) {
	mu := Mutate[T](m)
	defer mu.Commit()
	fn(mu.Value())
}
