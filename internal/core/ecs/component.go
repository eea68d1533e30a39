package ecs

// Table is a generic handle-keyed map of pointers.
// No reflect, no interface{} — pure generics.
type Table[T any] struct {
	data map[Handle]*T
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{
		data: make(map[Handle]*T, 256),
	}
}

func (t *Table[T]) Set(h Handle, v *T) {
	t.data[h] = v
}

func (t *Table[T]) Get(h Handle) (*T, bool) {
	v, ok := t.data[h]
	return v, ok
}

func (t *Table[T]) Remove(h Handle) {
	delete(t.data, h)
}

// Clear drops every entry.
func (t *Table[T]) Clear() {
	clear(t.data)
}
