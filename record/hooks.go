package record

import "iter"

// WithChild returns a copy of the record with the child stored under key,
// a field name or numeric tag. Structural-update tooling uses it together
// with Children to rewrite record trees.
func (in *Instance) WithChild(key string, child any) (Record, error) {
	i, ok := in.typ.fieldIndex(key)
	if !ok {
		return nil, &Error{Type: in.typ.identity, Field: key, Code: CodeUnknownField, Message: "no such field"}
	}
	next, err := in.Set(i, child)
	if err != nil {
		return nil, err
	}
	return in.typ.Wrap(next), nil
}

// Children yields the record and container values of the instance by field
// name, in declaration order.
func (in *Instance) Children() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		slots := in.typ.resolved()
		for i := range slots {
			switch in.vals[i].(type) {
			case Record, *List, *Set, *Map:
				if !yield(slots[i].Name, in.vals[i]) {
					return
				}
			}
		}
	}
}
