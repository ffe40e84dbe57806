package propbind

import "reflect"

// Property is a named accessor pair for a property of O with value type V.
// The name is the identifier Notifier subscriptions filter on, so it must be
// unique among the observed properties of O.
type Property[O, V any] struct {
	name string
	get  func(*O) V
	set  func(*O, V)
}

// NewProperty builds a property accessor from a name, a getter and a setter.
func NewProperty[O, V any](name string, get func(*O) V, set func(*O, V)) Property[O, V] {
	return Property[O, V]{name: name, get: get, set: set}
}

// Name returns the property identifier.
func (p Property[O, V]) Name() string { return p.name }

// Get reads the property from obj.
func (p Property[O, V]) Get(obj *O) V { return p.get(obj) }

// Set writes v to the property of obj.
func (p Property[O, V]) Set(obj *O, v V) { p.set(obj, v) }

func (p Property[O, V]) valueType() reflect.Type {
	return reflect.TypeOf((*V)(nil)).Elem()
}
