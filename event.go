package propbind

// ChangeEvent describes a single property mutation. One event is built per
// Emit call, handed to every matching handler, and discarded.
type ChangeEvent struct {
	// Subject is the object whose property changed.
	Subject any
	// Property names the changed property on the subject.
	Property string
	// Old is the value before the change, nil when the emitter did not
	// report one.
	Old any
}
