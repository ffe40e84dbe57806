// Package propbind propagates property changes from one object to another.
//
// A Notifier is a hub for property change events, keyed by object identity
// and property name. A Binding copies a source property to a destination
// property when constructed and re-applies it on every emitted change,
// optionally through a Transform. Destination writes land on a Dispatcher,
// by default the process main loop.
//
// Mutation is not intercepted: code that changes an observed property must
// call Emit (or EmitOld) afterward, or bindings will not update.
package propbind
