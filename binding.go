package propbind

import (
	"errors"
	"reflect"
	"runtime"
	"sync/atomic"
	"weak"

	"github.com/sirupsen/logrus"
)

// BindOption configures a Binding under construction.
type BindOption func(*bindOptions)

type bindOptions struct {
	notifier   *Notifier
	dispatcher Dispatcher
	transform  Transform
	logger     *logrus.Logger
}

// WithNotifier subscribes the binding on n instead of the Default hub.
func WithNotifier(n *Notifier) BindOption {
	return func(o *bindOptions) { o.notifier = n }
}

// WithDispatcher runs destination writes on d. Writes block the emitter until
// d has processed them, unless the emitter is already on d. Without this
// option writes go to MainLoop, asynchronously when emitted elsewhere.
func WithDispatcher(d Dispatcher) BindOption {
	return func(o *bindOptions) { o.dispatcher = d }
}

// WithTransform maps source values before they are written. Supplying a
// transform lifts the type-compatibility check entirely.
func WithTransform(t Transform) BindOption {
	return func(o *bindOptions) { o.transform = t }
}

// WithLogger sets the logger for transform failures. Defaults to the logrus
// standard logger.
func WithLogger(l *logrus.Logger) BindOption {
	return func(o *bindOptions) { o.logger = l }
}

// Binding keeps a destination property equal to the (transformed) value of a
// source property: it writes once at construction and again on every change
// emitted for the source. It holds both endpoints weakly; once either is
// reclaimed the binding turns inert and notifications silently do nothing.
type Binding struct {
	notifier *Notifier
	sub      *Subscription
	unbound  *atomic.Bool
	cleanup  runtime.Cleanup
}

// Bind links dest's destProp to source's sourceProp.
//
// Without a transform the value types must be identical, or the destination
// type must be a pointer to the source type, in which case values are
// auto-wrapped; any other pairing fails with *IncompatibleTypesError. Binding
// a property to itself without a transform fails with
// ErrSameObjectAndProperty; with a transform it is allowed, so a property can
// be rewritten in place.
//
// The current source value is written to the destination immediately, on the
// calling goroutine, before the Notifier subscription is registered.
func Bind[S, SV, D, DV any](
	source *S, sourceProp Property[S, SV],
	dest *D, destProp Property[D, DV],
	opts ...BindOption,
) (*Binding, error) {
	if source == nil || dest == nil {
		return nil, ErrNilEndpoint
	}
	var o bindOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = Default()
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}
	defaultDispatcher := o.dispatcher == nil
	if defaultDispatcher {
		o.dispatcher = MainLoop()
	}

	wrap := false
	if o.transform == nil {
		st := sourceProp.valueType()
		dt := destProp.valueType()
		switch {
		case st == dt:
		case dt.Kind() == reflect.Pointer && dt.Elem() == st:
			wrap = true
		default:
			return nil, &IncompatibleTypesError{Source: st, Dest: dt}
		}
		if any(source) == any(dest) && sourceProp.Name() == destProp.Name() {
			return nil, ErrSameObjectAndProperty
		}
	}

	srcRef := weak.Make(source)
	dstRef := weak.Make(dest)
	transform := o.transform
	logger := o.logger

	apply := func(old any) {
		src := srcRef.Value()
		dst := dstRef.Value()
		if src == nil || dst == nil {
			// An endpoint was reclaimed; the binding is inert.
			return
		}
		value := sourceProp.Get(src)
		var out DV
		switch {
		case transform != nil:
			mapped, err := transform(old, value)
			if err != nil {
				if !errors.Is(err, ErrValueRejected) {
					logger.Warnf("propbind: transform for %q failed: %v", destProp.Name(), err)
				}
				return
			}
			typed, ok := mapped.(DV)
			if !ok {
				logger.Warnf("propbind: transform for %q produced %T, destination wants %s",
					destProp.Name(), mapped, destProp.valueType())
				return
			}
			out = typed
		case wrap:
			out = any(&value).(DV)
		default:
			out = any(value).(DV)
		}
		destProp.Set(dst, out)
	}

	// Initial synchronization, with no old value reported.
	apply(nil)

	dispatcher := o.dispatcher
	unbound := new(atomic.Bool)
	sub := Subscribe(o.notifier, source, func(ev ChangeEvent) {
		if unbound.Load() {
			return
		}
		write := func() { apply(ev.Old) }
		switch {
		case dispatcher.Current():
			write()
		case defaultDispatcher:
			dispatcher.Async(write)
		default:
			dispatcher.Sync(write)
		}
	}, sourceProp.Name())

	b := &Binding{notifier: o.notifier, sub: sub, unbound: unbound}
	// End-of-owning-scope disposal: a binding dropped without Unbind still
	// releases its subscription once collected.
	notifier := o.notifier
	b.cleanup = runtime.AddCleanup(b, func(s *Subscription) {
		unbound.Store(true)
		notifier.Unsubscribe(s)
	}, sub)
	return b, nil
}

// Unbind removes the binding's Notifier subscription. It is idempotent and
// nil-safe; after it returns no further destination writes occur.
func (b *Binding) Unbind() {
	if b == nil || b.unbound.Swap(true) {
		return
	}
	b.cleanup.Stop()
	b.notifier.Unsubscribe(b.sub)
}
