package propbind

import (
	"sync"
	"weak"

	"github.com/sirupsen/logrus"
)

// Handler receives change events for the subscribed subject and properties.
type Handler func(ChangeEvent)

// subjectKey identifies one observed property of one object. The ref half is
// a boxed weak pointer, so a key never keeps its subject alive: two keys are
// equal exactly when they were built from the same live pointer.
type subjectKey struct {
	ref      any
	property string
}

type handlerEntry struct {
	handler Handler
	removed bool // guarded by Notifier.mu
}

// Subscription is the handle returned by Subscribe. Pass it to
// (*Notifier).Unsubscribe to stop delivery.
type Subscription struct {
	entry *handlerEntry
	keys  []subjectKey
}

// Notifier routes property change events to subscribed handlers, filtered by
// object identity and property name. The zero value is not usable; create
// instances with NewNotifier or share the process-wide Default hub.
type Notifier struct {
	mu     sync.Mutex
	subs   map[subjectKey][]*handlerEntry
	logger *logrus.Logger
}

// NewNotifier creates an independent hub. A nil logger falls back to the
// logrus standard logger; hub traffic is logged at debug level only.
func NewNotifier(logger *logrus.Logger) *Notifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Notifier{
		subs:   make(map[subjectKey][]*handlerEntry),
		logger: logger,
	}
}

var (
	defaultOnce     sync.Once
	defaultNotifier *Notifier
)

// Default returns the process-wide hub, created lazily on first use and
// alive for the remainder of the process.
func Default() *Notifier {
	defaultOnce.Do(func() {
		defaultNotifier = NewNotifier(nil)
	})
	return defaultNotifier
}

// Subscribe registers handler for every named property of subject on hub n.
// Multiple independent subscriptions for the same subject and property are
// allowed and all fire. The hub holds the subject weakly; a subscription
// left registered after its subject is reclaimed idles until unsubscribed.
func Subscribe[O any](n *Notifier, subject *O, handler Handler, properties ...string) *Subscription {
	if n == nil || subject == nil || handler == nil || len(properties) == 0 {
		return &Subscription{}
	}
	return n.subscribe(weak.Make(subject), handler, properties)
}

func (n *Notifier) subscribe(ref any, handler Handler, properties []string) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	e := &handlerEntry{handler: handler}
	s := &Subscription{entry: e}
	for _, p := range properties {
		key := subjectKey{ref: ref, property: p}
		n.subs[key] = append(n.subs[key], e)
		s.keys = append(s.keys, key)
	}
	return s
}

// Unsubscribe removes s from the hub. It is idempotent: unsubscribing twice,
// or with a nil handle, does nothing. After it returns the handler does not
// fire again.
func (n *Notifier) Unsubscribe(s *Subscription) {
	if n == nil || s == nil || s.entry == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if s.entry.removed {
		return
	}
	s.entry.removed = true
	for _, key := range s.keys {
		entries := n.subs[key]
		for i, e := range entries {
			if e == s.entry {
				n.subs[key] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
		if len(n.subs[key]) == 0 {
			delete(n.subs, key)
		}
	}
}

// Emit notifies every live subscription for (subject, property) that the
// property changed, with no old value reported. Delivery is synchronous and
// sequential on the calling goroutine; emitting with no subscribers is a
// no-op.
func Emit[O any](n *Notifier, subject *O, property string) {
	EmitOld[O](n, subject, property, nil)
}

// EmitOld is Emit with the pre-change value passed through to handlers.
func EmitOld[O any](n *Notifier, subject *O, property string, old any) {
	if n == nil || subject == nil {
		return
	}
	n.emit(weak.Make(subject), subject, property, old)
}

func (n *Notifier) emit(ref any, subject any, property string, old any) {
	key := subjectKey{ref: ref, property: property}
	n.mu.Lock()
	entries := append([]*handlerEntry(nil), n.subs[key]...)
	n.mu.Unlock()
	if len(entries) == 0 {
		return
	}
	n.logger.Debugf("propbind: emitting %q to %d subscriber(s)", property, len(entries))

	ev := ChangeEvent{Subject: subject, Property: property, Old: old}
	for _, e := range entries {
		// Handlers run outside the lock so they may subscribe,
		// unsubscribe or emit re-entrantly.
		n.mu.Lock()
		skip := e.removed
		n.mu.Unlock()
		if skip {
			continue
		}
		e.handler(ev)
	}
}

// subscriptions reports the number of live subscription registrations.
func (n *Notifier) subscriptions() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, entries := range n.subs {
		total += len(entries)
	}
	return total
}
