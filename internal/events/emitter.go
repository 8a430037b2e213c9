// Package events provides the per-client observer registry used to publish
// diagnostic events (log-info, log-warn, log-error) to subscribers.
package events

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Kind names a diagnostic event channel.
type Kind string

const (
	KindInfo  Kind = "log-info"
	KindWarn  Kind = "log-warn"
	KindError Kind = "log-error"
)

// Event is a single diagnostic message. It is handed to the subscribers and
// then dropped; the emitter keeps no history.
type Event struct {
	Kind    Kind
	Message string
	Fields  map[string]any
	Time    time.Time

	order []string
}

// String renders the event as "message key=value ...", with keys in the
// order they were emitted.
func (e Event) String() string {
	return e.Message + e.fieldsSuffix()
}

func (e Event) fieldsSuffix() string {
	if len(e.Fields) == 0 {
		return ""
	}
	s := ""
	for _, k := range e.keys() {
		s += fmt.Sprintf(" %s=%v", k, e.Fields[k])
	}
	return s
}

// Handler receives events. Handlers run synchronously on the emitting
// goroutine and should not block.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Emitter is a registry of handlers per event kind. It is safe for
// concurrent use. The zero value is not usable; call New.
type Emitter struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Kind][]subscription
	now    func() time.Time
}

// New creates an empty Emitter.
func New() *Emitter {
	return &Emitter{
		subs: make(map[Kind][]subscription),
		now:  time.Now,
	}
}

// Subscribe registers handler for kind and returns a function that removes
// exactly this registration. Calling the returned function more than once
// is a no-op.
func (e *Emitter) Subscribe(kind Kind, handler Handler) (unsubscribe func()) {
	if handler == nil {
		return func() {}
	}

	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs[kind] = append(e.subs[kind], subscription{id: id, handler: handler})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(kind, id) })
	}
}

func (e *Emitter) remove(kind Kind, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.subs[kind]
	for i, s := range subs {
		if s.id == id {
			// Copy so that an in-progress Emit keeps iterating its snapshot.
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			e.subs[kind] = next
			return
		}
	}
}

// Subscribers returns the number of handlers registered for kind.
func (e *Emitter) Subscribers(kind Kind) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs[kind])
}

// Emit publishes a message to every handler of kind, in subscription
// order. args are slog-style alternating key/value pairs; a trailing key
// without a value is recorded under "!BADKEY". A panicking handler does not
// prevent delivery to the others.
func (e *Emitter) Emit(kind Kind, msg string, args ...any) {
	e.mu.RLock()
	subs := e.subs[kind]
	e.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	fields, order := fieldsFromArgs(args)
	ev := Event{
		Kind:    kind,
		Message: msg,
		Fields:  fields,
		Time:    e.now(),
		order:   order,
	}

	for _, s := range subs {
		deliver(s.handler, ev)
	}
}

// Info emits a log-info event.
func (e *Emitter) Info(msg string, args ...any) { e.Emit(KindInfo, msg, args...) }

// Warn emits a log-warn event.
func (e *Emitter) Warn(msg string, args ...any) { e.Emit(KindWarn, msg, args...) }

// Error emits a log-error event.
func (e *Emitter) Error(msg string, args ...any) { e.Emit(KindError, msg, args...) }

func deliver(h Handler, ev Event) {
	defer func() { _ = recover() }()
	h(ev)
}

func fieldsFromArgs(args []any) (map[string]any, []string) {
	if len(args) == 0 {
		return nil, nil
	}
	fields := make(map[string]any, len(args)/2+1)
	order := make([]string, 0, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			fields["!BADKEY"] = key
			order = append(order, "!BADKEY")
			break
		}
		if _, seen := fields[key]; !seen {
			order = append(order, key)
		}
		fields[key] = args[i+1]
	}
	return fields, order
}

func (e Event) keys() []string {
	if len(e.order) == len(e.Fields) {
		return e.order
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Attrs returns the event fields as alternating key/value pairs in emission
// order, ready to pass to a slog call.
func (e Event) Attrs() []any {
	keys := e.keys()
	out := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, e.Fields[k])
	}
	return out
}

// Field returns a single field value.
func (e Event) Field(key string) (any, bool) {
	v, ok := e.Fields[key]
	return v, ok
}
