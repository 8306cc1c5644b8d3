// Package event provides the engine's typed pub/sub bus: an in-process,
// synchronous publish/subscribe registry used both for UI notifications
// (streaming chunks, state updates, tool completions) and for
// request/response rendezvous (permission, ask-question, plan-exit).
package event

import (
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/sema-dev/sema-core/internal/logging"
)

// Event is one message delivered on the bus.
type Event struct {
	Name Name
	Data any
}

// Handler receives delivered events.
type Handler func(Event)

type subscriberEntry struct {
	id   uint64
	fn   Handler
	once bool
}

// Bus delivers events to subscribers synchronously, in subscription order.
// A handler that panics is recovered and logged; the panic never reaches
// the emitter and never prevents delivery to the remaining subscribers
// (spec §4.1).
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Name][]subscriberEntry
	global      []subscriberEntry
	nextID      uint64

	// pubsub is kept available for an external bridge (e.g. shipping events
	// to a remote UI over a message broker); the bus's own delivery never
	// routes through it.
	pubsub *gochannel.GoChannel
}

// NewBus creates an isolated bus instance. Test fixtures and the engine
// façade each own one; there is no hidden process-global bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Name][]subscriberEntry),
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 100},
			watermill.NopLogger{},
		),
	}
}

func (b *Bus) newID() uint64 { return atomic.AddUint64(&b.nextID, 1) }

// On registers a persistent handler for name. Returns an unsubscribe func.
func (b *Bus) On(name Name, fn Handler) func() {
	return b.subscribe(name, fn, false)
}

// Once registers a handler that auto-unregisters after its first delivery.
func (b *Bus) Once(name Name, fn Handler) func() {
	return b.subscribe(name, fn, true)
}

// OnAll registers a handler that receives every event regardless of name.
func (b *Bus) OnAll(fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.newID()
	b.global = append(b.global, subscriberEntry{id: id, fn: fn})
	return func() { b.unsubscribeGlobal(id) }
}

// Off is an alias for calling the unsubscribe function returned by On/Once;
// kept for symmetry with the public engine API's on/once/off naming (§6).
func (b *Bus) Off(unsubscribe func()) { unsubscribe() }

func (b *Bus) subscribe(name Name, fn Handler, once bool) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.newID()
	b.subscribers[name] = append(b.subscribers[name], subscriberEntry{id: id, fn: fn, once: once})
	return func() { b.unsubscribe(name, id) }
}

func (b *Bus) unsubscribe(name Name, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[name]
	for i, e := range subs {
		if e.id == id {
			b.subscribers[name] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) unsubscribeGlobal(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.global {
		if e.id == id {
			b.global = append(b.global[:i], b.global[i+1:]...)
			return
		}
	}
}

// Emit delivers an event synchronously to every current subscriber, in
// subscription order: per-name subscribers first, then global ones. Once
// subscribers are removed after this delivery.
func (b *Bus) Emit(name Name, data any) {
	b.mu.Lock()
	subs := append([]subscriberEntry{}, b.subscribers[name]...)
	global := append([]subscriberEntry{}, b.global...)
	var onceIDs []uint64
	for _, e := range subs {
		if e.once {
			onceIDs = append(onceIDs, e.id)
		}
	}
	for _, id := range onceIDs {
		b.unsubscribeLocked(name, id)
	}
	b.mu.Unlock()

	ev := Event{Name: name, Data: data}
	for _, e := range subs {
		b.deliver(e.fn, ev)
	}
	for _, e := range global {
		b.deliver(e.fn, ev)
	}
}

// unsubscribeLocked must be called with b.mu held.
func (b *Bus) unsubscribeLocked(name Name, id uint64) {
	subs := b.subscribers[name]
	for i, e := range subs {
		if e.id == id {
			b.subscribers[name] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) deliver(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger.Error().
				Interface("panic", r).
				Str("event", string(ev.Name)).
				Msg("event handler panicked, isolating from siblings")
		}
	}()
	fn(ev)
}

// PubSub exposes the underlying watermill channel for advanced bridging
// (e.g. forwarding a subset of events to a remote UI process).
func (b *Bus) PubSub() *gochannel.GoChannel { return b.pubsub }

// Close releases the bus's resources. Subscribers are dropped; further
// Emit calls are no-ops.
func (b *Bus) Close() error {
	b.mu.Lock()
	b.subscribers = make(map[Name][]subscriberEntry)
	b.global = nil
	b.mu.Unlock()
	return b.pubsub.Close()
}
