package damping

import "sync"

// EventKind names one of the controller's observable conditions (spec
// §4.5.4). Names are contractual: tests assert on them directly.
type EventKind string

const (
	DampedLimitExceededEvent EventKind = "DampedLimitExceededEvent"
	DampReqUnsatisfiedEvent  EventKind = "DampReqUnsatisfiedEvent"
	DampReqFailedEvent       EventKind = "DampReqFailedEvent"
	DampingInProgressEvent   EventKind = "DampingInProgressEvent"
	DampingUnconfirmedEvent  EventKind = "DampingUnconfirmedEvent"
	DampedEvent              EventKind = "DampedEvent"
)

// Event is one occurrence of an EventKind with its contextual fields (spec
// §4.5.4: "each carries contextual fields (flappers, observers, r_val,
// results)").
type Event struct {
	Kind      EventKind
	Flappers  []Address
	Observers []Address
	RVal      int
	Results   []Response
	Err       error
}

// Subscriber receives controller events. Implementations must not block;
// the controller publishes synchronously from whichever goroutine reaches
// the decision point: the caller of InitiateSubprotocol, or the fan-out's
// coordinator goroutine for the fan-out's outcome.
type Subscriber interface {
	OnDampingEvent(Event)
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func(Event)

func (f SubscriberFunc) OnDampingEvent(e Event) { f(e) }

// Subscription is the handle Subscribe returns; pass it to Unsubscribe to
// remove that registration. Identifying subscribers by handle rather than
// by comparing Subscriber values keeps Unsubscribe safe for func-backed
// subscribers: SubscriberFunc wraps a func value, and func values are not
// comparable, so comparing Subscribers directly would panic at runtime.
type Subscription struct {
	id uint64
}

type subscriberEntry struct {
	id  uint64
	sub Subscriber
}

// publisher is the controller's explicit observer list, replacing the
// EventEmitter-inheritance pattern of the JS original (spec §9
// re-architecture: "replace with an explicit observer interface").
type publisher struct {
	mu     sync.RWMutex
	subs   []subscriberEntry
	nextID uint64
}

func (p *publisher) Subscribe(s Subscriber) Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, subscriberEntry{id: id, sub: s})
	return Subscription{id: id}
}

func (p *publisher) Unsubscribe(sub Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, existing := range p.subs {
		if existing.id == sub.id {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

func (p *publisher) publish(e Event) {
	p.mu.RLock()
	subs := make([]Subscriber, len(p.subs))
	for i, existing := range p.subs {
		subs[i] = existing.sub
	}
	p.mu.RUnlock()

	for _, s := range subs {
		s.OnDampingEvent(e)
	}
}
