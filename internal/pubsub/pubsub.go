// Package pubsub implements a typed publish/subscribe event bus (spec §4.9).
// Subscribers are plain functions registered against a topic; Publish1 and
// Publish2 cover the one- and two-argument event shapes the analyzers need
// (new-connection, connection-updated, dns-resolved, host-added,
// host-name-resolved — see spec §9).
//
// Grounded on caplog's vars package (a registration map of named callbacks),
// generalized from "named evaluators invoked on demand" to "topic
// subscribers invoked on publish".
package pubsub

import "sync"

// Topic names an event channel. Each component in spec §9's callback list
// gets its own topic constant, declared where it's used (flow, host,
// dnscache) rather than centrally here, to keep each analyzer's event
// payload type next to its producer.
type Topic string

type sub1 struct {
	id int
	fn func(a any)
}

type sub2 struct {
	id int
	fn func(a, b any)
}

// Bus is a topic-keyed set of subscriber lists. The zero value is not
// usable (its maps are nil); use New. A Bus is safe for concurrent use; Publish snapshots its subscriber
// list before calling out, so a subscriber that publishes (reentrant
// publish, spec §4.9) or unsubscribes during its own notification cannot
// corrupt iteration.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs1  map[Topic][]sub1
	subs2  map[Topic][]sub2
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{
		subs1: make(map[Topic][]sub1),
		subs2: make(map[Topic][]sub2),
	}
}

// Subscription identifies a subscriber for later Unsubscribe calls.
type Subscription struct {
	topic Topic
	id    int
	arity int
}

// Subscribe1 registers fn to be called on every Publish1(topic, ...).
// Subscribing the same function value multiple times registers it multiple
// times (each call returns a distinct Subscription); the bus does not try
// to deduplicate by function identity, since Go function values aren't
// comparable in the general case. Repeated identical calls are therefore
// not idempotent: a later Publish1 calls fn once per registration.
func (b *Bus) Subscribe1(topic Topic, fn func(a any)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs1[topic] = append(b.subs1[topic], sub1{id: id, fn: fn})
	return Subscription{topic: topic, id: id, arity: 1}
}

// Subscribe2 registers fn to be called on every Publish2(topic, ...).
func (b *Bus) Subscribe2(topic Topic, fn func(a, b any)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs2[topic] = append(b.subs2[topic], sub2{id: id, fn: fn})
	return Subscription{topic: topic, id: id, arity: 2}
}

// Unsubscribe removes a previously-returned Subscription. Unsubscribing a
// Subscription that is no longer present (already removed, or never valid)
// is a no-op, per spec §8 property 9.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch s.arity {
	case 1:
		list := b.subs1[s.topic]
		for i, sub := range list {
			if sub.id == s.id {
				b.subs1[s.topic] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	case 2:
		list := b.subs2[s.topic]
		for i, sub := range list {
			if sub.id == s.id {
				b.subs2[s.topic] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish1 calls every subscriber of topic with a. There is no ordering
// guarantee between subscribers (spec §4.9).
func (b *Bus) Publish1(topic Topic, a any) {
	b.mu.Lock()
	snapshot := append([]sub1(nil), b.subs1[topic]...)
	b.mu.Unlock()
	for _, s := range snapshot {
		s.fn(a)
	}
}

// Publish2 calls every subscriber of topic with (a, b).
func (b *Bus) Publish2(topic Topic, a, c any) {
	b.mu.Lock()
	snapshot := append([]sub2(nil), b.subs2[topic]...)
	b.mu.Unlock()
	for _, s := range snapshot {
		s.fn(a, c)
	}
}
