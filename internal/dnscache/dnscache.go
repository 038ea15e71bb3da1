// Package dnscache implements the IPv4→hostname name cache (spec §4.10):
// a map pre-sized for 1024 entries that never evicts, and publishes an event on every
// insert so the host analyzer can attach newly-learned names to hosts it
// already knows about.
//
// Grounded on caplog's reverseDNSMap (packets/revdns.go), adapted from
// gopacket Endpoint keys to plain IPv4 keys, and wired to the publish
// contract that caplog's version never had but original_source's
// decoder/dns_cache.c implies (fixed 1024-bucket table, insert-only).
package dnscache

import (
	"net"
	"sync"

	"github.com/DrJosh9000/capview/internal/pubsub"
)

// TopicResolved fires on every successful insert. The event payload is an
// Entry.
const TopicResolved pubsub.Topic = "dnscache.resolved"

// initialBuckets is a fixed-size hash map sizing hint (1024 buckets);
// Go's builtin map grows on its own, so this only avoids the first few
// rehashes rather than bounding anything.
const initialBuckets = 1024

// Entry is one IPv4→name mapping, as delivered to TopicResolved
// subscribers.
type Entry struct {
	Addr [4]byte
	Name string
}

// Cache is the DNS name cache. The zero value is not usable; use New. A
// Cache is safe for concurrent use.
type Cache struct {
	bus *pubsub.Bus

	mu sync.RWMutex
	m  map[[4]byte]string
}

// New returns an empty Cache that publishes resolved entries on bus.
func New(bus *pubsub.Bus) *Cache {
	return &Cache{
		bus: bus,
		m:   make(map[[4]byte]string, initialBuckets),
	}
}

// Insert adds or overwrites the name for addr and publishes TopicResolved.
// The cache never evicts entries (spec §4.10); re-inserting the same
// address with a new name is allowed and still publishes (a later DNS
// answer is allowed to update what a host is known as).
func (c *Cache) Insert(addr [4]byte, name string) {
	c.mu.Lock()
	c.m[addr] = name
	c.mu.Unlock()
	if c.bus != nil {
		c.bus.Publish1(TopicResolved, Entry{Addr: addr, Name: name})
	}
}

// Lookup returns the cached name for addr, if any.
func (c *Cache) Lookup(addr [4]byte) (name string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok = c.m[addr]
	return name, ok
}

// Len returns the number of cached addresses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// FreeAll drops every cached entry. Called when a capture session is
// restarted (spec §5 "start ... clears analyzer state"). The old map is
// not arena-backed; the garbage collector reclaims it.
func (c *Cache) FreeAll() {
	c.mu.Lock()
	c.m = make(map[[4]byte]string, initialBuckets)
	c.mu.Unlock()
}

// IPToKey converts a net.IP (4- or 16-byte form, provided it holds an IPv4
// address) to the [4]byte key the cache uses.
func IPToKey(ip net.IP) ([4]byte, bool) {
	v4 := ip.To4()
	if v4 == nil {
		return [4]byte{}, false
	}
	var k [4]byte
	copy(k[:], v4)
	return k, true
}
