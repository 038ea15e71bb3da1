// Package host implements the host analyzer (spec §4.8): classifies IPv4
// addresses as local or remote, keeps two address→Host tables, and attaches
// names learned later from the DNS cache.
//
// Grounded on original_source/decoder/host_analyzer.c (local/remote split
// fed by DNS cache updates) and caplog's packets/classify.go (RFC1918
// netblock table via net.IPNet, reused directly for the RFC1918 test here
// rather than the original's hand-rolled bit arithmetic, since Go's net
// package already gives a correct, readable equivalent).
package host

import (
	"net"
	"sync"

	"github.com/DrJosh9000/capview/internal/dnscache"
	"github.com/DrJosh9000/capview/internal/pubsub"
)

// TopicHostAdded fires when a new Host is first seen. Payload: (*Host, added bool)
// where added is always true for this topic (kept as a second argument to
// mirror the two-arity publish the original C source uses, so a single
// subscriber function can distinguish "new" from "name resolved" without
// two separate callback types).
const TopicHostAdded pubsub.Topic = "host.added"

// TopicHostNameResolved fires when an existing Host's name is attached
// after a DNS cache update. Payload: (*Host, added bool) with added=false.
const TopicHostNameResolved pubsub.Topic = "host.name_resolved"

var rfc1918Nets = []*net.IPNet{
	mustCIDR("10.0.0.0/8"),
	mustCIDR("172.16.0.0/12"),
	mustCIDR("192.168.0.0/16"),
}

func mustCIDR(s string) *net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return n
}

// IsLocal reports whether ip falls within one of the RFC 1918 private
// ranges (spec §4.8).
func IsLocal(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	for _, n := range rfc1918Nets {
		if n.Contains(v4) {
			return true
		}
	}
	return false
}

// Host is one entry in the local or remote host table (spec §3).
type Host struct {
	Addr  [4]byte
	MAC   net.HardwareAddr // set only for local hosts
	Local bool
	Name  string // resolved name, if known; empty otherwise
}

// Analyzer holds the local and remote host tables and publishes change
// events. The zero value is not usable; use New.
type Analyzer struct {
	bus *pubsub.Bus

	mu     sync.RWMutex
	local  map[[4]byte]*Host
	remote map[[4]byte]*Host
}

// New returns an empty Analyzer. If dns is non-nil, the analyzer subscribes
// to its resolved-name events so names learned after a host is first seen
// still get attached (spec §4.8's "on DNS cache update for an address
// already present, attach the name and publish a name-resolved event").
func New(bus *pubsub.Bus, dns *dnscache.Cache) *Analyzer {
	a := &Analyzer{
		bus:    bus,
		local:  make(map[[4]byte]*Host),
		remote: make(map[[4]byte]*Host),
	}
	if dns != nil && bus != nil {
		bus.Subscribe1(dnscache.TopicResolved, func(v any) {
			e := v.(dnscache.Entry)
			a.updateName(e.Addr, e.Name)
		})
	}
	return a
}

// Observe records sightings of src and dst, inserting them into the
// appropriate table if new. mac, when non-nil, is attached only to hosts
// classified as local. Duplicate inserts (an address already present in
// either table) are ignored, per spec §4.8.
func (a *Analyzer) Observe(srcAddr, dstAddr [4]byte, srcMAC, dstMAC net.HardwareAddr, dns *dnscache.Cache) {
	a.insert(srcAddr, srcMAC, dns)
	a.insert(dstAddr, dstMAC, dns)
}

func (a *Analyzer) insert(addr [4]byte, mac net.HardwareAddr, dns *dnscache.Cache) {
	local := IsLocal(net.IP(addr[:]))
	table := a.remote
	if local {
		table = a.local
	}

	a.mu.Lock()
	if _, exists := table[addr]; exists {
		a.mu.Unlock()
		return
	}
	h := &Host{Addr: addr, Local: local}
	if local {
		h.MAC = mac
	}
	if dns != nil {
		if name, ok := dns.Lookup(addr); ok {
			h.Name = name
		}
	}
	table[addr] = h
	a.mu.Unlock()

	if a.bus != nil {
		a.bus.Publish2(TopicHostAdded, h, true)
	}
}

func (a *Analyzer) updateName(addr [4]byte, name string) {
	local := IsLocal(net.IP(addr[:]))
	table := a.remote
	if local {
		table = a.local
	}

	a.mu.Lock()
	h, ok := table[addr]
	if ok && h.Name == "" {
		h.Name = name
	} else {
		ok = false // nothing changed; don't publish
	}
	a.mu.Unlock()

	if ok && a.bus != nil {
		a.bus.Publish2(TopicHostNameResolved, h, false)
	}
}

// Local returns a snapshot of the local host table.
func (a *Analyzer) Local() map[[4]byte]*Host {
	return a.snapshot(a.local)
}

// Remote returns a snapshot of the remote host table.
func (a *Analyzer) Remote() map[[4]byte]*Host {
	return a.snapshot(a.remote)
}

func (a *Analyzer) snapshot(table map[[4]byte]*Host) map[[4]byte]*Host {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[[4]byte]*Host, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// FreeAll drops both host tables. The Host records are heap values, not
// arena allocations; the garbage collector reclaims them once nothing else
// holds them.
func (a *Analyzer) FreeAll() {
	a.mu.Lock()
	a.local = make(map[[4]byte]*Host)
	a.remote = make(map[[4]byte]*Host)
	a.mu.Unlock()
}
