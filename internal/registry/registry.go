// Package registry implements the protocol registry: a map from (layer, key)
// to a decoder handler, built once at startup and read-only thereafter so
// concurrent decode goroutines can share it lock-free (spec §4.3).
package registry

import (
	"fmt"
	"sync"
)

// Layer is one of the closed set of protocol layers a handler can be
// registered against (spec §3).
type Layer int

const (
	LayerLink Layer = iota
	LayerEthertype
	LayerLLC802
	LayerIPProto
	LayerPort
	LayerApp

	numLayers
)

func (l Layer) String() string {
	switch l {
	case LayerLink:
		return "LINK"
	case LayerEthertype:
		return "ETHERTYPE"
	case LayerLLC802:
		return "LLC802"
	case LayerIPProto:
		return "IP_PROTO"
	case LayerPort:
		return "PORT"
	case LayerApp:
		return "APP"
	default:
		return fmt.Sprintf("Layer(%d)", int(l))
	}
}

// Key identifies a handler within a Layer (an ethertype, an IP protocol
// number, a port number, and so on).
type Key uint32

// Kind classifies the outcome of one handler's Decode call (spec §7). It
// lives here, rather than in package decode, so the Handler interface
// doesn't need to import the chain-building package that consumes it.
type Kind int

const (
	// NoErr means the layer decoded successfully.
	NoErr Kind = iota
	// DecodeErr means the layer's header failed validation.
	DecodeErr
	// UnkProtocol means the layer decoded but no inner handler is
	// registered for what it found; this is not an error.
	UnkProtocol
	// Truncated means a read ran past the declared buffer.
	Truncated
)

func (k Kind) String() string {
	switch k {
	case NoErr:
		return "NO_ERR"
	case DecodeErr:
		return "DECODE_ERR"
	case UnkProtocol:
		return "UNK_PROTOCOL"
	case Truncated:
		return "TRUNCATED"
	default:
		return "UNKNOWN_ERR"
	}
}

// Handler decodes one layer's header from buf and returns the decoded
// payload plus a description of what comes next (if anything). Handlers must
// never panic on malformed input; every multi-byte read must be
// bounds-checked (spec §4.2, §7).
type Handler interface {
	// Decode parses buf (which may be shorter than the layer's header
	// claims) and returns the decoded payload, the (layer, key) of the next
	// handler to invoke (if any), an error classification, and a
	// human-readable detail for non-NoErr kinds.
	Decode(buf []byte) (payload any, next Next, kind Kind, detail string)
}

// Next describes which handler should decode the remainder of the frame, or
// reports that there is none.
type Next struct {
	Layer Layer
	Key   Key
	Valid bool
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(buf []byte) (any, Next, Kind, string)

// Decode implements Handler.
func (f HandlerFunc) Decode(buf []byte) (any, Next, Kind, string) { return f(buf) }

type entry struct {
	handler   Handler
	id        int
	shortName string
	longName  string

	mu       sync.Mutex
	nPackets uint64
	nBytes   uint64
}

// Registration is a read-only handle to one registered protocol, usable to
// query its names and running counters from the statistics view.
type Registration struct{ e *entry }

// ShortName returns the protocol's short display name (e.g. "TCP").
func (r Registration) ShortName() string { return r.e.shortName }

// LongName returns the protocol's long display name (e.g.
// "Transmission Control Protocol").
func (r Registration) LongName() string { return r.e.longName }

// ID returns the compact numeric id stamped onto PDUs decoded by this
// handler, usable with decode.GetPacketData-style lookups.
func (r Registration) ID() int { return r.e.id }

// Stats returns the running packet and byte counters for this protocol.
func (r Registration) Stats() (packets, bytes uint64) {
	r.e.mu.Lock()
	defer r.e.mu.Unlock()
	return r.e.nPackets, r.e.nBytes
}

// addStats is called by the decoder chain after a handler successfully
// decodes a header, to update its per-protocol counters (spec §4.4 step 6).
func (r Registration) addStats(n int) {
	r.e.mu.Lock()
	r.e.nPackets++
	r.e.nBytes += uint64(n)
	r.e.mu.Unlock()
}

type regKey struct {
	layer Layer
	key   Key
}

// Registry maps (layer, key) to a Handler. Insertion happens once at
// startup (typically via Register); after that, Get and Lookup are safe for
// concurrent use without locking, since the underlying map is never mutated
// again. A mutex still guards the build phase itself, to catch accidental
// late registration cleanly rather than racing.
type Registry struct {
	mu       sync.Mutex
	building bool
	frozen   bool
	entries  map[regKey]*entry
	nextID   int
}

// New returns an empty Registry, ready for Register calls.
func New() *Registry {
	return &Registry{entries: make(map[regKey]*entry)}
}

// Register adds a handler for (layer, key). Registration is idempotent on
// duplicate keys: the later registration wins, and the caller should log
// the override (spec §4.3) — Register returns true when it replaced an
// existing entry, so callers can log it themselves.
//
// Register panics if called after Freeze; registration happens once at
// startup, never during decoding.
func (r *Registry) Register(layer Layer, key Key, h Handler, shortName, longName string) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		panic("registry: Register called after Freeze")
	}
	k := regKey{layer, key}
	_, replaced = r.entries[k]
	id := r.nextID
	r.nextID++
	r.entries[k] = &entry{handler: h, id: id, shortName: shortName, longName: longName}
	return replaced
}

// Freeze marks the registry read-only. Get and Lookup may be called
// concurrently without locking only after Freeze.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Get returns the handler registered for (layer, key), or nil if none.
func (r *Registry) Get(layer Layer, key Key) Handler {
	e := r.entries[regKey{layer, key}]
	if e == nil {
		return nil
	}
	return e.handler
}

// Lookup returns the full registration (names, id, counters) for (layer,
// key), or the zero Registration and false if none.
func (r *Registry) Lookup(layer Layer, key Key) (Registration, bool) {
	e := r.entries[regKey{layer, key}]
	if e == nil {
		return Registration{}, false
	}
	return Registration{e: e}, true
}

// IDOf returns the compact numeric id for (layer, key), or -1 if
// unregistered.
func (r *Registry) IDOf(layer Layer, key Key) int {
	e := r.entries[regKey{layer, key}]
	if e == nil {
		return -1
	}
	return e.id
}

// RecordDecode updates the running counters for (layer, key) after a
// successful decode of n bytes at that layer.
func (r *Registry) RecordDecode(layer Layer, key Key, n int) {
	e := r.entries[regKey{layer, key}]
	if e == nil {
		return
	}
	Registration{e: e}.addStats(n)
}

// Enumerate calls fn once per registered (layer, key), in no particular
// order. No view in this repository calls it; no per-protocol statistics
// are rendered.
func (r *Registry) Enumerate(fn func(layer Layer, key Key, reg Registration)) {
	for k, e := range r.entries {
		fn(k.layer, k.key, Registration{e: e})
	}
}
