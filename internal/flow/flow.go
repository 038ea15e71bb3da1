// Package flow implements the TCP flow analyzer (spec §4.7): an
// observational, per-connection state machine keyed by a 4-tuple that is
// symmetric across both directions of a connection.
package flow

import (
	"net"
	"sync"

	"github.com/DrJosh9000/capview/internal/pubsub"
)

// Topics published on new and updated connections.
const (
	TopicNewConnection       pubsub.Topic = "flow.new_connection"
	TopicConnectionUpdated   pubsub.Topic = "flow.connection_updated"
)

// State is a TCP connection's tracked state (spec §4.7, RFC 793-derived).
type State int

const (
	StateClosed State = iota
	StateSynSent
	StateSynRcvd
	StateEstablished
	StateFinWait1
	StateFinWait2
	StateCloseWait
	StateTimeWait
	StateReset
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateSynSent:
		return "SYN_SENT"
	case StateSynRcvd:
		return "SYN_RCVD"
	case StateEstablished:
		return "ESTABLISHED"
	case StateFinWait1:
		return "FIN_WAIT_1"
	case StateFinWait2:
		return "FIN_WAIT_2"
	case StateCloseWait:
		return "CLOSE_WAIT"
	case StateTimeWait:
		return "TIME_WAIT"
	case StateReset:
		return "RESET"
	default:
		return "UNKNOWN"
	}
}

// Endpoint is one side of a TCP connection.
type Endpoint struct {
	Addr net.IP
	Port uint16
}

func (e Endpoint) less(o Endpoint) bool {
	if c := compareIP(e.Addr, o.Addr); c != 0 {
		return c < 0
	}
	return e.Port < o.Port
}

func compareIP(a, b net.IP) int {
	a4, b4 := a.To4(), b.To4()
	if a4 != nil && b4 != nil {
		for i := range a4 {
			if a4[i] != b4[i] {
				return int(a4[i]) - int(b4[i])
			}
		}
		return 0
	}
	return compareBytes(a, b)
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}

// key is the symmetric connection key: the two endpoints ordered
// lexicographically so that A→B and B→A collide (spec §4.7). Addresses
// are held in their 16-byte string form so the key is comparable.
type key struct {
	loAddr, hiAddr string
	loPort, hiPort uint16
}

func makeKey(src, dst Endpoint) key {
	lo, hi := src, dst
	if !src.less(dst) {
		lo, hi = dst, src
	}
	return key{loAddr: string(lo.Addr.To16()), loPort: lo.Port, hiAddr: string(hi.Addr.To16()), hiPort: hi.Port}
}

// Flags mirrors the TCP control bits this analyzer cares about.
type Flags struct {
	SYN, ACK, FIN, RST bool
}

// Connection is one tracked TCP connection.
type Connection struct {
	Src, Dst Endpoint // endpoints as seen on the packet that created the record
	State    State
	Packets  []uint64 // sequence numbers of packets observed on this connection
}

// Analyzer tracks TCP connections (spec §4.7). It is observational only:
// it never retransmits or times out a connection itself.
type Analyzer struct {
	bus *pubsub.Bus

	mu    sync.Mutex
	conns map[key]*Connection
}

// New returns an Analyzer that publishes new-connection and
// connection-updated events on bus.
func New(bus *pubsub.Bus) *Analyzer {
	return &Analyzer{bus: bus, conns: make(map[key]*Connection)}
}

// Track records one observed TCP segment and advances its connection's
// state (spec §4.7 "track"). seq is the decode sequence number of the
// packet this segment came from, recorded on the connection for later
// lookup. Track does not know which endpoint is local: a new record takes
// src and dst as given, and its starting state comes from f alone.
func (a *Analyzer) Track(src, dst Endpoint, f Flags, seq uint64) (conn *Connection, isNew bool) {
	k := makeKey(src, dst)

	a.mu.Lock()
	existing, found := a.conns[k]
	if found {
		conn, isNew = existing, false
	} else {
		conn = &Connection{Src: src, Dst: dst, State: initialState(f)}
		a.conns[k] = conn
		isNew = true
	}
	conn.State = transition(conn.State, f)
	conn.Packets = append(conn.Packets, seq)
	a.mu.Unlock()

	if isNew {
		a.bus.Publish1(TopicNewConnection, conn)
	} else {
		a.bus.Publish1(TopicConnectionUpdated, conn)
	}
	return conn, isNew
}

// initialState picks the state a brand-new connection starts in, based on
// the flags of the packet that created it (spec §4.7: "initial state from
// flags: SYN alone → SYN_SENT").
func initialState(f Flags) State {
	switch {
	case f.RST:
		return StateReset
	case f.SYN && f.ACK:
		return StateSynRcvd
	case f.SYN:
		return StateSynSent
	default:
		return StateClosed
	}
}

// transition advances cur given the flags of a newly observed segment
// (spec §4.7's partial transition table, extended to a full table).
func transition(cur State, f Flags) State {
	if f.RST {
		return StateReset
	}
	switch cur {
	case StateClosed:
		if f.SYN && f.ACK {
			return StateSynRcvd
		}
		if f.SYN {
			return StateSynSent
		}
		return cur
	case StateSynSent:
		if f.SYN && f.ACK {
			return StateSynRcvd
		}
		if f.ACK {
			return StateEstablished
		}
		return cur
	case StateSynRcvd:
		if f.ACK {
			return StateEstablished
		}
		return cur
	case StateEstablished:
		if f.FIN {
			return StateFinWait1
		}
		return cur
	case StateFinWait1:
		if f.FIN && f.ACK {
			return StateTimeWait
		}
		if f.ACK {
			return StateFinWait2
		}
		if f.FIN {
			return StateCloseWait
		}
		return cur
	case StateFinWait2:
		if f.FIN {
			return StateTimeWait
		}
		return cur
	case StateCloseWait:
		if f.ACK {
			return StateTimeWait
		}
		return cur
	default:
		return cur
	}
}

// GetSessions returns a read-only snapshot of every tracked connection
// (spec §4.7 "get_sessions").
func (a *Analyzer) GetSessions() []*Connection {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Connection, 0, len(a.conns))
	for _, c := range a.conns {
		out = append(out, c)
	}
	return out
}

// FreeAll drops every tracked connection (spec §4.7 "free_all"). The
// Connection records are heap values, not arena allocations; the garbage
// collector reclaims them once nothing else holds them.
func (a *Analyzer) FreeAll() {
	a.mu.Lock()
	a.conns = make(map[key]*Connection)
	a.mu.Unlock()
}
