// Package session binds the arenas, registry, decode chain, and
// analyzers into the single unit a capture session owns (spec §9:
// "module-global mutable state... a Session value that holds the
// arenas, registry, and analyzer tables and is passed explicitly").
// There is exactly one Session per running capture; the CLI layer
// constructs one at startup. Reset clears it for a fresh start; the CLI
// does not call it.
package session

import (
	"net"

	"github.com/DrJosh9000/capview/internal/arena"
	"github.com/DrJosh9000/capview/internal/decode"
	"github.com/DrJosh9000/capview/internal/dnscache"
	"github.com/DrJosh9000/capview/internal/flow"
	"github.com/DrJosh9000/capview/internal/geoip"
	"github.com/DrJosh9000/capview/internal/host"
	"github.com/DrJosh9000/capview/internal/pubsub"
	"github.com/DrJosh9000/capview/internal/registry"
)

// Session owns every piece of capture-session state (spec §3's
// ownership note: "the arena owns PDUs, packets, connections, host
// records, DNS cache entries"). The protocol Registry is the one
// exception: it's read-only after Freeze and is shared across the
// Session's whole lifetime, including across Reset.
type Session struct {
	Bus  *pubsub.Bus
	Geo  geoip.Lookup
	Reg  *registry.Registry

	Arena *arena.Arena
	Chain *decode.Chain
	Flow  *flow.Analyzer
	Host  *host.Analyzer
	DNS   *dnscache.Cache
}

// New builds a Session. geo may be geoip.Noop{} to disable geolocation
// (-G).
func New(geo geoip.Lookup) *Session {
	reg := registry.New()
	decode.RegisterAll(reg)

	s := &Session{
		Bus: pubsub.New(),
		Geo: geo,
		Reg: reg,
	}
	s.rebuild()
	return s
}

// rebuild constructs a fresh arena, chain, and analyzer set, wiring the
// dnscache's resolved-name events into the host analyzer the way
// host.New expects at construction time.
func (s *Session) rebuild() {
	s.Arena = arena.New()
	s.Chain = decode.NewChain(s.Reg, s.Arena)
	s.DNS = dnscache.New(s.Bus)
	s.Flow = flow.New(s.Bus)
	s.Host = host.New(s.Bus, s.DNS)
}

// Reset clears all analyzer state and resets the session arena (spec
// §5 "start": "clears analyzer state, resets the capture-session
// arena"). The pub/sub bus is kept so the view layer's subscriptions
// survive a stop/start cycle; a fresh arena and fresh analyzer tables
// are what "start" actually means for decoded state.
func (s *Session) Reset() {
	s.Arena.Reset()
	s.rebuild()
}

// Ingest decodes one captured frame, stamps its capture timestamp, and
// feeds the flow and host analyzers from whatever layers were
// successfully decoded (spec §5 "ordering": packets are processed in
// receive order, and subscriber callbacks see state only after the
// triggering packet is fully processed).
func (s *Session) Ingest(timeSec, timeUsec int64, frame []byte) *decode.Packet {
	pkt := s.Chain.Decode(frame)
	pkt.TimeSec, pkt.TimeUsec = timeSec, timeUsec

	eth, ip4, tcp := walkPDU(pkt.Root)

	if ip4 != nil {
		var srcMAC, dstMAC net.HardwareAddr
		if eth != nil {
			srcMAC, dstMAC = eth.Src, eth.Dst
		}
		srcAddr, srcOK := addrKey(ip4.Src)
		dstAddr, dstOK := addrKey(ip4.Dst)
		if srcOK && dstOK {
			s.Host.Observe(srcAddr, dstAddr, srcMAC, dstMAC, s.DNS)
		}
		if tcp != nil {
			s.Flow.Track(
				flow.Endpoint{Addr: ip4.Src, Port: tcp.SrcPort},
				flow.Endpoint{Addr: ip4.Dst, Port: tcp.DstPort},
				tcpFlags(tcp.Flags),
				pkt.Seq,
			)
		}
	}

	recordDNSAnswers(pkt.Root, s.DNS)

	return pkt
}

// walkPDU finds the first Ethernet, IPv4, and TCP payloads in the chain.
// The flow analyzer is TCP-only (spec §4.7), so UDP headers aren't
// extracted here.
func walkPDU(p *decode.PDU) (eth *decode.EthernetFrame, ip4 *decode.IPv4Header, tcp *decode.TCPSegment) {
	for depth := 0; p != nil && depth < decode.MaxChainDepth; depth++ {
		switch v := p.Payload.(type) {
		case *decode.EthernetFrame:
			eth = v
		case *decode.IPv4Header:
			ip4 = v
		case *decode.TCPSegment:
			tcp = v
		}
		p = p.Next
	}
	return
}

// recordDNSAnswers inserts every A record found anywhere in the chain
// into the DNS cache (spec §4.10), wiring the earlier scenario "a DNS A
// response causes the host analyzer to later attach a name" (S4).
func recordDNSAnswers(p *decode.PDU, dns *dnscache.Cache) {
	for depth := 0; p != nil && depth < decode.MaxChainDepth; depth++ {
		if hdr, ok := p.Payload.(*decode.DNSHeader); ok {
			for _, rr := range hdr.Answers {
				if rr.Type != decode.DNSTypeA {
					continue
				}
				ip, ok := rr.Data.(net.IP)
				if !ok {
					continue
				}
				if key, ok := dnscache.IPToKey(ip); ok {
					dns.Insert(key, rr.Name)
				}
			}
		}
		p = p.Next
	}
}

func addrKey(ip net.IP) ([4]byte, bool) {
	return dnscache.IPToKey(ip)
}

func tcpFlags(bits byte) flow.Flags {
	return flow.Flags{
		SYN: bits&decode.TCPFlagSYN != 0,
		ACK: bits&decode.TCPFlagACK != 0,
		FIN: bits&decode.TCPFlagFIN != 0,
		RST: bits&decode.TCPFlagRST != 0,
	}
}
