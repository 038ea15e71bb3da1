package session

import (
	"testing"

	"github.com/DrJosh9000/capview/internal/decode"
	"github.com/DrJosh9000/capview/internal/geoip"
)

func ethHeader(dstMAC, srcMAC [6]byte, etherType uint16) []byte {
	b := make([]byte, 14)
	copy(b[0:6], dstMAC[:])
	copy(b[6:12], srcMAC[:])
	b[12], b[13] = byte(etherType>>8), byte(etherType)
	return b
}

func ipv4Header(src, dst [4]byte, proto byte, payloadLen int) []byte {
	b := make([]byte, 20)
	b[0] = 0x45
	totalLen := 20 + payloadLen
	b[2], b[3] = byte(totalLen>>8), byte(totalLen)
	b[8] = 64 // TTL
	b[9] = proto
	copy(b[12:16], src[:])
	copy(b[16:20], dst[:])
	return b
}

func udpHeader(srcPort, dstPort uint16, payloadLen int) []byte {
	b := make([]byte, 8)
	b[0], b[1] = byte(srcPort>>8), byte(srcPort)
	b[2], b[3] = byte(dstPort>>8), byte(dstPort)
	l := 8 + payloadLen
	b[4], b[5] = byte(l>>8), byte(l)
	return b
}

func tcpHeader(srcPort, dstPort uint16, flags byte) []byte {
	b := make([]byte, 20)
	b[0], b[1] = byte(srcPort>>8), byte(srcPort)
	b[2], b[3] = byte(dstPort>>8), byte(dstPort)
	b[12] = 5 << 4 // data offset, no options
	b[13] = flags
	return b
}

// dnsLabel encodes one label prefixed with its length byte.
func dnsLabel(s string) []byte { return append([]byte{byte(len(s))}, s...) }

// buildDNSAResponse builds a minimal DNS response with one question and
// one A-record answer whose name is a compression pointer back to the
// question name.
func buildDNSAResponse(name string, ip [4]byte) []byte {
	var msg []byte
	msg = append(msg, 0x12, 0x34) // ID
	msg = append(msg, 0x81, 0x80) // flags: standard response
	msg = append(msg, 0x00, 0x01) // QDCOUNT=1
	msg = append(msg, 0x00, 0x01) // ANCOUNT=1
	msg = append(msg, 0x00, 0x00) // NSCOUNT=0
	msg = append(msg, 0x00, 0x00) // ARCOUNT=0

	for _, label := range split(name) {
		msg = append(msg, dnsLabel(label)...)
	}
	msg = append(msg, 0x00)       // name terminator
	msg = append(msg, 0x00, 0x01) // QTYPE=A
	msg = append(msg, 0x00, 0x01) // QCLASS=IN

	msg = append(msg, 0xc0, 0x0c) // answer name: pointer to offset 12
	msg = append(msg, 0x00, 0x01) // TYPE=A
	msg = append(msg, 0x00, 0x01) // CLASS=IN
	msg = append(msg, 0x00, 0x00, 0x0e, 0x10) // TTL=3600
	msg = append(msg, 0x00, 0x04)             // RDLENGTH=4
	msg = append(msg, ip[:]...)

	return msg
}

func split(name string) []string {
	var out []string
	start := 0
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			out = append(out, name[start:i])
			start = i + 1
		}
	}
	out = append(out, name[start:])
	return out
}

// TestIngest_S4_DNSAnswerThenHostNameAttached is scenario S4: a DNS A
// response is ingested, caching the answered name against its address;
// the server's host record, first observed on that same response, gets
// the name when the cache insert is published, and a later packet to it
// leaves the name in place.
func TestIngest_S4_DNSAnswerThenHostNameAttached(t *testing.T) {
	s := New(geoip.Noop{})

	client := [4]byte{10, 0, 0, 5}
	server := [4]byte{93, 184, 216, 34}
	clientMAC := [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	serverMAC := [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}

	dnsMsg := buildDNSAResponse("example.com", server)
	udp := udpHeader(53, 40000, len(dnsMsg))
	ip := ipv4Header(server, client, 17, len(udp)+len(dnsMsg))
	eth := ethHeader(clientMAC, serverMAC, 0x0800)
	frame := concat(eth, ip, udp, dnsMsg)

	pkt := s.Ingest(1000, 0, frame)
	if pkt.ErrKind != decode.NoErr {
		t.Fatalf("DNS response decode: ErrKind=%v detail=%q", pkt.ErrKind, pkt.ErrDetail)
	}
	if name, ok := s.DNS.Lookup(server); !ok || name != "example.com" {
		t.Fatalf("dns cache after response: got (%q, %v), want (example.com, true)", name, ok)
	}

	tcp := tcpHeader(54321, 55555, 0x02) // SYN, both ports unregistered
	ip2 := ipv4Header(server, client, 6, len(tcp))
	eth2 := ethHeader(clientMAC, serverMAC, 0x0800)
	frame2 := concat(eth2, ip2, tcp)

	pkt2 := s.Ingest(1001, 0, frame2)
	if pkt2.ErrKind != decode.NoErr {
		t.Fatalf("TCP packet decode: ErrKind=%v detail=%q", pkt2.ErrKind, pkt2.ErrDetail)
	}

	remoteHosts := s.Host.Remote()
	h, ok := remoteHosts[server]
	if !ok {
		t.Fatal("server address was not recorded in the remote host table")
	}
	if h.Name != "example.com" {
		t.Fatalf("host name = %q, want example.com (attached when the dns cache insert was published)", h.Name)
	}
}

func TestReset_ClearsAnalyzerStateButKeepsBus(t *testing.T) {
	s := New(geoip.Noop{})
	key := [4]byte{10, 0, 0, 1}
	s.DNS.Insert(key, "host.example")

	bus := s.Bus
	s.Reset()
	if bus != s.Bus {
		t.Fatal("Reset must not replace the pub/sub bus")
	}
	if _, ok := s.DNS.Lookup(key); ok {
		t.Fatal("Reset must clear the dns cache")
	}
	if len(s.Host.Local()) != 0 || len(s.Host.Remote()) != 0 {
		t.Fatal("Reset must clear host tables")
	}
	if len(s.Flow.GetSessions()) != 0 {
		t.Fatal("Reset must clear flow sessions")
	}
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
