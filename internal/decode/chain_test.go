package decode

import (
	"testing"

	"github.com/DrJosh9000/capview/internal/arena"
	"github.com/DrJosh9000/capview/internal/registry"
)

func newTestChain() (*Chain, *registry.Registry) {
	reg := registry.New()
	RegisterAll(reg)
	a := arena.New()
	return NewChain(reg, a), reg
}

func ethFrame(etherType uint16, payload []byte) []byte {
	buf := make([]byte, 14)
	copy(buf[0:6], []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff})
	copy(buf[6:12], []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66})
	buf[12] = byte(etherType >> 8)
	buf[13] = byte(etherType)
	return append(buf, payload...)
}

// TestChain_EthernetARPRequest is scenario S1: an Ethernet II frame
// carrying an ARP request decodes to a two-node chain with no error.
func TestChain_EthernetARPRequest(t *testing.T) {
	chain, _ := newTestChain()

	arpPayload := make([]byte, 28)
	arpPayload[0], arpPayload[1] = 0x00, 0x01 // htype = ethernet
	arpPayload[2], arpPayload[3] = 0x08, 0x00 // ptype = ipv4
	arpPayload[4] = 6                         // hlen
	arpPayload[5] = 4                         // plen
	arpPayload[6], arpPayload[7] = 0x00, 0x01 // op = request
	copy(arpPayload[8:14], []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66})
	copy(arpPayload[14:18], []byte{10, 0, 0, 1})
	copy(arpPayload[24:28], []byte{10, 0, 0, 2})

	frame := ethFrame(EtherTypeARP, arpPayload)
	pkt := chain.Decode(frame)

	if pkt.ErrKind != NoErr {
		t.Fatalf("got ErrKind %v, want NoErr (detail=%q)", pkt.ErrKind, pkt.ErrDetail)
	}
	eth, ok := pkt.Root.Payload.(*EthernetFrame)
	if !ok {
		t.Fatalf("root payload type = %T, want *EthernetFrame", pkt.Root.Payload)
	}
	if eth.EtherType != EtherTypeARP {
		t.Fatalf("ethertype = 0x%04x, want 0x%04x", eth.EtherType, EtherTypeARP)
	}
	if pkt.Root.Next == nil {
		t.Fatal("expected a second PDU for the ARP layer")
	}
	arpPkt, ok := pkt.Root.Next.Payload.(*ARPPacket)
	if !ok {
		t.Fatalf("second payload type = %T, want *ARPPacket", pkt.Root.Next.Payload)
	}
	if arpPkt.Op != ARPRequest {
		t.Fatalf("arp op = %v, want ARPRequest", arpPkt.Op)
	}
}

// TestChain_DNSNamePointerCycle is scenario S6: a DNS message whose
// question name is a compression pointer pointing at itself must fail
// with DecodeErr, not loop forever.
func TestChain_DNSNamePointerCycle(t *testing.T) {
	buf := make([]byte, 16)
	buf[5] = 1 // QDCOUNT = 1
	// question starts at offset 12; make its first label byte a pointer
	// back to offset 12 itself.
	buf[12] = 0xc0
	buf[13] = 12

	h := DNSHandler{}
	_, _, kind, detail := h.Decode(buf)
	if kind != DecodeErr {
		t.Fatalf("got kind %v (detail=%q), want DecodeErr", kind, detail)
	}
}

// TestTCPOptions_ZeroLengthNonNOPIsRejected guards the infinite-loop guard
// spec §4.5 requires: a non-NOP, non-EOL option with length < 2 would
// never advance the cursor if accepted.
func TestTCPOptions_ZeroLengthNonNOPIsRejected(t *testing.T) {
	// kind=2 (MSS), length=0 -- invalid, must not spin.
	_, err := parseTCPOptions([]byte{2, 0, 2, 0})
	if err == nil {
		t.Fatal("expected an error for a zero-length non-NOP option")
	}
}

// TestIPv4_IHLBelowMinimumIsDecodeErr and friends cover two literal
// IPv4 edge cases.
func TestIPv4_IHLBelowMinimumIsDecodeErr(t *testing.T) {
	buf := make([]byte, 20)
	buf[0] = 0x44 // version 4, IHL 4 (< 5)
	h := IPv4Handler{}
	_, _, kind, _ := h.Decode(buf)
	if kind != DecodeErr {
		t.Fatalf("got kind %v, want DecodeErr", kind)
	}
}

func TestIPv4_TotalLengthBelowHeaderLenIsDecodeErr(t *testing.T) {
	buf := make([]byte, 20)
	buf[0] = 0x45 // version 4, IHL 5
	buf[2], buf[3] = 0, 10 // total length 10 < header length 20
	h := IPv4Handler{}
	_, _, kind, _ := h.Decode(buf)
	if kind != DecodeErr {
		t.Fatalf("got kind %v, want DecodeErr", kind)
	}
}

func TestIPv4_TotalLengthAboveCapturedIsDecodeErr(t *testing.T) {
	buf := make([]byte, 20)
	buf[0] = 0x45
	buf[2], buf[3] = 0, 100 // total length 100 > captured 20
	h := IPv4Handler{}
	_, _, kind, _ := h.Decode(buf)
	if kind != DecodeErr {
		t.Fatalf("got kind %v, want DecodeErr", kind)
	}
}

func TestIPv4_ValidHeaderDispatchesToIPProtoLayer(t *testing.T) {
	buf := make([]byte, 24)
	buf[0] = 0x46 // IHL 6 (one 32-bit word of options)
	buf[2], buf[3] = 0, 24
	buf[9] = IPProtoTCP
	copy(buf[12:16], []byte{192, 168, 0, 1})
	copy(buf[16:20], []byte{192, 168, 0, 2})

	h := IPv4Handler{}
	payload, next, kind, detail := h.Decode(buf)
	if kind != NoErr {
		t.Fatalf("got kind %v (detail=%q), want NoErr", kind, detail)
	}
	if !next.Valid || next.Layer != registry.LayerIPProto || next.Key != registry.Key(IPProtoTCP) {
		t.Fatalf("next = %+v, want {IPProto, TCP, true}", next)
	}
	hdr := payload.(*IPv4Header)
	if hdr.Src.String() != "192.168.0.1" {
		t.Fatalf("src = %v, want 192.168.0.1", hdr.Src)
	}
}

// TestChain_S2_IPv4TruncatedNoChild is scenario S2: an Ethernet+IPv4
// frame claiming tot_len=200 but only 60 bytes captured must stop at
// DecodeErr with no TCP/UDP child PDU.
func TestChain_S2_IPv4TruncatedNoChild(t *testing.T) {
	chain, _ := newTestChain()

	ip := make([]byte, 46) // 60 bytes captured total minus the 14-byte Ethernet header
	ip[0] = 0x45           // version 4, IHL 5
	ip[2], ip[3] = 0, 200  // tot_len = 200, far beyond what's captured
	ip[9] = IPProtoTCP

	frame := ethFrame(EtherTypeIPv4, ip)
	if len(frame) != 60 {
		t.Fatalf("test frame length = %d, want 60", len(frame))
	}
	pkt := chain.Decode(frame)

	if pkt.ErrKind != DecodeErr {
		t.Fatalf("got ErrKind %v, want DecodeErr", pkt.ErrKind)
	}
	ipPDU := pkt.Root.Next
	if ipPDU == nil {
		t.Fatal("expected an IPv4 PDU under the Ethernet root")
	}
	if ipPDU.Next != nil {
		t.Fatal("expected no TCP/UDP child PDU when the IPv4 header itself fails to decode")
	}
}

func TestDecodeChain_MaxDepthStopsRecursion(t *testing.T) {
	if MaxChainDepth != 16 {
		t.Fatalf("MaxChainDepth = %d, want 16", MaxChainDepth)
	}
}
