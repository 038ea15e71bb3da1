package decode

import (
	"net"

	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// Ethertypes used as LayerEthertype keys.
const (
	EtherTypeIPv4 = 0x0800
	EtherTypeIPv6 = 0x86DD
)

// IP protocol numbers used as LayerIPProto keys.
const (
	IPProtoICMP   = 1
	IPProtoIGMP   = 2
	IPProtoTCP    = 6
	IPProtoUDP    = 17
	IPProtoICMPv6 = 58
	IPProtoPIM    = 103
)

// IPv4Header is the decoded IPv4 header (spec §4.5, edge cases in §4.4).
type IPv4Header struct {
	Version, IHL     byte
	DSCP, ECN        byte
	TotalLength      uint16
	ID               uint16
	FragOffset       uint16
	TTL              byte
	Protocol         byte
	Checksum         uint16
	Src, Dst         net.IP
	rest             []byte
}

// Remainder implements remainderer.
func (h *IPv4Header) Remainder() []byte { return h.rest }

// IPv4Handler decodes IPv4 (spec §4.4 edge cases: ihl<5, ihl*4>n,
// tot_len<header or >captured all produce DecodeErr).
type IPv4Handler struct{}

// Decode implements registry.Handler.
func (IPv4Handler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	if len(buf) < 1 {
		return nil, registry.Next{}, registry.Truncated, "ipv4: empty buffer"
	}
	verIHL := buf[0]
	version := verIHL >> 4
	ihl := verIHL & 0x0F

	if ihl < 5 {
		return nil, registry.Next{}, registry.DecodeErr, "ipv4: IHL < 5"
	}
	headerLen := int(ihl) * 4
	if headerLen > len(buf) {
		return nil, registry.Next{}, registry.DecodeErr, "ipv4: IHL*4 exceeds captured length"
	}

	c := byteio.NewCursor(buf)
	c.Skip(1) // version/IHL already read
	tos, _ := c.U8()
	totalLength, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv4: truncated total length"
	}
	id, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv4: truncated identification"
	}
	fragField, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv4: truncated flags/fragment offset"
	}
	ttl, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv4: truncated TTL"
	}
	proto, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv4: truncated protocol"
	}
	checksum, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv4: truncated header checksum"
	}
	src, err := c.Bytes(4)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv4: truncated source address"
	}
	dst, err := c.Bytes(4)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv4: truncated destination address"
	}

	if int(totalLength) < headerLen || int(totalLength) > len(buf) {
		return nil, registry.Next{}, registry.DecodeErr, "ipv4: total length inconsistent with header/captured length"
	}

	// Skip remaining options, if ihl > 5.
	if err := c.Seek(headerLen); err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv4: truncated options"
	}

	// Padded frames: ignore bytes beyond the declared total length.
	payloadEnd := int(totalLength)
	payload := buf[headerLen:payloadEnd]

	h := &IPv4Header{
		Version:     version,
		IHL:         ihl,
		DSCP:        (tos & 0xFC) >> 2,
		ECN:         tos & 0x03,
		TotalLength: totalLength,
		ID:          id,
		FragOffset:  fragField & 0x1FFF,
		TTL:         ttl,
		Protocol:    proto,
		Checksum:    checksum,
		Src:         net.IP(append([]byte(nil), src...)),
		Dst:         net.IP(append([]byte(nil), dst...)),
		rest:        payload,
	}

	return h, registry.Next{Layer: registry.LayerIPProto, Key: registry.Key(proto), Valid: true}, registry.NoErr, ""
}

// IPv6Header is the decoded IPv6 fixed header (spec §4.5; extension
// headers are not decoded — representative subset per spec §1 non-goals).
type IPv6Header struct {
	TrafficClass byte
	FlowLabel    uint32
	PayloadLen   uint16
	NextHeader   byte
	HopLimit     byte
	Src, Dst     net.IP
	rest         []byte
}

// Remainder implements remainderer. This is the corrected "IPv6 payload
// attaches to the IPv6 PDU's own next-link" behavior the REDESIGN FLAGS
// call out (original_source's handle_ipv6 fallback copied into
// eth->ip->payload instead of eth->ipv6->payload); in this tagged-variant
// design there is no shared union to misdirect into, so the bug cannot
// recur structurally (see DESIGN.md Open Questions).
func (h *IPv6Header) Remainder() []byte { return h.rest }

const ipv6HeaderLen = 40

// IPv6Handler decodes the IPv6 fixed header.
type IPv6Handler struct{}

// Decode implements registry.Handler.
func (IPv6Handler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	if len(buf) < ipv6HeaderLen {
		return nil, registry.Next{}, registry.Truncated, "ipv6: truncated fixed header"
	}
	c := byteio.NewCursor(buf)
	verClassFlow, err := c.U32BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv6: truncated version/class/flow word"
	}
	version := byte(verClassFlow >> 28)
	if version != 6 {
		return nil, registry.Next{}, registry.DecodeErr, "ipv6: version field is not 6"
	}
	trafficClass := byte((verClassFlow >> 20) & 0xFF)
	flowLabel := verClassFlow & 0xFFFFF

	payloadLen, _ := c.U16BE()
	nextHeader, _ := c.U8()
	hopLimit, _ := c.U8()
	src, err := c.Bytes(16)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv6: truncated source address"
	}
	dst, err := c.Bytes(16)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "ipv6: truncated destination address"
	}

	payloadEnd := ipv6HeaderLen + int(payloadLen)
	if payloadEnd > len(buf) {
		payloadEnd = len(buf)
	}

	h := &IPv6Header{
		TrafficClass: trafficClass,
		FlowLabel:    flowLabel,
		PayloadLen:   payloadLen,
		NextHeader:   nextHeader,
		HopLimit:     hopLimit,
		Src:          net.IP(append([]byte(nil), src...)),
		Dst:          net.IP(append([]byte(nil), dst...)),
		rest:         buf[ipv6HeaderLen:payloadEnd],
	}

	return h, registry.Next{Layer: registry.LayerIPProto, Key: registry.Key(nextHeader), Valid: true}, registry.NoErr, ""
}

// ICMPMessage is the decoded ICMP(v4) header.
type ICMPMessage struct {
	Type, Code byte
	Checksum   uint16
	RestOfHdr  uint32
}

// ICMPHandler decodes ICMP (spec §4.5). ICMP carries no further PDU.
type ICMPHandler struct{}

// Decode implements registry.Handler.
func (ICMPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)
	typ, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "icmp: truncated type"
	}
	code, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "icmp: truncated code"
	}
	checksum, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "icmp: truncated checksum"
	}
	rest, err := c.U32BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "icmp: truncated rest-of-header"
	}
	return &ICMPMessage{Type: typ, Code: code, Checksum: checksum, RestOfHdr: rest}, registry.Next{}, registry.NoErr, ""
}

// ICMPv6Message is the decoded ICMPv6 header. Registered at (IP_PROTO, 58)
// per the REDESIGN FLAGS note that register.h is authoritative for wiring
// ICMPv6 (one of the two original source trees left it unwired).
type ICMPv6Message struct {
	Type, Code byte
	Checksum   uint16
}

// ICMPv6Handler decodes ICMPv6.
type ICMPv6Handler struct{}

// Decode implements registry.Handler.
func (ICMPv6Handler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)
	typ, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "icmpv6: truncated type"
	}
	code, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "icmpv6: truncated code"
	}
	checksum, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "icmpv6: truncated checksum"
	}
	return &ICMPv6Message{Type: typ, Code: code, Checksum: checksum}, registry.Next{}, registry.NoErr, ""
}

// IGMPMessage is the decoded IGMP header (spec §4.5 illustrative set).
type IGMPMessage struct {
	Type            byte
	MaxRespTime     byte
	Checksum        uint16
	GroupAddress    net.IP
}

// IGMPHandler decodes IGMP.
type IGMPHandler struct{}

// Decode implements registry.Handler.
func (IGMPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)
	typ, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "igmp: truncated type"
	}
	maxResp, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "igmp: truncated max response time"
	}
	checksum, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "igmp: truncated checksum"
	}
	group, err := c.Bytes(4)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "igmp: truncated group address"
	}
	return &IGMPMessage{
		Type:         typ,
		MaxRespTime:  maxResp,
		Checksum:     checksum,
		GroupAddress: net.IP(append([]byte(nil), group...)),
	}, registry.Next{}, registry.NoErr, ""
}
