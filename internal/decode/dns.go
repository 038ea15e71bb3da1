package decode

import (
	"fmt"
	"net"

	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// dnsNameLen bounds a fully-expanded DNS name, matching the original
// decoder's DNS_NAMELEN.
const dnsNameLen = 254

// dnsMaxLabelLen is the largest a single label may be (the top two bits of
// its length byte are reserved for the compression-pointer tag).
const dnsMaxLabelLen = 63

// DNSHeader carries the fixed 12-byte DNS message header plus the decoded
// question and resource-record sections.
type DNSHeader struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16

	Questions []DNSQuestion
	Answers   []DNSResourceRecord
	Authority []DNSResourceRecord
	Additional []DNSResourceRecord
}

// DNSQuestion is one entry of the question section.
type DNSQuestion struct {
	Name  string
	Type  uint16
	Class uint16
}

// DNSResourceRecord is one decoded resource record. Data holds a
// record-type-specific value: a string for name-valued records (NS, CNAME,
// PTR, domain names in SOA/MX/SRV), net.IP for A/AAAA, or []byte for
// opaque types (TXT, OPT and anything else this decoder doesn't unpack
// further).
type DNSResourceRecord struct {
	Name  string
	Type  uint16
	Class uint16
	TTL   uint32
	Data  any
}

// DNS resource record types this decoder recognizes (spec §4.5).
const (
	DNSTypeA     = 1
	DNSTypeNS    = 2
	DNSTypeCNAME = 5
	DNSTypeSOA   = 6
	DNSTypePTR   = 12
	DNSTypeHINFO = 13
	DNSTypeMX    = 15
	DNSTypeTXT   = 16
	DNSTypeAAAA  = 28
	DNSTypeSRV   = 33
	DNSTypeOPT   = 41
)

// DNSHandler decodes DNS messages. It is also registered for mDNS and
// LLMNR, which reuse the same wire format (spec §4.5).
type DNSHandler struct{}

// Decode implements registry.Handler. DNS has no inner PDU.
func (DNSHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	if len(buf) < 12 {
		return nil, registry.Next{}, registry.Truncated, "dns: truncated header"
	}
	c := byteio.NewCursor(buf)
	id, _ := c.U16BE()
	flags, _ := c.U16BE()
	qdcount, _ := c.U16BE()
	ancount, _ := c.U16BE()
	nscount, _ := c.U16BE()
	arcount, _ := c.U16BE()

	// Bound the total record count against the captured length so a
	// crafted header can't force unbounded allocation (spec §4.5: "DNS
	// number-of-records product bound").
	total := int(nscount) + int(ancount) + int(arcount)
	if total > len(buf) {
		return nil, registry.Next{}, registry.DecodeErr, "dns: NSCOUNT+ANCOUNT+ARCOUNT exceeds captured length"
	}

	h := &DNSHeader{ID: id, Flags: flags, QDCount: qdcount, ANCount: ancount, NSCount: nscount, ARCount: arcount}

	for i := 0; i < int(qdcount); i++ {
		name, err := readDNSName(buf, c.Pos())
		if err != nil {
			return nil, registry.Next{}, registry.DecodeErr, "dns: malformed question name"
		}
		if err := c.Seek(name.endPos); err != nil {
			return nil, registry.Next{}, registry.Truncated, "dns: truncated question"
		}
		qtype, err := c.U16BE()
		if err != nil {
			return nil, registry.Next{}, registry.Truncated, "dns: truncated question type"
		}
		qclass, err := c.U16BE()
		if err != nil {
			return nil, registry.Next{}, registry.Truncated, "dns: truncated question class"
		}
		h.Questions = append(h.Questions, DNSQuestion{Name: name.text, Type: qtype, Class: qclass})
	}

	sections := []struct {
		count int
		dst   *[]DNSResourceRecord
	}{
		{int(ancount), &h.Answers},
		{int(nscount), &h.Authority},
		{int(arcount), &h.Additional},
	}
	for _, sec := range sections {
		for i := 0; i < sec.count; i++ {
			rr, err := decodeDNSRR(buf, c)
			if err != nil {
				return nil, registry.Next{}, registry.DecodeErr, "dns: malformed resource record"
			}
			*sec.dst = append(*sec.dst, rr)
		}
	}

	return h, registry.Next{}, registry.NoErr, ""
}

func decodeDNSRR(buf []byte, c *byteio.Cursor) (DNSResourceRecord, error) {
	name, err := readDNSName(buf, c.Pos())
	if err != nil {
		return DNSResourceRecord{}, err
	}
	if err := c.Seek(name.endPos); err != nil {
		return DNSResourceRecord{}, err
	}
	typ, err := c.U16BE()
	if err != nil {
		return DNSResourceRecord{}, err
	}
	class, err := c.U16BE()
	if err != nil {
		return DNSResourceRecord{}, err
	}
	ttl, err := c.U32BE()
	if err != nil {
		return DNSResourceRecord{}, err
	}
	rdlen, err := c.U16BE()
	if err != nil {
		return DNSResourceRecord{}, err
	}
	rdata, err := c.Bytes(int(rdlen))
	if err != nil {
		return DNSResourceRecord{}, err
	}

	rr := DNSResourceRecord{Name: name.text, Type: typ, Class: class, TTL: ttl}
	rdataStart := c.Pos() - int(rdlen)

	switch typ {
	case DNSTypeA:
		if len(rdata) != 4 {
			return DNSResourceRecord{}, byteio.ErrTruncated
		}
		rr.Data = net.IP(append([]byte(nil), rdata...))
	case DNSTypeAAAA:
		if len(rdata) != 16 {
			return DNSResourceRecord{}, byteio.ErrTruncated
		}
		rr.Data = net.IP(append([]byte(nil), rdata...))
	case DNSTypeNS, DNSTypeCNAME, DNSTypePTR:
		n, err := readDNSName(buf, rdataStart)
		if err != nil {
			return DNSResourceRecord{}, err
		}
		rr.Data = n.text
	case DNSTypeMX:
		if len(rdata) < 2 {
			return DNSResourceRecord{}, byteio.ErrTruncated
		}
		n, err := readDNSName(buf, rdataStart+2)
		if err != nil {
			return DNSResourceRecord{}, err
		}
		pref := uint16(rdata[0])<<8 | uint16(rdata[1])
		rr.Data = fmt.Sprintf("%d %s", pref, n.text)
	case DNSTypeSOA:
		mname, err := readDNSName(buf, rdataStart)
		if err != nil {
			return DNSResourceRecord{}, err
		}
		rname, err := readDNSName(buf, mname.endPos)
		if err != nil {
			return DNSResourceRecord{}, err
		}
		rr.Data = mname.text + " " + rname.text
	case DNSTypeSRV:
		if len(rdata) < 6 {
			return DNSResourceRecord{}, byteio.ErrTruncated
		}
		n, err := readDNSName(buf, rdataStart+6)
		if err != nil {
			return DNSResourceRecord{}, err
		}
		rr.Data = n.text
	default:
		// TXT, HINFO, OPT and anything unrecognized: keep the raw rdata.
		rr.Data = append([]byte(nil), rdata...)
	}

	return rr, nil
}

type dnsName struct {
	text   string
	endPos int // position in buf immediately after the on-wire name (before following any pointer)
}

// readDNSName expands a (possibly compressed) domain name starting at pos
// in buf. It follows compression pointers iteratively, tracking visited
// offsets so a pointer cycle terminates with an error instead of looping
// forever (spec S6, REDESIGN FLAGS §9). Label bytes are copied exactly
// once, in the plain-label branch only — the corrected behavior the
// REDESIGN FLAGS call out, since a pointer branch never holds label bytes
// of its own to copy.
func readDNSName(buf []byte, pos int) (dnsName, error) {
	if pos < 0 || pos >= len(buf) {
		return dnsName{}, byteio.ErrTruncated
	}

	var labels []byte
	visited := make(map[int]bool)
	cur := pos
	endPos := -1 // set once, at the first pointer or at the byte after the terminating zero

	for {
		if cur < 0 || cur >= len(buf) {
			return dnsName{}, byteio.ErrTruncated
		}
		length := buf[cur]

		if length == 0 {
			if endPos == -1 {
				endPos = cur + 1
			}
			break
		}

		if length&0xc0 == 0xc0 {
			if cur+1 >= len(buf) {
				return dnsName{}, byteio.ErrTruncated
			}
			offset := int(length&0x3f)<<8 | int(buf[cur+1])
			if endPos == -1 {
				endPos = cur + 2
			}
			if visited[offset] {
				return dnsName{}, fmt.Errorf("dns: compression pointer cycle at offset %d", offset)
			}
			visited[offset] = true
			if offset >= len(buf) {
				return dnsName{}, byteio.ErrTruncated
			}
			cur = offset
			continue
		}

		if int(length) > dnsMaxLabelLen {
			return dnsName{}, fmt.Errorf("dns: label exceeds %d bytes", dnsMaxLabelLen)
		}
		start := cur + 1
		end := start + int(length)
		if end > len(buf) {
			return dnsName{}, byteio.ErrTruncated
		}
		if len(labels)+int(length)+1 >= dnsNameLen {
			return dnsName{}, fmt.Errorf("dns: name exceeds %d bytes", dnsNameLen)
		}
		if len(labels) > 0 {
			labels = append(labels, '.')
		}
		labels = append(labels, buf[start:end]...)
		cur = end
	}

	return dnsName{text: string(labels), endPos: endPos}, nil
}
