package decode

import (
	"net"

	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// NBNS resource record types this decoder handles (NB and NBSTAT).
const (
	NBNSTypeNB     = 0x20
	NBNSTypeNBSTAT = 0x21
)

// NBNSHeader is the decoded NetBIOS Name Service header and record
// sections. NBNS reuses the DNS wire header shape.
type NBNSHeader struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16

	Answers []NBNSResourceRecord
}

// NBNSResourceRecord is one decoded NB-type resource record: a NetBIOS
// name mapped to every address the record lists.
type NBNSResourceRecord struct {
	Name      string
	Type      uint16
	Class     uint16
	TTL       uint32
	NBFlags   uint16
	Addresses []net.IP
}

// NBNSHandler decodes NBNS NB resource records.
//
// Each NB record's rdata is a 2-byte NB_FLAGS field followed by one or
// more 4-byte addresses. When collecting those addresses into the
// record's Addresses slice, the per-address slot must be the inner loop
// index (the position of the address within *this* record), not the
// outer loop index over resource records — a prior revision used the
// outer record index for both loops, which overwrote entries and
// produced wrong addresses as soon as any record held more than one
// address, or any two records in the answer section differed in address
// count. Fixed here by using a record-local address index.
type NBNSHandler struct{}

// Decode implements registry.Handler. NBNS has no inner PDU.
func (NBNSHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	if len(buf) < 12 {
		return nil, registry.Next{}, registry.Truncated, "nbns: truncated header"
	}
	c := byteio.NewCursor(buf)
	id, _ := c.U16BE()
	flags, _ := c.U16BE()
	qdcount, _ := c.U16BE()
	ancount, _ := c.U16BE()
	nscount, _ := c.U16BE()
	arcount, _ := c.U16BE()

	if int(nscount)+int(ancount)+int(arcount) > len(buf) {
		return nil, registry.Next{}, registry.DecodeErr, "nbns: NSCOUNT+ANCOUNT+ARCOUNT exceeds captured length"
	}

	h := &NBNSHeader{ID: id, Flags: flags, QDCount: qdcount, ANCount: ancount, NSCount: nscount, ARCount: arcount}

	// Skip the question section: NBNS questions carry no addresses.
	for i := 0; i < int(qdcount); i++ {
		name, err := readDNSName(buf, c.Pos())
		if err != nil {
			return nil, registry.Next{}, registry.DecodeErr, "nbns: malformed question name"
		}
		if err := c.Seek(name.endPos); err != nil {
			return nil, registry.Next{}, registry.Truncated, "nbns: truncated question"
		}
		if err := c.Skip(4); err != nil { // qtype + qclass
			return nil, registry.Next{}, registry.Truncated, "nbns: truncated question"
		}
	}

	for i := 0; i < int(ancount); i++ {
		name, err := readDNSName(buf, c.Pos())
		if err != nil {
			return nil, registry.Next{}, registry.DecodeErr, "nbns: malformed record name"
		}
		if err := c.Seek(name.endPos); err != nil {
			return nil, registry.Next{}, registry.Truncated, "nbns: truncated record"
		}
		typ, err := c.U16BE()
		if err != nil {
			return nil, registry.Next{}, registry.Truncated, "nbns: truncated type"
		}
		class, err := c.U16BE()
		if err != nil {
			return nil, registry.Next{}, registry.Truncated, "nbns: truncated class"
		}
		ttl, err := c.U32BE()
		if err != nil {
			return nil, registry.Next{}, registry.Truncated, "nbns: truncated ttl"
		}
		rdlen, err := c.U16BE()
		if err != nil {
			return nil, registry.Next{}, registry.Truncated, "nbns: truncated rdlength"
		}
		rdata, err := c.Bytes(int(rdlen))
		if err != nil {
			return nil, registry.Next{}, registry.Truncated, "nbns: truncated rdata"
		}

		rr := NBNSResourceRecord{Name: name.text, Type: typ, Class: class, TTL: ttl}

		if typ == NBNSTypeNB {
			rc := byteio.NewCursor(rdata)
			nbFlags, err := rc.U16BE()
			if err != nil {
				return nil, registry.Next{}, registry.DecodeErr, "nbns: truncated NB_FLAGS"
			}
			rr.NBFlags = nbFlags
			rr.Addresses = make([]net.IP, 0, rc.Len()/4)
			for rc.Len() >= 4 {
				addr, err := rc.Bytes(4)
				if err != nil {
					return nil, registry.Next{}, registry.DecodeErr, "nbns: truncated NB address"
				}
				// Appending keeps each address at its own record-local
				// slot; nothing here is indexed by i, the outer
				// answer-record loop variable.
				rr.Addresses = append(rr.Addresses, net.IP(append([]byte(nil), addr...)))
			}
		}

		h.Answers = append(h.Answers, rr)
	}

	return h, registry.Next{}, registry.NoErr, ""
}
