package decode

import (
	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// BER/ASN.1 universal tag numbers this decoder recognizes (spec §4.5:
// "SNMP (BER/ASN.1 subset)").
const (
	berTagInteger     = 0x02
	berTagOctetString = 0x04
	berTagNull        = 0x05
	berTagObjectID    = 0x06
	berTagSequence    = 0x30
)

// BERValue is one decoded top-level BER TLV.
type BERValue struct {
	Tag   byte
	Value []byte // the raw contents octets; nested SEQUENCE contents are not recursively unpacked
}

// SNMPMessage is the decoded top level of an SNMP message: the outer
// SEQUENCE's version, community string, and the raw bytes of the PDU that
// follows them. PDU internals (varbinds) are not unpacked further.
type SNMPMessage struct {
	Version   int
	Community string
	PDU       []byte
}

// SNMPHandler decodes the SNMP message envelope using a small BER/ASN.1
// reader: definite-length form only, long-form lengths up to 4 octets.
type SNMPHandler struct{}

// Decode implements registry.Handler. SNMP has no further decoded PDU.
func (SNMPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)

	tag, err := c.U8()
	if err != nil || tag != berTagSequence {
		return nil, registry.Next{}, registry.DecodeErr, "snmp: missing outer SEQUENCE"
	}
	seqLen, err := berLength(c)
	if err != nil {
		return nil, registry.Next{}, registry.DecodeErr, "snmp: malformed outer length"
	}
	if seqLen > c.Len() {
		return nil, registry.Next{}, registry.DecodeErr, "snmp: outer length exceeds captured data"
	}

	versionTag, err := c.U8()
	if err != nil || versionTag != berTagInteger {
		return nil, registry.Next{}, registry.DecodeErr, "snmp: missing version INTEGER"
	}
	versionLen, err := berLength(c)
	if err != nil {
		return nil, registry.Next{}, registry.DecodeErr, "snmp: malformed version length"
	}
	versionBytes, err := c.Bytes(versionLen)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "snmp: truncated version"
	}
	version := 0
	for _, b := range versionBytes {
		version = version<<8 | int(b)
	}

	communityTag, err := c.U8()
	if err != nil || communityTag != berTagOctetString {
		return nil, registry.Next{}, registry.DecodeErr, "snmp: missing community OCTET STRING"
	}
	communityLen, err := berLength(c)
	if err != nil {
		return nil, registry.Next{}, registry.DecodeErr, "snmp: malformed community length"
	}
	community, err := c.Bytes(communityLen)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "snmp: truncated community"
	}

	m := &SNMPMessage{
		Version:   version,
		Community: string(community),
		PDU:       append([]byte(nil), c.Remaining()...),
	}
	return m, registry.Next{}, registry.NoErr, ""
}

// berLength reads a BER definite-length field: either a short form (one
// octet, top bit clear) or a long form (top bit set, low 7 bits give the
// count of following length octets, up to 4 to keep the decoded value
// within an int).
func berLength(c *byteio.Cursor) (int, error) {
	first, err := c.U8()
	if err != nil {
		return 0, err
	}
	if first&0x80 == 0 {
		return int(first), nil
	}
	n := int(first & 0x7F)
	if n == 0 || n > 4 {
		return 0, byteio.ErrTruncated
	}
	lenBytes, err := c.Bytes(n)
	if err != nil {
		return 0, err
	}
	length := 0
	for _, b := range lenBytes {
		length = length<<8 | int(b)
	}
	return length, nil
}
