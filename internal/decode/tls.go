package decode

import (
	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// TLS record content types (RFC 8446 §5.1).
const (
	TLSContentChangeCipherSpec = 20
	TLSContentAlert            = 21
	TLSContentHandshake        = 22
	TLSContentApplicationData  = 23
)

// TLS handshake message types (RFC 8446 §4), valid when ContentType ==
// TLSContentHandshake.
const (
	TLSHandshakeClientHello = 1
	TLSHandshakeServerHello = 2
)

// TLSRecord is the decoded TLS record header plus, for handshake records,
// the handshake message type (spec §4.5: "record + handshake type").
type TLSRecord struct {
	ContentType   byte
	Version       uint16
	Length        uint16
	HandshakeType byte // valid when ContentType == TLSContentHandshake
	hasHandshake  bool
}

// TLSHandler decodes the TLS record header. It does not parse the
// handshake body beyond its type byte, or any application data.
type TLSHandler struct{}

// Decode implements registry.Handler. TLS has no further decoded PDU.
func (TLSHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)
	contentType, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tls: truncated content type"
	}
	version, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tls: truncated version"
	}
	length, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "tls: truncated length"
	}
	if int(length) > len(buf)-5 {
		return nil, registry.Next{}, registry.DecodeErr, "tls: record length exceeds captured length"
	}

	r := &TLSRecord{ContentType: contentType, Version: version, Length: length}
	if contentType == TLSContentHandshake && length > 0 {
		ht, err := c.U8()
		if err == nil {
			r.HandshakeType = ht
			r.hasHandshake = true
		}
	}
	return r, registry.Next{}, registry.NoErr, ""
}
