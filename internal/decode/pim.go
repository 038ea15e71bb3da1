package decode

import (
	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// PIMMessage is the decoded PIM common header (spec §4.5 illustrative set;
// message-type-specific bodies are not unpacked further).
type PIMMessage struct {
	Version  byte
	Type     byte
	Checksum uint16
}

// PIMHandler decodes the PIM common header.
type PIMHandler struct{}

// Decode implements registry.Handler.
func (PIMHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)
	verType, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "pim: truncated version/type"
	}
	if err := c.Skip(1); err != nil { // reserved
		return nil, registry.Next{}, registry.Truncated, "pim: truncated reserved byte"
	}
	checksum, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "pim: truncated checksum"
	}
	return &PIMMessage{Version: verType >> 4, Type: verType & 0x0F, Checksum: checksum}, registry.Next{}, registry.NoErr, ""
}
