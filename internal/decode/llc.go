package decode

import (
	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// LLCFrame is the decoded 802.2 LLC header, with SNAP unwrapped when
// present (spec §4.5: "802.3 + LLC, SNAP").
type LLCFrame struct {
	DSAP, SSAP, Control byte
	SNAPOUI             uint32 // valid when DSAP==SSAP==0xAA (SNAP)
	SNAPProtocolID      uint16
	rest                []byte
}

// Remainder implements remainderer.
func (f *LLCFrame) Remainder() []byte { return f.rest }

const llcSAPSNAP = 0xAA

// llcDSAPSTP is the well-known LLC DSAP value for the Spanning Tree
// Protocol (IEEE 802.1D), used as the LayerApp dispatch key.
const llcDSAPSTP = 0x42

// LLCHandler decodes 802.2 LLC, unwrapping a SNAP header if present, and
// dispatches the SNAP protocol id as an Ethertype-layer lookup (the wire
// values occupy the same namespace for the handlers registered in this
// system).
type LLCHandler struct{}

// Decode implements registry.Handler.
func (LLCHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)
	dsap, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "llc: truncated DSAP"
	}
	ssap, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "llc: truncated SSAP"
	}
	ctrl, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "llc: truncated control field"
	}

	f := &LLCFrame{DSAP: dsap, SSAP: ssap, Control: ctrl}

	if dsap != llcSAPSNAP || ssap != llcSAPSNAP {
		f.rest = c.Remaining()
		// Non-SNAP LLC: dispatch by DSAP at the application layer (e.g.
		// 0x42 is Spanning Tree). If nothing is registered for this DSAP,
		// decodeInto's own registry lookup reports UnkProtocol.
		return f, registry.Next{Layer: registry.LayerApp, Key: registry.Key(dsap), Valid: true}, registry.NoErr, ""
	}

	oui, err := c.Bytes(3)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "llc: truncated SNAP OUI"
	}
	proto, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "llc: truncated SNAP protocol id"
	}
	f.SNAPOUI = uint32(oui[0])<<16 | uint32(oui[1])<<8 | uint32(oui[2])
	f.SNAPProtocolID = proto
	f.rest = c.Remaining()

	return f, registry.Next{Layer: registry.LayerEthertype, Key: registry.Key(proto), Valid: true}, registry.NoErr, ""
}
