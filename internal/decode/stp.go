package decode

import (
	"github.com/DrJosh9000/capview/internal/byteio"
	"github.com/DrJosh9000/capview/internal/registry"
)

// STPBPDU is a decoded Spanning Tree Protocol BPDU.
type STPBPDU struct {
	ProtocolID  uint16
	Version     byte
	BPDUType    byte
	Flags       byte
	RootID      []byte // 8 bytes: priority + MAC
	RootPathCost uint32
	BridgeID    []byte // 8 bytes: priority + MAC
	PortID      uint16
	MessageAge  uint16
	MaxAge      uint16
	HelloTime   uint16
	FwdDelay    uint16
}

// STPHandler decodes Spanning Tree BPDUs.
//
// The protocol id validity check here is `protocolID != 0`, i.e. only a
// protocol id of zero (identifying (R)STP) is accepted. A prior revision
// of this check spelled it as `!protocolID == 0`, which by C/Go operator
// precedence tests `(!protocolID) == 0` rather than `protocolID == 0` —
// the negation binds to protocolID alone, not to the whole comparison —
// so it accepted every nonzero garbage value and rejected the one valid
// case. Fixed here.
type STPHandler struct{}

// Decode implements registry.Handler.
func (STPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	c := byteio.NewCursor(buf)
	protocolID, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated protocol id"
	}
	if protocolID != 0 {
		return nil, registry.Next{}, registry.DecodeErr, "stp: protocol id must be 0"
	}
	version, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated version"
	}
	bpduType, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated bpdu type"
	}
	flags, err := c.U8()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated flags"
	}
	rootID, err := c.Bytes(8)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated root id"
	}
	rootCost, err := c.U32BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated root path cost"
	}
	bridgeID, err := c.Bytes(8)
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated bridge id"
	}
	portID, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated port id"
	}
	msgAge, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated message age"
	}
	maxAge, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated max age"
	}
	helloTime, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated hello time"
	}
	fwdDelay, err := c.U16BE()
	if err != nil {
		return nil, registry.Next{}, registry.Truncated, "stp: truncated forward delay"
	}

	b := &STPBPDU{
		ProtocolID:   protocolID,
		Version:      version,
		BPDUType:     bpduType,
		Flags:        flags,
		RootID:       append([]byte(nil), rootID...),
		RootPathCost: rootCost,
		BridgeID:     append([]byte(nil), bridgeID...),
		PortID:       portID,
		MessageAge:   msgAge,
		MaxAge:       maxAge,
		HelloTime:    helloTime,
		FwdDelay:     fwdDelay,
	}
	return b, registry.Next{}, registry.NoErr, ""
}
