package decode

import (
	"testing"

	"github.com/DrJosh9000/capview/internal/registry"
)

func bpduBytes(protocolID uint16) []byte {
	buf := make([]byte, 35)
	buf[0] = byte(protocolID >> 8)
	buf[1] = byte(protocolID)
	return buf
}

// TestSTP_BPDUProtocolIDMustBeZero guards the corrected (R)STP protocol id
// check: zero is accepted, anything else is DecodeErr. See stp.go.
func TestSTP_BPDUProtocolIDMustBeZero(t *testing.T) {
	h := STPHandler{}

	_, _, kind, _ := h.Decode(bpduBytes(0))
	if kind != registry.NoErr {
		t.Fatalf("protocol id 0: got kind %v, want NoErr", kind)
	}

	_, _, kind, _ = h.Decode(bpduBytes(1))
	if kind != registry.DecodeErr {
		t.Fatalf("protocol id 1: got kind %v, want DecodeErr", kind)
	}

	_, _, kind, _ = h.Decode(bpduBytes(0xFFFF))
	if kind != registry.DecodeErr {
		t.Fatalf("protocol id 0xFFFF: got kind %v, want DecodeErr", kind)
	}
}
