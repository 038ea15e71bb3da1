package decode

import (
	"bytes"

	"github.com/DrJosh9000/capview/internal/registry"
)

// SSDPMessage is the decoded SSDP start line plus raw header block. SSDP
// (Simple Service Discovery Protocol) is carried as plain text over UDP,
// similar in shape to an HTTP request/notify line (spec §4.5).
type SSDPMessage struct {
	StartLine string
	Headers   []byte
}

// SSDPHandler decodes SSDP text messages.
type SSDPHandler struct{}

// Decode implements registry.Handler.
func (SSDPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	nl := bytes.IndexByte(buf, '\n')
	if nl == -1 {
		return nil, registry.Next{}, registry.DecodeErr, "ssdp: no start line terminator"
	}
	start := bytes.TrimRight(buf[:nl], "\r")
	if len(start) == 0 {
		return nil, registry.Next{}, registry.DecodeErr, "ssdp: empty start line"
	}
	m := &SSDPMessage{
		StartLine: string(start),
		Headers:   append([]byte(nil), buf[nl+1:]...),
	}
	return m, registry.Next{}, registry.NoErr, ""
}
