package decode

import (
	"bytes"
	"strings"

	"github.com/DrJosh9000/capview/internal/registry"
)

// HTTPLine is the decoded first line of an HTTP request or response (spec
// §4.5: "HTTP (request/response line only)" — headers and bodies are not
// parsed).
type HTTPLine struct {
	IsRequest bool
	Method    string // request only
	URI       string // request only
	Version   string
	StatusCode string // response only
	Reason     string // response only
}

// HTTPHandler decodes only the HTTP request/response start line.
type HTTPHandler struct{}

// Decode implements registry.Handler. HTTP has no further decoded PDU.
func (HTTPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	nl := bytes.IndexByte(buf, '\n')
	var line []byte
	if nl == -1 {
		line = buf
	} else {
		line = buf[:nl]
	}
	line = bytes.TrimRight(line, "\r")
	if len(line) == 0 {
		return nil, registry.Next{}, registry.DecodeErr, "http: empty start line"
	}

	fields := strings.SplitN(string(line), " ", 3)
	if len(fields) != 3 {
		return nil, registry.Next{}, registry.DecodeErr, "http: malformed start line"
	}

	if strings.HasPrefix(fields[0], "HTTP/") {
		h := &HTTPLine{
			IsRequest:  false,
			Version:    fields[0],
			StatusCode: fields[1],
			Reason:     fields[2],
		}
		return h, registry.Next{}, registry.NoErr, ""
	}

	h := &HTTPLine{
		IsRequest: true,
		Method:    fields[0],
		URI:       fields[1],
		Version:   fields[2],
	}
	return h, registry.Next{}, registry.NoErr, ""
}
