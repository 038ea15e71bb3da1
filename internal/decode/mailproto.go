package decode

import (
	"bytes"

	"github.com/DrJosh9000/capview/internal/registry"
)

// SMTPLine is the decoded first line of an SMTP command or reply.
type SMTPLine struct {
	IsReply bool
	Code    string // reply only, e.g. "250"
	Text    string
}

// SMTPHandler decodes a single SMTP protocol line: a 3-digit reply code
// followed by a space or hyphen (continuation) and text, or a bare
// command verb and argument.
type SMTPHandler struct{}

// Decode implements registry.Handler.
func (SMTPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	line, _ := firstLine(buf)
	if len(line) == 0 {
		return nil, registry.Next{}, registry.DecodeErr, "smtp: empty line"
	}
	if len(line) >= 3 && isDigit(line[0]) && isDigit(line[1]) && isDigit(line[2]) {
		text := ""
		if len(line) > 4 {
			text = string(line[4:])
		}
		return &SMTPLine{IsReply: true, Code: string(line[:3]), Text: text}, registry.Next{}, registry.NoErr, ""
	}
	return &SMTPLine{Text: string(line)}, registry.Next{}, registry.NoErr, ""
}

// IMAPLine is the decoded first line of an IMAP command or response.
type IMAPLine struct {
	Tag  string
	Text string
}

// IMAPHandler decodes a single IMAP protocol line: "<tag> <rest>", where
// tag is "*" for untagged server responses.
type IMAPHandler struct{}

// Decode implements registry.Handler.
func (IMAPHandler) Decode(buf []byte) (any, registry.Next, registry.Kind, string) {
	line, _ := firstLine(buf)
	if len(line) == 0 {
		return nil, registry.Next{}, registry.DecodeErr, "imap: empty line"
	}
	parts := bytes.SplitN(line, []byte(" "), 2)
	tag := string(parts[0])
	text := ""
	if len(parts) == 2 {
		text = string(parts[1])
	}
	return &IMAPLine{Tag: tag, Text: text}, registry.Next{}, registry.NoErr, ""
}

func firstLine(buf []byte) (line []byte, consumed int) {
	nl := bytes.IndexByte(buf, '\n')
	if nl == -1 {
		return bytes.TrimRight(buf, "\r"), len(buf)
	}
	return bytes.TrimRight(buf[:nl], "\r"), nl + 1
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
