// Package byteio implements a bounds-checked big-endian cursor over a byte
// slice. Every read advances the cursor and fails cleanly instead of
// panicking when the declared read would run past the end of the buffer.
//
// This is the one place decoders are allowed to touch raw bytes; centralizing
// it here means the pointer arithmetic bugs that plague a hand-rolled C
// decoder (the kind this package exists to prevent) only need to be gotten
// right once.
package byteio

import "errors"

// ErrTruncated is returned whenever a read would run past the end of the
// cursor's declared bounds.
var ErrTruncated = errors.New("byteio: truncated")

// Cursor is a read-only view over a byte slice with a movable read position.
// The zero value is not usable; use NewCursor.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a Cursor reading from buf, starting at offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the number of bytes available to read.
func (c *Cursor) Len() int {
	return len(c.buf) - c.pos
}

// Pos returns the current read offset from the start of the buffer.
func (c *Cursor) Pos() int {
	return c.pos
}

// Seek moves the cursor to an absolute offset within the original buffer. It
// fails if pos is out of [0, len(buf)].
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return ErrTruncated
	}
	c.pos = pos
	return nil
}

// U8 reads one byte and advances the cursor.
func (c *Cursor) U8() (byte, error) {
	if c.Len() < 1 {
		return 0, ErrTruncated
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// U16BE reads a big-endian uint16 and advances the cursor.
func (c *Cursor) U16BE() (uint16, error) {
	if c.Len() < 2 {
		return 0, ErrTruncated
	}
	v := uint16(c.buf[c.pos])<<8 | uint16(c.buf[c.pos+1])
	c.pos += 2
	return v, nil
}

// U32BE reads a big-endian uint32 and advances the cursor.
func (c *Cursor) U32BE() (uint32, error) {
	if c.Len() < 4 {
		return 0, ErrTruncated
	}
	v := uint32(c.buf[c.pos])<<24 | uint32(c.buf[c.pos+1])<<16 |
		uint32(c.buf[c.pos+2])<<8 | uint32(c.buf[c.pos+3])
	c.pos += 4
	return v, nil
}

// Bytes reads the next n bytes and advances the cursor. The returned slice
// aliases the cursor's backing array; callers that need the bytes to outlive
// the capture frame must copy them (typically via an arena).
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || c.Len() < n {
		return nil, ErrTruncated
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// PeekBytes returns the next n bytes without advancing the cursor.
func (c *Cursor) PeekBytes(n int) ([]byte, error) {
	if n < 0 || c.Len() < n {
		return nil, ErrTruncated
	}
	return c.buf[c.pos : c.pos+n], nil
}

// Remaining returns every byte not yet consumed, without advancing.
func (c *Cursor) Remaining() []byte {
	return c.buf[c.pos:]
}

// Skip advances the cursor by n bytes without reading them.
func (c *Cursor) Skip(n int) error {
	if n < 0 || c.Len() < n {
		return ErrTruncated
	}
	c.pos += n
	return nil
}

// At returns a new Cursor over the same backing array, positioned at an
// absolute offset. Used by decoders (e.g. DNS name compression) that need to
// jump to a different point in the frame without losing their place in the
// original cursor.
func (c *Cursor) At(pos int) (*Cursor, error) {
	if pos < 0 || pos > len(c.buf) {
		return nil, ErrTruncated
	}
	return &Cursor{buf: c.buf, pos: pos}, nil
}
