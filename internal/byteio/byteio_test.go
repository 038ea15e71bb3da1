package byteio

import (
	"errors"
	"testing"
)

func TestReadsAdvanceAndBoundsCheck(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03, 0x04, 0x05})

	b, err := c.U8()
	if err != nil || b != 0x01 {
		t.Fatalf("U8: got (%v, %v), want (0x01, nil)", b, err)
	}

	u16, err := c.U16BE()
	if err != nil || u16 != 0x0203 {
		t.Fatalf("U16BE: got (%v, %v), want (0x0203, nil)", u16, err)
	}

	if _, err := c.U32BE(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("U32BE on 2 remaining bytes: got err %v, want ErrTruncated", err)
	}
}

func TestBytesNeverReadsPastEnd(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})
	if _, err := c.Bytes(4); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Bytes(4) on 3-byte buffer: got %v, want ErrTruncated", err)
	}
	b, err := c.Bytes(3)
	if err != nil || len(b) != 3 {
		t.Fatalf("Bytes(3): got (%v, %v)", b, err)
	}
	if c.Len() != 0 {
		t.Fatalf("Len after consuming all bytes: got %d, want 0", c.Len())
	}
}

func TestAtDoesNotDisturbOriginalCursor(t *testing.T) {
	c := NewCursor([]byte{10, 20, 30, 40})
	c.Skip(1)
	jump, err := c.At(3)
	if err != nil {
		t.Fatalf("At(3): %v", err)
	}
	b, _ := jump.U8()
	if b != 40 {
		t.Fatalf("jump cursor byte: got %d, want 40", b)
	}
	if c.Pos() != 1 {
		t.Fatalf("original cursor pos mutated: got %d, want 1", c.Pos())
	}
}

func TestSeekOutOfRange(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})
	if err := c.Seek(10); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Seek(10): got %v, want ErrTruncated", err)
	}
	if err := c.Seek(-1); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Seek(-1): got %v, want ErrTruncated", err)
	}
}
