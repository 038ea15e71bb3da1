package pcapfile

import (
	"bytes"
	"io"
	"testing"
)

func TestWriteThenReadRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 65535)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	frame := []byte{0xaa, 0xbb, 0xcc, 0xdd}
	if err := w.WriteRecord(&Record{TimeSec: 100, TimeUsec: 200, OrigLen: uint32(len(frame)), Data: frame}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.Header.LinkType != LinktypeEthernet {
		t.Fatalf("link type = %d, want %d", r.Header.LinkType, LinktypeEthernet)
	}

	rec, err := r.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if rec.TimeSec != 100 || rec.TimeUsec != 200 {
		t.Fatalf("timestamps = %d.%d, want 100.200", rec.TimeSec, rec.TimeUsec)
	}
	if !bytes.Equal(rec.Data, frame) {
		t.Fatalf("data = %x, want %x", rec.Data, frame)
	}

	if _, err := r.ReadRecord(); err != io.EOF {
		t.Fatalf("second ReadRecord err = %v, want io.EOF", err)
	}
}

func TestNewReader_RejectsNonEthernetLinkType(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 65535)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	_ = w
	raw := buf.Bytes()
	raw[20] = 6 // LINKTYPE_IEEE802_5 (token ring), not Ethernet

	if _, err := NewReader(bytes.NewReader(raw)); err == nil {
		t.Fatal("expected an error for a non-Ethernet link type")
	}
}

func TestNewReader_RejectsBadMagic(t *testing.T) {
	raw := make([]byte, globalHeaderLen)
	if _, err := NewReader(bytes.NewReader(raw)); err == nil {
		t.Fatal("expected an error for a bad magic number")
	}
}
