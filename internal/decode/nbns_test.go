package decode

import (
	"net"
	"testing"

	"github.com/DrJosh9000/capview/internal/registry"
)

// buildNBNSAnswer builds a minimal NBNS message with no question section
// and one NB answer record per name, each listing that record's
// addresses (4 bytes each).
func buildNBNSAnswer(t *testing.T, names []string, addrsPerRecord [][]string) []byte {
	t.Helper()
	buf := make([]byte, 12)
	buf[6] = 0 // ancount hi
	buf[7] = byte(len(names))

	for i, name := range names {
		buf = append(buf, byte(len(name)))
		buf = append(buf, []byte(name)...)
		buf = append(buf, 0) // root label

		buf = append(buf, 0x00, NBNSTypeNB) // type
		buf = append(buf, 0x00, 0x01)       // class IN
		buf = append(buf, 0, 0, 0, 60)      // ttl

		addrs := addrsPerRecord[i]
		rdlen := 2 + 4*len(addrs)
		buf = append(buf, byte(rdlen>>8), byte(rdlen))
		buf = append(buf, 0x00, 0x00) // NB_FLAGS
		for _, a := range addrs {
			ip := net.ParseIP(a).To4()
			buf = append(buf, ip...)
		}
	}
	return buf
}

// TestNBNS_AddressesIndexedByRecordNotByOuterLoop guards the corrected
// per-record address indexing: a record earlier in the answer section
// with fewer addresses must not corrupt a later record's address list.
func TestNBNS_AddressesIndexedByRecordNotByOuterLoop(t *testing.T) {
	buf := buildNBNSAnswer(t,
		[]string{"ONE", "TWO"},
		[][]string{
			{"10.0.0.1"},
			{"10.0.0.2", "10.0.0.3"},
		},
	)

	h := NBNSHandler{}
	payload, _, kind, detail := h.Decode(buf)
	if kind != registry.NoErr {
		t.Fatalf("decode failed: kind=%v detail=%q", kind, detail)
	}
	hdr := payload.(*NBNSHeader)
	if len(hdr.Answers) != 2 {
		t.Fatalf("got %d answers, want 2", len(hdr.Answers))
	}

	if got := hdr.Answers[0].Addresses; len(got) != 1 || !got[0].Equal(net.ParseIP("10.0.0.1")) {
		t.Fatalf("record 0 addresses = %v, want [10.0.0.1]", got)
	}
	want := []string{"10.0.0.2", "10.0.0.3"}
	got := hdr.Answers[1].Addresses
	if len(got) != len(want) {
		t.Fatalf("record 1 addresses = %v, want %v", got, want)
	}
	for i, w := range want {
		if !got[i].Equal(net.ParseIP(w)) {
			t.Fatalf("record 1 address %d = %v, want %v", i, got[i], w)
		}
	}
}
