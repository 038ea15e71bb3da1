package filter

import (
	"strings"
	"testing"
)

const s5Source = `
ldh [12]
jeq #0x0800, l1, drop
l1: ldb [23]
jeq #6, l2, drop
l2: ldh [20]
jset #0x1fff, drop, l3
l3: ldxb 4*([14]&0xf)
ldh [x+16]
jeq #80, keep, drop
keep: ret #65535
drop: ret #0
`

func buildTCPFrame(t *testing.T, srcPort, dstPort uint16, ihl int) []byte {
	t.Helper()
	buf := make([]byte, 14+20+20)
	buf[12], buf[13] = 0x08, 0x00 // ethertype IPv4

	ipStart := 14
	buf[ipStart] = byte(0x40 | ihl)
	buf[ipStart+9] = 6 // protocol TCP
	// fragment offset / flags at ipStart+6,7: leave 0 (no MF/offset)

	tcpStart := ipStart + ihl*4
	buf[tcpStart] = byte(srcPort >> 8)
	buf[tcpStart+1] = byte(srcPort)
	buf[tcpStart+2] = byte(dstPort >> 8)
	buf[tcpStart+3] = byte(dstPort)
	return buf
}

// TestAssemble_S5AcceptTCPPort80 is scenario S5: this filter program
// must accept TCP/80 frames with accumulator 65535 and reject
// everything else with 0.
func TestAssemble_S5AcceptTCPPort80(t *testing.T) {
	prog, err := Assemble("s5.bpf", s5Source)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(prog) != 11 {
		t.Fatalf("got %d instructions, want 11", len(prog))
	}

	tcp80 := buildTCPFrame(t, 54321, 80, 5)
	if got := Run(prog, tcp80); got != 65535 {
		t.Fatalf("TCP/80 frame returned %d, want 65535", got)
	}

	tcp443 := buildTCPFrame(t, 54321, 443, 5)
	if got := Run(prog, tcp443); got != 0 {
		t.Fatalf("TCP/443 frame returned %d, want 0", got)
	}

	nonIP := make([]byte, 34)
	nonIP[12], nonIP[13] = 0x08, 0x06 // ARP
	if got := Run(prog, nonIP); got != 0 {
		t.Fatalf("ARP frame returned %d, want 0", got)
	}
}

// TestAssemble_TrailingCommentStripped verifies that ";" starts a
// comment running to end of line, not a second statement on the same
// line.
func TestAssemble_TrailingCommentStripped(t *testing.T) {
	commented := "ldh [12] ; load ethertype\nret #0"
	plain := "ldh [12]\nret #0"

	got, err := Assemble("commented.bpf", commented)
	if err != nil {
		t.Fatalf("assemble with trailing comment failed: %v", err)
	}
	want, err := Assemble("plain.bpf", plain)
	if err != nil {
		t.Fatalf("assemble without comment failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instruction %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAssemble_BackwardJumpRejected(t *testing.T) {
	src := "top: jmp top\nret #0"
	_, err := Assemble("bad.bpf", src)
	if err == nil {
		t.Fatal("expected a backward-jump error")
	}
	if !strings.Contains(err.Error(), "bad.bpf:") {
		t.Fatalf("error %q lacks file:line prefix", err.Error())
	}
}

func TestAssemble_DuplicateLabelRejected(t *testing.T) {
	src := "l1: ret #0\nl1: ret #1"
	_, err := Assemble("dup.bpf", src)
	if err == nil {
		t.Fatal("expected a duplicate-label error")
	}
}

func TestAssemble_ProgramLengthLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxProgramLength+1; i++ {
		b.WriteString("ld #0\n")
	}
	_, err := Assemble("huge.bpf", b.String())
	if err == nil {
		t.Fatal("expected a program-length error")
	}
}

func TestDump_AsIntsAndAsGoLiteral(t *testing.T) {
	prog := []Instruction{{Op: classRET | retK, K: 65535}}

	ints := Dump(prog, AsInts)
	if !strings.Contains(ints, "65535") {
		t.Fatalf("AsInts dump missing K value: %q", ints)
	}

	lit := Dump(prog, AsGoLiteral)
	if !strings.Contains(lit, "filter.Instruction") {
		t.Fatalf("AsGoLiteral dump missing type name: %q", lit)
	}
}
