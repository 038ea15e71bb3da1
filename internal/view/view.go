// Package view defines the boundary between the core analyzers and
// whatever renders their state (spec §1 non-goal #1: "terminal UI
// rendering, menus, keyboard input"). A Sink is handed a Snapshot once
// per UI-refresh tick (internal/capture's 1-second alarm); what it does
// with it — print a table, repaint a bubbletea screen — is entirely up
// to the implementation.
package view

import (
	"net"
	"time"

	"github.com/DrJosh9000/capview/internal/decode"
	"github.com/DrJosh9000/capview/internal/flow"
	"github.com/DrJosh9000/capview/internal/host"
)

// PacketRow is one row of the packet table.
type PacketRow struct {
	Seq       uint64
	Timestamp time.Time
	Length    int
	Summary   string // e.g. "IPv4 192.168.0.1 -> 93.184.216.34 TCP"
	ErrKind   decode.ErrKind
	ErrDetail string
}

// FlowRow is one row of the connection table.
type FlowRow struct {
	Src, Dst net.IP
	SrcPort  uint16
	DstPort  uint16
	State    string
	Packets  int
}

// HostRow is one row of the host table.
type HostRow struct {
	Addr  net.IP
	MAC   net.HardwareAddr
	Local bool
	Name  string
}

// Snapshot is the complete render-pass input a Sink consumes (spec §3:
// the request arena's render pass reads this much state and no more).
type Snapshot struct {
	Packets    []PacketRow
	Flows      []FlowRow
	Hosts      []HostRow
	StatsFirst bool // spec §6 -s: "start on statistics view"
}

// Sink renders a Snapshot. Implementations must not block the event
// loop thread that calls Render for long; a terminal UI does its own
// buffering and swaps the screen, it doesn't do I/O synchronously with
// network captures.
type Sink interface {
	Render(Snapshot) error
}

// BuildSnapshot flattens a session's live state into a Snapshot
// (grouping logic the CLI layer would otherwise have to duplicate for
// every Sink implementation).
func BuildSnapshot(packets []*decode.Packet, flows []*flow.Connection, hosts map[[4]byte]*host.Host, statsFirst bool) Snapshot {
	snap := Snapshot{StatsFirst: statsFirst}

	for _, p := range packets {
		snap.Packets = append(snap.Packets, PacketRow{
			Seq:       p.Seq,
			Timestamp: p.Timestamp(),
			Length:    p.RawLen,
			Summary:   summarize(p),
			ErrKind:   p.ErrKind,
			ErrDetail: p.ErrDetail,
		})
	}

	for _, c := range flows {
		snap.Flows = append(snap.Flows, FlowRow{
			Src:     c.Src.Addr,
			Dst:     c.Dst.Addr,
			SrcPort: c.Src.Port,
			DstPort: c.Dst.Port,
			State:   c.State.String(),
			Packets: len(c.Packets),
		})
	}

	for _, h := range hosts {
		snap.Hosts = append(snap.Hosts, HostRow{
			Addr:  net.IP(h.Addr[:]),
			MAC:   h.MAC,
			Local: h.Local,
			Name:  h.Name,
		})
	}

	return snap
}

// summarize renders the innermost meaningfully-named layer of a
// packet's PDU chain as a one-line description for the packet table.
func summarize(p *decode.Packet) string {
	var last string
	n := p.Root
	for depth := 0; n != nil && depth < decode.MaxChainDepth; depth++ {
		switch v := n.Payload.(type) {
		case *decode.EthernetFrame:
			last = "Ethernet"
		case *decode.ARPPacket:
			last = "ARP"
		case *decode.IPv4Header:
			last = "IPv4 " + v.Src.String() + " -> " + v.Dst.String()
		case *decode.IPv6Header:
			last = "IPv6 " + v.Src.String() + " -> " + v.Dst.String()
		case *decode.TCPSegment:
			last += " TCP"
		case *decode.UDPDatagram:
			last += " UDP"
		case *decode.DNSHeader:
			last += " DNS"
		}
		n = n.Next
	}
	if last == "" {
		return "(unrecognized)"
	}
	return last
}
