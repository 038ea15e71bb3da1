package view

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/DrJosh9000/capview/internal/decode"
)

// PlainText is the `-t` sink: a flat, scriptable dump of the current
// snapshot using stdlib tabwriter, the same column-aligned plain-text
// shape a dashboard handler renders into HTML (spec §6 -t: "plain text
// instead of the interactive view").
type PlainText struct {
	Out io.Writer
}

// NewPlainText returns a PlainText sink writing to w.
func NewPlainText(w io.Writer) *PlainText {
	return &PlainText{Out: w}
}

// Render writes the packet, flow, and host tables in that order and
// nothing else; StatsFirst is ignored (the -s flag only changes which
// view a terminal UI opens on; the plain-text sink always prints
// everything since there's no "view" to switch between).
func (p *PlainText) Render(snap Snapshot) error {
	tw := tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "SEQ\tTIME\tLEN\tSUMMARY\tSTATUS")
	for _, r := range snap.Packets {
		status := "ok"
		if r.ErrKind != decode.NoErr {
			status = r.ErrDetail
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			r.Seq, r.Timestamp.Format("15:04:05.000000"), r.Length, r.Summary, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(p.Out)
	tw = tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SRC\tSPORT\tDST\tDPORT\tSTATE\tPACKETS")
	for _, r := range snap.Flows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\t%d\n",
			r.Src, r.SrcPort, r.Dst, r.DstPort, r.State, r.Packets)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(p.Out)
	tw = tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDR\tMAC\tLOCAL\tNAME")
	for _, r := range snap.Hosts {
		mac := ""
		if r.MAC != nil {
			mac = r.MAC.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", r.Addr, mac, r.Local, r.Name)
	}
	return tw.Flush()
}
