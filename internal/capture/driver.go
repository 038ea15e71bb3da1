// Package capture wraps the two frame sources this system reads from —
// a live link-layer socket and a classic pcap file — behind one Driver
// interface, and runs the single-threaded event loop that pulls frames
// off whichever Driver is active (spec §5). The decoder never sees
// which Driver produced a frame.
package capture

import (
	"time"

	"github.com/DrJosh9000/capview/internal/filter"
)

// Frame is one captured link-layer frame plus its capture timestamp.
// OrigLen may exceed len(Data) when the driver applied a snap length.
type Frame struct {
	Timestamp time.Time
	OrigLen   int
	Data      []byte
}

// Driver is a source of link-layer frames. Live and the pcap-file
// source are the two capview implementations; the decoder and capture
// loop depend only on this interface (spec §9: "a capture-driver
// interface with two implementations selected at build time").
type Driver interface {
	// ReadFrame blocks until a frame is available, the driver is
	// closed, or an error occurs. It returns io.EOF when a file-backed
	// driver is exhausted.
	ReadFrame() (Frame, error)

	// SetFilter installs a compiled filter program on the driver so
	// rejection happens before a frame is ever handed to the decoder.
	// A live driver pushes it into the kernel (best-effort: some
	// platforms' pcap builds reject BPF programs using instructions
	// this VM supports but libpcap doesn't recognize); a file driver
	// applies it in userspace on each read.
	SetFilter(prog []filter.Instruction) error

	// Close releases the underlying socket or file.
	Close() error
}
