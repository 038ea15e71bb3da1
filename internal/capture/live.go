package capture

import (
	"fmt"

	"github.com/google/gopacket/pcap"

	"github.com/DrJosh9000/capview/internal/filter"
)

// snapLen is the per-packet capture length: large enough for any frame
// this system decodes. Anything longer gets truncated, which the decoder
// already treats as DecodeErr rather than a crash.
const snapLen = 65535

// LiveDriver captures frames off a link-layer device via libpcap.
type LiveDriver struct {
	handle *pcap.Handle
}

// OpenLive opens dev for capture. promisc enables promiscuous mode,
// which is the default for live capture unless -p was given (spec §6).
func OpenLive(dev string, promisc bool) (*LiveDriver, error) {
	handle, err := pcap.OpenLive(dev, snapLen, promisc, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("capture: opening %q: %w", dev, err)
	}
	return &LiveDriver{handle: handle}, nil
}

// ReadFrame implements Driver.
func (d *LiveDriver) ReadFrame() (Frame, error) {
	data, ci, err := d.handle.ReadPacketData()
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Timestamp: ci.Timestamp,
		OrigLen:   ci.Length,
		Data:      data,
	}, nil
}

// SetFilter implements Driver by translating the VM's wire-form
// instructions into libpcap's identical classic-BPF encoding and
// pushing the program into the kernel.
func (d *LiveDriver) SetFilter(prog []filter.Instruction) error {
	raw := make([]pcap.BPFInstruction, len(prog))
	for i, ins := range prog {
		raw[i] = pcap.BPFInstruction{Code: ins.Op, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	if err := d.handle.SetBPFInstructionFilter(raw); err != nil {
		return fmt.Errorf("capture: installing filter: %w", err)
	}
	return nil
}

// Close implements Driver.
func (d *LiveDriver) Close() error {
	d.handle.Close()
	return nil
}

// Interface describes one capturable device, as reported by ListInterfaces.
type Interface struct {
	Name        string
	Description string
}

// ListInterfaces enumerates capturable devices (spec §6's -l flag).
func ListInterfaces() ([]Interface, error) {
	devs, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("capture: listing interfaces: %w", err)
	}
	out := make([]Interface, len(devs))
	for i, d := range devs {
		out[i] = Interface{Name: d.Name, Description: d.Description}
	}
	return out, nil
}
