// Package pcapfile reads and writes the classic libpcap capture file
// format (spec §6): a 24-byte global header followed by a sequence of
// per-packet records. Only LINKTYPE_ETHERNET is supported.
package pcapfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

// magicLittleEndian is the classic pcap magic number when the file was
// written in the native byte order of a little-endian host (the
// overwhelmingly common case, and the only one this package writes).
const magicLittleEndian = 0xa1b2c3d4

// magicBigEndian is the byte-swapped magic seen in a file written on a
// big-endian host; reading it tells us to byte-swap every other field.
const magicBigEndian = 0xd4c3b2a1

// LinktypeEthernet is the only link type this package accepts on read.
const LinktypeEthernet = 1

const (
	globalHeaderLen = 24
	recordHeaderLen = 16
)

// GlobalHeader is the classic pcap file header.
type GlobalHeader struct {
	VersionMajor uint16
	VersionMinor uint16
	ThisZone     int32
	SigFigs      uint32
	SnapLen      uint32
	LinkType     uint32
}

// Record is one captured frame plus its classic-pcap record metadata.
type Record struct {
	TimeSec   int64
	TimeUsec  int64
	CapLen    uint32
	OrigLen   uint32
	Data      []byte
}

// Reader reads sequential Records from a classic pcap file.
type Reader struct {
	r      io.Reader
	order  binary.ByteOrder
	Header GlobalHeader
}

// NewReader reads and validates the global header from r, returning a
// Reader positioned at the first packet record. It returns an error
// (rather than panicking or silently proceeding) if the link type is
// anything other than Ethernet (spec §6: "other link types cause a fatal
// error").
func NewReader(r io.Reader) (*Reader, error) {
	var raw [globalHeaderLen]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, fmt.Errorf("pcapfile: reading global header: %w", err)
	}

	magic := binary.LittleEndian.Uint32(raw[0:4])
	var order binary.ByteOrder
	switch magic {
	case magicLittleEndian:
		order = binary.LittleEndian
	case magicBigEndian:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("pcapfile: bad magic number 0x%08x", magic)
	}

	h := GlobalHeader{
		VersionMajor: order.Uint16(raw[4:6]),
		VersionMinor: order.Uint16(raw[6:8]),
		ThisZone:     int32(order.Uint32(raw[8:12])),
		SigFigs:      order.Uint32(raw[12:16]),
		SnapLen:      order.Uint32(raw[16:20]),
		LinkType:     order.Uint32(raw[20:24]),
	}
	if h.LinkType != LinktypeEthernet {
		return nil, fmt.Errorf("pcapfile: unsupported link type %d, only LINKTYPE_ETHERNET (1) is supported", h.LinkType)
	}

	return &Reader{r: r, order: order, Header: h}, nil
}

// ReadRecord reads the next packet record. It returns io.EOF when the
// file is exhausted.
func (r *Reader) ReadRecord() (*Record, error) {
	var raw [recordHeaderLen]byte
	if _, err := io.ReadFull(r.r, raw[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("pcapfile: truncated record header: %w", err)
		}
		return nil, err
	}

	rec := &Record{
		TimeSec:  int64(r.order.Uint32(raw[0:4])),
		TimeUsec: int64(r.order.Uint32(raw[4:8])),
		CapLen:   r.order.Uint32(raw[8:12]),
		OrigLen:  r.order.Uint32(raw[12:16]),
	}
	if rec.CapLen > r.Header.SnapLen && r.Header.SnapLen != 0 {
		return nil, fmt.Errorf("pcapfile: record captured length %d exceeds snaplen %d", rec.CapLen, r.Header.SnapLen)
	}

	data := make([]byte, rec.CapLen)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, fmt.Errorf("pcapfile: truncated record data: %w", err)
	}
	rec.Data = data
	return rec, nil
}

// Writer writes a classic pcap file in native (little-endian) byte order.
type Writer struct {
	w io.Writer
}

// NewWriter writes the global header (snapLen, Ethernet link type) and
// returns a Writer ready for WriteRecord calls.
func NewWriter(w io.Writer, snapLen uint32) (*Writer, error) {
	var raw [globalHeaderLen]byte
	binary.LittleEndian.PutUint32(raw[0:4], magicLittleEndian)
	binary.LittleEndian.PutUint16(raw[4:6], 2)
	binary.LittleEndian.PutUint16(raw[6:8], 4)
	binary.LittleEndian.PutUint32(raw[16:20], snapLen)
	binary.LittleEndian.PutUint32(raw[20:24], LinktypeEthernet)
	if _, err := w.Write(raw[:]); err != nil {
		return nil, fmt.Errorf("pcapfile: writing global header: %w", err)
	}
	return &Writer{w: w}, nil
}

// WriteRecord appends one packet record.
func (w *Writer) WriteRecord(rec *Record) error {
	var raw [recordHeaderLen]byte
	binary.LittleEndian.PutUint32(raw[0:4], uint32(rec.TimeSec))
	binary.LittleEndian.PutUint32(raw[4:8], uint32(rec.TimeUsec))
	binary.LittleEndian.PutUint32(raw[8:12], uint32(len(rec.Data)))
	binary.LittleEndian.PutUint32(raw[12:16], rec.OrigLen)
	if _, err := w.w.Write(raw[:]); err != nil {
		return fmt.Errorf("pcapfile: writing record header: %w", err)
	}
	if _, err := w.w.Write(rec.Data); err != nil {
		return fmt.Errorf("pcapfile: writing record data: %w", err)
	}
	return nil
}
