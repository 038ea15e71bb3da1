package capture

import (
	"fmt"
	"io"
	"time"

	"github.com/DrJosh9000/capview/internal/filter"
	"github.com/DrJosh9000/capview/internal/pcapfile"
)

// FileDriver replays frames from a classic pcap file (spec §6's -r
// flag), applying any installed filter itself since there is no kernel
// to push it into.
type FileDriver struct {
	r    io.ReadCloser
	pr   *pcapfile.Reader
	prog []filter.Instruction
}

// OpenFile opens a pcap file for replay.
func OpenFile(r io.ReadCloser) (*FileDriver, error) {
	pr, err := pcapfile.NewReader(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	return &FileDriver{r: r, pr: pr}, nil
}

// ReadFrame implements Driver. It skips records the installed filter
// rejects, returning io.EOF once the file is exhausted.
func (d *FileDriver) ReadFrame() (Frame, error) {
	for {
		rec, err := d.pr.ReadRecord()
		if err != nil {
			return Frame{}, err
		}
		if d.prog != nil && filter.Run(d.prog, rec.Data) == 0 {
			continue
		}
		return Frame{
			Timestamp: time.Unix(rec.TimeSec, rec.TimeUsec*1000),
			OrigLen:   int(rec.OrigLen),
			Data:      rec.Data,
		}, nil
	}
}

// SetFilter implements Driver by keeping the program to apply on each
// subsequent ReadRecord.
func (d *FileDriver) SetFilter(prog []filter.Instruction) error {
	if len(prog) > filter.MaxProgramLength {
		return fmt.Errorf("capture: filter program too long (%d instructions)", len(prog))
	}
	d.prog = prog
	return nil
}

// Close implements Driver.
func (d *FileDriver) Close() error {
	return d.r.Close()
}
