package capture

import (
	"errors"
	"io"
	"time"

	"github.com/DrJosh9000/capview/internal/logx"
)

// refreshInterval is the recurring UI-refresh alarm (spec §5: "a
// 1-second recurring alarm drives UI refresh; it does not influence
// decoder or analyzer state").
const refreshInterval = time.Second

// Loop is the single-threaded event loop (spec §5). Decoding, analysis,
// and UI refresh all happen on the goroutine that calls Run; the only
// other goroutine this package starts is the frame reader, which does
// nothing but block in Driver.ReadFrame and hand frames to Run over a
// channel — the Go equivalent of multiplexing on {capture-fd, input-fd}
// with a blocking poll.
type Loop struct {
	OnFrame   func(Frame)
	OnRefresh func()
	OnError   func(error)

	driver  Driver
	frameCh chan Frame
	errCh   chan error
	done    chan struct{}

	stopc chan struct{} // closed by Stop to end the reader goroutine
}

// NewLoop constructs a Loop reading from driver. Callers supply
// OnFrame/OnRefresh before calling Run. Run does not call OnError: a
// driver error ends Run and is returned to its caller.
func NewLoop(driver Driver) *Loop {
	return &Loop{
		driver:  driver,
		frameCh: make(chan Frame, 64),
		errCh:   make(chan error, 1),
		done:    make(chan struct{}),
		stopc:   make(chan struct{}),
	}
}

// Run pumps frames and refresh ticks until stop is closed or the
// driver reports a fatal error (spec §6: "capture-side errors ... are
// fatal"). stop is typically closed on SIGINT/SIGTERM by the caller;
// this function never installs its own signal handler so the caller
// controls exactly which signals mean "quit".
func (l *Loop) Run(stop <-chan struct{}) error {
	go l.readFrames()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case f, ok := <-l.frameCh:
			if !ok {
				return nil
			}
			if l.OnFrame != nil {
				l.OnFrame(f)
			}
		case err := <-l.errCh:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case <-ticker.C:
			if l.OnRefresh != nil {
				l.OnRefresh()
			}
		case <-stop:
			close(l.stopc)
			<-l.done
			return nil
		}
	}
}

// readFrames is the sole goroutine besides Run; it blocks in
// Driver.ReadFrame and forwards results, exiting when stopc is closed.
func (l *Loop) readFrames() {
	defer close(l.done)
	for {
		select {
		case <-l.stopc:
			return
		default:
		}
		f, err := l.driver.ReadFrame()
		if err != nil {
			select {
			case l.errCh <- err:
			case <-l.stopc:
			}
			return
		}
		select {
		case l.frameCh <- f:
		case <-l.stopc:
			return
		}
	}
}

// logDriverClose closes d and logs, rather than returns, any close
// failure, so that failure is visible without becoming a second fatal
// error. Nothing in the repository calls it.
func logDriverClose(d Driver) {
	if err := d.Close(); err != nil {
		logx.Warn("capture: closing driver", logx.KeyErr, err)
	}
}
