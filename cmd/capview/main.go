// Command capview is a live-capture network traffic monitor: it reads
// frames from a link-layer device or a classic pcap file, runs them
// through a BPF-classic filter, decodes them, tracks flows and hosts,
// and renders the result as a terminal UI or a plain-text stream.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DrJosh9000/capview/internal/capture"
	"github.com/DrJosh9000/capview/internal/decode"
	"github.com/DrJosh9000/capview/internal/filter"
	"github.com/DrJosh9000/capview/internal/geoip"
	"github.com/DrJosh9000/capview/internal/logx"
	"github.com/DrJosh9000/capview/internal/session"
	"github.com/DrJosh9000/capview/internal/tui"
	"github.com/DrJosh9000/capview/internal/view"
)

type flags struct {
	iface      string
	readFile   string
	filterFile string
	noPromisc  bool
	statsFirst bool
	plainText  bool
	listIfaces bool
	noGeo      bool
	verbose    bool
	dump       bool
	dumpInts   bool
}

func main() {
	var f flags

	root := &cobra.Command{
		Use:           "capview",
		Short:         "Live-capture network traffic monitor",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}

	fs := root.Flags()
	fs.StringVarP(&f.iface, "interface", "i", "", "capture device")
	fs.StringVarP(&f.readFile, "read", "r", "", "read capture file (mutually exclusive with -i)")
	fs.StringVarP(&f.filterFile, "filter", "f", "", "load filter source")
	fs.BoolVarP(&f.noPromisc, "no-promisc", "p", false, "disable promiscuous mode")
	fs.BoolVarP(&f.statsFirst, "stats", "s", false, "start on statistics view")
	fs.BoolVarP(&f.plainText, "text", "t", false, "plain text output, no terminal UI")
	fs.BoolVarP(&f.listIfaces, "list", "l", false, "list interfaces and exit")
	fs.BoolVarP(&f.noGeo, "no-geo", "G", false, "disable geolocation")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "verbose logging")
	fs.BoolVarP(&f.dump, "dump", "d", false, "print compiled filter as a Go composite literal (not a C initializer) and exit")
	fs.BoolVar(&f.dumpInts, "dd", false, "print compiled filter as integers and exit")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "capview:", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	if f.verbose {
		logx.Init(logx.Config{Level: "debug"})
	}

	if f.listIfaces {
		return listInterfaces()
	}

	if f.iface != "" && f.readFile != "" {
		return fmt.Errorf("-i and -r are mutually exclusive")
	}

	var prog []filter.Instruction
	if f.filterFile != "" {
		src, err := os.ReadFile(f.filterFile)
		if err != nil {
			return fmt.Errorf("reading filter source: %w", err)
		}
		prog, err = filter.Assemble(f.filterFile, string(src))
		if err != nil {
			return err
		}
	}

	if f.dump || f.dumpInts {
		format := filter.AsGoLiteral
		if f.dumpInts {
			format = filter.AsInts
		}
		fmt.Println(filter.Dump(prog, format))
		return nil
	}

	driver, err := openDriver(f, prog)
	if err != nil {
		return err
	}
	defer driver.Close()

	sess := session.New(resolveGeo(f))

	sink, snapCh, closeSink := buildSink(f)
	defer closeSink()

	loop := capture.NewLoop(driver)
	loop.OnFrame = func(fr capture.Frame) {
		pkt := sess.Ingest(fr.Timestamp.Unix(), int64(fr.Timestamp.Nanosecond()/1000), fr.Data)
		if pkt.ErrKind != decode.NoErr {
			logx.Debug("decode error", logx.KeyErr, pkt.ErrDetail)
		}
	}
	loop.OnRefresh = func() {
		hosts := sess.Host.Local()
		for addr, h := range sess.Host.Remote() {
			hosts[addr] = h
		}
		snap := view.BuildSnapshot(sess.Chain.Packets(), sess.Flow.GetSessions(), hosts, f.statsFirst)
		if err := sink.Render(snap); err != nil {
			logx.Warn("render", logx.KeyErr, err)
		}
	}

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()

	if f.plainText {
		return loop.Run(stop)
	}

	program := tea.NewProgram(tui.New(snapCh, f.statsFirst))
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(stop) }()
	if _, err := program.Run(); err != nil {
		return err
	}
	close(stop)
	return <-errc
}

func openDriver(f flags, prog []filter.Instruction) (capture.Driver, error) {
	var (
		driver capture.Driver
		err    error
	)
	switch {
	case f.readFile != "":
		file, openErr := os.Open(f.readFile)
		if openErr != nil {
			return nil, fmt.Errorf("opening %q: %w", f.readFile, openErr)
		}
		driver, err = capture.OpenFile(file)
	case f.iface != "":
		driver, err = capture.OpenLive(f.iface, !f.noPromisc)
	default:
		return nil, fmt.Errorf("one of -i or -r is required")
	}
	if err != nil {
		return nil, err
	}
	if prog != nil {
		if err := driver.SetFilter(prog); err != nil {
			driver.Close()
			return nil, fmt.Errorf("installing filter: %w", err)
		}
	}
	return driver, nil
}

// resolveGeo picks the geolocation lookup. -G always disables it; absent
// that, a MaxMind database is used only if CAPVIEW_GEOIP_DB points at
// one, since no CLI flag ships a database path (spec §6 names no such
// flag, and this system ships no database file).
func resolveGeo(f flags) geoip.Lookup {
	if f.noGeo {
		return geoip.Noop{}
	}
	path := os.Getenv("CAPVIEW_GEOIP_DB")
	if path == "" {
		return geoip.Noop{}
	}
	db, err := geoip.OpenMaxMindDB(path)
	if err != nil {
		logx.Warn("geoip: opening database, falling back to disabled", logx.KeyErr, err)
		return geoip.Noop{}
	}
	return db
}

func listInterfaces() error {
	ifaces, err := capture.ListInterfaces()
	if err != nil {
		return err
	}
	for _, i := range ifaces {
		fmt.Printf("%s\t%s\n", i.Name, i.Description)
	}
	return nil
}

func buildSink(f flags) (view.Sink, chan view.Snapshot, func()) {
	if f.plainText {
		return view.NewPlainText(os.Stdout), nil, func() {}
	}
	s, ch := tui.NewSink(1)
	return s, ch, s.Close
}

