// Package tui is the interactive terminal view (spec §1 non-goal #1
// names the whole UI layer external; this is that layer's one concrete
// implementation). It implements view.Sink by feeding snapshots into a
// bubbletea program over a channel, mirroring sstop's
// Model/Update/View/WaitForSnapshot split.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DrJosh9000/capview/internal/decode"
	"github.com/DrJosh9000/capview/internal/view"
)

// Mode tracks which table is on screen; the -s flag (spec §6) picks the
// initial mode.
type Mode int

const (
	ModePackets Mode = iota
	ModeFlows
	ModeHosts
)

// snapshotMsg delivers a new view.Snapshot to the running program.
type snapshotMsg view.Snapshot

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	tabStyle    = lipgloss.NewStyle().Padding(0, 1)
	activeTab   = tabStyle.Bold(true).Underline(true)
)

// model is the bubbletea Model. Its zero value is not usable; use New.
type model struct {
	width, height int
	mode          Mode
	snapshot      view.Snapshot
	snapCh        <-chan view.Snapshot
	quitting      bool
}

// New creates a model that reads snapshots from ch. statsFirst opens
// directly on the flow table when true (spec §6 -s).
func New(ch <-chan view.Snapshot, statsFirst bool) tea.Model {
	m := model{snapCh: ch}
	if statsFirst {
		m.mode = ModeFlows
	}
	return m
}

// waitForSnapshot returns a tea.Cmd blocking on the next snapshot,
// quitting cleanly when the channel is closed (the capture loop stopped).
func waitForSnapshot(ch <-chan view.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return tea.Quit()
		}
		return snapshotMsg(snap)
	}
}

func (m model) Init() tea.Cmd {
	return waitForSnapshot(m.snapCh)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case snapshotMsg:
		m.snapshot = view.Snapshot(msg)
		return m, waitForSnapshot(m.snapCh)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "1":
			m.mode = ModePackets
		case "2":
			m.mode = ModeFlows
		case "3":
			m.mode = ModeHosts
		case "tab":
			m.mode = (m.mode + 1) % 3
		}
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.mode {
	case ModePackets:
		b.WriteString(renderPackets(m.snapshot.Packets))
	case ModeFlows:
		b.WriteString(renderFlows(m.snapshot.Flows))
	case ModeHosts:
		b.WriteString(renderHosts(m.snapshot.Hosts))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("1 packets · 2 flows · 3 hosts · tab next · q quit"))
	return b.String()
}

func (m model) renderTabs() string {
	labels := []string{"packets", "flows", "hosts"}
	var parts []string
	for i, l := range labels {
		if Mode(i) == m.mode {
			parts = append(parts, activeTab.Render(l))
		} else {
			parts = append(parts, tabStyle.Render(l))
		}
	}
	return strings.Join(parts, "")
}

func renderPackets(rows []view.PacketRow) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %-15s %-6s %s", "SEQ", "TIME", "LEN", "SUMMARY")))
	b.WriteString("\n")
	for _, r := range rows {
		line := fmt.Sprintf("%-6d %-15s %-6d %s",
			r.Seq, r.Timestamp.Format("15:04:05.000"), r.Length, r.Summary)
		if r.ErrKind != decode.NoErr {
			line += "  " + errStyle.Render(r.ErrDetail)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func renderFlows(rows []view.FlowRow) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-17s %-17s %-12s %s", "SRC", "DST", "STATE", "PACKETS")))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-17s %-17s %-12s %d\n",
			fmt.Sprintf("%s:%d", r.Src, r.SrcPort),
			fmt.Sprintf("%s:%d", r.Dst, r.DstPort),
			r.State, r.Packets))
	}
	return b.String()
}

func renderHosts(rows []view.HostRow) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-17s %-20s %-6s %s", "ADDR", "MAC", "LOCAL", "NAME")))
	b.WriteString("\n")
	for _, r := range rows {
		mac := ""
		if r.MAC != nil {
			mac = r.MAC.String()
		}
		b.WriteString(fmt.Sprintf("%-17s %-20s %-6t %s\n", r.Addr, mac, r.Local, r.Name))
	}
	return b.String()
}

// Sink adapts a running bubbletea Program to view.Sink: Render pushes a
// snapshot onto the channel the model was constructed with, never
// blocking the capture event loop for longer than a single channel send.
type Sink struct {
	ch chan<- view.Snapshot
}

// NewSink returns a Sink and the receive end of its channel, which
// should be passed to New and then into tea.NewProgram.
func NewSink(buffer int) (*Sink, chan view.Snapshot) {
	ch := make(chan view.Snapshot, buffer)
	return &Sink{ch: ch}, ch
}

func (s *Sink) Render(snap view.Snapshot) error {
	select {
	case s.ch <- snap:
	default:
		// a UI refresh tick is always superseded by the next one; drop
		// rather than block the capture loop on a slow terminal.
	}
	return nil
}

// Close closes the snapshot channel, causing waitForSnapshot to quit the
// bubbletea program.
func (s *Sink) Close() {
	close(s.ch)
}
