package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/itpctl/internal/discovery"
	"github.com/muurk/itpctl/internal/server"
	"github.com/muurk/itpctl/internal/ui"
)

// MaxEvents caps the scrollback kept in memory
const MaxEvents = 1000

type state int

const (
	stateScanning state = iota
	statePicking
	stateConnecting
	stateWatching
	stateEnded
)

// Messages for async operations
type scanDoneMsg struct {
	services []*discovery.Service
	err      error
}

type connectedMsg struct{ conn *Conn }

type connectFailedMsg struct{ err error }

type eventMsg struct{ event server.Event }

type streamEndMsg struct{ err error }

// Options configure a Model
type Options struct {
	// URL skips discovery and watches this tap directly
	URL string

	// Scanner browses for taps when URL is empty
	Scanner *discovery.Scanner

	Dial DialOptions
}

// serviceItem wraps a Service for bubbles/list
type serviceItem struct {
	svc *discovery.Service
}

func (i serviceItem) Title() string       { return i.svc.Instance }
func (i serviceItem) Description() string { return i.svc.URL() }
func (i serviceItem) FilterValue() string { return i.svc.Instance + " " + i.svc.Hostname }

// Model is the bubbletea model behind "itpctl watch": pick a tap found over
// mDNS, then follow its packet feed.
type Model struct {
	opts  Options
	state state
	url   string
	conn  *Conn
	err   error

	events  []server.Event
	total   int
	bad     int
	paused  bool
	showHex bool
	follow  bool

	width  int
	height int

	spinner  spinner.Model
	taps     list.Model
	feed     viewport.Model
	help     help.Model
	pickKeys pickKeyMap
	feedKeys feedKeyMap
}

// NewModel creates the model. With opts.URL set it connects straight away,
// otherwise it starts with an mDNS scan.
func NewModel(opts Options) Model {
	if opts.Scanner == nil {
		opts.Scanner = discovery.NewScanner()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.PrimaryColor)

	taps := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	taps.Title = "ITP taps"
	taps.SetShowStatusBar(false)
	taps.Styles.Title = ui.HeaderTitleStyle.Background(ui.PrimaryColor)

	m := Model{
		opts:     opts,
		state:    stateScanning,
		follow:   true,
		spinner:  s,
		taps:     taps,
		feed:     viewport.New(ui.MinTerminalWidth, 10),
		help:     help.New(),
		pickKeys: newPickKeyMap(),
		feedKeys: newFeedKeyMap(),
	}
	if opts.URL != "" {
		m.state = stateConnecting
		m.url = opts.URL
	}
	return m
}

// Init starts the scan or the connection
func (m Model) Init() tea.Cmd {
	if m.state == stateConnecting {
		return tea.Batch(m.connect(m.url), m.spinner.Tick)
	}
	return tea.Batch(m.scan(), m.spinner.Tick)
}

func (m Model) scan() tea.Cmd {
	scanner := m.opts.Scanner
	return func() tea.Msg {
		services, err := scanner.Scan(context.Background())
		return scanDoneMsg{services: services, err: err}
	}
}

func (m Model) connect(url string) tea.Cmd {
	opts := m.opts.Dial
	return func() tea.Msg {
		conn, err := Dial(context.Background(), url, opts)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		return connectedMsg{conn: conn}
	}
}

// waitForEvent reads one event; Update re-arms it after each delivery
func waitForEvent(conn *Conn) tea.Cmd {
	return func() tea.Msg {
		ev, err := conn.Next()
		if err != nil {
			return streamEndMsg{err: err}
		}
		return eventMsg{event: ev}
	}
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.taps.SetSize(msg.Width, max(msg.Height-2, 1))
		m.feed.Width = msg.Width
		m.feed.Height = max(msg.Height-4, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case spinner.TickMsg:
		if m.state != stateScanning && m.state != stateConnecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanDoneMsg:
		m.state = statePicking
		m.err = msg.err
		items := make([]list.Item, len(msg.services))
		for i, svc := range msg.services {
			items[i] = serviceItem{svc: svc}
		}
		return m, m.taps.SetItems(items)

	case connectedMsg:
		m.state = stateWatching
		m.conn = msg.conn
		m.err = nil
		return m, waitForEvent(msg.conn)

	case connectFailedMsg:
		m.state = stateEnded
		m.err = msg.err
		return m, nil

	case eventMsg:
		m.add(msg.event)
		return m, waitForEvent(m.conn)

	case streamEndMsg:
		m.state = stateEnded
		if !errors.Is(msg.err, io.EOF) {
			m.err = msg.err
		}
		return m, nil
	}

	if m.state == statePicking {
		var cmd tea.Cmd
		m.taps, cmd = m.taps.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case statePicking:
		// Keys belong to the filter input while it is open
		if m.taps.FilterState() != list.Filtering {
			switch {
			case key.Matches(msg, m.pickKeys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.pickKeys.Rescan):
				m.state = stateScanning
				m.err = nil
				return m, tea.Batch(m.scan(), m.spinner.Tick)
			case key.Matches(msg, m.pickKeys.Enter):
				item, ok := m.taps.SelectedItem().(serviceItem)
				if !ok {
					return m, nil
				}
				m.state = stateConnecting
				m.url = item.svc.URL()
				return m, tea.Batch(m.connect(m.url), m.spinner.Tick)
			}
		}
		var cmd tea.Cmd
		m.taps, cmd = m.taps.Update(msg)
		return m, cmd

	case stateWatching, stateEnded:
		switch {
		case key.Matches(msg, m.feedKeys.Quit):
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.feedKeys.Pause):
			m.paused = !m.paused
			if !m.paused {
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.feedKeys.Hex):
			m.showHex = !m.showHex
			m.refresh()
			return m, nil
		case key.Matches(msg, m.feedKeys.Clear):
			m.events = nil
			m.refresh()
			return m, nil
		case key.Matches(msg, m.feedKeys.Bottom):
			m.follow = true
			m.feed.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.feed, cmd = m.feed.Update(msg)
		m.follow = m.feed.AtBottom()
		return m, cmd
	}

	if msg.String() == "ctrl+c" || msg.String() == "q" {
		return m, tea.Quit
	}
	return m, nil
}

// add records ev, dropping the oldest event beyond MaxEvents
func (m *Model) add(ev server.Event) {
	m.total++
	if !ev.ChecksumOK {
		m.bad++
	}
	m.events = append(m.events, ev)
	if len(m.events) > MaxEvents {
		m.events = m.events[len(m.events)-MaxEvents:]
	}
	if !m.paused {
		m.refresh()
	}
}

func (m *Model) refresh() {
	rendered := make([]string, len(m.events))
	for i, ev := range m.events {
		rendered[i] = RenderEvent(ev, m.showHex)
	}
	m.feed.SetContent(strings.Join(rendered, "\n"))
	if m.follow {
		m.feed.GotoBottom()
	}
}

// Close drops the tap connection, if any
func (m Model) Close() {
	if m.conn != nil {
		_ = m.conn.Close()
	}
}

// Err returns the error that ended the session
func (m Model) Err() error { return m.err }

// Total returns how many events have been received
func (m Model) Total() int { return m.total }

// View renders the current screen
func (m Model) View() string {
	switch m.state {
	case stateScanning:
		return m.spinner.View() + " Scanning for taps (" + m.opts.Scanner.Timeout.String() + ")...\n"

	case statePicking:
		if len(m.taps.Items()) == 0 {
			lines := []string{ui.WarningTitleStyle.Render(ui.WarningMarker + " No taps found")}
			if m.err != nil {
				lines = append(lines, ui.ErrorMessageStyle.Render(m.err.Error()))
			}
			lines = append(lines,
				ui.HintItemStyle.Render("Start one with 'itpctl sniff --listen --mdns'"),
				"",
				m.help.View(m.pickKeys),
			)
			return strings.Join(lines, "\n")
		}
		return m.taps.View() + "\n" + m.help.View(m.pickKeys)

	case stateConnecting:
		return m.spinner.View() + " Connecting to " + m.url + "...\n"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusLine(),
		ui.RenderHorizontalDivider(ui.ClampWidth(m.width), "─"),
		m.feed.View(),
		m.help.View(m.feedKeys),
	)
}

func (m Model) statusLine() string {
	parts := []string{
		ui.HeaderTitleStyle.UnsetPaddingLeft().Render("ITP WATCH"),
		ui.HeaderCommandStyle.UnsetPaddingLeft().Render(m.url),
		fmt.Sprintf("packets: %d", m.total),
	}
	if m.bad > 0 {
		parts = append(parts, ui.ErrorMessageStyle.Render(fmt.Sprintf("bad checksum: %d", m.bad)))
	}
	if m.paused {
		parts = append(parts, ui.WarningTitleStyle.Render("PAUSED"))
	}
	if m.state == stateEnded {
		if m.err != nil {
			parts = append(parts, ui.ErrorTitleStyle.Render(ui.FailureMarker+" "+m.err.Error()))
		} else {
			parts = append(parts, ui.WarningTitleStyle.Render("tap closed"))
		}
	}
	return strings.Join(parts, "  ")
}

// RenderEvent formats a tap event the way sniff prints packets
func RenderEvent(ev server.Event, showHex bool) string {
	return ui.PacketLine{
		Seq:        ev.Seq,
		Kind:       ev.Kind,
		Type:       ev.Type,
		Source:     ev.Source,
		ChecksumOK: ev.ChecksumOK,
		Frame:      ev.Hex,
		Details:    ui.TextDetails(ev.Text),
	}.Render(showHex)
}
