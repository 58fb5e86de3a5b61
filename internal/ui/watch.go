package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// EventMsg is sent when a new decoded log arrives during polling.
type EventMsg struct {
	TxHash   string
	Contract string // registered contract name, or truncated address
	Name     string // event name, or "unknown" for undecodable logs
	Summary  string // rendered args, e.g. "from=0x12…34 amount=100"
	BlockNum uint64
}

// StatusMsg updates the polling status bar.
type StatusMsg struct {
	BlockNum uint64
	Fetching bool
	ErrMsg   string
}

// WatchModel is the Bubble Tea model for the live decoded-event stream.
type WatchModel struct {
	Scope    string // what is being watched, e.g. "token" or an address
	RPC      string
	Rows     []EventMsg
	cursor   int
	Status   StatusMsg
	Frame    int
	Quitting bool
	flash    string
}

type watchTickMsg struct{}

func watchSpinTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return watchTickMsg{}
	})
}

func (m WatchModel) Init() tea.Cmd { return watchSpinTick() }

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.Rows)-1 {
				m.cursor++
			}

		case "c":
			if m.cursor < len(m.Rows) {
				hash := m.Rows[m.cursor].TxHash
				if hash == "" {
					m.flash = "No hash available"
					break
				}
				if err := copyToClipboard(hash); err == nil {
					m.flash = "Copied: " + TruncateHash(hash)
				} else {
					m.flash = "Copy failed"
				}
			}
		}

	case watchTickMsg:
		m.Frame = (m.Frame + 1) % len(spinnerFrames)
		return m, watchSpinTick()

	case EventMsg:
		// New events prepend so latest is at top.
		m.Rows = append([]EventMsg{msg}, m.Rows...)
		// Cap at 200 rows.
		if len(m.Rows) > 200 {
			m.Rows = m.Rows[:200]
		}

	case StatusMsg:
		m.Status = msg
	}

	return m, nil
}

func (m WatchModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	spin := spinnerFrames[m.Frame]

	title := fmt.Sprintf("👁  Live Events  ·  %s  ·  %s", m.Scope, m.RPC)
	sb.WriteString(StyleTitle.Render(title) + "\n")

	if m.Status.ErrMsg != "" {
		sb.WriteString(StyleError.Render("✗ "+m.Status.ErrMsg) + "\n\n")
	} else if m.Status.Fetching {
		sb.WriteString(StyleInfo.Render(fmt.Sprintf("%c polling block #%d…", spin, m.Status.BlockNum)) + "\n\n")
	} else if m.Status.BlockNum > 0 {
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  last checked: block #%d", m.Status.BlockNum)) + "\n\n")
	} else {
		sb.WriteString(StyleMeta.Render("  connecting…") + "\n\n")
	}

	const (
		wBlk   = 10
		wHash  = 14
		wCtr   = 14
		wEvent = 18
	)
	sep := StyleMeta.Render(strings.Repeat("─", wBlk+wHash+wCtr+wEvent+40))

	sb.WriteString(
		padR(StyleDim.Render("BLOCK"), wBlk) + "  " +
			padR(StyleDim.Render("TX"), wHash) + "  " +
			padR(StyleDim.Render("CONTRACT"), wCtr) + "  " +
			padR(StyleDim.Render("EVENT"), wEvent) + "  " +
			StyleDim.Render("ARGS") + "\n",
	)
	sb.WriteString(sep + "\n")

	if len(m.Rows) == 0 {
		sb.WriteString(StyleMeta.Render("  Waiting for events…") + "\n")
	} else {
		for i, row := range m.Rows {
			line :=
				padR(StyleMeta.Render(fmt.Sprintf("#%d", row.BlockNum)), wBlk) + "  " +
					padR(StyleAddress.Render(TruncateHash(row.TxHash)), wHash) + "  " +
					padR(StyleEvent.Render(row.Contract), wCtr) + "  " +
					padR(StyleValue.Render(row.Name), wEvent) + "  " +
					StyleMeta.Render(row.Summary)

			if i == m.cursor {
				sb.WriteString(StyleSelected.Render(line) + "\n")
			} else {
				sb.WriteString(line + "\n")
			}
		}
		sb.WriteString(sep + "\n")
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  %d event(s) seen", len(m.Rows))) + "\n")
	}

	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ " + m.flash))
	} else {
		sb.WriteString(watchControls())
	}
	sb.WriteString("\n")

	return sb.String()
}

func watchControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ ↑↓ ]"))
	sb.WriteString(StyleMeta.Render(" navigate"))
	sb.WriteString(sep)
	sb.WriteString(StyleWarning.Render("[ c ]"))
	sb.WriteString(StyleMeta.Render(" copy tx hash"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ]"))
	sb.WriteString(StyleMeta.Render(" quit"))
	return sb.String()
}

// RunWatch starts the watch TUI and returns the running program so the
// caller can feed it EventMsg and StatusMsg from its polling loop.
func RunWatch(m WatchModel) *tea.Program {
	return tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithAltScreen())
}
