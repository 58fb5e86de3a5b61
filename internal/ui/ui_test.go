package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateHash(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0x1234567890abcdef1234567890abcdef12345678", "0x1234…5678"},
		{"0x1234", "0x1234"},
		{"", ""},
		{"0x12345678", "0x12345678"}, // exactly at the limit
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateHash(tt.in))
	}
}

func TestPadR(t *testing.T) {
	assert.Equal(t, "ab   ", padR("ab", 5))
	assert.Equal(t, "abcdef", padR("abcdef", 3)) // never truncates

	// Styled content pads by display width, not byte length.
	styled := StyleAddress.Render("ab")
	padded := padR(styled, 5)
	assert.True(t, strings.HasSuffix(padded, "   "))
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "NAME", Width: 10},
		{Title: "ADDRESS", Width: 14},
	})
	tbl.AddRow(Row{"alice", "0x1234…5678"})
	tbl.AddRow(Row{"bob"}) // short row: missing cells render empty

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4) // header, divider, two rows
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[0], "ADDRESS")
	assert.Contains(t, lines[2], "alice")
	assert.Contains(t, lines[3], "bob")
}

func TestTableTruncatesWideCells(t *testing.T) {
	tbl := NewTable([]Column{{Title: "X", Width: 4}})
	tbl.AddRow(Row{"overflowing"})

	out := tbl.Render()
	assert.Contains(t, out, "over")
	assert.NotContains(t, out, "overflowing")
}

func TestKeyValueBlock(t *testing.T) {
	out := KeyValueBlock("Wallet", [][2]string{
		{"Name", "alice"},
		{"Address", "0x1234"},
	})
	assert.Contains(t, out, "Wallet")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "0x1234")
}

func TestBannerMentionsTempo(t *testing.T) {
	out := Banner()
	assert.Contains(t, out, "Payments-first chain CLI")
}

func TestWatchModelEventPrepend(t *testing.T) {
	var m tea.Model = WatchModel{Scope: "token"}

	m, _ = m.Update(EventMsg{TxHash: "0xaaa", Name: "Transfer", BlockNum: 1})
	m, _ = m.Update(EventMsg{TxHash: "0xbbb", Name: "Approval", BlockNum: 2})

	wm := m.(WatchModel)
	require.Len(t, wm.Rows, 2)
	assert.Equal(t, "Approval", wm.Rows[0].Name) // newest first
	assert.Equal(t, "Transfer", wm.Rows[1].Name)
}

func TestWatchModelRowCap(t *testing.T) {
	var m tea.Model = WatchModel{}
	for i := 0; i < 250; i++ {
		m, _ = m.Update(EventMsg{BlockNum: uint64(i)})
	}
	wm := m.(WatchModel)
	assert.Len(t, wm.Rows, 200)
	assert.Equal(t, uint64(249), wm.Rows[0].BlockNum)
}

func TestWatchModelQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			var m tea.Model = WatchModel{}
			keyMsg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
			switch key {
			case "esc":
				keyMsg = tea.KeyMsg{Type: tea.KeyEsc}
			case "ctrl+c":
				keyMsg = tea.KeyMsg{Type: tea.KeyCtrlC}
			}

			updated, cmd := m.Update(keyMsg)
			assert.True(t, updated.(WatchModel).Quitting)
			require.NotNil(t, cmd)
		})
	}
}

func TestWatchModelCursorBounds(t *testing.T) {
	var m tea.Model = WatchModel{}
	m, _ = m.Update(EventMsg{Name: "A"})
	m, _ = m.Update(EventMsg{Name: "B"})

	// Cursor cannot go above the first row.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.(WatchModel).cursor)

	// Moves down but stops at the last row.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.(WatchModel).cursor)
}

func TestWatchModelStatusAndView(t *testing.T) {
	var m tea.Model = WatchModel{Scope: "token", RPC: "http://localhost:8545"}
	m, _ = m.Update(StatusMsg{BlockNum: 42})

	view := m.(WatchModel).View()
	assert.Contains(t, view, "token")
	assert.Contains(t, view, "block #42")
	assert.Contains(t, view, "Waiting for events")

	m, _ = m.Update(StatusMsg{ErrMsg: "rpc unreachable"})
	assert.Contains(t, m.(WatchModel).View(), "rpc unreachable")
}

func TestWatchModelViewQuitting(t *testing.T) {
	m := WatchModel{Quitting: true}
	assert.Equal(t, "", m.View())
}
