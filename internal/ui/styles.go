package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green  — success, incoming
	ColorWarning   = lipgloss.Color("#FFB800") // yellow — pending, outgoing
	ColorError     = lipgloss.Color("#FF4444") // red    — error, revert
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan   — addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold — amounts
	ColorMeta      = lipgloss.Color("#555555") // dim gray  — timestamps, metadata
	ColorBorder    = lipgloss.Color("#1E3A5F") // dark blue — UI chrome
	ColorEvent     = lipgloss.Color("#9B5DE5") // purple    — event and contract names
	ColorInfo      = lipgloss.Color("#4EA8DE") // blue      — status lines
	ColorHighlight = lipgloss.Color("#F15BB5") // pink      — selected rows
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleEvent   = lipgloss.NewStyle().Foreground(ColorEvent).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorEvent).
			Bold(true).
			MarginBottom(1)

	StyleDim = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Banner returns the tempo ASCII banner.
func Banner() string {
	art := `
  ████████╗███████╗███╗   ███╗██████╗  ██████╗
  ╚══██╔══╝██╔════╝████╗ ████║██╔══██╗██╔═══██╗
     ██║   █████╗  ██╔████╔██║██████╔╝██║   ██║
     ██║   ██╔══╝  ██║╚██╔╝██║██╔═══╝ ██║   ██║
     ██║   ███████╗██║ ╚═╝ ██║██║     ╚██████╔╝
     ╚═╝   ╚══════╝╚═╝     ╚═╝╚═╝      ╚═════╝`

	tagline := StyleMeta.Render("     Payments-first chain CLI  ⚡  v0.1.0")
	features := StyleMeta.Render("  ✦ fee tokens  ✦ batch calls  ✦ passkey wallets")

	return StyleEvent.Render(art) + "\n" + tagline + "\n" + features + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// Event formats a contract or event name.
func Event(e string) string { return StyleEvent.Render(e) }

// Info formats an informational message.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a follow-up suggestion.
func Hint(msg string) string { return StyleMeta.Render("  ↳ " + msg) }

// DangerBox wraps content in a red-bordered box for sensitive output.
func DangerBox(content string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 2).
		Render(content)
}

// TruncateHash shortens an address or hash for display: 0x1234…5678.
func TruncateHash(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

// padR pads rendered content to n display columns, accounting for ANSI codes.
func padR(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	for i := w; i < n; i++ {
		s += " "
	}
	return s
}
