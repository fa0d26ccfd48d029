package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpSectionStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	helpKeyStyle     = lipgloss.NewStyle().Foreground(ColorTextPrimary).Bold(true).Width(14)
	helpDescStyle    = lipgloss.NewStyle().Foreground(ColorTextSecondary)
)

// renderHelpOverlay centers the key reference over the whole screen.
func (m Model) renderHelpOverlay() string {
	lines := []string{helpSectionStyle.Render("Keyboard Shortcuts")}
	for _, sec := range m.keys.helpSections() {
		lines = append(lines, "", LabelStyle.Render(strings.ToUpper(sec.title)))
		for _, b := range sec.bindings {
			h := b.Help()
			lines = append(lines, "  "+helpKeyStyle.Render(h.Key)+helpDescStyle.Render(h.Desc))
		}
	}
	lines = append(lines, "", LabelStyle.Render("? or Esc to close"))

	box := helpBoxStyle.Render(strings.Join(lines, "\n"))
	if checkRenderTarget(m.width, m.height) != nil {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg))
}
