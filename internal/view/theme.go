// Package view renders trips, itineraries and journals for the terminal.
package view

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme names accepted by ThemeByName.
const (
	ThemePlain = "plain"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Theme holds the styles used by the Renderer.
type Theme struct {
	Name     string
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Heading  lipgloss.Style
	Accent   lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Warning  lipgloss.Style
	Block    lipgloss.Style
}

// PlainTheme applies no styling at all.
func PlainTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{
		Name:     ThemePlain,
		Title:    s,
		Subtitle: s,
		Heading:  s,
		Accent:   s,
		Label:    s,
		Muted:    s,
		Warning:  s,
		Block:    s,
	}
}

// LightTheme is tuned for light terminal backgrounds.
func LightTheme(w io.Writer) Theme {
	return colored(lipgloss.NewRenderer(w), ThemeLight, palette{
		primary: "#101F38",
		accent:  "#558B2F",
		muted:   "#5C6670",
		warning: "#B26A00",
		border:  "#C4CAD1",
	})
}

// DarkTheme is tuned for dark terminal backgrounds.
func DarkTheme(w io.Writer) Theme {
	return colored(lipgloss.NewRenderer(w), ThemeDark, palette{
		primary: "#8BC34A",
		accent:  "#4DB6AC",
		muted:   "#9AA5B1",
		warning: "#FFC107",
		border:  "#2A3850",
	})
}

// ThemeByName resolves a --theme flag value. Output written to w decides
// whether colors are emitted.
func ThemeByName(name string, w io.Writer) (Theme, error) {
	switch name {
	case ThemePlain:
		return PlainTheme(), nil
	case ThemeLight, "":
		return LightTheme(w), nil
	case ThemeDark:
		return DarkTheme(w), nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q (want plain, light or dark)", name)
}

type palette struct {
	primary, accent, muted, warning, border lipgloss.Color
}

func colored(r *lipgloss.Renderer, name string, p palette) Theme {
	return Theme{
		Name:     name,
		Title:    r.NewStyle().Bold(true).Foreground(p.primary),
		Subtitle: r.NewStyle().Italic(true).Foreground(p.muted),
		Heading:  r.NewStyle().Bold(true).Foreground(p.accent),
		Accent:   r.NewStyle().Foreground(p.accent),
		Label:    r.NewStyle().Bold(true),
		Muted:    r.NewStyle().Foreground(p.muted),
		Warning:  r.NewStyle().Bold(true).Foreground(p.warning),
		Block:    r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1),
	}
}
