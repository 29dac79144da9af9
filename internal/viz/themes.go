package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the palette of the live view.
type Theme struct {
	Name    string
	Title   lipgloss.Color
	Canvas  lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Running lipgloss.Color
	Paused  lipgloss.Color
	Stopped lipgloss.Color
}

var Themes = []Theme{
	{
		Name:    "cyberpunk",
		Title:   lipgloss.Color("#ff00ff"),
		Canvas:  lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ffff00"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Running: lipgloss.Color("#00ff00"),
		Paused:  lipgloss.Color("#ff8800"),
		Stopped: lipgloss.Color("#ff0000"),
	},
	{
		Name:    "retro",
		Title:   lipgloss.Color("#00ff00"),
		Canvas:  lipgloss.Color("#00cc00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Running: lipgloss.Color("#88ff88"),
		Paused:  lipgloss.Color("#ffff00"),
		Stopped: lipgloss.Color("#ff0000"),
	},
	{
		Name:    "minimal",
		Title:   lipgloss.Color("#ffffff"),
		Canvas:  lipgloss.Color("#cccccc"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Running: lipgloss.Color("#00ff00"),
		Paused:  lipgloss.Color("#ffaa00"),
		Stopped: lipgloss.Color("#ff0000"),
	},
	{
		Name:    "ocean",
		Title:   lipgloss.Color("#00a8cc"),
		Canvas:  lipgloss.Color("#0077be"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Running: lipgloss.Color("#00ff88"),
		Paused:  lipgloss.Color("#ffcc00"),
		Stopped: lipgloss.Color("#ff4444"),
	},
	{
		Name:    "sunset",
		Title:   lipgloss.Color("#ff6b6b"),
		Canvas:  lipgloss.Color("#feca57"),
		Accent:  lipgloss.Color("#ff9ff3"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Running: lipgloss.Color("#5fd068"),
		Paused:  lipgloss.Color("#ffc048"),
		Stopped: lipgloss.Color("#ff4757"),
	},
}

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
