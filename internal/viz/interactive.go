package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/physlab/internal/registry"
)

// Picker lists the catalog grouped by category and opens the chosen entry
// in a Live view. Esc inside the view returns to the list.
type Picker struct {
	reg     *registry.Registry
	entries []registry.Meta
	cursor  int
	live    *Live
	opts    []LiveOption
	width   int
	height  int
	err     error
}

func NewPicker(reg *registry.Registry, opts ...LiveOption) *Picker {
	p := &Picker{reg: reg, opts: opts}
	// Entries are ordered by category so the cursor walks the list as drawn.
	for _, cat := range reg.Categories() {
		for _, m := range reg.List() {
			if m.Category == cat {
				p.entries = append(p.entries, m)
			}
		}
	}
	return p
}

// Selected returns the entry under the cursor.
func (p *Picker) Selected() registry.Meta { return p.entries[p.cursor] }

// Active returns the open view, or nil while the list is shown.
func (p *Picker) Active() *Live { return p.live }

func (p *Picker) Init() tea.Cmd { return nil }

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		p.width, p.height = ws.Width, ws.Height
	}
	if p.live != nil {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			p.live.Controller().Close()
			p.live = nil
			return p, nil
		}
		_, cmd := p.live.Update(msg)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.entries)-1 {
			p.cursor++
		}
	case "enter", " ":
		return p, p.open()
	}
	return p, nil
}

func (p *Picker) open() tea.Cmd {
	meta := p.Selected()
	s, err := p.reg.Build(meta.ID, nil)
	if err != nil {
		p.err = err
		return nil
	}
	p.err = nil
	p.live = NewLive(meta, s, p.opts...)
	if p.width > 0 {
		p.live.Resize(p.width, p.height)
	}
	return p.live.Init()
}

var (
	pickTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	pickCat   = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).MarginTop(1)
	pickItem  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	pickDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	pickSel   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
)

func (p *Picker) View() string {
	if p.live != nil {
		return p.live.View()
	}
	var b strings.Builder
	b.WriteString(pickTitle.Render("PHYSLAB") + pickDim.Render("  choose a simulation") + "\n")
	cat := ""
	for i, m := range p.entries {
		if m.Category != cat {
			cat = m.Category
			b.WriteString(pickCat.Render(strings.ToUpper(cat)) + "\n")
		}
		line := fmt.Sprintf("%-14s", m.Title)
		if i == p.cursor {
			b.WriteString(pickSel.Render("> "+line) + pickDim.Render(m.Description) + "\n")
		} else {
			b.WriteString(pickItem.Render("  "+line) + pickDim.Render(m.Description) + "\n")
		}
	}
	if p.err != nil {
		b.WriteString("\n" + pickSel.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n" + pickDim.Render("↑↓:Select ENTER:Open ESC:Back Q:Quit"))
	return b.String() + "\n"
}

// RunInteractive shows the picker full screen.
func RunInteractive(reg *registry.Registry, opts ...LiveOption) error {
	_, err := tea.NewProgram(NewPicker(reg, opts...), tea.WithAltScreen()).Run()
	return err
}
