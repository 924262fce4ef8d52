package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midi2struct/config"
	"midi2struct/encode"
	"midi2struct/pipeline"
)

const valueRows = 16

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("211")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	maskOnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
)

// Model is an interactive browser over the encoded result: the left
// column lists functions, the right column the selected function's
// values and block addresses.
type Model struct {
	Cfg    *config.Config
	Result *pipeline.Result

	funcIdx  int
	valueTop int
	quitting bool
}

// NewModel creates an inspector over a finished conversion.
func NewModel(cfg *config.Config, res *pipeline.Result) Model {
	return Model{Cfg: cfg, Result: res}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "j", "down":
			if m.funcIdx < len(m.Result.Functions)-1 {
				m.funcIdx++
				m.valueTop = 0
			}

		case "k", "up":
			if m.funcIdx > 0 {
				m.funcIdx--
				m.valueTop = 0
			}

		case "J", "pgdown":
			if n := len(m.current().Values); m.valueTop+valueRows < n {
				m.valueTop += valueRows
			}

		case "K", "pgup":
			m.valueTop -= valueRows
			if m.valueTop < 0 {
				m.valueTop = 0
			}

		case "g":
			m.funcIdx = 0
			m.valueTop = 0

		case "G":
			if n := len(m.Result.Functions); n > 0 {
				m.funcIdx = n - 1
				m.valueTop = 0
			}
		}
	}

	return m, nil
}

func (m Model) current() encode.Function {
	if m.funcIdx >= len(m.Result.Functions) {
		return encode.Function{}
	}
	return m.Result.Functions[m.funcIdx]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	res := m.Result
	header := headerStyle.Render(fmt.Sprintf(
		"midi2struct  %d events  %d values  %d functions  %d blocks",
		res.EventsKept, len(res.Values), len(res.Functions), len(res.Layout.Blocks)))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	if len(res.Functions) == 0 {
		out.WriteString(dimStyle.Render("  (no functions - the filtered timeline was empty)"))
		out.WriteString("\n\n")
		out.WriteString(dimStyle.Render("q:quit"))
		return out.String()
	}

	left := m.renderFunctions()
	right := m.renderValues()
	out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right))

	out.WriteString("\n")
	out.WriteString(dimStyle.Render("j/k:function  J/K:scroll values  g/G:first/last  q:quit"))
	return out.String()
}

func (m Model) renderFunctions() string {
	var out strings.Builder
	out.WriteString("Functions\n")

	for i, f := range m.Result.Functions {
		succ := "end"
		if f.Successor != encode.NoSuccessor {
			succ = fmt.Sprintf("-> %d", f.Successor)
		}
		line := fmt.Sprintf(" %3d  base %5d  len %4d  %s ",
			f.Index, m.Result.Layout.Bases[i], len(f.Values), succ)
		if i == m.funcIdx {
			line = selectedStyle.Render(line)
		}
		out.WriteString(line)
		out.WriteString("\n")
	}

	return out.String()
}

func (m Model) renderValues() string {
	f := m.current()
	base := m.Result.Layout.Bases[m.funcIdx]

	var out strings.Builder
	out.WriteString(fmt.Sprintf("Values (function %d)\n", f.Index))

	end := m.valueTop + valueRows
	if end > len(f.Values) {
		end = len(f.Values)
	}
	for k := m.valueTop; k < end; k++ {
		v := f.Values[k]
		out.WriteString(fmt.Sprintf(" %5d  tick %7d  grp %3d  Δ%5d  %s  %08x\n",
			base+uint32(k), v.Tick, v.Group, v.Delta,
			m.renderMask(v.Mask), v.Pack(m.Cfg.NotesPerValue)))
	}
	if end < len(f.Values) {
		out.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(f.Values)-end)))
		out.WriteString("\n")
	}

	return out.String()
}

// renderMask shows the group's pitch slots, low bit first.
func (m Model) renderMask(mask uint16) string {
	var out strings.Builder
	for bit := 0; bit < m.Cfg.NotesPerValue; bit++ {
		if mask&(1<<bit) != 0 {
			out.WriteString(maskOnStyle.Render("#"))
		} else {
			out.WriteString(dimStyle.Render("."))
		}
	}
	return out.String()
}
