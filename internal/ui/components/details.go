package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/things2do/internal/board"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236"))

	scrollbarHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// Details shows a single task in a scrollable viewport.
type Details struct {
	viewport viewport.Model
	content  string
	ready    bool
}

func NewDetails(width, height int) *Details {
	d := &Details{}
	d.SetSize(width, height)
	return d
}

func (d *Details) SetSize(width, height int) {
	vpWidth := width
	if width > 0 {
		vpWidth = width - 1
	}
	if !d.ready {
		d.viewport = viewport.New(vpWidth, height)
		d.ready = true
	} else {
		d.viewport.Width = vpWidth
		d.viewport.Height = height
	}
	d.updateContent()
}

// Show renders v, with its end date or NoEndDate.
func (d *Details) Show(v board.TaskView) {
	end := NoEndDate
	if v.EndDate != nil {
		end = *v.EndDate
	}
	createdDate, _, _ := strings.Cut(v.CreatedAt, " ")

	rows := [][2]string{
		{"Name", v.Name},
		{"Description", v.Description},
		{"Quadrant", v.Quadrant.String()},
		{"Position", fmt.Sprintf("(%g, %g)", v.Importance, v.Urgency)},
		{"Daily step", fmt.Sprintf("(%+g, %+g)", v.ImportanceStep, v.UrgencyStep)},
		{"Created", createdDate},
		{"End date", end},
	}

	var sb strings.Builder
	for i, row := range rows {
		sb.WriteString(labelStyle.Render(row[0] + ": "))
		sb.WriteString(row[1])
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}
	d.content = sb.String()
	d.updateContent()
	d.viewport.GotoTop()
}

func (d *Details) updateContent() {
	width := d.viewport.Width
	content := d.content
	if width > 0 {
		content = detailStyle.Width(width).Render(content)
	} else {
		content = detailStyle.Render(content)
	}
	d.viewport.SetContent(content)
}

func (d *Details) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd
}

func (d *Details) View() string {
	if d.viewport.TotalLineCount() <= d.viewport.Height {
		return d.viewport.View()
	}

	h := d.viewport.Height
	handlePos := int(float64(h-1) * d.viewport.ScrollPercent())

	var sb strings.Builder
	for i := 0; i < h; i++ {
		if i == handlePos {
			sb.WriteString(scrollbarHandleStyle.Render("┃"))
		} else {
			sb.WriteString(scrollbarTrackStyle.Render("│"))
		}
		if i < h-1 {
			sb.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, d.viewport.View(), sb.String())
}
