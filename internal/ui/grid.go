package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/things2do/pkg/models"
)

var (
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// UrgencyColor shades a row from red at row 0 (most urgent) to green at the
// last row.
func UrgencyColor(urgency float64, gridSize int) lipgloss.Color {
	maxLevel := float64(gridSize - 1)
	if maxLevel <= 0 {
		maxLevel = 1
	}
	level := float64(int(urgency))
	red := int(255 * (1 - level/maxLevel))
	green := int(255 * (level / maxLevel))
	return lipgloss.Color(fmt.Sprintf("#%02x%02x00", red, green))
}

type cell struct{ x, y int }

// occupancy maps each cell to the first task on it in insertion order, the
// same task Board.TaskAt returns.
func occupancy(tasks []*models.Task) map[cell]*models.Task {
	cells := make(map[cell]*models.Task, len(tasks))
	for _, t := range tasks {
		c := cell{int(t.Importance), int(t.Urgency)}
		if _, taken := cells[c]; !taken {
			cells[c] = t
		}
	}
	return cells
}

// renderGrid draws the board with the axes crossing at the midpoint. Rows
// run top to bottom by urgency, columns left to right by importance.
func renderGrid(tasks []*models.Task, gridSize, cursorX, cursorY int) string {
	cells := occupancy(tasks)
	mid := gridSize / 2

	var s strings.Builder
	s.WriteString(labelStyle.Render("urgent"))
	s.WriteString("\n")

	for y := 0; y < gridSize; y++ {
		if y == mid {
			s.WriteString(axisStyle.Render(strings.Repeat("─", 2*mid) + "┼" + strings.Repeat("─", 2*(gridSize-mid))))
			s.WriteString(labelStyle.Render(" important"))
			s.WriteString("\n")
		}
		for x := 0; x < gridSize; x++ {
			if x == mid {
				s.WriteString(axisStyle.Render("│"))
			}
			glyph := emptyStyle.Render("·")
			if t, ok := cells[cell{x, y}]; ok {
				glyph = lipgloss.NewStyle().Foreground(UrgencyColor(t.Urgency, gridSize)).Render("●")
			}
			if x == cursorX && y == cursorY {
				glyph = cursorStyle.Render(glyph)
			}
			s.WriteString(glyph)
			s.WriteString(" ")
		}
		s.WriteString("\n")
	}

	s.WriteString(labelStyle.Render("not urgent"))
	return s.String()
}
