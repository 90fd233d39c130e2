package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/things2do/internal/board"
	"github.com/nick-dorsch/things2do/pkg/models"
)

var (
	quadrantColors = map[models.Quadrant]lipgloss.Color{
		models.QuadrantImportantUrgent:    lipgloss.Color("196"),
		models.QuadrantImportantNotUrgent: lipgloss.Color("214"),
		models.QuadrantNotImportantUrgent: lipgloss.Color("39"),
		models.QuadrantNeither:            lipgloss.Color("42"),
	}

	listHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)

	subTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	selectedLineStyle = lipgloss.NewStyle().Reverse(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				Padding(0, 1)
)

// NoEndDate is shown in place of a missing end date.
const NoEndDate = "no end date"

// TaskList renders tasks in priority order, one box per non-empty quadrant.
type TaskList struct {
	Tasks    []board.TaskView
	Selected string
	Width    int
	Title    string
}

func NewTaskList(width int) *TaskList {
	return &TaskList{
		Width: width,
		Title: "Tasks",
	}
}

// SetTasks replaces the listed tasks. They are expected in priority order.
func (l *TaskList) SetTasks(tasks []board.TaskView) {
	l.Tasks = tasks
}

// Line formats one task as "name (quadrant) - end date".
func Line(v board.TaskView) string {
	end := NoEndDate
	if v.EndDate != nil {
		end = *v.EndDate
	}
	return fmt.Sprintf("%s (%s) - %s", v.Name, v.Quadrant, end)
}

func (l *TaskList) View() string {
	var boxes []string
	for _, q := range models.Quadrants {
		var tasks []board.TaskView
		for _, v := range l.Tasks {
			if v.Quadrant == q {
				tasks = append(tasks, v)
			}
		}
		if len(tasks) > 0 {
			boxes = append(boxes, l.renderBox(q, tasks))
		}
	}

	var content string
	if len(boxes) == 0 {
		content = placeholderStyle.Render("No tasks yet")
	} else {
		content = strings.Join(boxes, "\n")
	}

	if l.Title != "" {
		return listHeaderStyle.Render(l.Title) + "\n" + content
	}
	return content
}

func (l *TaskList) renderBox(q models.Quadrant, tasks []board.TaskView) string {
	color := quadrantColors[q]
	subTitle := subTitleStyle.Foreground(color).Render(q.String())

	// room for the border and padding
	boxWidth := l.Width - 2
	innerWidth := l.Width - 6
	if boxWidth < 0 {
		boxWidth = 0
	}
	if innerWidth < 0 {
		innerWidth = 0
	}

	var lines []string
	for _, v := range tasks {
		wrapped := lipgloss.NewStyle().Width(innerWidth).Render(Line(v))
		if v.ID == l.Selected {
			wrapped = selectedLineStyle.Render(wrapped)
		}
		lines = append(lines, wrapped)
	}

	body := strings.Join(lines, "\n")
	return boxStyle.BorderForeground(color).Width(boxWidth).Render(subTitle + "\n" + body)
}
