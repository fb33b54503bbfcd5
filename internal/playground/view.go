package playground

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/diagramkit/internal/service"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#696969"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F2C94C"))
	onStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#27AE60"))
	offStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#EB5757"))
	paneStyle     = lipgloss.NewStyle().BorderForeground(lipgloss.Color("#3C3C3C"))
)

func entityZone(id string) string { return "entity:" + id }

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	w, h := m.canvasSize()
	c := renderDiagram(m.projection(), m.svc.Components(), w, h)
	under := c.at(m.cursorX, m.cursorY)
	r := under.r
	if r == ' ' || r == 0 {
		r = '+'
	}
	c.set(m.cursorX, m.cursorY, r, styleCursor)

	body := c.String()
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar(h))
	}
	parts := []string{body}
	if m.showActivity {
		parts = append(parts, m.renderActivity())
	}
	parts = append(parts, m.renderStatus(), m.help.View(m.keys))
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderSidebar(height int) string {
	inner := sidebarWidth - 2
	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(ansi.Truncate(s, inner, "…"))
		sb.WriteString("\n")
	}

	line(headerStyle.Render("Entities"))
	for _, c := range m.svc.Diagram().AllContainers() {
		label := "  " + c.Title()
		if c.Selected() {
			label = selectedStyle.Render("● " + c.Title())
		}
		if !c.Visible() {
			label = mutedStyle.Render(label)
		}
		line(m.zones.Mark(entityZone(c.ID()), ansi.Truncate(label, inner, "…")))
	}

	line("")
	line(headerStyle.Render("Behaviours"))
	for i, name := range service.BehaviourNames {
		state := mutedStyle.Render("-")
		if o, ok := m.svc.BehaviourOptions(name); ok {
			state = offStyle.Render("✗")
			if o.Enabled() {
				state = onStyle.Render("✓")
			}
		}
		line(fmt.Sprintf("%d %s %s", i+1, state, name))
	}

	return paneStyle.
		Border(lipgloss.NormalBorder(), false, false, false, true).
		PaddingLeft(1).
		Width(sidebarWidth - 1).
		Height(height).
		MaxHeight(height).
		Render(strings.TrimSuffix(sb.String(), "\n"))
}

func (m Model) renderActivity() string {
	title := headerStyle.Render("Activity")
	return paneStyle.
		Border(lipgloss.NormalBorder(), true, false, false, false).
		Width(m.width).
		Render(title + "\n" + m.activity.View())
}

// activityContent fits log lines to the pane width.
func activityContent(entries []string, width int) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		e = strings.TrimRight(e, "\n")
		if width > 0 {
			e = ansi.Truncate(e, width, "…")
		}
		lines[i] = e
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	d := m.svc.Diagram()
	pan := d.Pan()
	parts := []string{
		fmt.Sprintf("zoom %.2f", d.Zoom()),
		fmt.Sprintf("pan %.0f,%.0f", pan.X, pan.Y),
		fmt.Sprintf("cursor %d,%d", m.cursorX, m.cursorY),
	}
	if m.grabbing {
		parts = append(parts, selectedStyle.Render("grab"))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return ansi.Truncate(mutedStyle.Render(strings.Join(parts, "  │  ")), max(m.width, 0), "…")
}
