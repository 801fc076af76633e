package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/commit"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/handlers"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(7).Foreground(lipgloss.Color("244"))
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dragStyle    = lipgloss.NewStyle().Reverse(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)

	noticeStyles = map[commit.NoticeLevel]lipgloss.Style{
		commit.NoticeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		commit.NoticeWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		commit.NoticeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
	statusStyles = map[model.Status]lipgloss.Style{
		model.StatusConfirmed:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		model.StatusPendingDeposit: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.StatusCancelled:      lipgloss.NewStyle().Strikethrough(true),
	}
)

func renderAgenda(a handlers.AgendaResponse) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Agenda %s", a.Day)))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  session %s  phase %s", a.SessionID, a.Phase)))
	b.WriteString("\n")

	for _, slot := range a.Slots {
		label := labelStyle.Render(slot.Label)
		if len(slot.Items) == 0 {
			b.WriteString(label + emptyStyle.Render("-") + "\n")
			continue
		}
		for i, item := range slot.Items {
			if i > 0 {
				label = labelStyle.Render("")
			}
			b.WriteString(label + renderItem(item, item.ID == a.ActiveDragID) + "\n")
		}
	}

	if a.HasMore {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d more slots hidden (expand)", a.Hidden)) + "\n")
	}
	if a.Pending != nil {
		b.WriteString(pendingStyle.Render("pending: ") + summarizeTransition(*a.Pending) + "\n")
	}
	return b.String()
}

func renderItem(item handlers.AppointmentItem, dragging bool) string {
	text := item.Label + " " + item.CustomerName
	if item.Service != "" {
		text += " (" + item.Service + ")"
	}
	if dragging {
		text = dragStyle.Render(text)
	}
	status := item.Status
	if st, ok := statusStyles[model.Status(item.Status)]; ok {
		status = st.Render(status)
	}
	return fmt.Sprintf("%s [%s] %s", text, status, mutedStyle.Render(item.ID))
}

func summarizeTransition(t model.Transition) string {
	parts := make([]string, 0, 2)
	for _, leg := range t.Legs() {
		parts = append(parts, fmt.Sprintf("%s %s -> %s", leg.AppointmentID, leg.OldLabel, leg.NewLabel))
	}
	return t.Kind() + " " + strings.Join(parts, ", ")
}

func renderTransition(t model.Transition) string {
	var b strings.Builder
	b.WriteString(pendingStyle.Render("staged "+t.Kind()) + mutedStyle.Render(" "+t.ID) + "\n")
	for _, leg := range t.Legs() {
		fmt.Fprintf(&b, "  %s  %s -> %s\n", leg.AppointmentID, leg.OldLabel, leg.NewLabel)
	}
	if t.CustomerName != "" {
		fmt.Fprintf(&b, "  customer %s\n", t.CustomerName)
	}
	return b.String()
}

func renderNotices(notices []commit.Notice) string {
	var b strings.Builder
	for _, n := range notices {
		style, ok := noticeStyles[n.Level]
		if !ok {
			style = mutedStyle
		}
		b.WriteString(style.Render(string(n.Level)+": "+n.Message) + "\n")
	}
	return b.String()
}
