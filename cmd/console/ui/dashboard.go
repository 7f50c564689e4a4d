package ui

import (
	"strings"
	"time"

	"fleetdesk/backend/app/models"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const refreshInterval = 5 * time.Second

type agentsLoadedMsg struct {
	agents []models.AgentIdentity
}

type refreshTickMsg struct{}

type errMsg struct{ err error }

// AgentSelectedMsg is emitted when the operator opens an agent row.
type AgentSelectedMsg struct {
	AgentID string
}

type DashboardModel struct {
	Client *Client
	Table  table.Model
	Agents []models.AgentIdentity
	Err    error
}

func NewDashboardModel(client *Client, width, height int) DashboardModel {
	columns := []table.Column{
		{Title: "Agent ID", Width: 38},
		{Title: "Machine", Width: 20},
		{Title: "IP", Width: 16},
		{Title: "OS", Width: 20},
		{Title: "Last Heartbeat", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(height-10, 5)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return DashboardModel{Client: client, Table: t}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.fetchAgents
}

func (m DashboardModel) fetchAgents() tea.Msg {
	agents, err := m.Client.ListAgents()
	if err != nil {
		return errMsg{err}
	}
	return agentsLoadedMsg{agents: agents}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.fetchAgents
		case "enter":
			if row := m.Table.SelectedRow(); len(row) > 0 {
				agentID := row[0]
				return m, func() tea.Msg { return AgentSelectedMsg{AgentID: agentID} }
			}
		case "q":
			return m, tea.Quit
		}

	case refreshTickMsg:
		return m, tea.Batch(m.fetchAgents, scheduleRefresh())

	case agentsLoadedMsg:
		m.Err = nil
		m.Agents = msg.agents
		rows := make([]table.Row, 0, len(msg.agents))
		for _, a := range msg.agents {
			heartbeat := "never"
			if a.LastHeartbeat != nil {
				heartbeat = a.LastHeartbeat.Local().Format("2006-01-02 15:04:05")
			}
			rows = append(rows, table.Row{a.Id, a.MachineName, a.IpAddress, a.OperatingSystem, heartbeat})
		}
		m.Table.SetRows(rows)

	case errMsg:
		m.Err = msg.err
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Fleet Dashboard - Registered Agents") + "\n\n")
	b.WriteString(m.Table.View())
	b.WriteString("\n\n")
	b.WriteString(blurredStyle.Render("enter: open agent · r: refresh · q: quit"))
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
