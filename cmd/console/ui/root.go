package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type screen int

const (
	screenDashboard screen = iota
	screenAgentDetail
	screenCommandForm
)

// RootModel routes messages between the dashboard, the agent detail
// view and the command form.
type RootModel struct {
	client *Client
	active screen

	dashboard DashboardModel
	detail    AgentDetailModel
	form      CommandFormModel

	width  int
	height int
}

func NewRootModel(client *Client) RootModel {
	return RootModel{
		client:    client,
		active:    screenDashboard,
		dashboard: NewDashboardModel(client, 120, 30),
		width:     120,
		height:    30,
	}
}

func (m RootModel) Init() tea.Cmd {
	return tea.Batch(m.dashboard.Init(), scheduleRefresh())
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.dashboard.Table.SetHeight(max(msg.Height-10, 5))
		if m.active == screenCommandForm {
			m.form.List.SetSize(msg.Width, max(msg.Height-6, 8))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case AgentSelectedMsg:
		m.active = screenAgentDetail
		m.detail = NewAgentDetailModel(m.client, msg.AgentID)
		return m, m.detail.Init()

	case BackToDashboardMsg:
		m.active = screenDashboard
		return m, m.dashboard.fetchAgents

	case OpenCommandFormMsg:
		m.active = screenCommandForm
		m.form = NewCommandFormModel(msg.AgentID, m.client, m.width, m.height)
		return m, m.form.Init()

	case CommandFormCancelledMsg:
		m.active = screenAgentDetail
		return m, nil

	case CommandQueuedMsg:
		m.active = screenAgentDetail
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.active {
	case screenDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case screenAgentDetail:
		m.detail, cmd = m.detail.Update(msg)
	case screenCommandForm:
		m.form, cmd = m.form.Update(msg)
	}
	return m, cmd
}

func (m RootModel) View() string {
	switch m.active {
	case screenAgentDetail:
		return m.detail.View()
	case screenCommandForm:
		return m.form.View()
	default:
		return m.dashboard.View()
	}
}
