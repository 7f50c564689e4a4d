package ui

import (
	"fmt"
	"strings"
	"time"

	"fleetdesk/backend/app/models"

	tea "github.com/charmbracelet/bubbletea"
)

// BackToDashboardMsg signals transition back to the agent table.
type BackToDashboardMsg struct{}

// OpenCommandFormMsg opens the command form for the given agent.
type OpenCommandFormMsg struct {
	AgentID string
}

type agentDetailMsg struct {
	agent   models.AgentIdentity
	metrics models.SystemMetrics
	hasM    bool
	ports   models.NetworkPortSnapshot
	hasP    bool
}

type resultPolledMsg struct {
	result models.CommandResponse
	known  bool
}

// AgentDetailModel shows one agent's identity, latest metrics and port
// snapshot, and tracks the last command sent from the console.
type AgentDetailModel struct {
	Client  *Client
	AgentID string

	Agent   models.AgentIdentity
	Metrics *models.SystemMetrics
	Ports   *models.NetworkPortSnapshot

	LastCommandID string
	LastResult    *models.CommandResponse
	Err           error
}

func NewAgentDetailModel(client *Client, agentID string) AgentDetailModel {
	return AgentDetailModel{Client: client, AgentID: agentID}
}

func (m AgentDetailModel) Init() tea.Cmd {
	return tea.Batch(m.fetchDetail, scheduleRefresh())
}

func (m AgentDetailModel) fetchDetail() tea.Msg {
	agent, err := m.Client.Agent(m.AgentID)
	if err != nil {
		return errMsg{err}
	}
	metrics, hasM, err := m.Client.Metrics(m.AgentID)
	if err != nil {
		return errMsg{err}
	}
	ports, hasP, err := m.Client.LatestPorts(m.AgentID)
	if err != nil {
		return errMsg{err}
	}
	return agentDetailMsg{agent: agent, metrics: metrics, hasM: hasM, ports: ports, hasP: hasP}
}

func (m AgentDetailModel) pollResult() tea.Cmd {
	commandID := m.LastCommandID
	if commandID == "" {
		return nil
	}
	client := m.Client
	return func() tea.Msg {
		result, known, err := client.Result(commandID)
		if err != nil {
			return errMsg{err}
		}
		return resultPolledMsg{result: result, known: known}
	}
}

func (m AgentDetailModel) Update(msg tea.Msg) (AgentDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "b":
			return m, func() tea.Msg { return BackToDashboardMsg{} }
		case "c":
			agentID := m.AgentID
			return m, func() tea.Msg { return OpenCommandFormMsg{AgentID: agentID} }
		case "r":
			return m, m.fetchDetail
		case "q":
			return m, tea.Quit
		}

	case refreshTickMsg:
		cmds := []tea.Cmd{m.fetchDetail, scheduleRefresh()}
		if cmd := m.pollResult(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case agentDetailMsg:
		m.Err = nil
		m.Agent = msg.agent
		m.Metrics, m.Ports = nil, nil
		if msg.hasM {
			metrics := msg.metrics
			m.Metrics = &metrics
		}
		if msg.hasP {
			ports := msg.ports
			m.Ports = &ports
		}

	case CommandQueuedMsg:
		m.LastCommandID = msg.CommandID
		m.LastResult = nil
		if cmd := m.pollResult(); cmd != nil {
			return m, cmd
		}

	case resultPolledMsg:
		if msg.known {
			result := msg.result
			m.LastResult = &result
		}

	case errMsg:
		m.Err = msg.err
	}
	return m, nil
}

func (m AgentDetailModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Agent "+m.Agent.MachineName) + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("ID", m.Agent.Id)
	row("Machine", m.Agent.MachineName)
	row("IP", m.Agent.IpAddress)
	row("MAC", m.Agent.MacAddress)
	row("OS", m.Agent.OperatingSystem)
	if m.Agent.Location != "" {
		row("Location", m.Agent.Location)
	}
	if m.Agent.LastHeartbeat != nil {
		row("Heartbeat", m.Agent.LastHeartbeat.Local().Format(time.RFC1123))
	}

	b.WriteString("\n")
	if m.Metrics != nil {
		b.WriteString(focusedStyle.Render("Metrics") + "\n")
		row("CPU", fmt.Sprintf("%.1f%%", m.Metrics.CpuUsage))
		row("Memory", fmt.Sprintf("%.1f%%", m.Metrics.MemoryUsage))
		row("Disk", fmt.Sprintf("%.1f%%", m.Metrics.DiskUsage))
		if len(m.Metrics.TopProcesses) > 0 {
			names := make([]string, 0, len(m.Metrics.TopProcesses))
			for _, p := range m.Metrics.TopProcesses {
				names = append(names, p.Name)
			}
			row("Top", strings.Join(names, ", "))
		}
	} else {
		b.WriteString(blurredStyle.Render("No metrics reported yet") + "\n")
	}

	b.WriteString("\n")
	if m.Ports != nil {
		b.WriteString(focusedStyle.Render(fmt.Sprintf("Open ports (%d)", len(m.Ports.Connections))) + "\n")
		for i, conn := range m.Ports.Connections {
			if i >= 10 {
				b.WriteString(blurredStyle.Render(fmt.Sprintf("… and %d more", len(m.Ports.Connections)-i)) + "\n")
				break
			}
			b.WriteString(fmt.Sprintf("  %s :%d %s (%s)\n", conn.Protocol, conn.LocalPort, conn.State, conn.ProcessName))
		}
	} else {
		b.WriteString(blurredStyle.Render("No port snapshot yet") + "\n")
	}

	if m.LastCommandID != "" {
		b.WriteString("\n" + focusedStyle.Render("Last command") + "\n")
		row("Command ID", m.LastCommandID)
		if m.LastResult != nil {
			row("Status", m.LastResult.Status)
			if m.LastResult.Output != "" {
				row("Output", m.LastResult.Output)
			}
			if m.LastResult.ErrorOutput != "" {
				row("Error", m.LastResult.ErrorOutput)
			}
		} else {
			row("Status", "waiting for result")
		}
	}

	b.WriteString("\n" + blurredStyle.Render("c: send command · r: refresh · esc: back · q: quit"))
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
