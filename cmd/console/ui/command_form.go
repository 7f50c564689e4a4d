package ui

import (
	"strconv"
	"strings"

	"fleetdesk/backend/app/models"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type FormState int

const (
	StateSelecting FormState = iota
	StateFilling
)

type cmdItem struct {
	title, desc string
	index       int
}

func (i cmdItem) Title() string       { return i.title }
func (i cmdItem) Description() string { return i.desc }
func (i cmdItem) FilterValue() string { return i.title }

// CommandQueuedMsg reports a successfully enqueued command.
type CommandQueuedMsg struct {
	CommandID string
}

// CommandFormCancelledMsg returns to the detail view without sending.
type CommandFormCancelledMsg struct{}

type CommandDef struct {
	Name        string
	Description string
	Fields      []FieldDef
}

type FieldDef struct {
	Name        string
	Placeholder string
	Required    bool
	Default     string
}

var availableCommands = []CommandDef{
	{
		Name:        "KillProcess",
		Description: "Terminate a process by id",
		Fields: []FieldDef{
			{Name: "processId", Placeholder: "Process id", Required: true},
		},
	},
	{
		Name:        "OpenPort",
		Description: "Open a firewall port",
		Fields: []FieldDef{
			{Name: "port", Placeholder: "Port number", Required: true},
			{Name: "protocol", Placeholder: "TCP or UDP", Default: "TCP"},
		},
	},
	{
		Name:        "ClosePort",
		Description: "Close a firewall port",
		Fields: []FieldDef{
			{Name: "port", Placeholder: "Port number", Required: true},
			{Name: "protocol", Placeholder: "TCP or UDP", Default: "TCP"},
		},
	},
	{
		Name:        "CollectSoftware",
		Description: "Request a fresh installed-software inventory",
		Fields:      []FieldDef{},
	},
	{
		Name:        "RunCommand",
		Description: "Execute a raw shell command on the agent",
		Fields: []FieldDef{
			{Name: "command", Placeholder: "e.g. systemctl status nginx", Required: true},
			{Name: "timeoutSeconds", Placeholder: "Timeout in seconds", Default: "60"},
		},
	},
}

type CommandFormModel struct {
	AgentID     string
	Client      *Client
	State       FormState
	List        list.Model
	Inputs      []textinput.Model
	Focused     int
	SelectedCmd int
	Err         error
}

func NewCommandFormModel(agentID string, client *Client, width, height int) CommandFormModel {
	items := make([]list.Item, 0, len(availableCommands))
	for i, cmd := range availableCommands {
		items = append(items, cmdItem{title: cmd.Name, desc: cmd.Description, index: i})
	}

	l := list.New(items, list.NewDefaultDelegate(), width, max(height-6, 8))
	l.Title = "Select Command"
	l.SetShowHelp(false)

	return CommandFormModel{
		AgentID: agentID,
		Client:  client,
		State:   StateSelecting,
		List:    l,
	}
}

func (m *CommandFormModel) initInputs() {
	def := availableCommands[m.SelectedCmd]
	m.Inputs = make([]textinput.Model, len(def.Fields))
	for i, field := range def.Fields {
		ti := textinput.New()
		ti.Placeholder = field.Placeholder
		ti.CharLimit = 256
		if field.Default != "" {
			ti.SetValue(field.Default)
		}
		if i == 0 {
			ti.Focus()
			ti.PromptStyle = focusedStyle
			ti.TextStyle = focusedStyle
		}
		m.Inputs[i] = ti
	}
	m.Focused = 0
}

func (m CommandFormModel) Init() tea.Cmd {
	return nil
}

func (m CommandFormModel) submit() tea.Cmd {
	def := availableCommands[m.SelectedCmd]
	params := make(map[string]string, len(def.Fields))
	timeoutSeconds := 0
	for i, field := range def.Fields {
		value := strings.TrimSpace(m.Inputs[i].Value())
		if value == "" {
			continue
		}
		if field.Name == "timeoutSeconds" {
			if n, err := strconv.Atoi(value); err == nil {
				timeoutSeconds = n
			}
			continue
		}
		params[field.Name] = value
	}

	client := m.Client
	req := models.CommandRequest{
		TargetAgentId:  m.AgentID,
		CommandType:    def.Name,
		Parameters:     params,
		TimeoutSeconds: timeoutSeconds,
	}
	return func() tea.Msg {
		commandID, err := client.Enqueue(req)
		if err != nil {
			return errMsg{err}
		}
		return CommandQueuedMsg{CommandID: commandID}
	}
}

func (m CommandFormModel) validate() bool {
	def := availableCommands[m.SelectedCmd]
	for i, field := range def.Fields {
		if field.Required && strings.TrimSpace(m.Inputs[i].Value()) == "" {
			return false
		}
	}
	return true
}

func (m CommandFormModel) Update(msg tea.Msg) (CommandFormModel, tea.Cmd) {
	switch m.State {
	case StateSelecting:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc":
				return m, func() tea.Msg { return CommandFormCancelledMsg{} }
			case "enter":
				if item, ok := m.List.SelectedItem().(cmdItem); ok {
					m.SelectedCmd = item.index
					if len(availableCommands[m.SelectedCmd].Fields) == 0 {
						return m, m.submit()
					}
					m.State = StateFilling
					m.initInputs()
					return m, nil
				}
			}
		}
		var cmd tea.Cmd
		m.List, cmd = m.List.Update(msg)
		return m, cmd

	case StateFilling:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc":
				m.State = StateSelecting
				return m, nil
			case "tab", "down":
				m.setFocus((m.Focused + 1) % len(m.Inputs))
				return m, nil
			case "shift+tab", "up":
				m.setFocus((m.Focused - 1 + len(m.Inputs)) % len(m.Inputs))
				return m, nil
			case "enter":
				if m.Focused == len(m.Inputs)-1 {
					if !m.validate() {
						return m, nil
					}
					return m, m.submit()
				}
				m.setFocus(m.Focused + 1)
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.Inputs[m.Focused], cmd = m.Inputs[m.Focused].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *CommandFormModel) setFocus(idx int) {
	for i := range m.Inputs {
		if i == idx {
			m.Inputs[i].Focus()
			m.Inputs[i].PromptStyle = focusedStyle
			m.Inputs[i].TextStyle = focusedStyle
		} else {
			m.Inputs[i].Blur()
			m.Inputs[i].PromptStyle = noStyle
			m.Inputs[i].TextStyle = noStyle
		}
	}
	m.Focused = idx
}

func (m CommandFormModel) View() string {
	var b strings.Builder
	switch m.State {
	case StateSelecting:
		b.WriteString(m.List.View())
		b.WriteString("\n" + blurredStyle.Render("enter: choose · esc: cancel"))
	case StateFilling:
		def := availableCommands[m.SelectedCmd]
		b.WriteString(titleStyle.Render(def.Name+" → "+m.AgentID) + "\n\n")
		for i, field := range def.Fields {
			marker := "  "
			if field.Required {
				marker = "* "
			}
			b.WriteString(marker + labelStyle.Render(field.Name) + m.Inputs[i].View() + "\n")
		}
		b.WriteString("\n" + blurredStyle.Render("enter: next/send · tab: move · esc: back"))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
