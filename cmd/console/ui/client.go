package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fleetdesk/backend/app/models"
)

// Client speaks the admin HTTP API. The console only ever polls; there
// is no push channel from the server.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) getJSON(path string, out any) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) ListAgents() ([]models.AgentIdentity, error) {
	var agents []models.AgentIdentity
	if err := c.getJSON("/api/Admin/agents", &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (c *Client) Agent(agentID string) (models.AgentIdentity, error) {
	var agent models.AgentIdentity
	err := c.getJSON("/api/Admin/agents/"+agentID, &agent)
	return agent, err
}

// Metrics returns the agent's latest metrics. The server answers with
// an empty array when it has nothing, so decode into a raw message
// first and pick the shape apart.
func (c *Client) Metrics(agentID string) (models.SystemMetrics, bool, error) {
	var raw json.RawMessage
	if err := c.getJSON("/api/Admin/agents/"+agentID+"/metrics", &raw); err != nil {
		return models.SystemMetrics{}, false, err
	}
	if len(raw) == 0 || raw[0] == '[' {
		return models.SystemMetrics{}, false, nil
	}
	var metrics models.SystemMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		return models.SystemMetrics{}, false, err
	}
	return metrics, true, nil
}

func (c *Client) LatestPorts(agentID string) (models.NetworkPortSnapshot, bool, error) {
	resp, err := c.http.Get(c.base + "/api/Admin/agents/" + agentID + "/ports/latest")
	if err != nil {
		return models.NetworkPortSnapshot{}, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return models.NetworkPortSnapshot{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return models.NetworkPortSnapshot{}, false, fmt.Errorf("ports/latest: status %d", resp.StatusCode)
	}
	var snapshot models.NetworkPortSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return models.NetworkPortSnapshot{}, false, err
	}
	return snapshot, true, nil
}

func (c *Client) Enqueue(req models.CommandRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Post(c.base+"/api/Command/queue", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("queue command: status %d", resp.StatusCode)
	}
	var out struct {
		CommandId string `json:"commandId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.CommandId, nil
}

// Result polls a command's result row. The boolean reports whether the
// command is known at all; a known-but-unfinished command comes back
// with status Pending.
func (c *Client) Result(commandID string) (models.CommandResponse, bool, error) {
	resp, err := c.http.Get(c.base + "/api/Command/" + commandID)
	if err != nil {
		return models.CommandResponse{}, false, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusNotFound:
		return models.CommandResponse{}, false, nil
	case http.StatusAccepted:
		return models.CommandResponse{CommandId: commandID, Status: models.StatusPending}, true, nil
	case http.StatusOK:
		var result models.CommandResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return models.CommandResponse{}, false, err
		}
		return result, true, nil
	default:
		return models.CommandResponse{}, false, fmt.Errorf("command result: status %d", resp.StatusCode)
	}
}
