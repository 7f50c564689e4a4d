package agentd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fleetdesk/backend/app/dto"
	"fleetdesk/backend/app/models"
)

// Client talks to the fleet backend over its agent-facing HTTP API.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) postJSON(path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Register announces the agent and returns the backend-assigned id.
func (c *Client) Register(req dto.RegisterRequest) (string, error) {
	var resp struct {
		AgentId string `json:"agentId"`
	}
	if err := c.postJSON("/api/Agent/register", req, &resp); err != nil {
		return "", err
	}
	if resp.AgentId == "" {
		return "", fmt.Errorf("register: backend returned no agent id")
	}
	return resp.AgentId, nil
}

func (c *Client) Heartbeat(agentID string) error {
	return c.postJSON("/api/Agent/heartbeat/"+agentID, struct{}{}, nil)
}

func (c *Client) SubmitMetrics(metrics models.SystemMetrics) error {
	return c.postJSON("/api/Agent/metrics", metrics, nil)
}

func (c *Client) SubmitPorts(data dto.NetworkPortData) error {
	return c.postJSON("/api/NetworkPort", data, nil)
}

func (c *Client) SubmitSoftware(data dto.InstalledSoftwareData) error {
	return c.postJSON("/api/InstalledSoftware", data, nil)
}

// PendingCommands drains the agent's mailbox on the backend.
func (c *Client) PendingCommands(agentID string) ([]models.CommandRequest, error) {
	resp, err := c.http.Get(c.base + "/api/Command/pending/" + agentID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pending commands: unexpected status %d", resp.StatusCode)
	}
	var commands []models.CommandRequest
	if err := json.NewDecoder(resp.Body).Decode(&commands); err != nil {
		return nil, err
	}
	return commands, nil
}

func (c *Client) SubmitResult(result models.CommandResponse) error {
	return c.postJSON("/api/Command/result", result, nil)
}
