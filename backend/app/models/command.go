package models

import "time"

// Command status words. The set is open: agents may report other values
// and they are stored verbatim.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
)

// CommandRequest is a queued instruction for one agent. Parameter keys
// are case-insensitive: duplicates differing only in case collapse to
// one entry when the command is enqueued.
type CommandRequest struct {
	CommandId           string            `json:"commandId"`
	TargetAgentId       string            `json:"targetAgentId"`
	CommandType         string            `json:"commandType"`
	Parameters          map[string]string `json:"parameters"`
	Timestamp           time.Time         `json:"timestamp"`
	Priority            int               `json:"priority"`
	TimeoutSeconds      int               `json:"timeoutSeconds"`
	RequireConfirmation bool              `json:"requireConfirmation"`
}

type CommandResponse struct {
	CommandId       string    `json:"commandId"`
	AgentId         string    `json:"agentId"`
	Status          string    `json:"status"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	ExecutionTimeMs int64     `json:"executionTimeMs"`
	Output          string    `json:"output"`
	ErrorOutput     string    `json:"errorOutput"`
	ExitCode        int       `json:"exitCode"`
}
