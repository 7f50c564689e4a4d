package models

import "time"

type NetworkPortConnection struct {
	LocalEndpoint  string `json:"localEndpoint,omitempty"`
	RemoteEndpoint string `json:"remoteEndpoint,omitempty"`
	LocalPort      int    `json:"localPort,omitempty"`
	RemotePort     int    `json:"remotePort,omitempty"`
	ProcessId      int    `json:"processId,omitempty"`
	ProcessName    string `json:"processName,omitempty"`
	State          string `json:"state,omitempty"`
	Protocol       string `json:"protocol,omitempty"`
}

type NetworkPortSnapshot struct {
	AgentId     string                  `json:"agentId"`
	Timestamp   time.Time               `json:"timestamp"`
	Connections []NetworkPortConnection `json:"connections"`
}
