package models

import "time"

type ProcessInfo struct {
	Name        string  `json:"name"`
	Id          int     `json:"id"`
	CpuUsage    float64 `json:"cpuUsage"`
	MemoryUsage float64 `json:"memoryUsage"`
}

type SystemMetrics struct {
	AgentId         string        `json:"agentId"`
	Timestamp       time.Time     `json:"timestamp"`
	CpuUsage        float64       `json:"cpuUsage"`
	MemoryUsage     float64       `json:"memoryUsage"`
	DiskUsage       float64       `json:"diskUsage"`
	NetworkSent     int64         `json:"networkSent"`
	NetworkReceived int64         `json:"networkReceived"`
	TopProcesses    []ProcessInfo `json:"topProcesses"`
}
