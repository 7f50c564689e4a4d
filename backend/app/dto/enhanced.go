package dto

import (
	"encoding/json"
	"time"

	"fleetdesk/backend/app/models"
)

// EnhancedSubmission is the loosely-structured payload some agents push
// alongside regular metrics. Only agentId is required; every section is
// parsed on a best-effort basis and skipped when absent or malformed.
type EnhancedSubmission struct {
	AgentId     string          `json:"agentId"`
	SystemInfo  json.RawMessage `json:"systemInfo"`
	WindowsInfo json.RawMessage `json:"windowsInfo"`
	Metrics     json.RawMessage `json:"metrics"`
}

type enhancedSystemInfo struct {
	MachineName     string `json:"machineName"`
	OsName          string `json:"osName"`
	OperatingSystem string `json:"operatingSystem"`
}

// IdentityHints extracts the identity-relevant fields buried in the
// systemInfo and windowsInfo sections. Missing or unparsable sections
// contribute nothing.
func (s *EnhancedSubmission) IdentityHints() (machineName, osName string) {
	var sys enhancedSystemInfo
	if len(s.SystemInfo) > 0 && json.Unmarshal(s.SystemInfo, &sys) == nil {
		machineName = sys.MachineName
		if sys.OsName != "" {
			osName = sys.OsName
		}
		if sys.OperatingSystem != "" {
			osName = sys.OperatingSystem
		}
	}
	var win enhancedSystemInfo
	if len(s.WindowsInfo) > 0 && json.Unmarshal(s.WindowsInfo, &win) == nil {
		if win.OsName != "" {
			osName = win.OsName
		}
	}
	return machineName, osName
}

// MetricsSnapshot converts the optional metrics section into a
// SystemMetrics record. Field-level type mismatches are tolerated by
// decoding into a generic map and coercing value by value, so one bad
// field never discards the rest of the submission.
func (s *EnhancedSubmission) MetricsSnapshot(agentID string) (models.SystemMetrics, bool) {
	if len(s.Metrics) == 0 {
		return models.SystemMetrics{}, false
	}
	var section map[string]any
	if err := json.Unmarshal(s.Metrics, &section); err != nil {
		return models.SystemMetrics{}, false
	}

	m := models.SystemMetrics{
		AgentId:         agentID,
		Timestamp:       timeField(section, "timestamp"),
		CpuUsage:        floatField(section, "cpuUsage"),
		MemoryUsage:     floatField(section, "memoryUsage"),
		DiskUsage:       floatField(section, "diskUsage"),
		NetworkSent:     intField(section, "networkSent"),
		NetworkReceived: intField(section, "networkReceived"),
		TopProcesses:    []models.ProcessInfo{},
	}

	if procs, ok := section["topProcesses"].([]any); ok {
		for _, entry := range procs {
			p, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			name, _ := p["name"].(string)
			if name == "" {
				continue
			}
			m.TopProcesses = append(m.TopProcesses, models.ProcessInfo{
				Name:        name,
				Id:          int(intField(p, "id")),
				CpuUsage:    floatField(p, "cpuUsage"),
				MemoryUsage: floatField(p, "memoryUsage"),
			})
		}
	}
	return m, true
}

func floatField(section map[string]any, key string) float64 {
	if v, ok := section[key].(float64); ok {
		return v
	}
	return 0
}

func intField(section map[string]any, key string) int64 {
	if v, ok := section[key].(float64); ok {
		return int64(v)
	}
	return 0
}

func timeField(section map[string]any, key string) time.Time {
	if v, ok := section[key].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts
		}
	}
	return time.Now().UTC()
}
