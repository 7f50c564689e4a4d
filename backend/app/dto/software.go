package dto

import (
	"encoding/json"
	"time"
)

type InstalledSoftwareData struct {
	AgentId      string            `json:"agentId"`
	Timestamp    time.Time         `json:"timestamp"`
	SoftwareList []json.RawMessage `json:"softwareList"`
}
