package models

import (
	"encoding/json"
	"time"
)

// InstalledSoftwareInfo is the normalized shape handed back to the admin
// client. Software entries stay schemaless because agents on different
// platforms report different fields.
type InstalledSoftwareInfo struct {
	AgentId      string            `json:"agentId"`
	Timestamp    time.Time         `json:"timestamp"`
	SoftwareList []json.RawMessage `json:"softwareList"`
}
