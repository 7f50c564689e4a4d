package models

import "time"

// AgentIdentity is the single record kept per known agent. The Id is
// generated once and never changes; every other field may be filled in
// or overwritten by later contacts.
type AgentIdentity struct {
	Id              string     `json:"id"`
	MachineName     string     `json:"machineName"`
	IpAddress       string     `json:"ipAddress"`
	MacAddress      string     `json:"macAddress"`
	OperatingSystem string     `json:"operatingSystem"`
	LastHeartbeat   *time.Time `json:"lastHeartbeat"`
	Location        string     `json:"location,omitempty"`
}
