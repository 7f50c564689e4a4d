package dto

import (
	"time"

	"fleetdesk/backend/app/models"
)

type NetworkPortData struct {
	AgentId     string                         `json:"agentId"`
	Timestamp   time.Time                      `json:"timestamp"`
	Connections []models.NetworkPortConnection `json:"connections"`
}
