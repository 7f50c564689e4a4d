package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"fleetdesk/backend/app/dto"
	"fleetdesk/backend/app/models"
	"fleetdesk/backend/app/services"
	"fleetdesk/backend/app/store"
	"fleetdesk/backend/global"

	"github.com/go-chi/chi/v5"
)

type AgentController struct {
	Identity *services.IdentityRegistry
	Metrics  *store.Latest[models.SystemMetrics]
}

func NewAgentController(identity *services.IdentityRegistry, metrics *store.Latest[models.SystemMetrics]) *AgentController {
	return &AgentController{Identity: identity, Metrics: metrics}
}

// Register resolves the caller to an existing agent id when its MAC or
// machine name is already known, otherwise allocates a new one.
func (c *AgentController) Register(w http.ResponseWriter, r *http.Request) {
	var body dto.RegisterRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	fields := headerIdentity(r, services.IdentityFields{
		MachineName:     body.MachineName,
		IpAddress:       body.IpAddress,
		MacAddress:      body.MacAddress,
		OperatingSystem: body.OperatingSystem,
		Location:        body.Location,
	})

	agentID := c.Identity.ResolveOrCreate(fields.MacAddress, fields.MachineName)
	c.Identity.Upsert(agentID, fields)

	global.Logger.Info().Str("agent", agentID).Str("machine", fields.MachineName).Msg("agent registered")
	writeJSON(w, http.StatusOK, map[string]any{
		"agentId":       agentID,
		"configuration": nil,
		"token":         "",
	})
}

// SubmitMetrics stores the latest metrics snapshot and refreshes the
// agent's identity from the side-channel headers.
func (c *AgentController) SubmitMetrics(w http.ResponseWriter, r *http.Request) {
	var metrics models.SystemMetrics
	if err := json.NewDecoder(r.Body).Decode(&metrics); err != nil || strings.TrimSpace(metrics.AgentId) == "" {
		global.Logger.Warn().Msg("metrics submission rejected: agentId missing")
		badRequest(w, "agentId required")
		return
	}

	c.Identity.Upsert(metrics.AgentId, headerIdentity(r, services.IdentityFields{}))
	c.Metrics.Put(metrics.AgentId, metrics)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// SubmitData accepts the legacy opaque data endpoint and discards the
// payload.
func (c *AgentController) SubmitData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Heartbeat touches the agent's identity record, picking up any
// identity headers sent along.
func (c *AgentController) Heartbeat(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	c.Identity.Upsert(agentID, headerIdentity(r, services.IdentityFields{}))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "agentId": agentID})
}
