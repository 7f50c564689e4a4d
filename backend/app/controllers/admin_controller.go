package controllers

import (
	"net/http"
	"strconv"

	"fleetdesk/backend/app/models"
	"fleetdesk/backend/app/services"
	"fleetdesk/backend/app/store"

	"github.com/go-chi/chi/v5"
)

const defaultOnlineWindowMinutes = 5

// AdminController serves the dashboard's polling queries. Everything
// here is read-only.
type AdminController struct {
	Identity    *services.IdentityRegistry
	Metrics     *store.Latest[models.SystemMetrics]
	PortLatest  *store.Latest[models.NetworkPortSnapshot]
	PortHistory *store.History[models.NetworkPortSnapshot]
}

func NewAdminController(identity *services.IdentityRegistry, metrics *store.Latest[models.SystemMetrics], portLatest *store.Latest[models.NetworkPortSnapshot], portHistory *store.History[models.NetworkPortSnapshot]) *AdminController {
	return &AdminController{Identity: identity, Metrics: metrics, PortLatest: portLatest, PortHistory: portHistory}
}

func (c *AdminController) ListAgents(w http.ResponseWriter, r *http.Request) {
	onlineOnly := r.URL.Query().Get("onlineOnly") == "true"
	minutes := defaultOnlineWindowMinutes
	if v, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil {
		minutes = v
	}
	writeJSON(w, http.StatusOK, c.Identity.List(onlineOnly, minutes))
}

func (c *AdminController) GetAgent(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	agent, ok := c.Identity.Get(agentID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// GetAgentMetrics returns the latest snapshot, or an empty array when
// none exists; the admin client handles both shapes.
func (c *AdminController) GetAgentMetrics(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if metrics, ok := c.Metrics.Get(agentID); ok {
		writeJSON(w, http.StatusOK, metrics)
		return
	}
	writeJSON(w, http.StatusOK, []models.SystemMetrics{})
}

// Metrics aggregation was never implemented server-side; the stub
// responses keep the dashboard's charts rendering.
func (c *AdminController) GetAgentMetricsAggregated(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"agentId": chi.URLParam(r, "agentId"), "avgCpu": 0.0, "avgMemory": 0.0})
}

func (c *AdminController) GetAgentMetricsTrend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"agentId": chi.URLParam(r, "agentId"), "points": []any{}})
}

func (c *AdminController) GetAgentPorts(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	writeJSON(w, http.StatusOK, c.PortHistory.Get(agentID))
}

func (c *AdminController) GetAgentPortsLatest(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	snapshot, ok := c.PortLatest.Get(agentID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// GetAllPorts returns the latest snapshot per agent, keyed by agent id.
func (c *AdminController) GetAllPorts(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]any)
	for agentID, snapshot := range c.PortLatest.All() {
		out[agentID] = map[string]any{"agentId": agentID, "snapshot": snapshot}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPortsSummary joins identities with their latest port snapshot.
func (c *AdminController) GetPortsSummary(w http.ResponseWriter, r *http.Request) {
	type summary struct {
		AgentId     string                         `json:"agentId"`
		MachineName string                         `json:"machineName"`
		IpAddress   string                         `json:"ipAddress"`
		PortCount   int                            `json:"portCount"`
		Connections []models.NetworkPortConnection `json:"connections"`
	}

	agents := c.Identity.List(false, 0)
	out := make([]summary, 0, len(agents))
	for _, agent := range agents {
		entry := summary{
			AgentId:     agent.Id,
			MachineName: agent.MachineName,
			IpAddress:   agent.IpAddress,
			Connections: []models.NetworkPortConnection{},
		}
		if snapshot, ok := c.PortLatest.Get(agent.Id); ok {
			entry.PortCount = len(snapshot.Connections)
			entry.Connections = snapshot.Connections
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}
