package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"fleetdesk/backend/app/dto"
	"fleetdesk/backend/app/models"
	"fleetdesk/backend/app/services"
	"fleetdesk/backend/app/store"
	"fleetdesk/backend/global"

	"github.com/go-chi/chi/v5"
)

type NetworkPortController struct {
	Latest   *store.Latest[models.NetworkPortSnapshot]
	History  *store.History[models.NetworkPortSnapshot]
	Identity *services.IdentityRegistry
}

func NewNetworkPortController(latest *store.Latest[models.NetworkPortSnapshot], history *store.History[models.NetworkPortSnapshot], identity *services.IdentityRegistry) *NetworkPortController {
	return &NetworkPortController{Latest: latest, History: history, Identity: identity}
}

// Submit stores a port snapshot as both the latest value and a history
// entry, and counts as a heartbeat for the agent.
func (c *NetworkPortController) Submit(w http.ResponseWriter, r *http.Request) {
	var data dto.NetworkPortData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || strings.TrimSpace(data.AgentId) == "" {
		global.Logger.Warn().Msg("port snapshot rejected: agentId missing")
		badRequest(w, "agentId required")
		return
	}

	snapshot := models.NetworkPortSnapshot{
		AgentId:     data.AgentId,
		Timestamp:   data.Timestamp,
		Connections: data.Connections,
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.Connections == nil {
		snapshot.Connections = []models.NetworkPortConnection{}
	}

	// Latest only moves forward in time; history records every arrival.
	c.Latest.PutIf(snapshot.AgentId, snapshot, func(existing models.NetworkPortSnapshot) bool {
		return !snapshot.Timestamp.Before(existing.Timestamp)
	})
	c.History.Append(snapshot.AgentId, snapshot)
	c.Identity.Touch(snapshot.AgentId)

	global.Logger.Info().
		Str("agent", snapshot.AgentId).
		Int("connections", len(snapshot.Connections)).
		Time("timestamp", snapshot.Timestamp).
		Msg("port snapshot stored")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (c *NetworkPortController) GetLatest(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	snapshot, ok := c.Latest.Get(agentID)
	if !ok {
		global.Logger.Debug().Str("agent", agentID).Msg("no port snapshot stored")
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (c *NetworkPortController) GetHistory(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	writeJSON(w, http.StatusOK, c.History.Get(agentID))
}
