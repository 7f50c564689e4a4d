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

	"github.com/go-chi/chi/v5"
)

type InstalledSoftwareController struct {
	Inventory *store.History[models.InstalledSoftwareInfo]
	Identity  *services.IdentityRegistry
}

func NewInstalledSoftwareController(inventory *store.History[models.InstalledSoftwareInfo], identity *services.IdentityRegistry) *InstalledSoftwareController {
	return &InstalledSoftwareController{Inventory: inventory, Identity: identity}
}

func (c *InstalledSoftwareController) Submit(w http.ResponseWriter, r *http.Request) {
	var data dto.InstalledSoftwareData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || strings.TrimSpace(data.AgentId) == "" {
		badRequest(w, "agentId required")
		return
	}

	info := models.InstalledSoftwareInfo{
		AgentId:      data.AgentId,
		Timestamp:    data.Timestamp,
		SoftwareList: data.SoftwareList,
	}
	if info.Timestamp.IsZero() {
		info.Timestamp = time.Now().UTC()
	}
	if info.SoftwareList == nil {
		info.SoftwareList = []json.RawMessage{}
	}

	c.Inventory.Append(info.AgentId, info)
	c.Identity.Touch(info.AgentId)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (c *InstalledSoftwareController) Get(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	writeJSON(w, http.StatusOK, c.Inventory.Get(agentID))
}

// GetLatest returns the newest inventory entry, or an empty array when
// the agent has never reported (shape the admin client expects).
func (c *InstalledSoftwareController) GetLatest(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if info, ok := c.Inventory.Last(agentID); ok {
		writeJSON(w, http.StatusOK, info)
		return
	}
	writeJSON(w, http.StatusOK, []models.InstalledSoftwareInfo{})
}
