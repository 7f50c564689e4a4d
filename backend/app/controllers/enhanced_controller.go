package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"fleetdesk/backend/app/dto"
	"fleetdesk/backend/app/models"
	"fleetdesk/backend/app/services"
	"fleetdesk/backend/app/store"
	"fleetdesk/backend/global"

	"github.com/go-chi/chi/v5"
)

// EnhancedDataController handles the loosely-structured enrichment
// payloads. Submissions are never rejected for malformed sections;
// whatever can be extracted is stored and the rest is skipped.
type EnhancedDataController struct {
	Enhanced *store.Latest[json.RawMessage]
	Metrics  *store.Latest[models.SystemMetrics]
	Identity *services.IdentityRegistry
}

func NewEnhancedDataController(enhanced *store.Latest[json.RawMessage], metrics *store.Latest[models.SystemMetrics], identity *services.IdentityRegistry) *EnhancedDataController {
	return &EnhancedDataController{Enhanced: enhanced, Metrics: metrics, Identity: identity}
}

func (c *EnhancedDataController) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}

	var submission dto.EnhancedSubmission
	if err := json.Unmarshal(body, &submission); err != nil || strings.TrimSpace(submission.AgentId) == "" {
		// Partial data beats failure: unusable payloads are dropped quietly.
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}

	agentID := submission.AgentId
	c.Enhanced.Put(agentID, json.RawMessage(body))

	machineName, osName := submission.IdentityHints()
	c.Identity.Upsert(agentID, services.IdentityFields{
		MachineName:     machineName,
		OperatingSystem: osName,
	})

	if metrics, ok := submission.MetricsSnapshot(agentID); ok {
		c.Metrics.Put(agentID, metrics)
	}

	global.Logger.Debug().Str("agent", agentID).Int("bytes", len(body)).Msg("enhanced data stored")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GetSystemInfo returns the stored systemInfo section, or a minimal
// host-derived fallback so the dashboard always has something to show.
func (c *EnhancedDataController) GetSystemInfo(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if section, ok := c.section(agentID, "systemInfo"); ok {
		writeJSON(w, http.StatusOK, section)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agentId":     agentID,
		"machineName": c.Identity.DefaultMachineName(),
	})
}

func (c *EnhancedDataController) GetWindowsInfo(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if section, ok := c.section(agentID, "windowsInfo"); ok {
		writeJSON(w, http.StatusOK, section)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agentId":   agentID,
		"osName":    c.Identity.DefaultOS(),
		"osVersion": "",
	})
}

func (c *EnhancedDataController) GetHardDiskInfo(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if section, ok := c.section(agentID, "hardDiskInfo"); ok {
		writeJSON(w, http.StatusOK, section)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agentId": agentID,
		"disks":   []any{},
	})
}

func (c *EnhancedDataController) GetAntivirusInfo(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if section, ok := c.section(agentID, "antivirusInfo"); ok {
		writeJSON(w, http.StatusOK, section)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agentId":   agentID,
		"antivirus": []any{},
	})
}

func (c *EnhancedDataController) GetWinCoreInfo(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if section, ok := c.section(agentID, "winCoreInfo"); ok {
		writeJSON(w, http.StatusOK, section)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agentId":       agentID,
		"kernelVersion": c.Identity.DefaultOS(),
	})
}

func (c *EnhancedDataController) section(agentID, name string) (json.RawMessage, bool) {
	raw, ok := c.Enhanced.Get(agentID)
	if !ok {
		return nil, false
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	section, ok := payload[name]
	if !ok || string(section) == "null" {
		return nil, false
	}
	return section, true
}
