package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fleetdesk/backend/app/models"
	"fleetdesk/backend/app/services"
	"fleetdesk/backend/global"

	"github.com/go-chi/chi/v5"
)

type CommandController struct {
	Mailbox *services.Mailbox
}

func NewCommandController(mailbox *services.Mailbox) *CommandController {
	return &CommandController{Mailbox: mailbox}
}

// Enqueue places a command in the target agent's pending queue and
// seeds its Pending result row.
func (c *CommandController) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req models.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		global.Logger.Warn().Err(err).Msg("command rejected: bad payload")
		badRequest(w, "invalid payload")
		return
	}

	commandID, err := c.Mailbox.Enqueue(req)
	if err != nil {
		global.Logger.Warn().Err(err).Msg("command rejected")
		badRequest(w, "targetAgentId required")
		return
	}

	commandType := req.CommandType
	if strings.TrimSpace(commandType) == "" {
		commandType = "(unspecified)"
	}
	global.Logger.Info().
		Str("command", commandID).
		Str("type", commandType).
		Str("agent", req.TargetAgentId).
		Msg("command queued")

	// Port management commands get their parameters logged for debugging.
	if strings.EqualFold(req.CommandType, "OpenPort") || strings.EqualFold(req.CommandType, "ClosePort") {
		global.Logger.Info().
			Str("command", commandID).
			Str("type", req.CommandType).
			Interface("parameters", req.Parameters).
			Msg("port command parameters")
	}

	writeJSON(w, http.StatusOK, map[string]string{"commandId": commandID})
}

// Pending drains and returns every command queued for the agent.
func (c *CommandController) Pending(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	commands := c.Mailbox.DequeueAll(agentID)
	if len(commands) > 0 {
		global.Logger.Info().Int("count", len(commands)).Str("agent", agentID).Msg("pending commands delivered")
	}
	writeJSON(w, http.StatusOK, commands)
}

// GetById returns the stored result row, a Pending marker for a
// command still sitting in a queue, or 404 for an unknown id.
func (c *CommandController) GetById(w http.ResponseWriter, r *http.Request) {
	commandID := chi.URLParam(r, "commandId")
	resp, state := c.Mailbox.Result(commandID)
	switch state {
	case services.ResultKnown:
		global.Logger.Debug().Str("command", commandID).Str("status", resp.Status).Msg("returning stored command result")
		writeJSON(w, http.StatusOK, resp)
	case services.ResultQueued:
		writeJSON(w, http.StatusAccepted, map[string]string{"commandId": commandID, "status": models.StatusPending})
	default:
		http.NotFound(w, r)
	}
}

// SubmitResult records the agent's report for a command.
func (c *CommandController) SubmitResult(w http.ResponseWriter, r *http.Request) {
	var resp models.CommandResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		badRequest(w, "invalid payload")
		return
	}

	stored, err := c.Mailbox.SubmitResult(resp)
	if errors.Is(err, services.ErrValidation) {
		global.Logger.Warn().Err(err).Str("command", resp.CommandId).Msg("command result rejected")
		badRequest(w, err.Error())
		return
	}

	global.Logger.Info().Str("command", stored.CommandId).Str("status", stored.Status).Msg("command result stored")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
