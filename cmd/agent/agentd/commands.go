package agentd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fleetdesk/backend/app/models"

	"github.com/shirou/gopsutil/v3/process"
)

// Handler acknowledges one command type and returns the textual output
// to report. Commands are acknowledged, not executed; this agent only
// exercises the mailbox round trip.
type Handler func(ctx context.Context, params map[string]string) (string, error)

var registry = map[string]Handler{}

func registerHandler(name string, h Handler) { registry[name] = h }

func lookupHandler(name string) (Handler, bool) {
	for key, h := range registry {
		if strings.EqualFold(key, name) {
			return h, true
		}
	}
	return nil, false
}

// param reads a parameter regardless of the casing the sender used.
func param(params map[string]string, name string) string {
	if v, ok := params[name]; ok {
		return v
	}
	for key, v := range params {
		if strings.EqualFold(key, name) {
			return v
		}
	}
	return ""
}

func init() {
	registerHandler("KillProcess", ackKillProcess)
	registerHandler("OpenPort", ackPortChange("open"))
	registerHandler("ClosePort", ackPortChange("close"))
	registerHandler("CollectSoftware", ackCollectSoftware)
	registerHandler("RunCommand", ackRunCommand)
}

func ackKillProcess(_ context.Context, params map[string]string) (string, error) {
	raw := param(params, "processId")
	pid, err := strconv.Atoi(raw)
	if err != nil {
		return "", fmt.Errorf("invalid processId %q", raw)
	}
	name := "unknown"
	if p, err := process.NewProcess(int32(pid)); err == nil {
		if n, err := p.Name(); err == nil && n != "" {
			name = n
		}
	}
	return fmt.Sprintf("acknowledged kill request for process %d (%s)", pid, name), nil
}

func ackPortChange(action string) Handler {
	return func(_ context.Context, params map[string]string) (string, error) {
		port := param(params, "port")
		if port == "" {
			return "", fmt.Errorf("missing port parameter")
		}
		protocol := param(params, "protocol")
		if protocol == "" {
			protocol = "TCP"
		}
		return fmt.Sprintf("acknowledged %s of %s port %s", action, protocol, port), nil
	}
}

func ackCollectSoftware(context.Context, map[string]string) (string, error) {
	return "software inventory collection scheduled", nil
}

func ackRunCommand(_ context.Context, params map[string]string) (string, error) {
	line := strings.TrimSpace(param(params, "command"))
	if line == "" {
		return "", fmt.Errorf("missing command parameter")
	}
	return fmt.Sprintf("acknowledged (execution disabled in this build): %s", line), nil
}

// Execute resolves a mailbox command to a result for the backend. Exit
// code 0 on success, 1 on failure; the backend derives the final status
// from the exit code.
func Execute(ctx context.Context, cmd models.CommandRequest) models.CommandResponse {
	timeout := 60 * time.Second
	if cmd.TimeoutSeconds > 0 {
		timeout = time.Duration(cmd.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now().UTC()
	result := models.CommandResponse{
		CommandId: cmd.CommandId,
		AgentId:   cmd.TargetAgentId,
		StartTime: start,
	}

	handler, ok := lookupHandler(cmd.CommandType)
	if !ok {
		result.EndTime = time.Now().UTC()
		result.ExitCode = 1
		result.ErrorOutput = fmt.Sprintf("unknown command type %q", cmd.CommandType)
		return result
	}

	output, err := handler(ctx, cmd.Parameters)
	result.EndTime = time.Now().UTC()
	result.Output = output
	if err != nil {
		result.ExitCode = 1
		result.ErrorOutput = err.Error()
	}
	return result
}
