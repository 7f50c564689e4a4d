package agentd

import (
	"context"
	"testing"

	"fleetdesk/backend/app/models"

	"github.com/stretchr/testify/assert"
)

func TestExecuteUnknownCommandType(t *testing.T) {
	result := Execute(context.Background(), models.CommandRequest{
		CommandId:     "cmd-1",
		TargetAgentId: "agent-1",
		CommandType:   "DoSomethingNovel",
	})

	assert.Equal(t, "cmd-1", result.CommandId)
	assert.Equal(t, "agent-1", result.AgentId)
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.ErrorOutput, "DoSomethingNovel")
	assert.False(t, result.EndTime.Before(result.StartTime))
}

func TestExecuteOpenPortAcknowledged(t *testing.T) {
	result := Execute(context.Background(), models.CommandRequest{
		CommandId:     "cmd-2",
		TargetAgentId: "agent-1",
		CommandType:   "OpenPort",
		Parameters:    map[string]string{"port": "8443"},
	})

	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Output, "8443")
	assert.Contains(t, result.Output, "TCP")
}

func TestExecuteTypeLookupIsCaseInsensitive(t *testing.T) {
	result := Execute(context.Background(), models.CommandRequest{
		CommandId:     "cmd-3",
		TargetAgentId: "agent-1",
		CommandType:   "closeport",
		Parameters:    map[string]string{"port": "22", "protocol": "UDP"},
	})

	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Output, "close")
	assert.Contains(t, result.Output, "UDP")
}

func TestExecuteParameterLookupIsCaseInsensitive(t *testing.T) {
	result := Execute(context.Background(), models.CommandRequest{
		CommandId:     "cmd-6",
		TargetAgentId: "agent-1",
		CommandType:   "OpenPort",
		Parameters:    map[string]string{"PORT": "9000"},
	})

	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Output, "9000")
}

func TestExecuteMissingRequiredParameter(t *testing.T) {
	result := Execute(context.Background(), models.CommandRequest{
		CommandId:     "cmd-4",
		TargetAgentId: "agent-1",
		CommandType:   "ClosePort",
	})

	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.ErrorOutput, "port")
}

func TestExecuteInvalidProcessId(t *testing.T) {
	result := Execute(context.Background(), models.CommandRequest{
		CommandId:     "cmd-5",
		TargetAgentId: "agent-1",
		CommandType:   "KillProcess",
		Parameters:    map[string]string{"processId": "not-a-pid"},
	})

	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.ErrorOutput, "not-a-pid")
}
