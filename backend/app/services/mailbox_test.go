package services

import (
	"testing"
	"time"

	"fleetdesk/backend/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueRequiresTargetAgent(t *testing.T) {
	m := NewMailbox()
	_, err := m.Enqueue(models.CommandRequest{CommandType: "Reboot"})
	require.ErrorIs(t, err, ErrValidation)

	// Nothing mutated: queue scan still reports unknown.
	_, state := m.Result("anything")
	assert.Equal(t, ResultUnknown, state)
}

func TestEnqueueSeedsPendingResult(t *testing.T) {
	m := NewMailbox()
	id, err := m.Enqueue(models.CommandRequest{TargetAgentId: "A", CommandType: "Reboot"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	resp, state := m.Result(id)
	assert.Equal(t, ResultKnown, state)
	assert.Equal(t, models.StatusPending, resp.Status)
	assert.Equal(t, "A", resp.AgentId)
}

func TestEnqueueKeepsCallerSuppliedIdAndNormalizesTimestamp(t *testing.T) {
	m := NewMailbox()
	loc := time.FixedZone("UTC+7", 7*3600)
	ts := time.Date(2024, 12, 5, 17, 30, 0, 0, loc)

	id, err := m.Enqueue(models.CommandRequest{CommandId: "cmd-1", TargetAgentId: "A", Timestamp: ts})
	require.NoError(t, err)
	assert.Equal(t, "cmd-1", id)

	queue := m.DequeueAll("A")
	require.Len(t, queue, 1)
	assert.Equal(t, time.UTC, queue[0].Timestamp.Location())
	assert.True(t, queue[0].Timestamp.Equal(ts))
}

func TestDequeueAllDrainsFIFOOnce(t *testing.T) {
	m := NewMailbox()
	for _, id := range []string{"c1", "c2", "c3"} {
		_, err := m.Enqueue(models.CommandRequest{CommandId: id, TargetAgentId: "A"})
		require.NoError(t, err)
	}

	first := m.DequeueAll("A")
	require.Len(t, first, 3)
	assert.Equal(t, "c1", first[0].CommandId)
	assert.Equal(t, "c2", first[1].CommandId)
	assert.Equal(t, "c3", first[2].CommandId)

	second := m.DequeueAll("A")
	assert.Empty(t, second)
	assert.NotNil(t, second)
}

func TestDequeueAllDifferentAgentsIsolated(t *testing.T) {
	m := NewMailbox()
	_, _ = m.Enqueue(models.CommandRequest{CommandId: "mine", TargetAgentId: "A"})
	_, _ = m.Enqueue(models.CommandRequest{CommandId: "theirs", TargetAgentId: "B"})

	got := m.DequeueAll("A")
	require.Len(t, got, 1)
	assert.Equal(t, "mine", got[0].CommandId)

	other := m.DequeueAll("B")
	require.Len(t, other, 1)
	assert.Equal(t, "theirs", other[0].CommandId)
}

func TestSubmitResultValidation(t *testing.T) {
	m := NewMailbox()

	_, err := m.SubmitResult(models.CommandResponse{AgentId: "A"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = m.SubmitResult(models.CommandResponse{CommandId: "c"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitResultDerivesStatusFromExitCode(t *testing.T) {
	m := NewMailbox()

	ok, err := m.SubmitResult(models.CommandResponse{CommandId: "c1", AgentId: "A", ExitCode: 0})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, ok.Status)

	failed, err := m.SubmitResult(models.CommandResponse{CommandId: "c2", AgentId: "A", ExitCode: 7})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, failed.Status)

	explicit, err := m.SubmitResult(models.CommandResponse{CommandId: "c3", AgentId: "A", Status: "Cancelled", ExitCode: 7})
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", explicit.Status)
}

func TestSubmitResultTimesAndDuration(t *testing.T) {
	m := NewMailbox()

	end := time.Date(2024, 12, 5, 10, 30, 0, 0, time.UTC)
	start := end.Add(-1500 * time.Millisecond)
	resp, err := m.SubmitResult(models.CommandResponse{CommandId: "c1", AgentId: "A", StartTime: start, EndTime: end})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), resp.ExecutionTimeMs)

	// Start after end floors the derived duration at zero.
	inverted, err := m.SubmitResult(models.CommandResponse{CommandId: "c2", AgentId: "A", StartTime: end.Add(time.Minute), EndTime: end})
	require.NoError(t, err)
	assert.Equal(t, int64(0), inverted.ExecutionTimeMs)

	// Unset times default to now / end.
	defaulted, err := m.SubmitResult(models.CommandResponse{CommandId: "c3", AgentId: "A"})
	require.NoError(t, err)
	assert.False(t, defaulted.EndTime.IsZero())
	assert.True(t, defaulted.StartTime.Equal(defaulted.EndTime))

	// A supplied positive duration is kept as reported.
	reported, err := m.SubmitResult(models.CommandResponse{CommandId: "c4", AgentId: "A", ExecutionTimeMs: 150})
	require.NoError(t, err)
	assert.Equal(t, int64(150), reported.ExecutionTimeMs)
}

func TestSubmitResultAcceptsUnknownCommand(t *testing.T) {
	m := NewMailbox()
	resp, err := m.SubmitResult(models.CommandResponse{CommandId: "out-of-band", AgentId: "A", ExitCode: 0})
	require.NoError(t, err)

	stored, state := m.Result("out-of-band")
	assert.Equal(t, ResultKnown, state)
	assert.Equal(t, resp.Status, stored.Status)
}

func TestResultTerminalOverwriteLastWriteWins(t *testing.T) {
	m := NewMailbox()
	id, _ := m.Enqueue(models.CommandRequest{TargetAgentId: "A"})

	_, err := m.SubmitResult(models.CommandResponse{CommandId: id, AgentId: "A", ExitCode: 0, Output: "first"})
	require.NoError(t, err)
	_, err = m.SubmitResult(models.CommandResponse{CommandId: id, AgentId: "A", ExitCode: 3, Output: "second"})
	require.NoError(t, err)

	stored, state := m.Result(id)
	require.Equal(t, ResultKnown, state)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Equal(t, "second", stored.Output)
}

func TestResultQueuedFallback(t *testing.T) {
	m := NewMailbox()
	// Force the defensive branch: a queue entry without a result row.
	m.mu.Lock()
	m.pending["A"] = append(m.pending["A"], models.CommandRequest{CommandId: "ghost", TargetAgentId: "A"})
	m.mu.Unlock()

	_, state := m.Result("GHOST")
	assert.Equal(t, ResultQueued, state)
}

func TestEnqueueCollapsesParameterKeyCase(t *testing.T) {
	m := NewMailbox()

	_, err := m.Enqueue(models.CommandRequest{
		TargetAgentId: "A",
		CommandType:   "OpenPort",
		Parameters:    map[string]string{"Port": "1", "port": "2", "protocol": "TCP"},
	})
	require.NoError(t, err)

	queue := m.DequeueAll("A")
	require.Len(t, queue, 1)
	params := queue[0].Parameters
	require.Len(t, params, 2)
	assert.Equal(t, "2", params["Port"])
	assert.Equal(t, "TCP", params["protocol"])
	assert.NotContains(t, params, "port")
}

func TestCommandLifecycleScenario(t *testing.T) {
	m := NewMailbox()

	id, err := m.Enqueue(models.CommandRequest{
		CommandId:     "cmd-1",
		TargetAgentId: "A",
		CommandType:   "KillProcess",
		Parameters:    map[string]string{"processId": "4711"},
	})
	require.NoError(t, err)
	require.Equal(t, "cmd-1", id)

	resp, state := m.Result("cmd-1")
	require.Equal(t, ResultKnown, state)
	assert.Equal(t, models.StatusPending, resp.Status)

	queue := m.DequeueAll("A")
	require.Len(t, queue, 1)
	assert.Equal(t, "cmd-1", queue[0].CommandId)
	assert.Equal(t, "KillProcess", queue[0].CommandType)
	assert.Equal(t, "4711", queue[0].Parameters["processId"])

	_, err = m.SubmitResult(models.CommandResponse{CommandId: "cmd-1", AgentId: "A", ExitCode: 0, Output: "done"})
	require.NoError(t, err)

	final, state := m.Result("cmd-1")
	require.Equal(t, ResultKnown, state)
	assert.Equal(t, models.StatusCompleted, final.Status)
	assert.Equal(t, "done", final.Output)
}
