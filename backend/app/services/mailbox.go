package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"fleetdesk/backend/app/models"

	"github.com/google/uuid"
)

// ResultState distinguishes the three outcomes of a result lookup.
type ResultState int

const (
	// ResultUnknown means the command id was never seen.
	ResultUnknown ResultState = iota
	// ResultQueued means the command sits in a pending queue but has no
	// result row yet. Enqueue writes the row first, so in practice this
	// is a defensive branch rather than a path normal traffic takes.
	ResultQueued
	// ResultKnown means a stored result row (Pending or terminal) exists.
	ResultKnown
)

// Mailbox holds the per-agent pending command queues and the global
// result table. A command moves Pending → Completed/Failed; a result
// re-submitted after a terminal state simply overwrites (last write
// wins). Queues are drained wholesale: delivery is pull-based and
// at-most-once, with the result table as the only record afterwards.
type Mailbox struct {
	mu      sync.Mutex
	pending map[string][]models.CommandRequest
	results map[string]models.CommandResponse
}

func NewMailbox() *Mailbox {
	return &Mailbox{
		pending: make(map[string][]models.CommandRequest),
		results: make(map[string]models.CommandResponse),
	}
}

// Enqueue appends the command to the target agent's queue and seeds a
// Pending row in the result table. The result row is written before the
// queue entry so no reader can observe a queued command with no row.
func (m *Mailbox) Enqueue(req models.CommandRequest) (string, error) {
	if strings.TrimSpace(req.TargetAgentId) == "" {
		return "", missingField("targetAgentId")
	}
	if strings.TrimSpace(req.CommandId) == "" {
		req.CommandId = uuid.NewString()
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now().UTC()
	} else {
		req.Timestamp = req.Timestamp.UTC()
	}
	req.Parameters = foldParamKeys(req.Parameters)

	m.mu.Lock()
	m.results[req.CommandId] = models.CommandResponse{
		CommandId: req.CommandId,
		AgentId:   req.TargetAgentId,
		Status:    models.StatusPending,
		StartTime: req.Timestamp,
		EndTime:   req.Timestamp,
	}
	m.pending[req.TargetAgentId] = append(m.pending[req.TargetAgentId], req)
	m.mu.Unlock()
	return req.CommandId, nil
}

// foldParamKeys collapses parameter keys that differ only in case into
// a single entry. Keys are visited in sorted order so the surviving
// value is deterministic; the first-seen spelling of a key is kept.
func foldParamKeys(params map[string]string) map[string]string {
	if len(params) < 2 {
		return params
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	folded := make(map[string]string, len(keys))
	spelling := make(map[string]string, len(keys))
	for _, k := range keys {
		lower := strings.ToLower(k)
		if kept, ok := spelling[lower]; ok {
			folded[kept] = params[k]
			continue
		}
		spelling[lower] = k
		folded[k] = params[k]
	}
	return folded
}

// DequeueAll drains the agent's whole pending queue in FIFO order.
// An empty queue yields an empty slice, never an error.
func (m *Mailbox) DequeueAll(agentID string) []models.CommandRequest {
	m.mu.Lock()
	queue := m.pending[agentID]
	delete(m.pending, agentID)
	m.mu.Unlock()
	if queue == nil {
		return []models.CommandRequest{}
	}
	return queue
}

// Result looks up the stored row for a command id, falling back to a
// scan of the pending queues before declaring the id unknown.
func (m *Mailbox) Result(commandID string) (models.CommandResponse, ResultState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if resp, ok := m.results[commandID]; ok {
		return resp, ResultKnown
	}
	for _, queue := range m.pending {
		for _, req := range queue {
			if strings.EqualFold(req.CommandId, commandID) {
				return models.CommandResponse{}, ResultQueued
			}
		}
	}
	return models.CommandResponse{}, ResultUnknown
}

// SubmitResult stores the agent's report for a command, normalizing
// status, timestamps and duration. The write is unconditional: results
// for ids that were never enqueued are accepted, covering agents that
// report out of band.
func (m *Mailbox) SubmitResult(resp models.CommandResponse) (models.CommandResponse, error) {
	if strings.TrimSpace(resp.CommandId) == "" {
		return models.CommandResponse{}, missingField("commandId")
	}
	if strings.TrimSpace(resp.AgentId) == "" {
		return models.CommandResponse{}, missingField("agentId")
	}
	if strings.TrimSpace(resp.Status) == "" {
		if resp.ExitCode == 0 {
			resp.Status = models.StatusCompleted
		} else {
			resp.Status = models.StatusFailed
		}
	}
	if resp.EndTime.IsZero() {
		resp.EndTime = time.Now().UTC()
	} else {
		resp.EndTime = resp.EndTime.UTC()
	}
	if resp.StartTime.IsZero() {
		resp.StartTime = resp.EndTime
	} else {
		resp.StartTime = resp.StartTime.UTC()
	}
	if resp.ExecutionTimeMs <= 0 {
		resp.ExecutionTimeMs = max(int64(0), resp.EndTime.Sub(resp.StartTime).Milliseconds())
	}

	m.mu.Lock()
	m.results[resp.CommandId] = resp
	m.mu.Unlock()
	return resp, nil
}
