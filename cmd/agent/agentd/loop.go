package agentd

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Options tunes the reporting loops.
type Options struct {
	MetricsInterval   time.Duration
	PortsInterval     time.Duration
	HeartbeatInterval time.Duration
	PollInterval      time.Duration
}

func (o *Options) fill() {
	if o.MetricsInterval <= 0 {
		o.MetricsInterval = 30 * time.Second
	}
	if o.PortsInterval <= 0 {
		o.PortsInterval = time.Minute
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 15 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
}

// Runner registers with the backend, then reports telemetry and
// executes mailbox commands until the context is cancelled.
type Runner struct {
	client  *Client
	log     zerolog.Logger
	opts    Options
	agentID string
}

func NewRunner(client *Client, log zerolog.Logger, opts Options) *Runner {
	opts.fill()
	return &Runner{client: client, log: log, opts: opts}
}

func (r *Runner) Run(ctx context.Context) error {
	identity := CollectIdentity()
	agentID, err := r.client.Register(identity)
	if err != nil {
		return err
	}
	r.agentID = agentID
	r.log.Info().
		Str("agent_id", agentID).
		Str("machine", identity.MachineName).
		Msg("registered with backend")

	// first samples right away so the dashboard is not empty
	r.reportMetrics()
	r.reportPorts()

	metricsTick := time.NewTicker(r.opts.MetricsInterval)
	portsTick := time.NewTicker(r.opts.PortsInterval)
	heartbeatTick := time.NewTicker(r.opts.HeartbeatInterval)
	pollTick := time.NewTicker(r.opts.PollInterval)
	defer metricsTick.Stop()
	defer portsTick.Stop()
	defer heartbeatTick.Stop()
	defer pollTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-metricsTick.C:
			r.reportMetrics()
		case <-portsTick.C:
			r.reportPorts()
		case <-heartbeatTick.C:
			if err := r.client.Heartbeat(r.agentID); err != nil {
				r.log.Warn().Err(err).Msg("heartbeat failed")
			}
		case <-pollTick.C:
			r.drainMailbox(ctx)
		}
	}
}

func (r *Runner) reportMetrics() {
	if err := r.client.SubmitMetrics(CollectMetrics(r.agentID)); err != nil {
		r.log.Warn().Err(err).Msg("metrics submit failed")
	}
}

func (r *Runner) reportPorts() {
	data := CollectPorts(r.agentID)
	if err := r.client.SubmitPorts(data); err != nil {
		r.log.Warn().Err(err).Msg("port snapshot submit failed")
	}
}

func (r *Runner) drainMailbox(ctx context.Context) {
	commands, err := r.client.PendingCommands(r.agentID)
	if err != nil {
		r.log.Warn().Err(err).Msg("command poll failed")
		return
	}
	for _, cmd := range commands {
		r.log.Info().
			Str("command_id", cmd.CommandId).
			Str("type", cmd.CommandType).
			Msg("executing command")
		result := Execute(ctx, cmd)
		result.AgentId = r.agentID
		if err := r.client.SubmitResult(result); err != nil {
			r.log.Error().Err(err).Str("command_id", cmd.CommandId).Msg("result submit failed")
		}
	}
}
