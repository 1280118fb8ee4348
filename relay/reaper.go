package relay

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Akif-Ali-10p/BotInterpreter/config"
	"github.com/Akif-Ali-10p/BotInterpreter/metrics"
)

// Reaper bounds the damage from silently dead connections. Graceful close
// handlers alone are not enough: a crashed tab or dropped network never
// delivers a close frame, so without the reaper dead sockets would stay in
// their sessions and receive broadcasts forever.
//
// Two periodic duties:
//   - ping driver: probe every tracked open connection so the peer's pong
//     refreshes its last-activity record;
//   - sweep: force-terminate connections that are closed-but-still-tracked
//     or registered without a liveness record, and gracefully close
//     connections idle past the inactivity window.
type Reaper struct {
	tracker  *Tracker
	registry *Registry
	cfg      *config.WebSocketConfig
	logger   *zap.SugaredLogger
}

func NewReaper(tracker *Tracker, registry *Registry, cfg *config.WebSocketConfig, logger *zap.SugaredLogger) *Reaper {
	return &Reaper{
		tracker:  tracker,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run drives the ping and sweep tickers until ctx is cancelled. Both
// tickers stop on return; the server's shutdown path cancels ctx so no
// timer outlives the process lifecycle.
func (r *Reaper) Run(ctx context.Context) {
	pingTicker := time.NewTicker(time.Duration(r.cfg.PingInterval) * time.Second)
	sweepTicker := time.NewTicker(time.Duration(r.cfg.ReapInterval) * time.Second)
	defer pingTicker.Stop()
	defer sweepTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pingTicker.C:
			r.pingAll()
		case <-sweepTicker.C:
			r.Sweep()
		}
	}
}

func (r *Reaper) pingAll() {
	for _, c := range r.tracker.Snapshot() {
		if !c.Open() {
			continue
		}
		if err := c.SendPing(); err != nil {
			r.logger.Warnw("ping failed, closing connection", "client_id", c.ID, "error", err)
			c.ForceClose()
			metrics.ConnectionsReaped.WithLabelValues("ping_failure").Inc()
		}
	}
}

// Sweep runs one reap pass. Exported so tests and shutdown can run it
// deterministically.
func (r *Reaper) Sweep() {
	idleCutoff := time.Now().Add(-time.Duration(r.cfg.InactivityTimeout) * time.Second)

	for _, c := range r.tracker.Snapshot() {
		switch {
		case !c.Open():
			// Teardown already ran or is running; ForceClose is a no-op for
			// an already-closed client but clears stragglers whose teardown
			// never fired.
			c.ForceClose()
			metrics.ConnectionsReaped.WithLabelValues("not_open").Inc()
		case c.LastActivity().Before(idleCutoff):
			r.logger.Infow("closing idle connection", "client_id", c.ID, "idle_since", c.LastActivity())
			c.Close(CloseInactivityTimeout, "inactivity timeout")
			metrics.ConnectionsReaped.WithLabelValues("idle").Inc()
		}
	}

	// A registered connection with no liveness record is dead by
	// definition; terminate it so broadcasts stop reaching it.
	for _, c := range r.registry.AllClients() {
		if !r.tracker.Contains(c) {
			r.logger.Warnw("registered connection has no liveness record, terminating", "client_id", c.ID)
			c.ForceClose()
			if sid := c.SessionID(); sid != "" {
				r.registry.Leave(sid, c)
			}
			metrics.ConnectionsReaped.WithLabelValues("untracked").Inc()
		}
	}
}
