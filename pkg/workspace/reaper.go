package workspace

import (
	"fmt"
	"time"

	"github.com/boredapes/ctaplanner/internal/utils"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Expirer ends idle sessions.
type Expirer interface {
	ExpireIdle(now time.Time) int
}

// Reaper periodically expires idle sessions. Their workspaces are dropped by the session gate.
type Reaper struct {
	cron    *cron.Cron
	expirer Expirer
	clock   utils.Clock
}

func NewReaper(expirer Expirer, clock utils.Clock, interval time.Duration) (*Reaper, error) {
	r := &Reaper{cron: cron.New(), expirer: expirer, clock: clock}
	if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() { r.Reap() }); err != nil {
		return nil, fmt.Errorf("failed to schedule session reaper: %w", err)
	}
	return r, nil
}

func (r *Reaper) Start() {
	r.cron.Start()
	log.Info("Session reaper started")
}

// Stop waits for a running reap to finish.
func (r *Reaper) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info("Session reaper stopped")
}

func (r *Reaper) Reap() int {
	n := r.expirer.ExpireIdle(r.clock.Now())
	if n > 0 {
		log.Infof("expired %d idle sessions", n)
	}
	return n
}
