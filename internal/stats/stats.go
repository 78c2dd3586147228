// Package stats aggregates collection counts for /stat and the
// periodic report job.
package stats

import (
	"context"
	"fmt"
	"time"

	rcron "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ozodbekdev/kinokod/internal/store"
)

type Snapshot struct {
	Users    int64
	Films    int64
	Channels int64
}

// Collector reads estimated counts across the three collections.
type Collector struct {
	channels store.Channels
	users    store.Users
	films    store.Films
}

func NewCollector(channels store.Channels, users store.Users, films store.Films) *Collector {
	return &Collector{channels: channels, users: users, films: films}
}

func (c *Collector) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Users, err = c.users.Count(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("count users: %w", err)
	}
	if snap.Films, err = c.films.Count(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("count films: %w", err)
	}
	if snap.Channels, err = c.channels.Count(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("count channels: %w", err)
	}
	return snap, nil
}

// Reporter logs a snapshot on a cron schedule.
type Reporter struct {
	collector *Collector
	spec      string
	cron      *rcron.Cron
	logger    *zap.SugaredLogger
}

func NewReporter(collector *Collector, spec string, logger *zap.SugaredLogger) *Reporter {
	return &Reporter{collector: collector, spec: spec, logger: logger}
}

func (r *Reporter) Start() error {
	r.cron = rcron.New()
	if _, err := r.cron.AddFunc(r.spec, r.report); err != nil {
		return fmt.Errorf("register stats job %q: %w", r.spec, err)
	}
	r.cron.Start()
	r.logger.Infof("[stats] reporter started, schedule %q", r.spec)
	return nil
}

func (r *Reporter) report() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := r.collector.Snapshot(ctx)
	if err != nil {
		r.logger.Errorf("[stats] snapshot failed: %v", err)
		return
	}
	r.logger.Infof("[stats] users=%d films=%d channels=%d", snap.Users, snap.Films, snap.Channels)
}

func (r *Reporter) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}
