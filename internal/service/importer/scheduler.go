package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler re-runs ImportAll on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	svc     *Service
	timeout time.Duration
}

func NewScheduler(svc *Service, schedule string, timeout time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		svc:     svc,
		timeout: timeout,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("error scheduling cron job %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Scheduler) run() {
	ctx := logger.ToContext(context.Background(), "job", "import")
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	results, err := s.svc.ImportAll(ctx)
	if err != nil {
		logger.Errorf(ctx, "scheduled import: %s", err.Error())
		return
	}

	for _, r := range results {
		logger.Infof(ctx, "scheduled import %s: %d records", r.Dataset, r.Records)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for a running import to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
