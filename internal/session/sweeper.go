package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically drops expired sessions from a Store.
type Sweeper struct {
	cron  *cron.Cron
	store *Store
}

// NewSweeper schedules a sweep every interval. Call Start to begin.
func NewSweeper(store *Store, interval time.Duration) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	s := &Sweeper{cron: cron.New(), store: store}
	if _, err := s.cron.AddFunc("@every "+interval.String(), s.run); err != nil {
		return nil, fmt.Errorf("schedule session sweep: %w", err)
	}
	return s, nil
}

func (s *Sweeper) run() {
	if n := s.store.Sweep(); n > 0 {
		log.Info().Int("removed", n).Int("live", s.store.Len()).Msg("session_sweep")
	}
}

func (s *Sweeper) Start() {
	s.cron.Start()
	log.Info().Msg("session sweeper started")
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to
// end.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	log.Info().Msg("session sweeper stopped")
}
