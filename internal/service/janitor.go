package service

import (
	"context"
	"time"

	"myblog/internal/logger"
	"myblog/internal/repository"
)

// SessionJanitor periodically deletes expired sessions.
type SessionJanitor struct {
	repo repository.SessionRepo
	log  *logger.Logger
}

func NewSessionJanitor(repo repository.SessionRepo, log *logger.Logger) *SessionJanitor {
	return &SessionJanitor{repo: repo, log: log}
}

const defaultJanitorTick = 10 * time.Minute

// Run ticks at the given interval until ctx is canceled.
func (j *SessionJanitor) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = defaultJanitorTick
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			j.sweep(ctx, now)
		}
	}
}

func (j *SessionJanitor) sweep(ctx context.Context, now time.Time) int {
	n, err := j.repo.DeleteExpired(ctx, now.UTC())
	if err != nil {
		if j.log != nil {
			j.log.Errorw("session_sweep_failed", "err", err)
		}
		return 0
	}
	if n > 0 && j.log != nil {
		j.log.Infow("session_sweep", "removed", n)
	}
	return n
}
