package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"myblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionJanitor_Sweep(t *testing.T) {
	repo := newMemSessionRepo()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, models.Session{ID: "old", UserID: "u", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Save(ctx, models.Session{ID: "edge", UserID: "u", ExpiresAt: now}))
	require.NoError(t, repo.Save(ctx, models.Session{ID: "live", UserID: "u", ExpiresAt: now.Add(time.Hour)}))

	j := NewSessionJanitor(repo, nil)
	assert.Equal(t, 2, j.sweep(ctx, now))

	s, err := repo.Load(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, s)

	repo.err = errors.New("boom")
	assert.Equal(t, 0, j.sweep(ctx, now))
}

func TestSessionJanitor_RunStopsOnCancel(t *testing.T) {
	repo := newMemSessionRepo()
	require.NoError(t, repo.Save(context.Background(), models.Session{ID: "old", UserID: "u", ExpiresAt: time.Now().Add(-time.Hour)}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewSessionJanitor(repo, nil).Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		s, _ := repo.Load(context.Background(), "old")
		return s == nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
