package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_ScheduleCron(t *testing.T) {
	t.Run("returns job id for valid cron", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		id, err := s.ScheduleCron("refresh", "*/5 * * * *", func(context.Context) {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run("rejects invalid cron", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		_, err = s.ScheduleCron("refresh", "this is not a cron", func(context.Context) {})
		require.Error(t, err)
	})
}

func TestScheduler_ScheduleEvery(t *testing.T) {
	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		_, err = s.ScheduleEvery("refresh", 0, func(context.Context) {})
		require.Error(t, err)
	})

	t.Run("rejects nil task", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		_, err = s.ScheduleEvery("refresh", time.Second, nil)
		require.Error(t, err)
	})

	t.Run("runs the task repeatedly", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)

		var runs atomic.Int32
		_, err = s.ScheduleEvery("refresh", 20*time.Millisecond, func(context.Context) {
			runs.Add(1)
		})
		require.NoError(t, err)

		s.Start(context.Background())
		require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
		require.NoError(t, s.Stop(context.Background()))
	})
}

func TestScheduler_StopCancelsTaskContext(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)

	started := make(chan struct{})
	canceled := make(chan struct{})
	_, err = s.ScheduleEvery("slow", 10*time.Millisecond, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
			return
		}
		<-ctx.Done()
		close(canceled)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("task never started")
	}
	cancel()

	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("task context was not canceled")
	}
	require.NoError(t, s.Stop(context.Background()))
}
