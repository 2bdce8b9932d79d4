package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/gantry/internal/adapters/memory"
	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingDispatcher) Dispatch(ctx context.Context, ev domain.Event) ([]*domain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil, nil
}

func TestSchedulerRegisterRejectsBadCron(t *testing.T) {
	s := NewScheduler(&recordingDispatcher{})

	err := s.Register(domain.Workflow{
		Name: "security-scanner",
		On:   domain.Triggers{Schedule: []domain.ScheduleTrigger{{Cron: "not a cron"}}},
	})
	require.Error(t, err)
}

func TestSchedulerRegisterAll(t *testing.T) {
	loader := memory.NewLoader(
		domain.Workflow{
			Name: "security-scanner",
			On:   domain.Triggers{Schedule: []domain.ScheduleTrigger{{Cron: "42 15 * * 0"}}},
		},
		domain.Workflow{
			Name: "hook-enforcer",
			On:   domain.Triggers{PullRequest: &domain.PullRequestFilter{}},
		},
	)

	s := NewScheduler(&recordingDispatcher{})
	require.NoError(t, s.RegisterAll(loader))
}

func TestSchedulerFireAddressesWorkflow(t *testing.T) {
	d := &recordingDispatcher{}
	s := NewScheduler(d)

	s.fire("security-scanner")

	d.mu.Lock()
	defer d.mu.Unlock()
	require.Len(t, d.events, 1)
	assert.Equal(t, domain.EventSchedule, d.events[0].Kind)
	assert.Equal(t, "security-scanner", d.events[0].Workflow)
	assert.NotEmpty(t, d.events[0].ID)
}

// fakeLocker grants the lock only to the first caller.
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	unlock := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}
	return unlock, true, nil
}

func (l *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	unlock, _, _ := l.TryLock(ctx, key, ttl)
	return unlock, nil
}

func TestSchedulerFireWithLock(t *testing.T) {
	d := &recordingDispatcher{}
	locker := &fakeLocker{}
	s := NewScheduler(d, WithScheduleLock(locker, time.Minute))

	s.fire("security-scanner")
	d.mu.Lock()
	assert.Len(t, d.events, 1)
	d.mu.Unlock()

	// With the lock held elsewhere the firing is skipped.
	_, acquired, err := locker.TryLock(context.Background(), "schedule:security-scanner", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	s.fire("security-scanner")
	d.mu.Lock()
	assert.Len(t, d.events, 1)
	d.mu.Unlock()
}
