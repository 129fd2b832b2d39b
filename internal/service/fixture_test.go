package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository/memory"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedTransition struct {
	from, to domain.ComplaintStatus
}

type transitionLog struct {
	mu      sync.Mutex
	entries []recordedTransition
}

func (l *transitionLog) RecordTransition(_ context.Context, from, to domain.ComplaintStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, recordedTransition{from: from, to: to})
}

type fixture struct {
	ctx         context.Context
	store       *memory.Store
	clock       *fakeClock
	complaints  *ComplaintService
	stats       *StatsService
	transitions *transitionLog
	dispatcher  events.Dispatcher

	mu        sync.Mutex
	published []events.Event

	admin      domain.User
	otherAdmin domain.User
	navigator  domain.User
	otherNav   domain.User
	user       domain.User
	otherUser  domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:         context.Background(),
		store:       memory.NewStore(),
		clock:       &fakeClock{now: baseTime},
		transitions: &transitionLog{},
	}
	dispatcher := events.NewInMemoryDispatcher()
	f.dispatcher = dispatcher
	events.SubscribeAll(dispatcher, func(_ context.Context, e events.Event) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.published = append(f.published, e)
		return nil
	})

	f.complaints = NewComplaintService(ComplaintDependencies{
		Store:      f.store,
		Dispatcher: dispatcher,
		Metrics:    f.transitions,
		Clock:      f.clock.Now,
	})
	f.stats = NewStatsService(StatsDependencies{
		Store: f.store,
		Clock: f.clock.Now,
	})

	f.admin = f.seedUser(t, "Alice Admin", "alice@example.com", domain.RoleAdmin)
	f.otherAdmin = f.seedUser(t, "Aaron Admin", "aaron@example.com", domain.RoleAdmin)
	f.navigator = f.seedUser(t, "Nina Navigator", "nina@example.com", domain.RoleNavigator)
	f.otherNav = f.seedUser(t, "Noah Navigator", "noah@example.com", domain.RoleNavigator)
	f.user = f.seedUser(t, "Uma User", "uma@example.com", domain.RoleUser)
	f.otherUser = f.seedUser(t, "Umar User", "umar@example.com", domain.RoleUser)
	return f
}

// withStatsCache rebuilds both services around a shared stats cache.
func (f *fixture) withStatsCache(cache StatsCache) {
	f.complaints = NewComplaintService(ComplaintDependencies{
		Store:      f.store,
		Dispatcher: f.dispatcher,
		Metrics:    f.transitions,
		StatsCache: cache,
		Clock:      f.clock.Now,
	})
	f.stats = NewStatsService(StatsDependencies{
		Store: f.store,
		Cache: cache,
		Clock: f.clock.Now,
	})
}

// generationCache is an in-process StatsCache with the same generation
// semantics as the Redis one.
type generationCache struct {
	mu      sync.Mutex
	gen     int64
	entries map[int64]domain.Stats
}

func newGenerationCache() *generationCache {
	return &generationCache{entries: map[int64]domain.Stats{}}
}

func (c *generationCache) Get(context.Context) (*domain.Stats, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.entries[c.gen]
	if !ok {
		return nil, c.gen, nil
	}
	return &stats, c.gen, nil
}

func (c *generationCache) Set(_ context.Context, generation int64, stats domain.Stats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[generation] = stats
	return nil
}

func (c *generationCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return nil
}

func (c *generationCache) generation() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (f *fixture) seedUser(t *testing.T, name, email string, role domain.Role) domain.User {
	t.Helper()
	u := &domain.User{FullName: name, Email: email, Role: role, PasswordHash: "x", CreatedAt: baseTime}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return *u
}

func (f *fixture) submit(t *testing.T, owner domain.User, title string) *domain.Complaint {
	t.Helper()
	c, err := f.complaints.Submit(f.ctx, callerOf(owner), SubmitInput{
		Title:       title,
		Description: "The description is long enough.",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) assign(t *testing.T, complaintID string, navigator domain.User, expected *time.Time) {
	t.Helper()
	input := AssignInput{NavigatorID: navigator.ID}
	if expected != nil {
		raw := expected.Format(time.RFC3339)
		input.ExpectedResolutionDate = &raw
	}
	_, err := f.complaints.Assign(f.ctx, callerOf(f.admin), complaintID, input)
	require.NoError(t, err)
}

func (f *fixture) historyOf(t *testing.T, complaintID string) []domain.StatusHistory {
	t.Helper()
	entries, err := f.store.History().ListByComplaint(f.ctx, complaintID)
	require.NoError(t, err)
	return entries
}

func (f *fixture) load(t *testing.T, complaintID string) *domain.Complaint {
	t.Helper()
	c, err := f.store.Complaints().GetByID(f.ctx, complaintID)
	require.NoError(t, err)
	return c
}

func (f *fixture) eventTypes() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.EventType, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.Type)
	}
	return out
}

func callerOf(u domain.User) domain.Caller {
	return domain.Caller{UserID: u.ID, Role: u.Role}
}

func ptr[T any](v T) *T { return &v }
