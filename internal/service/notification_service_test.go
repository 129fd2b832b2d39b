package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
)

func TestNotificationServiceLogsEvents(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core)).RegisterHandlers()
	f.complaints = NewComplaintService(ComplaintDependencies{Store: f.store, Dispatcher: dispatcher, Clock: f.clock.Now})

	c := f.submit(t, f.user, "Logged")
	f.assign(t, c.ID, f.navigator, nil)
	_, err := f.complaints.UpdateStatus(f.ctx, callerOf(f.navigator), c.ID, domain.StatusInProgress)
	require.NoError(t, err)
	_, err = f.complaints.Escalate(f.ctx, callerOf(f.admin), c.ID, EscalateInput{TargetAdminID: f.admin.ID, Reason: "needs attention"})
	require.NoError(t, err)

	messages := make([]string, 0, logs.Len())
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{"ComplaintSubmitted", "ComplaintAssigned", "ComplaintStatusChanged", "ComplaintEscalated"}, messages)
	assert.Equal(t, c.ID, logs.All()[0].ContextMap()["complaint_id"])
}

func TestPublishFailureDoesNotUndoMutation(t *testing.T) {
	f := newFixture(t)
	dispatcher := events.NewInMemoryDispatcher()
	events.SubscribeAll(dispatcher, func(context.Context, events.Event) error {
		return errors.New("mail relay down")
	})
	f.complaints = NewComplaintService(ComplaintDependencies{Store: f.store, Dispatcher: dispatcher, Clock: f.clock.Now})

	c := f.submit(t, f.user, "Still saved")
	_, err := f.complaints.UpdateStatus(f.ctx, callerOf(f.admin), c.ID, domain.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, f.load(t, c.ID).Status)
}

func TestDeliverRoutesByType(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewNotificationService(nil, zap.New(core))

	require.NoError(t, n.Deliver(context.Background(), events.Event{Type: events.EventComplaintEscalated, ComplaintID: "c-1"}))
	require.NoError(t, n.Deliver(context.Background(), events.Event{Type: "unknown"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
}
