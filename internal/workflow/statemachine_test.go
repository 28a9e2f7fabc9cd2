package workflow

import (
	"errors"
	"testing"

	"transferhub/internal/model"
	"transferhub/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []model.TransferStatus{
	model.TransferPending,
	model.TransferApproved,
	model.TransferReady,
	model.TransferInTransit,
	model.TransferDelivered,
	model.TransferReceived,
	model.TransferPartiallyReceived,
	model.TransferCompleted,
	model.TransferRejected,
	model.TransferCancelled,
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		event model.TransferEvent
		from  []model.TransferStatus
	}{
		{model.EventApproved, []model.TransferStatus{model.TransferPending}},
		{model.EventRejected, []model.TransferStatus{model.TransferPending}},
		{model.EventCancelled, []model.TransferStatus{model.TransferPending}},
		{model.EventMarkedReady, []model.TransferStatus{model.TransferApproved}},
		{model.EventDeliveryStart, []model.TransferStatus{model.TransferReady}},
		{model.EventDelivered, []model.TransferStatus{model.TransferInTransit}},
		{model.EventReceived, []model.TransferStatus{model.TransferDelivered}},
		{model.EventCompleted, []model.TransferStatus{model.TransferReceived, model.TransferPartiallyReceived}},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			allowed := make(map[model.TransferStatus]bool)
			for _, s := range tt.from {
				allowed[s] = true
			}
			for _, status := range allStatuses {
				assert.Equal(t, allowed[status], CanTransition(status, tt.event),
					"event %s from %s", tt.event, status)
			}
		})
	}
}

func TestTerminalStatesHaveNoOutgoingTransitions(t *testing.T) {
	terminals := []model.TransferStatus{
		model.TransferCompleted,
		model.TransferRejected,
		model.TransferCancelled,
	}
	events := []model.TransferEvent{
		model.EventApproved, model.EventRejected, model.EventCancelled,
		model.EventMarkedReady, model.EventDeliveryStart, model.EventDelivered,
		model.EventReceived, model.EventCompleted,
	}

	for _, status := range terminals {
		require.True(t, status.IsTerminal())
		for _, event := range events {
			assert.False(t, CanTransition(status, event),
				"event %s must not fire from terminal %s", event, status)
		}
	}
}

func TestCheckTransitionError(t *testing.T) {
	err := CheckTransition(model.TransferApproved, model.EventCancelled)
	require.Error(t, err)

	var transitionErr *apperr.InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, string(model.EventCancelled), transitionErr.Event)
	assert.Equal(t, string(model.TransferApproved), transitionErr.Status)

	assert.NoError(t, CheckTransition(model.TransferPending, model.EventCancelled))
}

func TestTarget(t *testing.T) {
	tests := []struct {
		event  model.TransferEvent
		target model.TransferStatus
		fixed  bool
	}{
		{model.EventApproved, model.TransferApproved, true},
		{model.EventRejected, model.TransferRejected, true},
		{model.EventCancelled, model.TransferCancelled, true},
		{model.EventMarkedReady, model.TransferReady, true},
		{model.EventDeliveryStart, model.TransferInTransit, true},
		{model.EventDelivered, model.TransferDelivered, true},
		{model.EventCompleted, model.TransferCompleted, true},
		// destination is derived from quantities, not fixed
		{model.EventReceived, "", false},
	}

	for _, tt := range tests {
		target, fixed := Target(tt.event)
		assert.Equal(t, tt.fixed, fixed, "event %s", tt.event)
		if tt.fixed {
			assert.Equal(t, tt.target, target, "event %s", tt.event)
		}
	}
}

func TestUnknownEventNeverFires(t *testing.T) {
	for _, status := range allStatuses {
		assert.False(t, CanTransition(status, model.TransferEvent("REOPEN")))
	}
}
