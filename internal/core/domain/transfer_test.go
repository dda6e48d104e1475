package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]TransferStatus{
		{StatusPending, StatusValidated},
		{StatusPending, StatusRejected},
		{StatusValidated, StatusExecuted},
		{StatusExecuted, StatusCompleted},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}

	forbidden := [][2]TransferStatus{
		{StatusPending, StatusExecuted},
		{StatusPending, StatusCompleted},
		{StatusValidated, StatusCompleted},
		{StatusValidated, StatusRejected},
		{StatusExecuted, StatusRejected},
		{StatusRejected, StatusPending},
		{StatusCompleted, StatusPending},
	}
	for _, tr := range forbidden {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s should be forbidden", tr[0], tr[1])
	}
}

func TestNoStatusReturnsToPending(t *testing.T) {
	all := []TransferStatus{StatusPending, StatusValidated, StatusExecuted, StatusCompleted, StatusRejected}
	for _, from := range all {
		assert.False(t, CanTransition(from, StatusPending), "%s must never go back to pending", from)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, Terminal(StatusRejected))
	assert.True(t, Terminal(StatusCompleted))
	assert.False(t, Terminal(StatusPending))
	assert.False(t, Terminal(StatusValidated))
	assert.False(t, Terminal(StatusExecuted))
}
