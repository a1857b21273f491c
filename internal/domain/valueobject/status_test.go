package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisputeStatusTransitions(t *testing.T) {
	assert.True(t, DisputeOpen.CanTransitionTo(DisputeInProgress))
	assert.True(t, DisputeInProgress.CanTransitionTo(DisputePendingInfo))
	assert.True(t, DisputeInProgress.CanTransitionTo(DisputeResolved))
	assert.True(t, DisputePendingInfo.CanTransitionTo(DisputeInProgress))

	// resolved достижим только из in_progress
	assert.False(t, DisputeOpen.CanTransitionTo(DisputeResolved))
	assert.False(t, DisputePendingInfo.CanTransitionTo(DisputeResolved))

	// resolved конечный
	assert.False(t, DisputeResolved.CanTransitionTo(DisputeInProgress))
	assert.True(t, DisputeResolved.IsTerminal())
	assert.False(t, DisputePendingInfo.IsTerminal())
}

func TestNewDisputeStatus(t *testing.T) {
	s, err := NewDisputeStatus("in_progress")
	assert.NoError(t, err)
	assert.Equal(t, DisputeInProgress, s)

	_, err = NewDisputeStatus("closed")
	assert.Error(t, err)
}

func TestReviewStatusTransitions(t *testing.T) {
	assert.True(t, ReviewPending.CanTransitionTo(ReviewApproved))
	assert.True(t, ReviewPending.CanTransitionTo(ReviewRejected))
	assert.True(t, ReviewPending.CanTransitionTo(ReviewFlagged))

	// flagged не конечный: допускает повторное решение
	assert.True(t, ReviewFlagged.CanTransitionTo(ReviewApproved))
	assert.True(t, ReviewFlagged.CanTransitionTo(ReviewRejected))
	assert.False(t, ReviewFlagged.IsTerminal())

	assert.False(t, ReviewApproved.CanTransitionTo(ReviewFlagged))
	assert.False(t, ReviewRejected.CanTransitionTo(ReviewApproved))
	assert.True(t, ReviewApproved.IsTerminal())
	assert.True(t, ReviewRejected.IsTerminal())
}

func TestVerificationStatusTransitions(t *testing.T) {
	assert.True(t, VerificationPending.CanTransitionTo(VerificationApproved))
	assert.True(t, VerificationPending.CanTransitionTo(VerificationRejected))
	assert.True(t, VerificationPending.CanTransitionTo(VerificationAdditionalDocs))

	// повторная подача возвращает заявку в очередь
	assert.True(t, VerificationAdditionalDocs.CanTransitionTo(VerificationPending))
	assert.False(t, VerificationAdditionalDocs.CanTransitionTo(VerificationApproved))

	assert.False(t, VerificationApproved.CanTransitionTo(VerificationPending))
	assert.False(t, VerificationRejected.CanTransitionTo(VerificationPending))
}
