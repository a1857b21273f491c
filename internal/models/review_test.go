package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeRatingSummary(t *testing.T) {
	approved := []Review{
		{Rating: 5},
		{Rating: 4},
		{Rating: 5},
		{Rating: 2},
	}

	summary := ComputeRatingSummary(approved)

	assert.Equal(t, 4, summary.ReviewCount)
	assert.InDelta(t, 4.0, summary.Rating, 0.001)
	assert.Equal(t, 2, summary.Distribution[5])
	assert.Equal(t, 1, summary.Distribution[4])
	assert.Equal(t, 0, summary.Distribution[3])
	assert.Equal(t, 1, summary.Distribution[2])
	assert.Equal(t, 0, summary.Distribution[1])
}

func TestComputeRatingSummary_Empty(t *testing.T) {
	summary := ComputeRatingSummary(nil)

	assert.Equal(t, 0, summary.ReviewCount)
	assert.InDelta(t, 0.0, summary.Rating, 0.001)
	// Распределение всегда содержит все пять ключей.
	assert.Len(t, summary.Distribution, 5)
}
