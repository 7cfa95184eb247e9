package departures

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSeatLabels(t *testing.T) {
	labels := generateSeatLabels(6)
	assert.Equal(t, []string{"1A", "1B", "1C", "1D", "2A", "2B"}, labels)
}

func TestGenerateSeatLabelsFullRows(t *testing.T) {
	labels := generateSeatLabels(40)
	assert.Len(t, labels, 40)
	assert.Equal(t, "1A", labels[0])
	assert.Equal(t, "10D", labels[39])

	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		_, dup := seen[label]
		assert.False(t, dup, "duplicate label %s", label)
		seen[label] = struct{}{}
	}
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, StatusScheduled.IsValid())
	assert.True(t, StatusDeparted.IsValid())
	assert.True(t, StatusCancelled.IsValid())
	assert.False(t, Status("BOARDING").IsValid())
}
