package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollingWindowStatistics(t *testing.T) {
	w := NewWindow(3)

	w.Update(1)
	w.Update(2)
	w.Update(3)

	mean, variance, count := w.Snapshot()
	assert.Equal(t, 3, count)
	assert.InDelta(t, 2.0, mean, 1e-9)
	assert.InDelta(t, 1.0, variance, 1e-9)

	// Overwrites the oldest sample (1), leaving {2,3,4}.
	w.Update(4)

	mean, variance, count = w.Snapshot()
	assert.Equal(t, 3, count)
	assert.InDelta(t, 3.0, mean, 1e-9)
	assert.InDelta(t, 1.0, variance, 1e-9)
}

func TestWindowVarianceUndefinedBelowTwoSamples(t *testing.T) {
	w := NewWindow(5)

	assert.Equal(t, 0.0, w.Variance())

	w.Update(7)
	assert.InDelta(t, 7.0, w.Mean(), 1e-9)
	assert.Equal(t, 0.0, w.Variance())
}

func TestRegistryCreatesWindowsLazilyPerPath(t *testing.T) {
	r := NewRegistry(4)

	r.Update("motor.speed", 10)
	r.Update("motor.speed", 20)
	r.Update("motor.temp", 99)

	assert.ElementsMatch(t, []string{"motor.speed", "motor.temp"}, r.Paths())
	assert.InDelta(t, 15.0, r.Window("motor.speed").Mean(), 1e-9)
	assert.Equal(t, 1, r.Window("motor.temp").Count())
}
