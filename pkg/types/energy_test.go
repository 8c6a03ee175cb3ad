package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoules_String(t *testing.T) {
	assert.Equal(t, "0.061 J", Joules(0.0610351).String())
	assert.Equal(t, "12.500 J", Joules(12.5).String())
	assert.Equal(t, "0.000 J", Joules(0).String())
}

func TestWatts_String(t *testing.T) {
	assert.Equal(t, "0.061 W", Watts(0.0610351).String())
	assert.Equal(t, "95.000 W", Watts(95).String())
}

func TestMilliConversions(t *testing.T) {
	assert.InDelta(t, 61.0, Joules(0.061).Milli(), 1e-9)
	assert.InDelta(t, 61.0, Watts(0.061).Milli(), 1e-9)
}
