package photostream_test

import (
	"testing"
	"time"

	photostream "github.com/goliatone/go-photostream"
	"github.com/stretchr/testify/assert"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	recent := time.Now().Add(-1 * time.Hour)
	old := time.Now().Add(-48 * time.Hour)

	within, err := photostream.IsWithinThresholdPeriod(recent, "24h")
	assert.NoError(t, err)
	assert.True(t, within)

	within, err = photostream.IsWithinThresholdPeriod(old, "24h")
	assert.NoError(t, err)
	assert.False(t, within)

	_, err = photostream.IsWithinThresholdPeriod(recent, "not-a-duration")
	assert.Error(t, err)
}

func TestIsOutsideThresholdPeriod(t *testing.T) {
	old := time.Now().Add(-48 * time.Hour)

	outside, err := photostream.IsOutsideThresholdPeriod(old, "24h")
	assert.NoError(t, err)
	assert.True(t, outside)

	outside, err = photostream.IsOutsideThresholdPeriod(time.Now(), "24h")
	assert.NoError(t, err)
	assert.False(t, outside)
}
