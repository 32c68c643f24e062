package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(sec int64) time.Time { return time.Unix(sec, 0) }

func TestEvaluate_BoundaryIsEligible(t *testing.T) {
	// last mine 1000, land 500, tools 100+200 -> next available 1800
	v := Evaluate(ts(1800), ts(1000), 500, []float64{100, 200})

	assert.True(t, v.Eligible)
	assert.Equal(t, ts(1800), v.NextAvailable)
	assert.Equal(t, time.Duration(0), v.Remaining)
}

func TestEvaluate_OneSecondShort(t *testing.T) {
	v := Evaluate(ts(1799), ts(1000), 500, []float64{100, 200})

	assert.False(t, v.Eligible)
	assert.Equal(t, ts(1800), v.NextAvailable)
	assert.Equal(t, time.Second, v.Remaining)
}

func TestEvaluate_PastDue(t *testing.T) {
	v := Evaluate(ts(5000), ts(1000), 500, []float64{100, 200})

	assert.True(t, v.Eligible)
	assert.Equal(t, time.Duration(0), v.Remaining)
}

func TestEvaluate_NoTools(t *testing.T) {
	v := Evaluate(ts(1400), ts(1000), 500, nil)

	assert.False(t, v.Eligible)
	assert.Equal(t, 100*time.Second, v.Remaining)
}

func TestEvaluate_FractionalDelays(t *testing.T) {
	v := Evaluate(ts(1000), ts(1000), 0.5, []float64{0.25})

	assert.False(t, v.Eligible)
	assert.Equal(t, 750*time.Millisecond, v.Remaining)
}

func TestEvaluate_RemainingIsExact(t *testing.T) {
	cases := []struct {
		name string
		now  int64
		want time.Duration
	}{
		{"one hour two minutes three seconds", 1800 - 3723, 3723 * time.Second},
		{"exactly one minute", 1800 - 60, time.Minute},
		{"one second", 1799, time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Evaluate(ts(tc.now), ts(1000), 500, []float64{100, 200})
			assert.False(t, v.Eligible)
			assert.Equal(t, tc.want, v.Remaining)
		})
	}
}
