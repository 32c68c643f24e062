package runner

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{time.Second, "1s"},
		{59 * time.Second, "59s"},
		{time.Minute, "1m 00s"},
		{61 * time.Second, "1m 01s"},
		{3600 * time.Second, "1h 00m 00s"},
		{3723 * time.Second, "1h 02m 03s"},
		{26*time.Hour + 5*time.Minute + 9*time.Second, "26h 05m 09s"},
		{-5 * time.Second, "0s"},
		{1500 * time.Millisecond, "2s"}, // partial seconds round up
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatRemaining(tc.in))
		})
	}
}

func TestReporter_LinesMentionAccount(t *testing.T) {
	var buf bytes.Buffer
	r := newReporter(&buf)

	r.mined("alice.wam", "cafebabe01")
	r.cooldown("alice.wam", 90*time.Second)
	r.notFound("ghost.wam")

	out := buf.String()
	assert.Contains(t, out, "alice.wam")
	assert.Contains(t, out, "cafebabe01")
	assert.Contains(t, out, "1m 30s")
	assert.Contains(t, out, "ghost.wam")
}
