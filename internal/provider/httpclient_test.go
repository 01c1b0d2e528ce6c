package provider

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryAfterDeltaSeconds(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "30")
	assert.Equal(t, 30*time.Second, retryAfter(h))
}

func TestRetryAfterHTTPDate(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", time.Now().Add(45*time.Second).UTC().Format(http.TimeFormat))
	d := retryAfter(h)
	assert.Greater(t, d, 40*time.Second)
	assert.LessOrEqual(t, d, 45*time.Second)
}

func TestRetryAfterPastDateAndGarbage(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))
	assert.Equal(t, time.Duration(0), retryAfter(h))

	h.Set("Retry-After", "soonish")
	assert.Equal(t, time.Duration(0), retryAfter(h))

	assert.Equal(t, time.Duration(0), retryAfter(http.Header{}))
}
