package ratelimit

import (
	"math"
	"math/rand"
	"strconv"
	"time"
)

// Config holds throttle and retry configuration for upstream requests
type Config struct {
	RequestsPerSecond float64       `json:"requestsPerSecond"`
	Burst             int           `json:"burst"`
	MaxRetries        int           `json:"maxRetries"`
	InitialBackoff    time.Duration `json:"initialBackoff"`
	MaxBackoff        time.Duration `json:"maxBackoff"`
}

// DefaultConfig returns the default upstream rate limit configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 4,
		Burst:             8,
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        30 * time.Second,
	}
}

// RetryError is returned when all retry attempts for a URL are exhausted
type RetryError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastError  error
}

func (e *RetryError) Error() string {
	msg := "failed to fetch " + e.URL + " after " + strconv.Itoa(e.Attempts) + " attempts"
	if e.LastStatus != 0 {
		msg += " (HTTP " + strconv.Itoa(e.LastStatus) + ")"
	}
	if e.LastError != nil {
		msg += ": " + e.LastError.Error()
	}
	return msg
}

func (e *RetryError) Unwrap() error { return e.LastError }

// IsRetryableStatus reports whether an HTTP status is worth retrying.
// Retryable: 429 and 5xx.
func IsRetryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status < 600)
}

// Backoff calculates the exponential backoff delay for an attempt,
// with 0-25% jitter to avoid thundering herds.
func Backoff(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(2.0, float64(attempt))
	capped := math.Min(delay, float64(cfg.MaxBackoff))
	jitter := rand.Float64() * 0.25 * capped
	return time.Duration(capped + jitter)
}

// RateLimitBackoff calculates the delay after an HTTP 429. The server's
// Retry-After header wins when present; otherwise a steeper exponential
// curve than Backoff is used.
func RateLimitBackoff(attempt int, cfg Config, retryAfter string) time.Duration {
	if retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			jitter := time.Duration(rand.Int63n(int64(time.Second)))
			return time.Duration(seconds)*time.Second + jitter
		}
	}

	delay := float64(cfg.InitialBackoff) * math.Pow(3.0, float64(attempt))
	capped := math.Min(delay, float64(cfg.MaxBackoff))
	jitter := rand.Float64() * 0.25 * capped
	return time.Duration(capped + jitter)
}
