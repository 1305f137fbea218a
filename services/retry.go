// services/retry.go
package services

import (
	"strings"
	"time"
)

const maxTxRetries = 3

// withRetry re-runs fn on transient storage conflicts (serialization
// failures, deadlocks). Business errors pass through on the first
// attempt; conflicts are a storage detail callers never see.
func withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = fn()
		if err == nil || !isRetryable(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 25 * time.Millisecond)
	}
	return err
}

func isRetryable(err error) bool {
	msg := err.Error()
	// 40001: serialization_failure, 40P01: deadlock_detected
	return strings.Contains(msg, "SQLSTATE 40001") ||
		strings.Contains(msg, "SQLSTATE 40P01") ||
		strings.Contains(msg, "database is locked")
}
