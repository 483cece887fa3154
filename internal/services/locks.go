package services

import (
	"time"

	app_errors "pulseboard/internal/errors"
	"pulseboard/internal/store"
	"pulseboard/internal/utils"

	"github.com/sirupsen/logrus"
)

const (
	lockTTL          = 10 * time.Second
	lockRetryDelay   = 50 * time.Millisecond
	lockAcquireLimit = 2 * time.Second

	txRetryAttempts = 3
	txRetryDelay    = 100 * time.Millisecond
)

// withActivationLock serializes activation-critical sections through the
// shared store. The lock key scopes contention: the global config key
// serializes all config activations, while per-metric rule keys let
// different metrics activate concurrently. When the lock cannot be
// acquired within the limit the caller gets a Conflict instead of
// blocking the request indefinitely.
func withActivationLock(s store.Store, key string, fn func() error) error {
	deadline := time.Now().Add(lockAcquireLimit)
	for {
		ok, err := s.SetNX(key, []byte("1"), lockTTL)
		if err != nil {
			return app_errors.ErrInternalServer
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return app_errors.NewConflictError("a concurrent activation is in progress, retry shortly")
		}
		time.Sleep(lockRetryDelay)
	}

	defer func() {
		if err := s.Delete(key); err != nil {
			logrus.WithField("key", key).WithError(err).Warn("Failed to release activation lock")
		}
	}()
	return fn()
}

// runWithTransientRetry retries fn on transient database errors
// (locked/busy/deadlock). Activation transactions update every row of a
// table and are the writers most likely to collide under SQLite's
// single-writer model.
func runWithTransientRetry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= txRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !utils.IsTransientDBError(err) {
			return err
		}
		if attempt < txRetryAttempts {
			logrus.WithError(err).WithField("attempt", attempt).Warn("Transient database error, retrying")
			time.Sleep(txRetryDelay)
		}
	}
	return err
}
